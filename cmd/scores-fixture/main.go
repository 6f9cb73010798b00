package main

import cmd "github.com/rohmanhakim/scores-fixture/internal/cli"

func main() {
	cmd.Execute()
}
