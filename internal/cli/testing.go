package cmd

import (
	"context"
	"io"
)

// ExecuteForTest runs the root command with args, writing command output to out.
func ExecuteForTest(ctx context.Context, args []string, out io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	return rootCmd.ExecuteContext(ctx)
}
