package assembler

import (
	"bytes"
	"encoding/json"
	"path/filepath"

	"github.com/rohmanhakim/scores-fixture/pkg/fileutil"
)

// WriteFile writes doc as indented UTF-8 JSON. The file is replaced atomically
// so a failed write never leaves a truncated output behind.
func WriteFile(path string, doc map[string]any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return &AssemblyError{
			Message: err.Error(),
			Cause:   ErrCauseOutputWrite,
			Path:    path,
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := fileutil.EnsureDir(dir); err != nil {
			return &AssemblyError{
				Message: err.Error(),
				Cause:   ErrCauseOutputWrite,
				Path:    path,
			}
		}
	}
	if err := fileutil.WriteAtomic(path, buf.Bytes()); err != nil {
		return &AssemblyError{
			Message: err.Error(),
			Cause:   ErrCauseOutputWrite,
			Path:    path,
		}
	}
	return nil
}
