package gen

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/tools/imports"
)

// format formats src as the file at path, grouping and pruning imports.
// On failure the unformatted source is written next to path for debugging.
func format(path string, src []byte) ([]byte, error) {
	formatted, err := imports.Process(path, src, nil)
	if err != nil {
		debugPath := path + ".error"
		_ = os.WriteFile(debugPath, src, 0o644)
		return nil, fmt.Errorf("%w (unformatted written to %s)", err, debugPath)
	}
	return formatted, nil
}

// writeFile writes src to path unless the file already holds it. It reports
// whether the file changed.
func writeFile(path string, src []byte) (bool, error) {
	old, err := os.ReadFile(path)
	switch {
	case err == nil && bytes.Equal(old, src):
		return false, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return false, err
	}
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return false, err
	}
	_ = os.Remove(path + ".error")
	return true, nil
}
