package archive

import (
	"os"
	"path/filepath"
)

func mkdirAllFor(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

func createFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644) // #nosec G304 -- path validated by SafeExtract's containment check
}
