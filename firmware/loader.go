package firmware

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvFirmwareDir is an environment variable naming an additional directory
// searched before the configured ones.
const EnvFirmwareDir = "FX3KIT_FIRMWARE_DIR"

// Loader resolves named firmware resources to their raw contents.
// maxSize bounds the accepted file size; larger files are rejected rather
// than truncated.
type Loader interface {
	Firmware(name string, maxSize int64) ([]byte, error)
}

// DirLoader is a Loader that searches an ordered list of directories.
// The EnvFirmwareDir environment variable, if set, is searched first.
type DirLoader struct {
	Dirs []string
}

// NewDirLoader creates a DirLoader over the given directories.
func NewDirLoader(dirs ...string) *DirLoader {
	return &DirLoader{Dirs: dirs}
}

// Firmware loads the named firmware file from the first directory that
// contains it. Returns *NotFoundError if no directory has the file and
// *TooLargeError if the file exceeds maxSize.
func (l *DirLoader) Firmware(name string, maxSize int64) ([]byte, error) {
	dirs := l.searchDirs()
	for _, dir := range dirs {
		path := filepath.Join(dir, name)
		fi, err := os.Stat(path)
		if err != nil {
			continue
		}
		if fi.Size() > maxSize {
			return nil, &TooLargeError{Name: name, Size: fi.Size(), Max: maxSize}
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read firmware %q: %w", name, err)
		}
		return data, nil
	}
	return nil, &NotFoundError{Name: name, Dirs: dirs}
}

func (l *DirLoader) searchDirs() []string {
	var dirs []string
	if env := os.Getenv(EnvFirmwareDir); env != "" {
		dirs = append(dirs, env)
	}
	return append(dirs, l.Dirs...)
}
