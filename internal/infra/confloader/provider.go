package confloader

import (
	"errors"
	"io/fs"

	"github.com/spf13/afero"
)

// ErrReadBytesNotSupported is returned when ReadBytes is called on a map provider.
var ErrReadBytesNotSupported = errors.New("confloader: ReadBytes not supported by map provider, use Read() instead")

// ErrReadNotSupported is returned when Read is called on a byte provider.
var ErrReadNotSupported = errors.New("confloader: Read not supported by byte provider, use ReadBytes() instead")

// mapProvider is a simple koanf provider that loads configuration from a map.
//
// koanf uses whichever of ReadBytes() or Read() the provider supports; for
// maps that is Read().
type mapProvider map[string]any

// ReadBytes returns an error as map provider doesn't support byte serialization.
func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, ErrReadBytesNotSupported
}

// Read returns the configuration map.
func (m mapProvider) Read() (map[string]any, error) {
	return m, nil
}

// aferoProvider reads a file through an afero filesystem, so tests can run
// against an in-memory tree.
type aferoProvider struct {
	fs   afero.Fs
	path string
}

func (p aferoProvider) ReadBytes() ([]byte, error) {
	return afero.ReadFile(p.fs, p.path)
}

func (p aferoProvider) Read() (map[string]any, error) {
	return nil, ErrReadNotSupported
}

// classpathProvider reads an entry from an embedded filesystem.
type classpathProvider struct {
	fsys fs.FS
	name string
}

func (p classpathProvider) ReadBytes() ([]byte, error) {
	return fs.ReadFile(p.fsys, p.name)
}

func (p classpathProvider) Read() (map[string]any, error) {
	return nil, ErrReadNotSupported
}
