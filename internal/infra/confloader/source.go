package confloader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/v2"
	"github.com/spf13/afero"
)

// ClasspathPrefix marks a location served from the embedded classpath.
const ClasspathPrefix = "classpath:"

// KeyDelim is the koanf delimiter for property sources. Property keys are
// flat and their dots are part of the key, so a byte that never appears in a
// key keeps koanf from nesting "a" and "a.b" into each other.
const KeyDelim = "\x00"

// ErrSourceMissing is returned by SourceReader.Read when the location does
// not exist.
var ErrSourceMissing = errors.New("confloader: property source does not exist")

// SourceReader reads one property source into a flat map.
type SourceReader struct {
	fs        afero.Fs
	classpath fs.FS
}

// SourceOption configures a SourceReader.
type SourceOption func(*SourceReader)

// WithFs sets the filesystem for plain locations. Defaults to the OS.
func WithFs(fsys afero.Fs) SourceOption {
	return func(r *SourceReader) {
		r.fs = fsys
	}
}

// WithClasspath sets the filesystem serving "classpath:" locations.
func WithClasspath(fsys fs.FS) SourceOption {
	return func(r *SourceReader) {
		r.classpath = fsys
	}
}

// NewSourceReader creates a reader.
func NewSourceReader(opts ...SourceOption) *SourceReader {
	r := &SourceReader{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fs returns the filesystem used for plain locations.
func (r *SourceReader) Fs() afero.Fs {
	return r.fs
}

// Read loads the source at location. A missing location yields an error
// wrapping ErrSourceMissing; anything else that goes wrong is a read or
// parse failure.
func (r *SourceReader) Read(location string) (map[string]string, error) {
	provider, name, err := r.provider(location)
	if err != nil {
		return nil, err
	}

	k := koanf.New(KeyDelim)
	if err := k.Load(provider, parserFor(name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", location, ErrSourceMissing)
		}
		return nil, fmt.Errorf("read %s: %w", location, err)
	}

	all := k.All()
	out := make(map[string]string, len(all))
	for key, v := range all {
		out[key] = Stringify(v)
	}
	return out, nil
}

// Exists reports whether location can be opened.
func (r *SourceReader) Exists(location string) (bool, error) {
	if name, ok := strings.CutPrefix(location, ClasspathPrefix); ok {
		if r.classpath == nil {
			return false, nil
		}
		_, err := fs.Stat(r.classpath, classpathName(name))
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return err == nil, err
	}
	info, err := r.fs.Stat(location)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

func (r *SourceReader) provider(location string) (koanf.Provider, string, error) {
	if name, ok := strings.CutPrefix(location, ClasspathPrefix); ok {
		if r.classpath == nil {
			return nil, "", fmt.Errorf("%s: no classpath configured: %w", location, ErrSourceMissing)
		}
		name = classpathName(name)
		return classpathProvider{fsys: r.classpath, name: name}, name, nil
	}
	return aferoProvider{fs: r.fs, path: location}, filepath.Base(location), nil
}

// classpathName turns a classpath entry into a valid fs.FS path.
func classpathName(name string) string {
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}

// parserFor picks a parser by file extension. Anything that is not YAML is
// treated as a properties file.
func parserFor(name string) koanf.Parser {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return FlatYAMLParser{}
	default:
		return PropertiesParser{}
	}
}
