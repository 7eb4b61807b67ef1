// Package loader reads stylesheets from files, directories and zip archives
// converting them to UTF-8 for the parser.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"

	"fxcss/archive"
	"fxcss/css"
	"fxcss/css/value"
)

var (
	ErrNotStylesheet = errors.New("not a stylesheet")
	ErrTooLarge      = errors.New("stylesheet is too large")
)

const maxStylesheetSize = 16 << 20

// Loader opens stylesheets by location. Location is a file path, a file url
// or a path inside zip archive ("themes.zip/modena/modena.css"). Loader
// implements css.Loader and value.URLResolver.
type Loader struct {
	log      *zap.Logger
	fallback encoding.Encoding
	names    encoding.Encoding
	onLoad   func(location string, data []byte)
}

var (
	_ css.Loader        = (*Loader)(nil)
	_ value.URLResolver = (*Loader)(nil)
)

// Option configures loader.
type Option func(*Loader) error

// WithCharset sets encoding of stylesheets which have neither BOM nor
// @charset rule. UTF-8 is used by default.
func WithCharset(name string) Option {
	return func(l *Loader) error {
		if name == "" {
			return nil
		}
		enc, err := ianaindex.IANA.Encoding(name)
		if err != nil {
			return fmt.Errorf("unknown character set %q: %w", name, err)
		}
		if enc == nil {
			return fmt.Errorf("unsupported character set %q", name)
		}
		l.fallback = enc
		return nil
	}
}

// WithArchiveNames sets code page for names of archive entries not marked
// as UTF-8.
func WithArchiveNames(name string) Option {
	return func(l *Loader) error {
		if name == "" {
			return nil
		}
		enc, err := ianaindex.IANA.Encoding(name)
		if err != nil || enc == nil {
			l.log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", name), zap.Error(err))
			return nil
		}
		l.names = enc
		return nil
	}
}

// WithLoadHook registers function called with decoded text of every loaded
// stylesheet.
func WithLoadHook(fn func(location string, data []byte)) Option {
	return func(l *Loader) error {
		l.onLoad = fn
		return nil
	}
}

func New(log *zap.Logger, opts ...Option) (*Loader, error) {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Loader{log: log.Named("loader")}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// ArchiveNames returns code page for names of archive entries, nil when
// none was configured.
func (l *Loader) ArchiveNames() encoding.Encoding {
	return l.names
}

// Load reads stylesheet at location and returns its text in UTF-8.
func (l *Loader) Load(ctx context.Context, location string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := filePath(location)
	if err != nil {
		return nil, err
	}
	data, err := l.read(file)
	if err != nil {
		return nil, err
	}
	text, err := l.Decode(location, data)
	if err != nil {
		return nil, err
	}
	if l.onLoad != nil {
		l.onLoad(location, text)
	}
	return io.NopCloser(bytes.NewReader(text)), nil
}

func (l *Loader) read(file string) ([]byte, error) {
	fi, err := os.Stat(file)
	if err == nil {
		if !fi.Mode().IsRegular() {
			return nil, fmt.Errorf("%w: %s is not a regular file", ErrNotStylesheet, file)
		}
		if fi.Size() > maxStylesheetSize {
			return nil, fmt.Errorf("%w: %s", ErrTooLarge, file)
		}
		return os.ReadFile(file)
	}

	// does not exist, probably path in archive
	arc, entry, serr := archive.Split(file)
	if serr != nil {
		return nil, serr
	}
	if arc == "" || entry == "" {
		return nil, err
	}
	l.log.Debug("Reading stylesheet from archive", zap.String("archive", arc), zap.String("entry", entry))
	return archive.ReadFile(arc, entry, l.names)
}

// Decode converts stylesheet to UTF-8. Byte order mark wins over @charset
// rule which wins over configured charset.
func (l *Loader) Decode(location string, data []byte) ([]byte, error) {
	if kind := binaryKind(data); kind != "" {
		return nil, fmt.Errorf("%w: %s looks like %s", ErrNotStylesheet, location, kind)
	}

	var enc encoding.Encoding
	if bom := detectUTF(data); bom != encUnknown {
		l.log.Debug("Byte order mark found", zap.String("source", location), zap.Stringer("encoding", bom))
		enc = bom.encoding()
	} else if label := sniffCharset(data); label != "" {
		var name string
		if enc, name = charset.Lookup(label); enc == nil {
			l.log.Warn("Unknown @charset, ignoring", zap.String("source", location), zap.String("charset", label))
		} else {
			l.log.Debug("Using @charset", zap.String("source", location), zap.String("charset", name))
		}
	}
	if enc == nil {
		enc = l.fallback
	}
	if enc == nil {
		return data, nil
	}

	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), enc.NewDecoder()))
	if err != nil {
		return nil, fmt.Errorf("unable to decode stylesheet %s: %w", location, err)
	}
	return out, nil
}

// ResolveURL resolves reference found in stylesheet at base. References
// relative to file locations stay file locations, so imports inside
// archives keep pointing into the same archive.
func (l *Loader) ResolveURL(raw, base string) (string, error) {
	if raw == "" {
		return "", errors.New("empty url")
	}
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return raw, nil
	}
	if base == "" {
		return raw, nil
	}
	if u, err := url.Parse(base); err == nil && len(u.Scheme) > 1 {
		return value.DefaultResolver.ResolveURL(raw, base)
	}
	if strings.HasPrefix(raw, "/") {
		return raw, nil
	}
	dir := path.Dir(filepath.ToSlash(base))
	return filepath.FromSlash(path.Join(dir, raw)), nil
}

// filePath turns location into file system path.
func filePath(location string) (string, error) {
	if !strings.HasPrefix(location, "file:") {
		return location, nil
	}
	u, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("bad file url %q: %w", location, err)
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", fmt.Errorf("remote file url %q is not supported", location)
	}
	return filepath.FromSlash(u.Path), nil
}
