// Package archive gives access to stylesheets packed into zip archives.
// Locations inside archives are written as "path/to/file.zip/dir/a.css".
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/text/encoding"
)

// ErrNotFound is returned when archive has no entry with requested name.
var ErrNotFound = errors.New("entry not found in archive")

// maxEntrySize limits entries read into memory, stylesheets are small.
const maxEntrySize = 16 << 20

// WalkFunc is called for every matching entry visited by Walk, name is the
// entry name decoded with code page given to Walk. Returning error stops
// the walk.
type WalkFunc func(archive, name string, file *zip.File) error

// Walk visits all regular entries of archive whose names start with prefix.
// Entries with absolute names or ".." components make the whole archive
// unusable. When cp is not nil names not flagged as UTF-8 are decoded with
// it.
func Walk(archive, prefix string, cp encoding.Encoding, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if !safeName(f.Name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", f.Name)
		}
		if f.FileInfo().IsDir() {
			continue
		}
		name := EntryName(f, cp)
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if err := walkFn(archive, name, f); err != nil {
			return err
		}
	}
	return nil
}

// EntryName returns name of archive entry, zip does not define encoding of
// names so old archives may need explicit code page.
func EntryName(f *zip.File, cp encoding.Encoding) string {
	if cp == nil || !f.NonUTF8 {
		return f.Name
	}
	if n, err := cp.NewDecoder().String(f.Name); err == nil {
		return n
	}
	return f.Name
}

// ReadFile returns content of a single archive entry.
func ReadFile(archive, name string, cp encoding.Encoding) ([]byte, error) {
	var data []byte
	found := errors.New("found")
	err := Walk(archive, name, cp, func(_, entry string, f *zip.File) error {
		if entry != name {
			return nil
		}
		if f.UncompressedSize64 > maxEntrySize {
			return fmt.Errorf("entry %q is too large (%d bytes)", name, f.UncompressedSize64)
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		defer rc.Close()
		if data, err = io.ReadAll(io.LimitReader(rc, maxEntrySize)); err != nil {
			return err
		}
		return found
	})
	switch {
	case errors.Is(err, found):
		return data, nil
	case err != nil:
		return nil, err
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// IsArchive reports whether file is a zip archive. Only files with ".zip"
// extension are looked at.
func IsArchive(file string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(file), ".zip") {
		return false, nil
	}
	f, err := os.Open(file)
	if err != nil {
		return false, err
	}
	defer f.Close()

	// 262 bytes is enough for any signature filetype knows
	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	return filetype.Is(head[:n], "zip"), nil
}

// Split divides location into archive file and entry name. When no part of
// location is a zip archive on disk archive is empty.
func Split(location string) (archive, entry string, err error) {
	for head := filepath.Clean(location); ; {
		fi, err := os.Stat(head)
		if err == nil && fi.Mode().IsRegular() {
			ok, err := IsArchive(head)
			if err != nil {
				return "", "", err
			}
			if !ok {
				return "", "", nil
			}
			entry = strings.TrimPrefix(strings.TrimPrefix(filepath.ToSlash(location), filepath.ToSlash(head)), "/")
			return head, entry, nil
		}
		parent := filepath.Dir(head)
		if parent == head {
			return "", "", nil
		}
		head = parent
	}
}

func safeName(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	for part := range strings.SplitSeq(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
