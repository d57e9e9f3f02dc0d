// Package rom loads program images from disk, unwrapping the archive and
// compression formats ROM dumps are commonly distributed in.
package rom

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/cespare/xxhash"
	"github.com/ulikunitz/xz"
)

// ErrEmptyArchive is returned for archives without any file in them.
var ErrEmptyArchive = errors.New("archive contains no files")

// Load reads the file at path and decompresses it if necessary.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(path, data)
}

// Decode unwraps data according to the extension of name. Unknown
// extensions are treated as raw images.
func Decode(name string, data []byte) ([]byte, error) {
	var (
		decoder io.Reader
		err     error
	)

	r := bytes.NewReader(data)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		decoder, err = gzip.NewReader(r)
	case ".xz":
		decoder, err = xz.NewReader(r)
	case ".zip":
		decoder, err = openZip(r, int64(len(data)))
	case ".7z":
		decoder, err = openSevenZip(r, int64(len(data)))
	default:
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(name), err)
	}
	if c, ok := decoder.(io.Closer); ok {
		defer c.Close()
	}

	out, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(name), err)
	}
	return out, nil
}

// openZip opens the first file in a zip archive.
func openZip(r io.ReaderAt, size int64) (io.ReadCloser, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	for _, f := range zr.File {
		if !f.FileInfo().IsDir() {
			return f.Open()
		}
	}
	return nil, ErrEmptyArchive
}

// openSevenZip opens the first file in a 7z archive.
func openSevenZip(r io.ReaderAt, size int64) (io.ReadCloser, error) {
	sr, err := sevenzip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	for _, f := range sr.File {
		if !f.FileInfo().IsDir() {
			return f.Open()
		}
	}
	return nil, ErrEmptyArchive
}

// Digest returns the xxhash of an image, used to identify ROMs in logs.
func Digest(data []byte) uint64 {
	return xxhash.Sum64(data)
}
