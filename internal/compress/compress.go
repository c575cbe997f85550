package compress

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// Supported archive types.
const (
	Zip = "zip"
	Tar = "tar"
)

// MaxEntrySize bounds the size of one extracted file.
const MaxEntrySize = 32 << 20

var (
	ErrNoFiles         = errors.New("no JSON files found in the archive")
	ErrUnsupportedType = errors.New("unsupported archive type")
	ErrEntryTooLarge   = errors.New("archive entry is too large")
)

// Entry is one file of an archive.
type Entry struct {
	Name string
	Data []byte
}

// Reader holds the JSON files extracted from an archive.
type Reader interface {
	io.Closer
	Entries() []Entry
}

// Writer packs files into an archive.
type Writer interface {
	io.Closer
	Add(name string, data []byte) error
}

// Supported reports whether archiveType names a known archive format.
func Supported(archiveType string) bool {
	return archiveType == Zip || archiveType == Tar
}

// NewReader extracts the JSON files of an archive of the given type.
func NewReader(archiveType string, r io.ReadCloser) (Reader, error) {
	var (
		reader Reader
		err    error
	)
	switch archiveType {
	case Zip:
		reader, err = NewZipReader(r)
	case Tar:
		reader, err = NewTarReader(r)
	default:
		r.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, archiveType)
	}
	if err != nil {
		return nil, err
	}
	return reader, nil
}

// NewWriter starts an archive of the given type on w.
func NewWriter(archiveType string, w io.Writer) (Writer, error) {
	switch archiveType {
	case Zip:
		return NewZipWriter(w), nil
	case Tar:
		return NewTarWriter(w), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, archiveType)
}

// ContentType returns the MIME type of an archive type.
func ContentType(archiveType string) string {
	if archiveType == Tar {
		return "application/x-tar"
	}
	return "application/zip"
}

func isJSON(name string) bool {
	base := path.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.EqualFold(path.Ext(base), ".json")
}

// readEntry reads at most MaxEntrySize bytes of one archive file.
func readEntry(name string, r io.Reader) (Entry, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxEntrySize+1))
	if err != nil {
		return Entry{}, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(data) > MaxEntrySize {
		return Entry{}, fmt.Errorf("%w: %s", ErrEntryTooLarge, name)
	}
	return Entry{Name: path.Base(name), Data: data}, nil
}
