package compress

import (
	"archive/tar"
	"io"
	"time"
)

// TarReader holds the JSON files of a TAR archive.
type TarReader struct {
	entries []Entry
}

// NewTarReader walks the TAR stream and extracts every regular JSON file from it.
func NewTarReader(r io.ReadCloser) (*TarReader, error) {
	defer r.Close()

	tr := tar.NewReader(r)

	var entries []Entry
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if header.Typeflag != tar.TypeReg || !isJSON(header.Name) {
			continue
		}
		e, err := readEntry(header.Name, tr)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if len(entries) == 0 {
		return nil, ErrNoFiles
	}
	return &TarReader{entries: entries}, nil
}

// Entries returns the extracted files in archive order.
func (t *TarReader) Entries() []Entry {
	return t.entries
}

func (t *TarReader) Close() error {
	return nil
}

// TarWriter implements packaging data into a TAR archive.
type TarWriter struct {
	tw  *tar.Writer
	now func() time.Time
}

func NewTarWriter(w io.Writer) *TarWriter {
	return &TarWriter{tw: tar.NewWriter(w), now: time.Now}
}

// Add writes one file into the archive.
func (t *TarWriter) Add(name string, data []byte) error {
	if err := t.tw.WriteHeader(&tar.Header{
		Typeflag: tar.TypeReg,
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(data)),
		ModTime:  t.now(),
	}); err != nil {
		return err
	}
	_, err := t.tw.Write(data)
	return err
}

// Close writes the TAR trailer.
func (t *TarWriter) Close() error {
	return t.tw.Close()
}
