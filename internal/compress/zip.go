package compress

import (
	"archive/zip"
	"bytes"
	"io"
)

// ZipReader holds the JSON files of a ZIP archive.
type ZipReader struct {
	entries []Entry
}

// NewZipReader reads the whole ZIP archive and extracts every JSON file from it.
func NewZipReader(r io.ReadCloser) (*ZipReader, error) {
	defer r.Close()

	// Read the entire archive into a buffer
	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, r); err != nil {
		return nil, err
	}

	// Create a zip.Reader
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !isJSON(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		e, err := readEntry(f.Name, rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if len(entries) == 0 {
		return nil, ErrNoFiles
	}
	return &ZipReader{entries: entries}, nil
}

// Entries returns the extracted files in archive order.
func (z *ZipReader) Entries() []Entry {
	return z.entries
}

func (z *ZipReader) Close() error {
	return nil
}

// ZipWriter implements packaging data into a ZIP archive.
type ZipWriter struct {
	zipWriter *zip.Writer
}

func NewZipWriter(w io.Writer) *ZipWriter {
	return &ZipWriter{zipWriter: zip.NewWriter(w)}
}

// Add writes one file into the archive.
func (z *ZipWriter) Add(name string, data []byte) error {
	f, err := z.zipWriter.Create(name)
	if err != nil {
		return err
	}
	_, err = f.Write(data)
	return err
}

// Close writes the central directory of the ZIP archive.
func (z *ZipWriter) Close() error {
	return z.zipWriter.Close()
}
