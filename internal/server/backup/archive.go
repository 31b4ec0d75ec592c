package backup

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/recipebox/internal/common"
	"github.com/goccy/go-json"
)

// Asset is one archive entry. Name is the full entry name, for example
// "uploads/photo.jpg".
type Asset struct {
	Name string
	Data []byte
}

// FileName returns the base name the asset is stored under.
func (a Asset) FileName() string {
	return path.Base(a.Name)
}

// Contents is what Read extracts from an archive. Document is left
// undecoded.
type Contents struct {
	Document []byte
	Assets   []Asset
}

// Codec packs a Document and its images into a zip archive and back.
type Codec struct{}

// Write encodes doc as pretty-printed backup.json followed by one
// uploads/<name> entry per asset.
func (Codec) Write(doc *Document, assets []Asset) ([]byte, error) {
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup document: %w", err)
	}

	modTime := doc.GeneratedAt
	if modTime.IsZero() {
		modTime = time.Now()
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	if err := writeEntry(zw, common.BackupDocumentName, body, modTime); err != nil {
		return nil, err
	}
	for _, a := range assets {
		name := a.Name
		if !strings.HasPrefix(name, common.UploadsPrefix) {
			name = common.UploadsPrefix + name
		}
		if err := writeEntry(zw, name, a.Data, modTime); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finish archive: %w", err)
	}
	return buf.Bytes(), nil
}

func writeEntry(zw *zip.Writer, name string, data []byte, modTime time.Time) error {
	header := &zip.FileHeader{
		Name:   name,
		Method: zip.Deflate,
	}
	header.SetModTime(modTime)
	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("create archive entry %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write archive entry %s: %w", name, err)
	}
	return nil
}

// Read opens buf as a zip archive. backup.json is matched by exact name and
// the asset set is every file entry under uploads/.
func (Codec) Read(buf []byte) (*Contents, error) {
	zr, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidArchive, err)
	}

	out := &Contents{}
	found := false
	for _, f := range zr.File {
		switch {
		case f.Name == common.BackupDocumentName:
			data, err := readEntry(f)
			if err != nil {
				return nil, err
			}
			out.Document = data
			found = true
		case strings.HasPrefix(f.Name, common.UploadsPrefix) && !f.FileInfo().IsDir():
			data, err := readEntry(f)
			if err != nil {
				return nil, err
			}
			out.Assets = append(out.Assets, Asset{Name: f.Name, Data: data})
		}
	}
	if !found {
		return nil, common.ErrMissingArchiveEntry
	}
	return out, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", common.ErrInvalidArchive, f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		if errors.Is(err, zip.ErrChecksum) || errors.Is(err, zip.ErrFormat) {
			return nil, fmt.Errorf("%w: read %s: %v", common.ErrInvalidArchive, f.Name, err)
		}
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return data, nil
}
