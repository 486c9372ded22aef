package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"exambank/internal/util"
)

// Entry is one document pulled out of an upload: either the upload itself
// or a file enumerated from inside a container.
type Entry struct {
	Name        string
	ArchivePath string
	Data        []byte
}

// Expand resolves an uploaded blob into the list of documents to process.
// A .zip container is enumerated; a .pdf passes through as a single entry;
// anything else is a whole-batch error. A container that cannot be opened
// is also a whole-batch error, before any embedded file is touched.
func Expand(filename string, data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, util.ErrEmptyUpload
	}
	switch strings.ToLower(path.Ext(filename)) {
	case ".zip":
		return expandZip(filename, data)
	case ".pdf":
		return []Entry{{Name: filename, Data: data}}, nil
	default:
		return nil, fmt.Errorf("%w: %s", util.ErrUnsupportedFormat, filename)
	}
}

func expandZip(filename string, data []byte) ([]Entry, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", util.ErrUnreadableArchive, filename, err)
	}
	entries := make([]Entry, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if strings.ToLower(path.Ext(f.Name)) != ".pdf" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w %q: open entry %s: %v", util.ErrUnreadableArchive, filename, f.Name, err)
		}
		buf, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w %q: read entry %s: %v", util.ErrUnreadableArchive, filename, f.Name, err)
		}
		entries = append(entries, Entry{
			Name:        path.Base(f.Name),
			ArchivePath: f.Name,
			Data:        buf,
		})
	}
	return entries, nil
}
