package capture

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// File is one attachment carried by a paste or drop event
type File struct {
	Name string // display name, e.g. "My Photo.PNG"
	Type string // MIME type, may be empty
	Size int64

	open func() (io.ReadCloser, error)
}

// Bytes reads the whole content of the file
func (f File) Bytes() ([]byte, error) {
	if f.open == nil {
		return nil, fmt.Errorf("file %q has no content", f.Name)
	}

	rc, err := f.open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", f.Name, err)
	}
	return data, nil
}

// PasteEvent carries the files found on the clipboard
type PasteEvent struct {
	Files []File
}

// DropEvent carries the files dropped onto the editor
type DropEvent struct {
	Files []File
}

// NewFile wraps in-memory content
func NewFile(name, mimeType string, data []byte) File {
	return File{
		Name: name,
		Type: mimeType,
		Size: int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// FromPath builds a File backed by a path on disk. The MIME type is
// sniffed from the content, falling back to the extension.
func FromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to stat %q: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%q is a directory", path)
	}

	mimeType := ""
	if mt, err := mimetype.DetectFile(path); err == nil {
		mimeType = mt.String()
	}
	mimeType = refineType(mimeType, path)

	return File{
		Name: filepath.Base(path),
		Type: mimeType,
		Size: info.Size(),
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// FromPaths builds a drop event from paths, in order
func FromPaths(paths []string) (DropEvent, error) {
	event := DropEvent{Files: make([]File, 0, len(paths))}
	for _, p := range paths {
		f, err := FromPath(p)
		if err != nil {
			return DropEvent{}, err
		}
		event.Files = append(event.Files, f)
	}
	return event, nil
}

// FromReader builds a paste event from clipboard-like content. Empty
// content yields an event without files. When mimeType is empty it is
// sniffed from the data.
func FromReader(name, mimeType string, r io.Reader) (PasteEvent, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return PasteEvent{}, fmt.Errorf("failed to read pasted content: %w", err)
	}
	if len(data) == 0 {
		return PasteEvent{}, nil
	}

	if mimeType == "" {
		mimeType = refineType(mimetype.Detect(data).String(), name)
	}
	if name == "" {
		name = defaultName(mimeType)
	}

	return PasteEvent{Files: []File{NewFile(name, mimeType, data)}}, nil
}

// refineType prefers the extension's type when sniffing found nothing
// more specific than a generic binary or text type.
func refineType(sniffed, name string) string {
	base, _, _ := strings.Cut(sniffed, ";")
	if sniffed != "" && base != "application/octet-stream" && base != "text/plain" {
		return sniffed
	}
	if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
		return byExt
	}
	return sniffed
}

// defaultName names clipboard content that came without one
func defaultName(mimeType string) string {
	base, _, _ := strings.Cut(mimeType, ";")
	if mt := mimetype.Lookup(base); mt != nil && mt.Extension() != "" {
		return "pasted" + mt.Extension()
	}
	return "pasted"
}
