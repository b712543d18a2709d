package editor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/williamokano/r2_uploader/pkg/pathtemplate"
)

// EndOfDocument selects the position after the last byte
const EndOfDocument = -1

// Document is a markdown note inside a vault directory. It acts as the
// active document and as the edit target for inserted links.
type Document struct {
	mu        sync.Mutex
	vaultRoot string
	path      string
	rel       string
	from, to  int
}

// Open opens docPath, which must exist and live under vaultRoot. The
// selection starts collapsed at the end of the document.
func Open(vaultRoot, docPath string) (*Document, error) {
	root, err := filepath.Abs(vaultRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve vault root: %w", err)
	}
	path, err := filepath.Abs(docPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve document path: %w", err)
	}

	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("document %s is outside the vault %s", path, root)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("document %s is a directory", path)
	}

	return &Document{
		vaultRoot: root,
		path:      path,
		rel:       filepath.ToSlash(rel),
		from:      EndOfDocument,
		to:        EndOfDocument,
	}, nil
}

// Path returns the absolute path of the document
func (d *Document) Path() string {
	return d.path
}

// ActiveDocument describes the note for the path template
func (d *Document) ActiveDocument() *pathtemplate.Document {
	name := filepath.Base(d.path)

	parent := filepath.ToSlash(filepath.Dir(d.rel))
	if parent == "." {
		parent = ""
	}

	return &pathtemplate.Document{
		Basename:   strings.TrimSuffix(name, filepath.Ext(name)),
		Name:       name,
		ParentPath: parent,
	}
}

// Select sets the byte range replaced by the next insertion. Use
// EndOfDocument for either bound to mean the end of the file. The range
// must lie within the current content and on character boundaries.
func (d *Document) Select(from, to int) error {
	if from < EndOfDocument || to < EndOfDocument {
		return fmt.Errorf("invalid selection %d-%d", from, to)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	content, err := os.ReadFile(d.path)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	if _, _, err := d.span(content, from, to); err != nil {
		return err
	}

	d.from, d.to = from, to
	return nil
}

// ReplaceSelection replaces the selected range with text, writes the note
// back and collapses the selection after the inserted text.
func (d *Document) ReplaceSelection(text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	content, err := os.ReadFile(d.path)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	// the note may have changed since Select
	from, to, err := d.span(content, d.from, d.to)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.Grow(len(content) - (to - from) + len(text))
	b.Write(content[:from])
	b.WriteString(text)
	b.Write(content[to:])

	if err := writeAtomic(d.path, []byte(b.String())); err != nil {
		return err
	}

	cursor := from + len(text)
	d.from, d.to = cursor, cursor
	return nil
}

// span resolves a selection against content into an ordered byte range
func (d *Document) span(content []byte, from, to int) (int, int, error) {
	from, to = d.resolve(from, len(content)), d.resolve(to, len(content))
	if to < from {
		from, to = to, from
	}
	if to > len(content) {
		return 0, 0, fmt.Errorf("selection %d-%d is beyond the end of the document (%d bytes)", from, to, len(content))
	}
	if !boundary(content, from) || !boundary(content, to) {
		return 0, 0, fmt.Errorf("selection %d-%d splits a character", from, to)
	}
	return from, to, nil
}

func (d *Document) resolve(pos, size int) int {
	if pos == EndOfDocument {
		return size
	}
	return pos
}

func boundary(content []byte, pos int) bool {
	return pos == len(content) || utf8.RuneStart(content[pos])
}

func writeAtomic(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".r2-uploader-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace document: %w", err)
	}
	return nil
}

// Writer is an edit target without a document: inserted text is written
// to an io.Writer, one block per insertion.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter returns a Writer that prints insertions to w
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// ActiveDocument always returns nil; there is no note
func (w *Writer) ActiveDocument() *pathtemplate.Document {
	return nil
}

// ReplaceSelection writes text followed by a newline
func (w *Writer) ReplaceSelection(text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := io.WriteString(w.w, text+"\n")
	return err
}
