package pathtemplate

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Template variable names
const (
	VarYear          = "year"
	VarMonth         = "month"
	VarDay           = "day"
	VarUUID          = "uuid"
	VarFilename      = "filename"
	VarFilenameExt   = "filenameExt"
	VarExt           = "ext"
	VarMdFilename    = "mdFilename"
	VarMdFilenameExt = "mdFilenameExt"
	VarMdParentPath  = "mdParentPath"
)

// Variables lists every identifier recognized in a path template
var Variables = []string{
	VarYear, VarMonth, VarDay, VarUUID,
	VarFilename, VarFilenameExt, VarExt,
	VarMdFilename, VarMdFilenameExt, VarMdParentPath,
}

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// Document describes the note the link is inserted into
type Document struct {
	Basename   string // name without extension, e.g. "Daily"
	Name       string // full name, e.g. "Daily.md"
	ParentPath string // folder relative to the vault root, e.g. "Notes/2024"
}

// Context maps template variable names to their values for one file.
// Build it with NewContext; it is not modified afterwards.
type Context map[string]string

// NewContext builds the template context for an uploaded file named
// fileName. doc may be nil when no document is active.
func NewContext(now time.Time, id, fileName string, doc *Document) Context {
	base, ext := SplitName(fileName)

	ctx := Context{
		VarYear:          fmt.Sprintf("%04d", now.Year()),
		VarMonth:         fmt.Sprintf("%02d", int(now.Month())),
		VarDay:           fmt.Sprintf("%02d", now.Day()),
		VarUUID:          id,
		VarFilename:      SafeSegment(base),
		VarFilenameExt:   SafeSegment(fileName),
		VarExt:           SafeSegment(ext),
		VarMdFilename:    "",
		VarMdFilenameExt: "",
		VarMdParentPath:  "",
	}

	if doc != nil {
		ctx[VarMdFilename] = SafeSegment(doc.Basename)
		ctx[VarMdFilenameExt] = SafeSegment(doc.Name)
		ctx[VarMdParentPath] = SafePath(doc.ParentPath)
	}

	return ctx
}

// SplitName splits a file name on its last dot. "My Photo.PNG" gives
// ("My Photo", "PNG"); a name without a dot has no extension and a
// trailing dot is kept in the base ("archive." gives ("archive.", "")).
func SplitName(name string) (base, ext string) {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return name, ""
	}
	ext = name[idx+1:]
	if ext == "" {
		return name, ""
	}
	return name[:idx], ext
}

// Render substitutes every {identifier} in tmpl with its context value
// (unknown identifiers become empty) and strips leading and trailing
// slashes. The result is the object key.
func Render(tmpl string, ctx Context) string {
	out := placeholderRe.ReplaceAllStringFunc(tmpl, func(m string) string {
		return ctx[m[1:len(m)-1]]
	})

	return strings.Trim(out, "/")
}

// Placeholders returns the identifiers referenced by tmpl in order of
// appearance, and the subset that is not a recognized variable.
func Placeholders(tmpl string) (all, unknown []string) {
	known := make(map[string]bool, len(Variables))
	for _, v := range Variables {
		known[v] = true
	}

	for _, m := range placeholderRe.FindAllStringSubmatch(tmpl, -1) {
		all = append(all, m[1])
		if !known[m[1]] {
			unknown = append(unknown, m[1])
		}
	}
	return all, unknown
}
