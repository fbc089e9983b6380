package langxml

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mod-translator/internal/textutil"
)

// Builder accumulates a language data file: comments and key/value
// elements in the order they are added.
type Builder struct {
	b strings.Builder
}

// NewBuilder starts a language data document.
func NewBuilder() *Builder {
	w := &Builder{}
	w.b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	w.b.WriteString("<" + ContainerTag + ">\n")
	return w
}

// Comment emits an XML comment line.
func (w *Builder) Comment(text string) {
	fmt.Fprintf(&w.b, "  <!-- %s -->\n", textutil.SanitizeComment(text))
}

// Element emits one key/value element. The tag is sanitized into a
// legal XML name; the value is XML-escaped.
func (w *Builder) Element(tag, text string) {
	name := SanitizeTag(tag)
	fmt.Fprintf(&w.b, "  <%s>%s</%s>\n", name, Escape(text), name)
}

// Bytes closes the container and returns the document.
func (w *Builder) Bytes() []byte {
	return []byte(w.b.String() + "</" + ContainerTag + ">\n")
}

// WriteFile saves the document, creating parent directories as needed.
func (w *Builder) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, w.Bytes(), 0644); err != nil {
		return fmt.Errorf("write language data: %w", err)
	}
	return nil
}
