// Package langxml reads and writes the XML tree formats the tool works
// with: raw definition files (arbitrarily nested nodes) and language
// data files (one flat container whose children are translation keys,
// each preceded by an EN: source comment).
package langxml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// ContainerTag is the root element of a language data file.
const ContainerTag = "LanguageData"

// Comment marker prefixes used inside language data files.
const (
	SourceMarker  = "EN:"
	HistoryMarker = "HISTORY:"
)

// Node is one element of a parsed definition file.
type Node struct {
	Tag      string
	Attrs    map[string]string
	Text     string
	Children []*Node
}

// Attr returns the named attribute, or "" when absent.
func (n *Node) Attr(name string) string {
	if n.Attrs == nil {
		return ""
	}
	return n.Attrs[name]
}

// Child returns the first direct child with the given tag, or nil.
func (n *Node) Child(tag string) *Node {
	for _, c := range n.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// ParseFile reads and parses a definition file into a node tree.
func ParseFile(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read xml file: %w", err)
	}
	return Parse(data)
}

// Parse parses a definition document and returns its root node.
func Parse(data []byte) (*Node, error) {
	dec := xml.NewDecoder(strings.NewReader(string(data)))
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			return parseNode(dec, start)
		}
	}
}

func parseNode(dec *xml.Decoder, start xml.StartElement) (*Node, error) {
	n := &Node{Tag: start.Name.Local}
	if len(start.Attr) > 0 {
		n.Attrs = make(map[string]string, len(start.Attr))
		for _, a := range start.Attr {
			n.Attrs[a.Name.Local] = a.Value
		}
	}

	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse element %s: %w", n.Tag, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := parseNode(dec, t)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			// Leaf text only; mixed content keeps the element text empty
			// the same way the extraction cares about it.
			if len(n.Children) == 0 {
				n.Text = strings.TrimSpace(text.String())
			}
			return n, nil
		}
	}
}

// EntryKind identifies the type of a language data entry.
type EntryKind int

const (
	// KindElement is a key/value translation element.
	KindElement EntryKind = iota
	// KindComment is an XML comment between elements.
	KindComment
)

// Entry is one item of a language data file, in document order.
type Entry struct {
	Kind    EntryKind
	Tag     string
	Text    string
	Comment string
}

// ParseLanguageData parses a language data file, preserving comments in
// document order so callers can recover EN: source markers.
func ParseLanguageData(data []byte) ([]Entry, error) {
	dec := xml.NewDecoder(strings.NewReader(string(data)))
	var entries []Entry
	depth := 0

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse language data: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				if t.Name.Local != ContainerTag {
					return nil, fmt.Errorf("unexpected root element %q, want %s", t.Name.Local, ContainerTag)
				}
				depth++
				continue
			}
			// Direct child of the container: one record. Nested children
			// are not part of the flat format; collect their text verbatim.
			var text strings.Builder
			if err := collectText(dec, &text); err != nil {
				return nil, err
			}
			entries = append(entries, Entry{
				Kind: KindElement,
				Tag:  t.Name.Local,
				Text: strings.TrimSpace(text.String()),
			})
		case xml.Comment:
			if depth > 0 {
				entries = append(entries, Entry{
					Kind:    KindComment,
					Comment: strings.TrimSpace(string(t)),
				})
			}
		case xml.EndElement:
			if t.Name.Local == ContainerTag {
				depth--
			}
		}
	}

	return entries, nil
}

func collectText(dec *xml.Decoder, text *strings.Builder) error {
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("parse element text: %w", err)
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			text.Write(tok.(xml.CharData))
		}
	}
	return nil
}

var (
	tagBadChar  = regexp.MustCompile(`[^A-Za-z0-9_.]`)
	tagLeadChar = regexp.MustCompile(`^[A-Za-z_]`)
)

// SanitizeTag turns a record key into a legal XML element name: any
// character outside letters, digits, underscore and dot becomes a dot,
// and a leading underscore is inserted when the name would not start
// with a letter or underscore.
func SanitizeTag(key string) string {
	tag := tagBadChar.ReplaceAllString(key, ".")
	if !tagLeadChar.MatchString(tag) {
		tag = "_" + tag
	}
	return tag
}

// Escape applies XML character escaping to element text.
func Escape(s string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return s
	}
	return b.String()
}
