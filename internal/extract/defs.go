package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"mod-translator/internal/filter"
	"mod-translator/internal/langxml"
	"mod-translator/internal/record"

	"github.com/rs/zerolog/log"
)

// Marker fields of a definition tree. A node with a defName child is a
// definable unit; Name/ParentName attributes link template inheritance.
const (
	identityField   = "defName"
	listItemTag     = "li"
	templateAttr    = "Name"
	parentAttr      = "ParentName"
	inheritedField  = "stages"
)

// DefsScanner walks raw definition files and extracts every translatable
// field of every unit, building stable dotted keys.
type DefsScanner struct {
	filter  *filter.Filter
	workers int
}

// NewDefsScanner creates a defs scanner using the given content filter.
func NewDefsScanner(f *filter.Filter, workers int) *DefsScanner {
	return &DefsScanner{filter: f, workers: workers}
}

// defUnit is one definable unit found during the scan.
type defUnit struct {
	node    *langxml.Node
	relPath string
}

// Scan extracts records from every definition file under <modDir>/Defs.
// A missing directory yields an empty record set.
func (s *DefsScanner) Scan(ctx context.Context, modDir string) []record.Record {
	defsDir := filepath.Join(modDir, DefsDir)
	files, ok := listXMLFiles(defsDir)
	if !ok {
		return nil
	}

	parsed := parseAll(ctx, defsDir, files, s.workers, langxml.ParseFile)

	// First pass: collect units and index named templates, so inheritance
	// can resolve across files.
	var units []defUnit
	templates := make(map[string]*langxml.Node)
	for _, pf := range parsed {
		collectUnits(pf.doc, pf.relPath, &units, templates)
	}

	var records []record.Record
	for _, u := range units {
		records = append(records, s.extractUnit(u, templates)...)
	}

	log.Info().Int("units", len(units)).Int("records", len(records)).Str("dir", defsDir).Msg("Defs scan complete")
	return records
}

// collectUnits walks a document collecting every node that carries the
// identity field, and every node carrying a template name attribute.
func collectUnits(n *langxml.Node, relPath string, units *[]defUnit, templates map[string]*langxml.Node) {
	if id := n.Child(identityField); id != nil && id.Text != "" {
		*units = append(*units, defUnit{node: n, relPath: relPath})
	}
	if name := n.Attr(templateAttr); name != "" {
		templates[name] = n
	}
	for _, c := range n.Children {
		collectUnits(c, relPath, units, templates)
	}
}

// extractUnit emits the unit's own records plus any inherited from its
// parent template.
func (s *DefsScanner) extractUnit(u defUnit, templates map[string]*langxml.Node) []record.Record {
	defType := u.node.Tag
	defName := u.node.Child(identityField).Text

	var records []record.Record
	emit := func(fieldPath, text, tag string) {
		records = append(records, record.Record{
			Key:        fmt.Sprintf("%s/%s.%s", defType, defName, fieldPath),
			Text:       text,
			Tag:        tag,
			SourcePath: u.relPath,
			SourceText: text,
			UnitType:   defType,
		})
	}

	// Each unit's walk owns its own index counters.
	for _, c := range u.node.Children {
		s.walkField(c, walkState{parentTag: defType, counters: map[string]int{}}, emit)
	}

	// Single-level inheritance: a unit referencing a parent template and
	// carrying no own value for the inherited field adopts the parent's
	// records under its own key prefix, with independent list numbering.
	if parentName := u.node.Attr(parentAttr); parentName != "" && u.node.Child(inheritedField) == nil {
		if parent, ok := templates[parentName]; ok {
			if inherited := parent.Child(inheritedField); inherited != nil {
				s.walkField(inherited, walkState{parentTag: defType, counters: map[string]int{}}, emit)
			}
		} else {
			log.Debug().Str("def", defName).Str("parent", parentName).Msg("Parent template not found")
		}
	}

	return records
}

// walkState is the immutable walk context: the dotted path so far, the
// tag of the node above, and the list-index counters keyed by path.
type walkState struct {
	path      string
	parentTag string
	counters  map[string]int
}

func copyCounters(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// walkField does the depth-first field walk. List items take a zero-based
// positional index local to the same parent path; the counter map is
// shared among list siblings and copied for other children, so sibling
// lists under different parents each start at 0.
func (s *DefsScanner) walkField(n *langxml.Node, st walkState, emit func(path, text, tag string)) {
	if n.Tag == identityField {
		return
	}

	var path string
	switch {
	case n.Tag == listItemTag:
		counterKey := st.path + "|" + listItemTag
		idx := st.counters[counterKey]
		st.counters[counterKey] = idx + 1
		if st.path == "" {
			path = strconv.Itoa(idx)
		} else {
			path = st.path + "." + strconv.Itoa(idx)
		}
	case st.path == "":
		path = n.Tag
	default:
		path = st.path + "." + n.Tag
	}

	if n.Text != "" {
		// A list item is gated on its parent field's tag, never its own:
		// nested list items under a non-allowed parent stay out even when
		// an ancestor field would pass.
		gate := true
		if n.Tag == listItemTag {
			gate = s.filter.Allowed(st.parentTag)
		}
		if gate && s.filter.IsTranslatable(path, n.Text, filter.Tree) {
			emit(path, n.Text, n.Tag)
		}
	}

	for _, c := range n.Children {
		child := walkState{path: path, parentTag: n.Tag, counters: st.counters}
		if c.Tag != listItemTag {
			// Non-list branches get their own counter copy so aliasing
			// cannot leak indices across unrelated subtrees.
			child.counters = copyCounters(st.counters)
		}
		s.walkField(c, child, emit)
	}
}
