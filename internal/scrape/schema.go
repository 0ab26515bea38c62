package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Kind is the semantic type a cell is coerced into.
type Kind int

const (
	Text Kind = iota
	Int
	Float
	Link
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "integer"
	case Float:
		return "float"
	case Link:
		return "link"
	default:
		return "text"
	}
}

// Field declares one canonical column of a table.
type Field struct {
	Name string
	// Keys are candidate data-stat attributes; the first one present in the
	// header wins.
	Keys []string
	// Labels are header captions used when none of the keys is present.
	Labels []string
	Kind   Kind
}

// Matcher selects tables by id, either exactly or by prefix and suffix.
type Matcher struct {
	ID     string
	Prefix string
	Suffix string
}

// Exact matches a single table id.
func Exact(id string) Matcher {
	return Matcher{ID: id}
}

// Pattern matches ids such as "box-BOS-game-basic" with Pattern("box-", "-game-basic").
func Pattern(prefix, suffix string) Matcher {
	return Matcher{Prefix: prefix, Suffix: suffix}
}

// Matches reports whether id is selected.
func (m Matcher) Matches(id string) bool {
	if id == "" {
		return false
	}
	if m.ID != "" {
		return id == m.ID
	}
	return len(id) > len(m.Prefix)+len(m.Suffix) &&
		strings.HasPrefix(id, m.Prefix) && strings.HasSuffix(id, m.Suffix)
}

func (m Matcher) String() string {
	if m.ID != "" {
		return m.ID
	}
	return m.Prefix + "*" + m.Suffix
}

// TableSpec is the declared schema of one kind of table.
type TableSpec struct {
	Name  string
	Match Matcher
	// Identity is the field that must be non-empty and not a totals row.
	Identity string
	// CaptionSuffix is stripped from the caption to label a located table.
	CaptionSuffix string
	// StarterClass is the row class token that marks a starter.
	StarterClass string
	Fields       []Field
}

// FieldIndex returns the position of a named field, or -1.
func (s *TableSpec) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Binding resolves every field of a TableSpec to a cell of one concrete table.
type Binding struct {
	Spec *TableSpec
	// Keys holds the data-stat attribute per field, "" when unresolved.
	Keys []string
	// Columns holds a positional fallback per field, -1 when unused.
	Columns []int
	// Missing lists fields that resolved to nothing and will be zero-filled.
	Missing []string
}

type headerCell struct {
	key   string
	label string
	aria  string
}

// Bind validates spec against the header row of table. Fields are resolved by
// data-stat key first, then by header label. Unresolvable fields are reported
// in Missing and read as absent. A table without a header binds every field to
// its first key.
func Bind(spec *TableSpec, table *goquery.Selection) *Binding {
	b := &Binding{
		Spec:    spec,
		Keys:    make([]string, len(spec.Fields)),
		Columns: make([]int, len(spec.Fields)),
	}
	for i := range b.Columns {
		b.Columns[i] = -1
	}

	header := readHeader(table)
	if len(header) == 0 {
		for i, f := range spec.Fields {
			if len(f.Keys) > 0 {
				b.Keys[i] = f.Keys[0]
			} else {
				b.Missing = append(b.Missing, f.Name)
			}
		}
		return b
	}

	keys := make(map[string]bool, len(header))
	for _, h := range header {
		if h.key != "" {
			keys[h.key] = true
		}
	}

	for i, f := range spec.Fields {
		if key, ok := firstKey(f.Keys, keys); ok {
			b.Keys[i] = key
			continue
		}
		if col, ok := labelColumn(f.Labels, header); ok {
			if header[col].key != "" {
				b.Keys[i] = header[col].key
			} else {
				b.Columns[i] = col
			}
			continue
		}
		b.Missing = append(b.Missing, f.Name)
	}
	return b
}

func firstKey(candidates []string, present map[string]bool) (string, bool) {
	for _, k := range candidates {
		if present[k] {
			return k, true
		}
	}
	return "", false
}

func labelColumn(labels []string, header []headerCell) (int, bool) {
	for _, want := range labels {
		want = strings.ToLower(strings.TrimSpace(want))
		for i, h := range header {
			if h.label == want || (h.aria != "" && h.aria == want) {
				return i, true
			}
		}
	}
	return -1, false
}

// readHeader returns the cells of the last header row. Box-score tables carry
// an over-header row above the real one.
func readHeader(table *goquery.Selection) []headerCell {
	row := table.Find("thead tr").Last()
	if row.Length() == 0 {
		return nil
	}

	var cells []headerCell
	row.Children().Filter("th,td").Each(func(_ int, c *goquery.Selection) {
		cells = append(cells, headerCell{
			key:   strings.TrimSpace(c.AttrOr("data-stat", "")),
			label: strings.ToLower(strings.TrimSpace(c.Text())),
			aria:  strings.ToLower(strings.TrimSpace(c.AttrOr("aria-label", ""))),
		})
	})
	return cells
}
