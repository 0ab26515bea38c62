package scrape

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// ParseInt coerces a cell to an integer. An absent or empty cell is 0; any
// other text that is not an integer is ErrMalformedCell.
func ParseInt(c Cell) (int, error) {
	s := strings.TrimSpace(c.Text)
	if !c.Present || s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrMalformedCell
	}
	return n, nil
}

// ParseFloat coerces a cell to a float with the same policy as ParseInt.
// Percentages are written as fractions (".455") on the source pages.
func ParseFloat(c Cell) (float64, error) {
	s := strings.TrimSpace(c.Text)
	if !c.Present || s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrMalformedCell
	}
	return f, nil
}

// ParseText passes text through. Absent cells return ok=false so callers can
// keep null distinct from the empty string.
func ParseText(c Cell) (string, bool) {
	if !c.Present {
		return "", false
	}
	return c.Text, true
}

// ParseLink returns the cell's first anchor resolved against base. A cell
// without an anchor reads as absent.
func ParseLink(c Cell, base *url.URL) (string, bool) {
	if !c.Present || c.Href == "" {
		return "", false
	}
	ref, err := url.Parse(c.Href)
	if err != nil {
		return "", false
	}
	if base == nil {
		return ref.String(), true
	}
	return base.ResolveReference(ref).String(), true
}

// FormatInt is the text form ParseInt accepts back unchanged.
func FormatInt(n int) string {
	return strconv.Itoa(n)
}

// FormatFloat is the text form ParseFloat accepts back unchanged.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Record is a decoded row: typed values keyed by field name.
type Record struct {
	Starter bool
	ints    map[string]int
	floats  map[string]float64
	texts   map[string]*string
}

// Int returns an integer field, 0 when the field is not an integer field.
func (r Record) Int(name string) int {
	return r.ints[name]
}

// Float returns a float field.
func (r Record) Float(name string) float64 {
	return r.floats[name]
}

// Text returns a text or link field and whether it was present.
func (r Record) Text(name string) (string, bool) {
	if p := r.texts[name]; p != nil {
		return *p, true
	}
	return "", false
}

// Decode coerces every field of the row. base resolves relative links. The
// first malformed cell aborts the row with a *CoercionError.
func (r Row) Decode(base *url.URL) (Record, error) {
	rec := Record{
		Starter: r.Starter,
		ints:    make(map[string]int),
		floats:  make(map[string]float64),
		texts:   make(map[string]*string),
	}

	for i, f := range r.spec.Fields {
		c := r.Cells[i]
		switch f.Kind {
		case Int:
			n, err := ParseInt(c)
			if err != nil {
				return Record{}, &CoercionError{Field: f.Name, Kind: f.Kind, Raw: c.Text}
			}
			rec.ints[f.Name] = n
		case Float:
			v, err := ParseFloat(c)
			if err != nil {
				return Record{}, &CoercionError{Field: f.Name, Kind: f.Kind, Raw: c.Text}
			}
			rec.floats[f.Name] = v
		case Link:
			if s, ok := ParseLink(c, base); ok {
				rec.texts[f.Name] = &s
			}
		default:
			if s, ok := ParseText(c); ok {
				rec.texts[f.Name] = &s
			}
		}
	}
	return rec, nil
}
