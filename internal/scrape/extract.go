package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	headerRowClass = "thead"
	totalsMarker   = "Totals"
)

// Cell is the raw content of one table cell. Present is false when the row
// had no cell for the field.
type Cell struct {
	Text    string
	Href    string
	Present bool
}

// Row is one retained body row, its cells ordered like the TableSpec's fields.
type Row struct {
	spec    *TableSpec
	Cells   []Cell
	Starter bool
}

// Cell returns the cell for a field name. Unknown names read as absent.
func (r Row) Cell(name string) Cell {
	i := r.spec.FieldIndex(name)
	if i < 0 {
		return Cell{}
	}
	return r.Cells[i]
}

// Identity returns the trimmed text of the TableSpec's identity field.
func (r Row) Identity() string {
	return strings.TrimSpace(r.Cell(r.spec.Identity).Text)
}

// Extract reads the body rows of table in document order. Repeated header rows
// are skipped, as are rows whose identity cell is empty or names a totals row.
// Cells are looked up by data-stat key, so column order does not matter.
func Extract(table *goquery.Selection, b *Binding) []Row {
	spec := b.Spec
	var rows []Row

	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		classes := strings.Fields(tr.AttrOr("class", ""))
		if hasToken(classes, headerRowClass) {
			return
		}

		cells := make([]Cell, len(spec.Fields))
		var positional []*goquery.Selection
		for i := range spec.Fields {
			var sel *goquery.Selection
			switch {
			case b.Keys[i] != "":
				sel = tr.Find(`[data-stat="` + b.Keys[i] + `"]`).First()
			case b.Columns[i] >= 0:
				if positional == nil {
					tr.Children().Filter("th,td").Each(func(_ int, c *goquery.Selection) {
						positional = append(positional, c)
					})
				}
				if b.Columns[i] < len(positional) {
					sel = positional[b.Columns[i]]
				}
			}
			cells[i] = readCell(sel)
		}

		row := Row{spec: spec, Cells: cells}
		if spec.StarterClass != "" {
			row.Starter = hasToken(classes, spec.StarterClass)
		}

		id := row.Identity()
		if id == "" || strings.Contains(id, totalsMarker) {
			return
		}
		rows = append(rows, row)
	})

	return rows
}

func readCell(sel *goquery.Selection) Cell {
	if sel == nil || sel.Length() == 0 {
		return Cell{}
	}
	c := Cell{
		Text:    strings.TrimSpace(sel.Text()),
		Present: true,
	}
	if href, ok := sel.Find("a[href]").First().Attr("href"); ok {
		c.Href = strings.TrimSpace(href)
	}
	return c
}

func hasToken(tokens []string, want string) bool {
	for _, t := range tokens {
		if t == want {
			return true
		}
	}
	return false
}
