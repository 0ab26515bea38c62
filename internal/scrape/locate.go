package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// maxCommentDepth bounds how many levels of comments inside re-parsed
// comments are searched.
const maxCommentDepth = 4

// Located is a table found by the locator.
type Located struct {
	Table *goquery.Selection
	ID    string
	// Label is the caption minus the TableSpec's caption suffix, or the id
	// when the table has no caption.
	Label     string
	InComment bool
}

// Locate returns the first table matching m. The live tree is searched before
// any HTML comment; each comment is parsed as its own document and searched
// the same way. Absence is reported with false, never an error.
func Locate(doc *goquery.Document, m Matcher) (*goquery.Selection, bool) {
	var out []Located
	collect(doc.Selection, m, "", 0, false, map[string]bool{}, &out, true)
	if len(out) == 0 {
		return nil, false
	}
	return out[0].Table, true
}

// LocateAll returns every table matching spec.Match in document order: the
// live matches first, then comment matches whose id was not already found.
func LocateAll(doc *goquery.Document, spec *TableSpec) []Located {
	var out []Located
	collect(doc.Selection, spec.Match, spec.CaptionSuffix, 0, false, map[string]bool{}, &out, false)
	return out
}

func collect(root *goquery.Selection, m Matcher, suffix string, depth int, inComment bool, seen map[string]bool, out *[]Located, first bool) {
	root.Find("table[id]").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		id := t.AttrOr("id", "")
		if !m.Matches(id) || seen[id] {
			return true
		}
		seen[id] = true
		*out = append(*out, Located{
			Table:     t,
			ID:        id,
			Label:     tableLabel(t, id, suffix),
			InComment: inComment,
		})
		return !first
	})
	if first && len(*out) > 0 {
		return
	}
	if depth >= maxCommentDepth {
		return
	}

	for _, fragment := range comments(root.Nodes) {
		if !strings.Contains(fragment, "<table") {
			continue
		}
		sub, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
		if err != nil {
			continue
		}
		collect(sub.Selection, m, suffix, depth+1, true, seen, out, first)
		if first && len(*out) > 0 {
			return
		}
	}
}

// comments returns the text of every comment node below nodes, in document order.
func comments(nodes []*html.Node) []string {
	var out []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.CommentNode {
			out = append(out, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return out
}

func tableLabel(t *goquery.Selection, id, suffix string) string {
	caption := strings.TrimSpace(t.ChildrenFiltered("caption").First().Text())
	if caption == "" {
		return id
	}
	if suffix != "" {
		caption = strings.TrimSpace(strings.TrimSuffix(caption, strings.TrimSpace(suffix)))
	}
	if caption == "" {
		return id
	}
	return caption
}
