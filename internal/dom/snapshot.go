package dom

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Snapshot is a parsed, immutable copy of a page at one point in time.
type Snapshot struct {
	page  *Page
	doc   *goquery.Document
	title string
	order map[*html.Node]int
}

func (s *Snapshot) Page() *Page {
	return s.page
}

// Title returns the document title as reported by the page.
func (s *Snapshot) Title() string {
	if s.title != "" {
		return s.title
	}
	return s.doc.Find("title").First().Text()
}

// Find returns all elements matching sel in document order.
func (s *Snapshot) Find(sel string) []Element {
	var out []Element
	s.doc.Find(sel).Each(func(_ int, found *goquery.Selection) {
		out = append(out, Element{sel: found, snap: s})
	})
	return out
}

// First returns the first element matching sel.
func (s *Snapshot) First(sel string) (Element, bool) {
	found := s.doc.Find(sel)
	if found.Length() == 0 {
		return Element{}, false
	}
	return Element{sel: found.First(), snap: s}, true
}

// Last returns the last element matching sel.
func (s *Snapshot) Last(sel string) (Element, bool) {
	found := s.doc.Find(sel)
	if found.Length() == 0 {
		return Element{}, false
	}
	return Element{sel: found.Last(), snap: s}, true
}

// Require is First with an ErrNotFound error.
func (s *Snapshot) Require(sel string) (Element, error) {
	el, ok := s.First(sel)
	if !ok {
		return Element{}, fmt.Errorf("%s: %w", sel, ErrNotFound)
	}
	return el, nil
}

func (s *Snapshot) Has(sel string) bool {
	return s.doc.Find(sel).Length() > 0
}

// position is the preorder index of n, computed once per snapshot.
func (s *Snapshot) position(n *html.Node) int {
	if s.order == nil {
		s.order = make(map[*html.Node]int)
		i := 0
		var walk func(*html.Node)
		walk = func(n *html.Node) {
			s.order[n] = i
			i++
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
		}
		for _, root := range s.doc.Nodes {
			walk(root)
		}
	}
	pos, ok := s.order[n]
	if !ok {
		return -1
	}
	return pos
}
