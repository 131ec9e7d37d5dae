package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Elements that flow inline; everything else, custom elements included,
// starts a new line.
var inlineTags = map[atom.Atom]bool{
	atom.A: true, atom.Abbr: true, atom.B: true, atom.Bdi: true, atom.Bdo: true,
	atom.Cite: true, atom.Code: true, atom.Data: true, atom.Em: true, atom.I: true,
	atom.Img: true, atom.Kbd: true, atom.Label: true, atom.Mark: true, atom.Q: true,
	atom.S: true, atom.Samp: true, atom.Small: true, atom.Span: true, atom.Strong: true,
	atom.Sub: true, atom.Sup: true, atom.Time: true, atom.U: true, atom.Var: true,
	atom.Button: true, atom.Input: true,
}

var skippedTags = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Template: true, atom.Noscript: true,
}

func innerText(root *html.Node) string {
	if root == nil {
		return ""
	}
	w := &textWriter{}
	if preformatted(root) {
		w.pre++
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
	w.flush()
	return strings.Join(w.lines, "\n")
}

type textWriter struct {
	lines []string
	cur   strings.Builder
	pre   int
}

func (w *textWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data)
		return
	case html.ElementNode:
	default:
		return
	}

	if skippedTags[n.DataAtom] || hidden(n) {
		return
	}
	if n.DataAtom == atom.Br {
		w.flush()
		return
	}

	block := !inlineTags[n.DataAtom]
	if block {
		w.flush()
	}
	pre := preformatted(n)
	if pre {
		w.pre++
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
	if pre {
		w.pre--
	}
	if block {
		w.flush()
	}
}

// text keeps source line breaks inside preformatted elements.
func (w *textWriter) text(data string) {
	if w.pre == 0 {
		w.cur.WriteString(data)
		return
	}
	for i, part := range strings.Split(data, "\n") {
		if i > 0 {
			w.flush()
		}
		w.cur.WriteString(part)
	}
}

func preformatted(n *html.Node) bool {
	if n.DataAtom == atom.Pre || n.DataAtom == atom.Textarea {
		return true
	}
	for _, a := range n.Attr {
		switch a.Key {
		case "class":
			if strings.Contains(a.Val, "whitespace-pre") {
				return true
			}
		case "style":
			style := strings.ReplaceAll(strings.ToLower(a.Val), " ", "")
			if strings.Contains(style, "white-space:pre") {
				return true
			}
		}
	}
	return false
}

func (w *textWriter) flush() {
	line := strings.Join(strings.Fields(w.cur.String()), " ")
	w.cur.Reset()
	if line != "" {
		w.lines = append(w.lines, line)
	}
}
