package site

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DescriptionLimit is the maximum rune length of a generated description.
const DescriptionLimit = 160

// Excerpt returns the text of the first non-empty paragraph of fragment,
// whitespace collapsed and cut to limit runes.
func Excerpt(fragment string, limit int) string {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return ""
	}
	for _, n := range nodes {
		if text := firstParagraph(n); text != "" {
			return truncate(text, limit)
		}
	}
	return ""
}

func firstParagraph(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.P {
		var b strings.Builder
		collectText(n, &b)
		return strings.Join(strings.Fields(b.String()), " ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if text := firstParagraph(c); text != "" {
			return text
		}
	}
	return ""
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

func truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	cut := strings.TrimSpace(string(runes[:limit-1]))
	return cut + "…"
}
