// Package article turns Instapaper's processed article HTML into plain text.
// file: internal/article/text.go
package article

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
)

// skipped elements contribute no text.
var skipped = map[string]bool{
	"head": true, "script": true, "style": true, "noscript": true,
	"template": true, "iframe": true, "svg": true, "#comment": true,
}

// block elements end with a paragraph break.
var block = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "header": true, "footer": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true, "blockquote": true, "pre": true,
	"table": true, "tr": true, "figure": true, "figcaption": true, "hr": true,
}

// PlainText extracts readable text from html. Paragraphs are separated by a
// blank line and runs of whitespace inside a line collapse to one space.
func PlainText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", errors.Wrap(err, "parse article html")
	}

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	var b strings.Builder
	render(root, &b)
	return tidy(b.String()), nil
}

// Title returns the document title, if any.
func Title(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func render(sel *goquery.Selection, b *strings.Builder) {
	sel.Contents().Each(func(_ int, node *goquery.Selection) {
		name := goquery.NodeName(node)
		switch {
		case name == "#text":
			b.WriteString(node.Text())
		case skipped[name]:
		case name == "br":
			b.WriteString("\n")
		default:
			if name == "li" {
				b.WriteString("\n- ")
			}
			render(node, b)
			if block[name] {
				b.WriteString("\n\n")
			}
		}
	})
}

// tidy collapses whitespace within lines and keeps at most one blank line
// between paragraphs.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
