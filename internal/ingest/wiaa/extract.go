package wiaa

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// blockTags end a line of bracket text when the page is flattened.
// Bracket pages render each team, score, and header as its own cell or
// div, so block boundaries are the line boundaries the parser expects.
var blockTags = map[string]bool{
	"article": true, "aside": true, "blockquote": true, "br": true,
	"div": true, "dd": true, "dl": true, "dt": true, "fieldset": true,
	"figcaption": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"td": true, "th": true, "tr": true, "ul": true,
}

var skipTags = map[string]bool{
	"head": true, "noscript": true, "script": true, "style": true, "template": true,
}

// BracketLines flattens bracket HTML into the text lines the bracket
// parser consumes. Block elements break lines, inline markup inside a
// cell stays on one line, and script/style bodies are dropped.
func BracketLines(page []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parsing bracket html: %w", err)
	}

	var sb strings.Builder
	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	for _, node := range root.Nodes {
		flatten(node, &sb)
	}

	var lines []string
	for _, raw := range strings.Split(sb.String(), "\n") {
		if line := strings.TrimSpace(raw); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func flatten(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		if skipTags[n.Data] {
			return
		}
		if blockTags[n.Data] {
			sb.WriteByte('\n')
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		flatten(c, sb)
	}
	if n.Type == html.ElementNode && blockTags[n.Data] {
		sb.WriteByte('\n')
	}
}
