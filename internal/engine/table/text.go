package table

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// blockElements start a new line in rendered text
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"div": true, "dl": true, "dt": true, "dd": true, "fieldset": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "header": true,
	"li": true, "nav": true, "ol": true, "p": true, "pre": true,
	"section": true, "table": true, "tr": true, "ul": true,
}

var sourceBreaks = strings.NewReplacer("\r", " ", "\n", " ")

// CellText approximates the rendered text of a cell: block elements and
// <br> break lines, whitespace within a line collapses, and the result is
// trimmed. Script and style content is ignored.
func CellText(sel *goquery.Selection) string {
	var sb strings.Builder
	for _, n := range sel.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeText(&sb, c)
		}
	}

	var lines []string
	for _, line := range strings.Split(sb.String(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func writeText(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		// Source line breaks are plain whitespace once rendered
		sb.WriteString(sourceBreaks.Replace(n.Data))
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "template":
			return
		case "br":
			sb.WriteByte('\n')
			return
		}
	default:
		return
	}

	block := blockElements[n.Data]
	if block {
		sb.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(sb, c)
	}
	if block {
		sb.WriteByte('\n')
	}
}
