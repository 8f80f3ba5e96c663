package process

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// blockElements end a run of inline text. Keeping paragraph structure
// makes the aggregated artifact readable instead of one long line.
var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "ul": true, "ol": true, "dl": true, "dt": true, "dd": true,
	"pre": true, "blockquote": true, "table": true, "tr": true,
	"header": true, "footer": true, "nav": true, "main": true, "br": true,
}

var skipElements = map[string]bool{
	"head": true, "script": true, "style": true, "noscript": true, "iframe": true, "svg": true,
}

// ExtractText returns the visible text of an HTML document. Inline
// whitespace is collapsed; block-level elements become paragraph
// breaks. Script, style and other non-content subtrees are skipped.
func ExtractText(body io.Reader) (string, error) {
	doc, err := html.Parse(body)
	if err != nil {
		return "", err
	}

	var blocks []string
	var cur strings.Builder
	flush := func() {
		if line := strings.Join(strings.Fields(cur.String()), " "); line != "" {
			blocks = append(blocks, line)
		}
		cur.Reset()
	}

	walkText(doc, &cur, flush)
	flush()

	return strings.Join(blocks, "\n\n"), nil
}

func walkText(n *html.Node, cur *strings.Builder, flush func()) {
	if n.Type == html.ElementNode && skipElements[n.Data] {
		return
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		flush()
	}

	if n.Type == html.TextNode {
		cur.WriteString(n.Data)
		cur.WriteString(" ")
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, cur, flush)
	}

	if block {
		flush()
	}
}
