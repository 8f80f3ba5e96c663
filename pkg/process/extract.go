package process

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/purell"
	"golang.org/x/net/html"
)

// PageLinks is what link extraction yields from one fetched page.
type PageLinks struct {
	Outlinks []string // absolute http(s) URLs, in document order
	Title    string
}

// ExtractLinks parses the page at baseURL and returns every hyperlink
// reference resolved to an absolute URL, plus the document title.
// Scope and policy filtering happen in the traversal engine; this
// function only parses and resolves.
func ExtractLinks(body io.Reader, baseURL string) (*PageLinks, error) {
	doc, err := html.Parse(body)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	if newBaseStr := findBase(doc); newBaseStr != "" {
		if newBase, err := base.Parse(newBaseStr); err == nil {
			base = newBase
		}
	}

	return &PageLinks{
		Outlinks: extractAndResolve(doc, base),
		Title:    extractTitle(doc),
	}, nil
}

// Normalize canonicalizes a URL for visited-set identity: fragments,
// default ports, duplicate slashes and dot segments all collapse so
// the same page never gets fetched under two spellings.
func Normalize(rawURL string) (string, error) {
	flags := purell.FlagLowercaseScheme |
		purell.FlagLowercaseHost |
		purell.FlagRemoveDefaultPort |
		purell.FlagRemoveFragment |
		purell.FlagDecodeUnnecessaryEscapes |
		purell.FlagSortQuery |
		purell.FlagRemoveDuplicateSlashes |
		purell.FlagRemoveDotSegments

	return purell.NormalizeURLString(rawURL, flags)
}

func findBase(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "base" {
		for _, attr := range n.Attr {
			if attr.Key == "href" {
				return attr.Val
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if res := findBase(c); res != "" {
			return res
		}
	}
	return ""
}

func extractAndResolve(n *html.Node, base *url.URL) []string {
	var links []string
	if n.Type == html.ElementNode && n.Data == "a" {
		for _, attr := range n.Attr {
			if attr.Key == "href" {
				val := strings.TrimSpace(attr.Val)
				if val == "" {
					continue
				}

				resolved := resolve(val, base)
				if resolved != "" {
					links = append(links, resolved)
				}
				break
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		links = append(links, extractAndResolve(c, base)...)
	}
	return links
}

func resolve(ref string, base *url.URL) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}

	abs := base.ResolveReference(u)

	scheme := strings.ToLower(abs.Scheme)
	if scheme != "http" && scheme != "https" {
		return ""
	}

	return abs.String()
}

func extractTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		if n.FirstChild != nil {
			return strings.TrimSpace(n.FirstChild.Data)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := extractTitle(c); t != "" {
			return t
		}
	}
	return ""
}
