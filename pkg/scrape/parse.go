package scrape

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

type entry struct {
	code string
	name string
}

// parseList extracts the entries of a list page. An entry is an <li> whose
// first link points at /ref/{domain}/{code}/ and is followed by ": name".
func parseList(r io.Reader, domain string) ([]entry, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	prefix := "/ref/" + domain + "/"

	var entries []entry
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "li" {
			if e, ok := parseItem(n, prefix); ok {
				entries = append(entries, e)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return entries, nil
}

func parseItem(li *html.Node, prefix string) (entry, bool) {
	var link *html.Node
	for child := li.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.Data == "a" {
			link = child
			break
		}
	}
	if link == nil {
		return entry{}, false
	}

	u, err := url.Parse(getAttr(link, "href"))
	if err != nil || !strings.HasPrefix(u.Path, prefix) || !strings.HasSuffix(u.Path, "/") {
		return entry{}, false
	}
	code := strings.TrimSuffix(strings.TrimPrefix(u.Path, prefix), "/")
	if code == "" || strings.Contains(code, "/") {
		return entry{}, false
	}

	var sb strings.Builder
	for n := link.NextSibling; n != nil; n = n.NextSibling {
		sb.WriteString(textContent(n))
	}
	rest := strings.TrimSpace(sb.String())
	if !strings.HasPrefix(rest, ":") {
		return entry{}, false
	}
	return entry{code: code, name: strings.TrimSpace(rest[1:])}, true
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		sb.WriteString(textContent(child))
	}
	return sb.String()
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
