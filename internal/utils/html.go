package utils

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// FirstElementText returns the text content of the first element named tag
// in document order, and whether one was found.
func FirstElementText(r io.Reader, tag string) (string, bool, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", false, err
	}
	n := findFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	})
	if n == nil {
		return "", false, nil
	}
	return NodeText(n), true, nil
}

// ElementTextByID returns the text content of the element with the given id.
func ElementTextByID(r io.Reader, id string) (string, bool, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", false, err
	}
	n := findFirst(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return true
			}
		}
		return false
	})
	if n == nil {
		return "", false, nil
	}
	return NodeText(n), true, nil
}

// NodeText concatenates the text nodes under n with surrounding space trimmed.
func NodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}
