package htmlutil

import (
	"bytes"
	"strings"
	"unicode"

	"eduparser/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText returns the text of the first node of the selection with
// non-printable characters removed and whitespace collapsed.
func CleanText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return textutil.CollapseSpace(removeNonPrintable(GetText(sel.Get(0))))
}

// HasClass reports whether the node's class attribute lists class as one of
// its whitespace separated tokens (exact, case sensitive like CSS).
func HasClass(node *html.Node, class string) bool {
	for _, a := range node.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

// ClassContains reports whether the node's class attribute contains keyword
// as a case-insensitive substring.
func ClassContains(node *html.Node, keyword string) bool {
	keyword = strings.ToLower(keyword)
	for _, a := range node.Attr {
		if a.Key == "class" && strings.Contains(strings.ToLower(a.Val), keyword) {
			return true
		}
	}
	return false
}

// WithClass filters the selection to nodes carrying class, in document order.
func WithClass(sel *goquery.Selection, class string) *goquery.Selection {
	return sel.FilterFunction(func(_ int, s *goquery.Selection) bool {
		return HasClass(s.Get(0), class)
	})
}
