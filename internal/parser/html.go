package parser

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dgallion1/smartextract/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. Headings build the tree; paragraphs, list
// items, preformatted blocks and tables become markdown text.
type HTMLParser struct{}

func (p *HTMLParser) Parse(ctx context.Context, path string) (*doctree.DocTree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	tree := &doctree.DocTree{Title: baseTitle(path)}
	if title := findElement(doc, "title"); title != nil {
		if t := textContent(title); t != "" {
			tree.Title = t
		}
	}

	type stackEntry struct {
		node  *doctree.DocNode
		level int
	}
	root := &doctree.DocNode{}
	stack := []stackEntry{{node: root, level: 0}}
	var blocks []string

	flush := func() {
		if len(blocks) == 0 {
			return
		}
		top := stack[len(stack)-1].node
		t := strings.Join(blocks, "\n\n")
		if top.Text != "" {
			top.Text += "\n\n" + t
		} else {
			top.Text = t
		}
		blocks = blocks[:0]
	}
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			blocks = append(blocks, s)
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				flush()
				newNode := &doctree.DocNode{Title: textContent(n)}
				for len(stack) > 1 && stack[len(stack)-1].level >= level {
					stack = stack[:len(stack)-1]
				}
				parent := stack[len(stack)-1].node
				parent.Children = append(parent.Children, newNode)
				stack = append(stack, stackEntry{node: newNode, level: level})
				return
			}

			switch n.Data {
			case "script", "style", "nav", "footer", "noscript", "template":
				return
			case "p", "blockquote", "dt", "dd", "figcaption":
				add(textContent(n))
				return
			case "li":
				add("- " + textContent(n))
				return
			case "pre":
				add("```\n" + strings.Trim(rawText(n), "\n") + "\n```")
				return
			case "table":
				add(markdownTable(tableRows(n)))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findElement(doc, "body"); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	flush()

	tree.Children = root.Children
	if root.Text != "" {
		tree.Children = append([]*doctree.DocNode{{Text: root.Text}}, tree.Children...)
	}

	return tree, ctx.Err()
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

// textContent collapses whitespace runs the way a browser would.
func textContent(n *html.Node) string {
	return strings.Join(strings.Fields(rawText(n)), " ")
}

func rawText(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}

func tableRows(table *html.Node) [][]string {
	var rows [][]string
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var row []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					row = append(row, textContent(c))
				}
			}
			if len(row) > 0 {
				rows = append(rows, row)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(table)
	return rows
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
