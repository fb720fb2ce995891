package doctree

import "strings"

// DocTree is the root of a parsed document.
type DocTree struct {
	Title    string     // Document title (from metadata or filename)
	Children []*DocNode // Top-level sections
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Title    string     // Section heading (empty for leaf text)
	Level    int        // Source heading level (0 to derive from depth)
	Text     string     // Text content of this node (may be empty for container nodes)
	Page     int        // Source page/line (0 if N/A)
	Children []*DocNode // Subsections
}

// Markdown renders the tree as markdown. Section titles keep their source
// heading level when known and otherwise take it from depth, capped at h6.
// The document title is not emitted.
func (t *DocTree) Markdown() string {
	if t == nil {
		return ""
	}
	var sb strings.Builder
	for _, n := range t.Children {
		writeNode(&sb, n, 1)
	}
	return strings.TrimSpace(sb.String())
}

func writeNode(sb *strings.Builder, n *DocNode, depth int) {
	if n == nil {
		return
	}
	if n.Level > 0 {
		depth = n.Level
	}
	if title := strings.TrimSpace(n.Title); title != "" {
		sb.WriteString(strings.Repeat("#", min(depth, 6)))
		sb.WriteString(" ")
		sb.WriteString(title)
		sb.WriteString("\n\n")
	}
	if text := strings.TrimSpace(n.Text); text != "" {
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}
	for _, c := range n.Children {
		writeNode(sb, c, depth+1)
	}
}
