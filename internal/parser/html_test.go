package parser

import (
	"context"
	"strings"
	"testing"
)

func TestHTMLParser_StructureAndBlocks(t *testing.T) {
	input := `<html><head><title>Quarterly</title><style>p{}</style></head><body>
<p>Intro   text.</p>
<h1>Summary</h1>
<p>Sales rose.</p>
<ul><li>North</li><li>South</li></ul>
<h2>Table</h2>
<table><tr><th>Region</th><th>Total</th></tr><tr><td>North</td><td>5</td></tr></table>
<script>ignored()</script>
</body></html>`

	p := &HTMLParser{}
	tree, err := p.Parse(context.Background(), writeFile(t, "q.html", input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "Quarterly" {
		t.Errorf("expected title from <title>, got %q", tree.Title)
	}
	if len(tree.Children) != 2 {
		t.Fatalf("expected preamble + h1, got %d children", len(tree.Children))
	}
	if tree.Children[0].Text != "Intro text." {
		t.Errorf("expected collapsed preamble, got %q", tree.Children[0].Text)
	}

	summary := tree.Children[1]
	if summary.Title != "Summary" {
		t.Errorf("expected %q, got %q", "Summary", summary.Title)
	}
	if !strings.Contains(summary.Text, "- North\n\n- South") {
		t.Errorf("expected list items, got %q", summary.Text)
	}
	if len(summary.Children) != 1 {
		t.Fatalf("expected 1 h2 child, got %d", len(summary.Children))
	}
	if !strings.Contains(summary.Children[0].Text, "| Region | Total |") {
		t.Errorf("expected markdown table, got %q", summary.Children[0].Text)
	}
	if strings.Contains(tree.Markdown(), "ignored") {
		t.Error("script content leaked into output")
	}
}

func TestHeadingLevel(t *testing.T) {
	tests := map[string]int{"h1": 1, "h6": 6, "h7": 0, "p": 0, "header": 0}
	for tag, want := range tests {
		if got := headingLevel(tag); got != want {
			t.Errorf("headingLevel(%q): expected %d, got %d", tag, want, got)
		}
	}
}
