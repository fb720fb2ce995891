package parser

import "strings"

// markdownTable renders rows as a pipe table. The first row is the header;
// short rows are padded so every row has the header's width.
func markdownTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	if width == 0 {
		return ""
	}

	var sb strings.Builder
	writeRow := func(r []string) {
		sb.WriteString("|")
		for i := range width {
			cell := ""
			if i < len(r) {
				cell = escapeCell(r[i])
			}
			sb.WriteString(" ")
			sb.WriteString(cell)
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}

	writeRow(rows[0])
	sb.WriteString("|")
	sb.WriteString(strings.Repeat(" --- |", width))
	sb.WriteString("\n")
	for _, r := range rows[1:] {
		writeRow(r)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}
