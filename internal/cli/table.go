package cli

import (
	"strings"
	"unicode/utf8"
)

// Alignment controls how a cell is padded within its column.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// Table lays out rows in columns sized to their widest cell. Widths are
// measured in visible runes, so cells may carry ANSI colour swatches.
type Table struct {
	headers   []string
	rows      [][]string
	padding   int
	maxWidths map[int]int
	align     map[int]Alignment
}

// NewTable creates a table with the given headers.
func NewTable(headers []string) *Table {
	return &Table{
		headers:   headers,
		rows:      make([][]string, 0),
		padding:   2,
		maxWidths: make(map[int]int),
		align:     make(map[int]Alignment),
	}
}

// SetColumnMaxWidth wraps cells in column col at word boundaries once they
// exceed width runes.
func (t *Table) SetColumnMaxWidth(col, width int) {
	t.maxWidths[col] = width
}

// SetColumnAlign sets the alignment of column col.
func (t *Table) SetColumnAlign(col int, a Alignment) {
	t.align[col] = a
}

// AddRow appends a row, padding or truncating it to the header count.
func (t *Table) AddRow(row []string) {
	cells := make([]string, len(t.headers))
	copy(cells, row)
	t.rows = append(t.rows, cells)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render returns the formatted table: a header line, a dashed rule and one
// or more lines per row.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	wrapped := make([][][]string, len(t.rows))
	for r, row := range t.rows {
		wrapped[r] = make([][]string, len(row))
		for c, cell := range row {
			wrapped[r][c] = wrapText(cell, t.maxWidths[c])
		}
	}

	widths := make([]int, len(t.headers))
	for c, h := range t.headers {
		widths[c] = visibleWidth(h)
	}
	for _, row := range wrapped {
		for c, lines := range row {
			for _, line := range lines {
				widths[c] = max(widths[c], visibleWidth(line))
			}
		}
	}

	sep := strings.Repeat(" ", t.padding)
	var b strings.Builder

	t.writeLine(&b, sep, widths, func(c int) string { return t.headers[c] })

	rule := make([]string, len(widths))
	for c, w := range widths {
		rule[c] = strings.Repeat("-", w)
	}
	b.WriteString(strings.Join(rule, sep))
	b.WriteByte('\n')

	for _, row := range wrapped {
		height := 1
		for _, lines := range row {
			height = max(height, len(lines))
		}
		for i := range height {
			t.writeLine(&b, sep, widths, func(c int) string {
				if i < len(row[c]) {
					return row[c][i]
				}
				return ""
			})
		}
	}

	return b.String()
}

func (t *Table) writeLine(b *strings.Builder, sep string, widths []int, cell func(int) string) {
	parts := make([]string, len(widths))
	for c, w := range widths {
		if t.align[c] == AlignRight {
			parts[c] = padLeft(cell(c), w)
		} else {
			parts[c] = padRight(cell(c), w)
		}
	}
	b.WriteString(strings.TrimRight(strings.Join(parts, sep), " "))
	b.WriteByte('\n')
}

// visibleWidth counts the runes of s that a terminal would print, skipping
// CSI escape sequences such as colour codes.
func visibleWidth(s string) int {
	n := 0
	for i := 0; i < len(s); {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			i += 2
			for i < len(s) && (s[i] < 0x40 || s[i] > 0x7e) {
				i++
			}
			i++
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		n++
	}
	return n
}

func padRight(s string, width int) string {
	if gap := width - visibleWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func padLeft(s string, width int) string {
	if gap := width - visibleWidth(s); gap > 0 {
		return strings.Repeat(" ", gap) + s
	}
	return s
}

// wrapText splits text into lines of at most width runes, breaking at
// spaces where possible. A width of zero or less disables wrapping.
func wrapText(text string, width int) []string {
	if width <= 0 || visibleWidth(text) <= width {
		return []string{text}
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{text}
	}

	var lines []string
	line := ""
	for _, word := range words {
		for utf8.RuneCountInString(word) > width {
			if line != "" {
				lines = append(lines, line)
				line = ""
			}
			runes := []rune(word)
			lines = append(lines, string(runes[:width]))
			word = string(runes[width:])
		}

		switch {
		case line == "":
			line = word
		case utf8.RuneCountInString(line)+1+utf8.RuneCountInString(word) <= width:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
