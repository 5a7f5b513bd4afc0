package cli

import (
	"strings"
	"testing"

	"github.com/jmylchreest/shade/internal/colour"
)

func TestNewTable(t *testing.T) {
	table := NewTable([]string{"Shade", "ΔE", "Score"})

	if table == nil {
		t.Fatal("NewTable returned nil")
	}
	if len(table.headers) != 3 {
		t.Errorf("Expected 3 headers, got %d", len(table.headers))
	}
	if table.padding != 2 {
		t.Errorf("Expected padding of 2, got %d", table.padding)
	}
	if table.Len() != 0 {
		t.Errorf("Expected empty table, got %d rows", table.Len())
	}
}

func TestTableAddRow(t *testing.T) {
	table := NewTable([]string{"Shade", "Score"})

	table.AddRow([]string{"Ivory", "0.91"})
	table.AddRow([]string{"Beige"})
	table.AddRow([]string{"Honey", "0.72", "extra"})

	if table.Len() != 3 {
		t.Fatalf("Expected 3 rows, got %d", table.Len())
	}
	for i, row := range table.rows {
		if len(row) != 2 {
			t.Errorf("row %d has %d cells, want 2", i, len(row))
		}
	}
	if table.rows[1][1] != "" {
		t.Errorf("Expected empty padded cell, got %q", table.rows[1][1])
	}
}

func TestTableRender(t *testing.T) {
	table := NewTable([]string{"Shade", "Score"})
	table.SetColumnAlign(1, AlignRight)
	table.AddRow([]string{"Natural Beige", "0.85"})
	table.AddRow([]string{"Ivory", "1"})

	lines := strings.Split(strings.TrimSuffix(table.Render(), "\n"), "\n")
	want := []string{
		"Shade          Score",
		"-------------  -----",
		"Natural Beige   0.85",
		"Ivory              1",
	}

	if len(lines) != len(want) {
		t.Fatalf("Render() gave %d lines, want %d:\n%s", len(lines), len(want), table.Render())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestTableRenderEmpty(t *testing.T) {
	if got := NewTable(nil).Render(); got != "" {
		t.Errorf("Render() with no headers = %q, want empty", got)
	}
}

func TestTableRenderIgnoresANSIWidth(t *testing.T) {
	swatch := colour.ColourPreview(colour.RGB{R: 200, G: 160, B: 130}, 2) + " #c8a082"

	table := NewTable([]string{"Colour", "Name"})
	table.AddRow([]string{swatch, "Sand"})
	table.AddRow([]string{"#ffffff", "White"})

	lines := strings.Split(table.Render(), "\n")
	if got := visibleWidth(lines[1]); got != len("----------  -----") {
		t.Errorf("rule width = %d, want %d (line %q)", got, len("----------  -----"), lines[1])
	}
	if !strings.HasPrefix(lines[3], "#ffffff     White") {
		t.Errorf("plain row misaligned: %q", lines[3])
	}
}

func TestTableWrapping(t *testing.T) {
	table := NewTable([]string{"Reason"})
	table.SetColumnMaxWidth(0, 12)
	table.AddRow([]string{"Excellent color match with matching undertone"})

	out := table.Render()
	for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		if visibleWidth(line) > 12 {
			t.Errorf("line %q exceeds max width", line)
		}
	}
	if !strings.Contains(out, "undertone") {
		t.Errorf("wrapped output lost text:\n%s", out)
	}
}

func TestVisibleWidth(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"plain", "abc", 3},
		{"unicode", "ΔE", 2},
		{"empty", "", 0},
		{"escape", "\033[48;2;1;2;3m  \033[0m", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := visibleWidth(tt.in); got != tt.want {
				t.Errorf("visibleWidth(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"fits", "short", 10, []string{"short"}},
		{"no limit", "a very long line", 0, []string{"a very long line"}},
		{"words", "one two three", 7, []string{"one two", "three"}},
		{"long word", "abcdefgh", 3, []string{"abc", "def", "gh"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapText(tt.text, tt.width)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("wrapText(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}
