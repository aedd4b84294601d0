// internal/diff/diff.go
package diff

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
)

// Line represents a single line in a diff with its type and content
type Line struct {
	Type    LineType
	Content string
	OldNum  int
	NewNum  int
	// NoNewline marks the last line of a file that lacks a trailing newline.
	NoNewline bool
}

// LineType indicates whether a line was added, removed, or is context
type LineType int

const (
	Context LineType = iota
	Addition
	Deletion
)

// Stats counts changed lines.
type Stats struct {
	Additions int
	Deletions int
	Changes   int
}

// DiffResult contains the complete diff information
type DiffResult struct {
	Hunks []Hunk
	Stats Stats
}

// Hunk represents a continuous section of changes. Starts are 1-based; a
// zero-length side starts at the line before the change, as in unified diff.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Lines    []Line
}

// Engine provides diffing capabilities
type Engine struct {
	contextLines int
}

// NewEngine creates a new diff engine with specified context lines
func NewEngine(contextLines int) *Engine {
	if contextLines < 0 {
		contextLines = 0
	}
	return &Engine{
		contextLines: contextLines,
	}
}

// IsText reports whether content decodes as UTF-8. Anything else is binary
// and never gets a textual diff.
func IsText(content []byte) bool {
	return utf8.Valid(content)
}

// Diff generates a line-by-line diff between two contents
func (e *Engine) Diff(oldContent, newContent []byte) *DiffResult {
	oldLines := splitLines(oldContent)
	newLines := splitLines(newContent)

	result := &DiffResult{}
	if bytes.Equal(oldContent, newContent) {
		return result
	}

	// Lines are compared with their terminators so a dropped trailing
	// newline still shows up as a change.
	m := difflib.NewMatcherWithJunk(oldLines, newLines, false, nil)
	for _, group := range m.GetGroupedOpCodes(e.contextLines) {
		result.Hunks = append(result.Hunks, buildHunk(group, oldLines, newLines))
	}

	// Calculate stats
	for _, hunk := range result.Hunks {
		for _, line := range hunk.Lines {
			switch line.Type {
			case Addition:
				result.Stats.Additions++
			case Deletion:
				result.Stats.Deletions++
			}
		}
	}
	result.Stats.Changes = result.Stats.Additions + result.Stats.Deletions

	return result
}

func buildHunk(group []difflib.OpCode, oldLines, newLines []string) Hunk {
	first, last := group[0], group[len(group)-1]
	hunk := Hunk{
		OldStart: hunkStart(first.I1, last.I2),
		OldLines: last.I2 - first.I1,
		NewStart: hunkStart(first.J1, last.J2),
		NewLines: last.J2 - first.J1,
	}

	for _, op := range group {
		switch op.Tag {
		case 'e':
			for i, j := op.I1, op.J1; i < op.I2; i, j = i+1, j+1 {
				hunk.Lines = append(hunk.Lines, newLine(Context, oldLines[i], i+1, j+1))
			}
		default:
			// 'r' is a deletion followed by an insertion; 'd' and 'i' are
			// the degenerate halves.
			for i := op.I1; i < op.I2; i++ {
				hunk.Lines = append(hunk.Lines, newLine(Deletion, oldLines[i], i+1, 0))
			}
			for j := op.J1; j < op.J2; j++ {
				hunk.Lines = append(hunk.Lines, newLine(Addition, newLines[j], 0, j+1))
			}
		}
	}
	return hunk
}

func newLine(t LineType, raw string, oldNum, newNum int) Line {
	return Line{
		Type:      t,
		Content:   strings.TrimSuffix(raw, "\n"),
		OldNum:    oldNum,
		NewNum:    newNum,
		NoNewline: !strings.HasSuffix(raw, "\n"),
	}
}

func hunkStart(start, stop int) int {
	if stop == start {
		return start
	}
	return start + 1
}

// splitLines splits content after each newline; the terminators stay on the
// lines. Empty content has no lines.
func splitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	lines := strings.SplitAfter(string(content), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Empty reports whether the diff has no hunks.
func (r *DiffResult) Empty() bool {
	return len(r.Hunks) == 0
}

// Format returns the result as a unified diff between fromFile and toFile.
func (r *DiffResult) Format(fromFile, toFile string) string {
	var buf bytes.Buffer
	if r.Empty() {
		return ""
	}

	fmt.Fprintf(&buf, "--- %s\n", fromFile)
	fmt.Fprintf(&buf, "+++ %s\n", toFile)

	for _, hunk := range r.Hunks {
		fmt.Fprintf(&buf, "@@ -%s +%s @@\n",
			formatRange(hunk.OldStart, hunk.OldLines),
			formatRange(hunk.NewStart, hunk.NewLines))

		for _, line := range hunk.Lines {
			switch line.Type {
			case Addition:
				buf.WriteByte('+')
			case Deletion:
				buf.WriteByte('-')
			case Context:
				buf.WriteByte(' ')
			}
			buf.WriteString(line.Content)
			buf.WriteByte('\n')
			if line.NoNewline {
				buf.WriteString("\\ No newline at end of file\n")
			}
		}
	}

	return buf.String()
}

func formatRange(start, length int) string {
	if length == 1 {
		return fmt.Sprintf("%d", start)
	}
	return fmt.Sprintf("%d,%d", start, length)
}
