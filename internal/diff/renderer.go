// Package diff renders a compact, line-numbered diff between two method
// implementations, collapsing long unchanged runs so reviewers see only the
// edit and its context.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Renderer formats line diffs. ContextLines unchanged lines are kept on each
// side of a collapse; runs longer than CollapseThreshold are folded.
type Renderer struct {
	ContextLines      int
	CollapseThreshold int
}

// NewRenderer returns a Renderer with the default 3-line context and 6-line
// collapse threshold.
func NewRenderer() *Renderer {
	return &Renderer{ContextLines: 3, CollapseThreshold: 6}
}

// Generate renders the diff between two pieces of code.
func (r *Renderer) Generate(oldCode, newCode string) string {
	dmp := diffmatchpatch.New()
	oldChars, newChars, lineArray := dmp.DiffLinesToChars(oldCode, newCode)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(oldChars, newChars, false), lineArray)

	var out []string
	oldNum, newNum := 1, 1

	for _, d := range diffs {
		lines := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			if len(lines) > r.CollapseThreshold {
				for _, line := range lines[:r.ContextLines] {
					out = append(out, formatLine(line, " ", oldNum, newNum))
					oldNum++
					newNum++
				}
				skipped := len(lines) - 2*r.ContextLines
				if skipped > 0 {
					out = append(out, formatCollapse(skipped))
					oldNum += skipped
					newNum += skipped
				}
				for _, line := range lines[len(lines)-r.ContextLines:] {
					out = append(out, formatLine(line, " ", oldNum, newNum))
					oldNum++
					newNum++
				}
			} else {
				for _, line := range lines {
					out = append(out, formatLine(line, " ", oldNum, newNum))
					oldNum++
					newNum++
				}
			}
		case diffmatchpatch.DiffDelete:
			for _, line := range lines {
				out = append(out, formatLine(line, "-", oldNum, 0))
				oldNum++
			}
		case diffmatchpatch.DiffInsert:
			for _, line := range lines {
				out = append(out, formatLine(line, "+", 0, newNum))
				newNum++
			}
		}
	}

	return strings.Join(out, "\n")
}

// formatLine prints the old/new line numbers (blank when absent), the change
// prefix and the line itself.
func formatLine(line, prefix string, oldNum, newNum int) string {
	oldStr, newStr := "    ", "    "
	if oldNum > 0 {
		oldStr = fmt.Sprintf("%4d", oldNum)
	}
	if newNum > 0 {
		newStr = fmt.Sprintf("%4d", newNum)
	}
	return fmt.Sprintf("%s %s %s %s", oldStr, newStr, prefix, line)
}

func formatCollapse(skipped int) string {
	return fmt.Sprintf("     ⋮    ⋮      ... %d unchanged lines ...", skipped)
}

// splitLines splits diff text into lines, dropping the trailing empty
// element a final newline produces.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
