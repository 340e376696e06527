// Package complexity scores how invasive a method change is, using the
// rendered diff as input. The score weighs control-flow edits, newly
// introduced variables and the raw size of the change.
package complexity

import (
	"math"
	"regexp"
	"strings"
)

const (
	baseChangeWeight    = 1.0
	controlFlowWeight   = 2.5
	variableIntroWeight = 1.5
	locModifiedWeight   = 1.0
	chunkSizeWeight     = 1.2
)

var (
	diffLinePattern    = regexp.MustCompile(`^\s*\d*\s*(-|\+)?\s*(\d*)?\s*([^-+].*)?$`)
	controlPattern     = regexp.MustCompile(`\b(if|else|for|while|do|switch)\b`)
	declarationPattern = regexp.MustCompile(`\b\w+\s+\w+\s*=`)
)

// Analyzer computes change-complexity scores from diff text.
type Analyzer struct{}

// NewAnalyzer returns a ready Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Calculate scores the given diff. Empty or content-free diffs score 0.
func (a *Analyzer) Calculate(diffText string) float64 {
	if strings.TrimSpace(diffText) == "" {
		return 0.0
	}

	oldLines, newLines := parseDiffLines(diffText)
	if len(oldLines) == 0 && len(newLines) == 0 {
		return 0.0
	}

	score := baseChangeWeight
	score += structuralComplexity(oldLines, newLines)
	score += scopeComplexity(oldLines, newLines)
	score += sizeComplexity(oldLines, newLines)

	return math.Round(score*100) / 100
}

// parseDiffLines splits rendered diff text into removed and added content
// lines, stripping the line-number gutter and change prefixes.
func parseDiffLines(diffText string) (oldLines, newLines []string) {
	for _, line := range strings.Split(diffText, "\n") {
		match := diffLinePattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		changeType := match[1]
		content := match[3]
		if content == "" {
			continue
		}
		switch changeType {
		case "-":
			oldLines = append(oldLines, strings.TrimSpace(content))
		case "+":
			newLines = append(newLines, strings.TrimSpace(content))
		}
	}
	return oldLines, newLines
}

func structuralComplexity(oldLines, newLines []string) float64 {
	oldControl := len(controlPattern.FindAllString(strings.Join(oldLines, " "), -1))
	newControl := len(controlPattern.FindAllString(strings.Join(newLines, " "), -1))
	if oldControl == newControl {
		return 0.0
	}
	return controlFlowWeight * math.Abs(float64(newControl-oldControl))
}

func scopeComplexity(oldLines, newLines []string) float64 {
	oldVars := declarationSet(oldLines)
	introduced := 0
	for decl := range declarationSet(newLines) {
		if _, seen := oldVars[decl]; !seen {
			introduced++
		}
	}
	if introduced == 0 {
		return 0.0
	}
	return variableIntroWeight * float64(introduced)
}

func declarationSet(lines []string) map[string]struct{} {
	decls := make(map[string]struct{})
	for _, decl := range declarationPattern.FindAllString(strings.Join(lines, " "), -1) {
		decls[decl] = struct{}{}
	}
	return decls
}

func sizeComplexity(oldLines, newLines []string) float64 {
	totalChanges := len(oldLines) + len(newLines)
	score := float64(totalChanges) * locModifiedWeight
	if totalChanges > 1 {
		score += float64(totalChanges-1) * chunkSizeWeight
	}
	return score
}
