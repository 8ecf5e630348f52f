// Package observability provides formatted output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/skillforge/internal/progress"
	"github.com/jonathan/skillforge/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of subtopics listed per module
	maxItemsToShow = 5
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRoadmap outputs the modules and subtopics of a roadmap with their
// completion marks.
func (p *Printer) PrintRoadmap(r *types.Roadmap) {
	if r == nil {
		return
	}

	var sb strings.Builder
	total, done := r.SubtopicCounts()
	fmt.Fprintf(&sb, "Modules:   %d\n", len(r.Modules))
	fmt.Fprintf(&sb, "Subtopics: %d/%d completed\n", done, total)

	for i, m := range r.Modules {
		sb.WriteString("\n")
		mark := " "
		if m.QuizCompleted {
			mark = "✓"
		}
		fmt.Fprintf(&sb, "%d. [%s] %s\n", i+1, mark, m.Title)

		count := min(len(m.Subtopics), maxItemsToShow)
		for _, sub := range m.Subtopics[:count] {
			check := "○"
			if sub.IsCompleted {
				check = "●"
			}
			fmt.Fprintf(&sb, "   %s %s\n", check, sub.Title)
		}
		if len(m.Subtopics) > maxItemsToShow {
			fmt.Fprintf(&sb, "   ... and %d more\n", len(m.Subtopics)-maxItemsToShow)
		}
		if m.QuizScore != nil && m.QuizTotalQuestions != nil {
			fmt.Fprintf(&sb, "   Quiz: %d/%d\n", *m.QuizScore, *m.QuizTotalQuestions)
		}
	}

	p.printBox("ROADMAP: "+r.Topic, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintProgress outputs the level, progress bar and badges for a point total.
func (p *Printer) PrintProgress(points int, calc *progress.Calculator) {
	if calc == nil {
		calc = progress.DefaultCalculator()
	}
	state, _, err := calc.AddPoints(progress.UserProgress{}, max(points, 0))
	if err != nil {
		return
	}
	status := progress.StatusFor(state.Points)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Points: %d\n", status.Points)
	fmt.Fprintf(&sb, "Level:  %d\n", status.Level)
	fmt.Fprintf(&sb, "Next:   level %d at %d points\n", status.Level+1, status.NextLevelAt)
	fmt.Fprintf(&sb, "%s %d%%\n", progressBar(status.PercentToNext, 40), status.PercentToNext)

	sb.WriteString("\nBadges:\n")
	for _, rule := range calc.Rules() {
		mark := "  "
		if state.HasBadge(rule.ID) {
			mark = "✓ "
		}
		fmt.Fprintf(&sb, "  %s%s (%d XP)\n", mark, rule.Name, rule.Threshold)
	}

	p.printBox("PROGRESS", strings.TrimSuffix(sb.String(), "\n"))
}

func progressBar(percent, width int) string {
	percent = min(max(percent, 0), 100)
	filled := percent * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
