// Package plan turns generated plan text into draft tasks and anchors drafts
// on a start date.
package plan

import (
	"strconv"
	"strings"

	"github.com/sandeepkv93/agroplan/internal/model"
)

// Parse reads one task per line. A line of the form "<n>. <text>" yields a
// task n days from the start; any other non-blank line yields an undated task.
// It never fails: unusable input produces an empty slice.
func Parse(raw string) []model.TaskItem {
	out := make([]model.TaskItem, 0)
	for _, line := range splitLines(raw) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if days, text, ok := splitOffset(line); ok {
			if text != "" {
				out = append(out, model.NewTaskItem(text, model.Offset(days)))
			}
			continue
		}
		out = append(out, model.NewTaskItem(line, nil))
	}
	return out
}

func splitLines(raw string) []string {
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return strings.Split(normalized, "\n")
}

// splitOffset reports ok when the text before the first '.' is a
// non-negative integer. The returned text may be empty.
func splitOffset(line string) (int, string, bool) {
	head, rest, found := strings.Cut(line, ".")
	if !found {
		return 0, "", false
	}
	days, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil || days < 0 {
		return 0, "", false
	}
	return days, strings.TrimSpace(rest), true
}
