package models

import (
	"fmt"
	"slices"
	"time"
)

// ToggleTag applies a checkbox change to tags and returns the new list.
// The input slice is never modified.
func ToggleTag(tags []string, value string, checked bool) []string {
	if checked {
		if slices.Contains(tags, value) {
			return slices.Clone(tags)
		}
		out := make([]string, 0, len(tags)+1)
		out = append(out, tags...)
		return append(out, value)
	}

	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag != value {
			out = append(out, tag)
		}
	}
	return out
}

// DisplayTime renders t as DD.MM.YYYY HH:MM in loc. The zero time is a
// timestamp the server has not assigned yet and renders as "".
func DisplayTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return fmt.Sprintf("%02d.%02d.%d %02d:%02d", t.Day(), int(t.Month()), t.Year(), t.Hour(), t.Minute())
}

func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}
