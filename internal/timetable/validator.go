// Package timetable holds the structural and temporal checks applied to
// an extracted block sequence before it is accepted.
package timetable

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"learning-yogi/internal/model"
)

var timePattern = regexp.MustCompile(`^\d{1,2}:\d{2}$`)

// Result carries the validator verdict together with every reason found,
// in the order the checks ran.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Validate checks a block sequence. It is pure: no I/O, deterministic for
// a given input. An empty sequence short-circuits with a single error.
func Validate(blocks model.TimeBlockList) Result {
	if len(blocks) == 0 {
		return Result{Valid: false, Errors: []string{"timetable contains no time blocks"}}
	}

	var errs []string
	for i, b := range blocks {
		errs = append(errs, blockErrors(i, b)...)
	}
	errs = append(errs, conflictErrors(blocks)...)

	return Result{Valid: len(errs) == 0, Errors: errs}
}

func blockErrors(idx int, b model.TimeBlock) []string {
	var errs []string
	if strings.TrimSpace(b.Day) == "" {
		errs = append(errs, fmt.Sprintf("block %d: missing day", idx+1))
	}
	if strings.TrimSpace(b.Name) == "" {
		errs = append(errs, fmt.Sprintf("block %d: missing event name", idx+1))
	}
	if b.StartTime != nil && !timePattern.MatchString(*b.StartTime) {
		errs = append(errs, fmt.Sprintf("block %d (%s): malformed start time %q", idx+1, b.Name, *b.StartTime))
	}
	if b.EndTime != nil && !timePattern.MatchString(*b.EndTime) {
		errs = append(errs, fmt.Sprintf("block %d (%s): malformed end time %q", idx+1, b.Name, *b.EndTime))
	}

	start, startOK := minutesOf(b.StartTime)
	end, endOK := minutesOf(b.EndTime)
	if startOK && endOK && start >= end {
		errs = append(errs, fmt.Sprintf("block %d (%s): start time %s is not before end time %s", idx+1, b.Name, *b.StartTime, *b.EndTime))
	}
	return errs
}

// conflictErrors groups blocks by day value and tests every unordered
// pair within a day for overlap. A pair is skipped entirely when either
// block lacks a usable start or end time; incomplete blocks are exempt
// from conflict detection.
func conflictErrors(blocks model.TimeBlockList) []string {
	byDay := make(map[string][]model.TimeBlock)
	var days []string
	for _, b := range blocks {
		if _, seen := byDay[b.Day]; !seen {
			days = append(days, b.Day)
		}
		byDay[b.Day] = append(byDay[b.Day], b)
	}

	var errs []string
	for _, day := range days {
		group := byDay[day]
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				if overlaps(group[i], group[j]) {
					errs = append(errs, fmt.Sprintf("conflict on %s: %q overlaps %q", day, group[i].Name, group[j].Name))
				}
			}
		}
	}
	return errs
}

// overlaps reports whether two blocks share any minute of the day.
// Symmetric by construction: startA < endB && startB < endA.
func overlaps(a, b model.TimeBlock) bool {
	startA, ok1 := minutesOf(a.StartTime)
	endA, ok2 := minutesOf(a.EndTime)
	startB, ok3 := minutesOf(b.StartTime)
	endB, ok4 := minutesOf(b.EndTime)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return false
	}
	return startA < endB && startB < endA
}

// minutesOf converts "H:MM"/"HH:MM" to minutes since midnight. Returns
// false for absent or malformed values.
func minutesOf(t *string) (int, bool) {
	if t == nil || !timePattern.MatchString(*t) {
		return 0, false
	}
	parts := strings.SplitN(*t, ":", 2)
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h*60 + m, true
}
