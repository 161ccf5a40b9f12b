package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/valter-silva-au/todo/pkg/models"
)

// MinIDPrefix is the shortest id prefix accepted as a task reference.
const MinIDPrefix = 4

var (
	// ErrRefRequired indicates no task reference was provided.
	ErrRefRequired = errors.New("task reference required")
	// ErrRefNotFound indicates the reference matched no task.
	ErrRefNotFound = errors.New("task not found")
	// ErrRefAmbiguous indicates an id prefix matched more than one task.
	ErrRefAmbiguous = errors.New("task reference is ambiguous")
)

// ResolveRef finds the task a user means by ref. A number is a 1-based
// position in the filtered view (as printed by "todo list"); anything else is
// matched as an id prefix against the full collection.
//
// Numbers that are out of range for the view fall back to id prefix matching,
// since ids may start with digits.
func ResolveRef(snap models.Snapshot, all []models.Task, ref string) (models.Task, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return models.Task{}, ErrRefRequired
	}

	if isAllDigits(ref) {
		if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(snap.Filtered) {
			return snap.Filtered[n-1], nil
		}
		if len(ref) < MinIDPrefix {
			return models.Task{}, fmt.Errorf("%w: no task at position %s", ErrRefNotFound, ref)
		}
	}

	if len(ref) < MinIDPrefix {
		return models.Task{}, fmt.Errorf("%w: %s (id prefixes need at least %d characters)", ErrRefNotFound, ref, MinIDPrefix)
	}

	var matches []models.Task
	for _, t := range all {
		id := strings.ToLower(t.ID)
		if id == ref {
			return t, nil
		}
		if strings.HasPrefix(id, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return models.Task{}, fmt.Errorf("%w: %s", ErrRefNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return models.Task{}, fmt.Errorf("%w: %s matches %d tasks", ErrRefAmbiguous, ref, len(matches))
	}
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
