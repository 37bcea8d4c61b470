package curriculum

import (
	"fmt"
	"strconv"
	"strings"
)

const duasCompletedToken = "completed"

// DuasStatus is the decoded form of the persisted duas_status column, which
// packs book, level and completion into one string. All reads and writes of
// that column go through ParseDuasStatus and Encode; nothing else parses it.
type DuasStatus struct {
	Book      string `json:"book,omitempty"`
	Level     int    `json:"level,omitempty"`
	Completed bool   `json:"completed"`
}

// Set reports whether the status carries any measurement at all.
func (d DuasStatus) Set() bool {
	return d.Completed || d.Book != ""
}

// Valid reports whether the status is acceptable as a stage measurement:
// either completed, or a known book with a level in that book's range.
func (d DuasStatus) Valid() bool {
	if d.Completed {
		return true
	}
	return d.Book != "" && ValidDuasLevel(d.Book, d.Level)
}

// Encode renders the status into its persisted form. A completed status
// freezes book and level; they are no longer carried.
func (d DuasStatus) Encode() string {
	if d.Completed {
		return duasCompletedToken
	}
	if d.Book == "" {
		return ""
	}
	return fmt.Sprintf("%s|%d", d.Book, d.Level)
}

// ParseDuasStatus decodes a persisted duas_status value. An empty string is a
// valid "not yet recorded" status.
func ParseDuasStatus(encoded string) (DuasStatus, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return DuasStatus{}, nil
	}
	if encoded == duasCompletedToken {
		return DuasStatus{Completed: true}, nil
	}
	book, levelStr, ok := strings.Cut(encoded, "|")
	if !ok {
		return DuasStatus{}, fmt.Errorf("malformed duas status %q", encoded)
	}
	level, err := strconv.Atoi(levelStr)
	if err != nil {
		return DuasStatus{}, fmt.Errorf("malformed duas level in %q", encoded)
	}
	if !ValidDuasLevel(book, level) {
		return DuasStatus{}, fmt.Errorf("unknown duas book or level in %q", encoded)
	}
	return DuasStatus{Book: book, Level: level}, nil
}

// DuasCompleted reports whether a persisted duas_status value marks the duas
// syllabus as done. Malformed values count as not completed.
func DuasCompleted(encoded string) bool {
	d, err := ParseDuasStatus(encoded)
	return err == nil && d.Completed
}
