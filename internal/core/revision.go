package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParseStatus resolves a status name case-insensitively.
func ParseStatus(s string) (QuoteStatus, error) {
	for _, st := range QuoteStatuses {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", fieldErr("status", KindInvalidEnum, "must be one of Draft, Sent, Approved, Rejected, Revised")
}

// WithStatus returns a copy of q in the given status. Every status is
// reachable from every other.
func WithStatus(q *Quote, status QuoteStatus, now time.Time) (*Quote, error) {
	if !status.Valid() {
		return nil, fieldErr("status", KindInvalidEnum, "unknown status %q", status)
	}
	out := q.Clone()
	out.Status = status
	stamp := now.UTC()
	out.UpdatedAt = &stamp
	return out, nil
}

var revisionSuffix = regexp.MustCompile(`^(.*)-R(\d+)$`)

// nextRevisionNumber turns "Q-2026-0007" into "Q-2026-0007-R1" and
// "Q-2026-0007-R1" into "Q-2026-0007-R2".
func nextRevisionNumber(number string) string {
	if number == "" {
		return ""
	}
	if m := revisionSuffix.FindStringSubmatch(number); m != nil {
		n, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%s-R%d", m[1], n+1)
	}
	return number + "-R1"
}

// nextRevisionIn returns the revision number for number that is one past the
// highest -R<n> already stored in db for the same base number.
func nextRevisionIn(db *Database, number string) string {
	if number == "" {
		return ""
	}
	base := number
	if m := revisionSuffix.FindStringSubmatch(number); m != nil {
		base = m[1]
	}
	highest := 0
	for _, q := range db.Quotes {
		m := revisionSuffix.FindStringSubmatch(q.QuoteNumber)
		if m == nil || m[1] != base {
			continue
		}
		if n, _ := strconv.Atoi(m[2]); n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s-R%d", base, highest+1)
}

// Revise clones original under a new id as a Draft and returns it together
// with a copy of the original marked Revised. Items, customer and company
// data are identical between the two.
func Revise(original *Quote, now time.Time) (revision *Quote, superseded *Quote) {
	stamp := now.UTC()

	revision = original.Clone()
	revision.ID = NewID()
	revision.Status = StatusDraft
	revision.QuoteNumber = nextRevisionNumber(original.QuoteNumber)
	revision.RevisionOf = original.ID
	revision.UpdatedAt = &stamp

	superseded = original.Clone()
	superseded.Status = StatusRevised
	s := stamp
	superseded.UpdatedAt = &s
	return revision, superseded
}

// Duplicate copies q as a fresh, unrelated Draft with new item ids and no number.
func Duplicate(q *Quote, now time.Time) *Quote {
	d := q.Clone()
	d.ID = NewID()
	d.QuoteNumber = ""
	d.Status = StatusDraft
	d.RevisionOf = ""
	d.UpdatedAt = nil
	today := Today(now)
	d.QuoteDate = today
	d.ValidUntilDate = today.AddDate(0, 0, DefaultValidityDays)
	for i := range d.Items {
		d.Items[i].ID = NewID()
	}
	return d
}
