package migration

import (
	"time"
)

// Outcome is what happened to a single source row.
type Outcome string

const (
	OutcomeMigrated          Outcome = "migrated"
	OutcomeSkippedDuplicate  Outcome = "skipped_duplicate"
	OutcomeSkippedInvalid    Outcome = "skipped_invalid"
	OutcomeSkippedUnresolved Outcome = "skipped_unresolved"
	OutcomeLookupFailed      Outcome = "lookup_failed"
	OutcomeInsertFailed      Outcome = "insert_failed"
)

// Outcomes lists every row outcome in reporting order.
var Outcomes = []Outcome{
	OutcomeMigrated,
	OutcomeSkippedDuplicate,
	OutcomeSkippedInvalid,
	OutcomeSkippedUnresolved,
	OutcomeLookupFailed,
	OutcomeInsertFailed,
}

// RoutineReport summarizes one entity routine. Err is set when the routine
// aborted; rows counted before the abort stay counted.
type RoutineReport struct {
	Entity   string
	Counts   map[Outcome]int
	Err      error
	Duration time.Duration
}

func newRoutineReport(entity string) RoutineReport {
	return RoutineReport{Entity: entity, Counts: make(map[Outcome]int)}
}

// Aborted reports whether the routine stopped before reaching the end of its file.
func (r RoutineReport) Aborted() bool {
	return r.Err != nil
}

// Rows is the number of rows that reached an outcome.
func (r RoutineReport) Rows() int {
	total := 0
	for _, n := range r.Counts {
		total += n
	}
	return total
}

// RunReport collects the reports of the routines enabled for one run, in
// execution order.
type RunReport struct {
	RunID    string
	Routines []RoutineReport
}

// Routine returns the report for entity, if that routine ran.
func (r RunReport) Routine(entity string) (RoutineReport, bool) {
	for _, rr := range r.Routines {
		if rr.Entity == entity {
			return rr, true
		}
	}
	return RoutineReport{}, false
}

// Migrated is the number of records inserted across all routines.
func (r RunReport) Migrated() int {
	total := 0
	for _, rr := range r.Routines {
		total += rr.Counts[OutcomeMigrated]
	}
	return total
}

// Aborted lists the entities whose routine aborted.
func (r RunReport) Aborted() []string {
	var aborted []string
	for _, rr := range r.Routines {
		if rr.Aborted() {
			aborted = append(aborted, rr.Entity)
		}
	}
	return aborted
}
