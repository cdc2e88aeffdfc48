package domain

import (
	"time"
)

// Status is the state of a unit during one build.
type Status uint8

const (
	// StatusUnbuilt is the initial state of every unit in the plan.
	StatusUnbuilt Status = iota
	// StatusBuilding indicates the unit's action is running.
	StatusBuilding
	// StatusBuilt indicates the unit's action succeeded and its fingerprint was recorded.
	StatusBuilt
	// StatusFailed indicates the unit's action failed, or one of its children failed.
	StatusFailed
	// StatusUpToDate indicates the unit's fingerprint matched its record and all children were up to date.
	StatusUpToDate
	// StatusCancelled indicates the unit did not complete because the build was interrupted.
	StatusCancelled
)

var statusNames = [...]string{
	StatusUnbuilt:   "unbuilt",
	StatusBuilding:  "building",
	StatusBuilt:     "built",
	StatusFailed:    "failed",
	StatusUpToDate:  "up-to-date",
	StatusCancelled: "cancelled",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// Terminal reports whether s is a final state.
func (s Status) Terminal() bool {
	switch s {
	case StatusBuilt, StatusFailed, StatusUpToDate, StatusCancelled:
		return true
	default:
		return false
	}
}

// Succeeded reports whether s counts as success for the overall build.
func (s Status) Succeeded() bool {
	return s == StatusBuilt || s == StatusUpToDate
}

// Outcome summarizes a whole build.
type Outcome uint8

const (
	// OutcomeSucceeded means every unit ended Built or UpToDate.
	OutcomeSucceeded Outcome = iota
	// OutcomeFailed means at least one unit failed.
	OutcomeFailed
	// OutcomeCancelled means the build was interrupted.
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// UnitResult is the final state of one unit after a build.
type UnitResult struct {
	ID       UnitID
	Path     string
	Kind     Kind
	Status   Status
	Err      error
	Duration time.Duration
	// Ran is true when the unit's action was invoked.
	Ran bool
}

// Report is the result of one build invocation.
type Report struct {
	Target  string
	Outcome Outcome
	// Units are ordered children before parents.
	Units []UnitResult
}

// ActionsRun returns how many build actions were invoked.
func (r *Report) ActionsRun() int {
	n := 0
	for _, u := range r.Units {
		if u.Ran {
			n++
		}
	}
	return n
}

// Count returns how many units ended with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, u := range r.Units {
		if u.Status == s {
			n++
		}
	}
	return n
}

// Result returns the result recorded for path.
func (r *Report) Result(path string) (UnitResult, bool) {
	for _, u := range r.Units {
		if u.Path == path {
			return u, true
		}
	}
	return UnitResult{}, false
}

// Err converts the outcome into an error suitable for the process exit status.
func (r *Report) Err() error {
	switch r.Outcome {
	case OutcomeFailed:
		return ErrBuildFailed
	case OutcomeCancelled:
		return ErrBuildCancelled
	default:
		return nil
	}
}
