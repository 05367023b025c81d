package diagnostics

import (
	"fmt"

	"github.com/funvibe/tyck/internal/source"
)

// Severity of a reported problem.
type Severity int

const (
	SeverityError Severity = iota
	SeverityGoal
	SeverityWarn
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityGoal:
		return "GOAL"
	case SeverityWarn:
		return "WARN"
	case SeverityInfo:
		return "INFO"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Stage is the checking phase that produced a problem.
type Stage int

const (
	StageParse Stage = iota
	StageResolve
	StageTyck
	StageTerck
	StageOther
)

func (s Stage) String() string {
	switch s {
	case StageParse:
		return "PARSE"
	case StageResolve:
		return "RESOLVE"
	case StageTyck:
		return "TYCK"
	case StageTerck:
		return "TERCK"
	case StageOther:
		return "OTHER"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// ErrorCode identifies a kind of problem.
type ErrorCode string

const (
	// Type checking
	ErrT001 ErrorCode = "T001" // type mismatch
	ErrT002 ErrorCode = "T002" // bad type: not a pi/sigma/struct/universe
	ErrT003 ErrorCode = "T003" // explicit/implicit argument mismatch
	ErrT004 ErrorCode = "T004" // missing/unknown struct field, arity mismatch
	ErrT005 ErrorCode = "T005" // universe level ordering violated
	ErrT006 ErrorCode = "T006" // unsolved metavariable
	ErrT007 ErrorCode = "T007" // unsolved postponed constraint
	ErrT008 ErrorCode = "T008" // literal without a shaped type
	ErrT009 ErrorCode = "T009" // tuple arity / projection index

	// Patterns
	ErrP001 ErrorCode = "P001" // uncovered pattern
	ErrP002 ErrorCode = "P002" // overlapping clauses disagree
	ErrP003 ErrorCode = "P003" // clause is dominated
	ErrP004 ErrorCode = "P004" // malformed pattern

	// Termination
	ErrN001 ErrorCode = "N001"

	// Resolution failures that abort a declaration
	ErrR001 ErrorCode = "R001"

	// Interactive goal
	ErrG001 ErrorCode = "G001"
)

type entry struct {
	format   string
	severity Severity
	stage    Stage
}

var catalog = map[ErrorCode]entry{
	ErrT001: {"type mismatch: %s", SeverityError, StageTyck},
	ErrT002: {"bad type: %s", SeverityError, StageTyck},
	ErrT003: {"licit mismatch: %s", SeverityError, StageTyck},
	ErrT004: {"field error: %s", SeverityError, StageTyck},
	ErrT005: {"level error: %s", SeverityError, StageTyck},
	ErrT006: {"unsolved meta: %s", SeverityError, StageTyck},
	ErrT007: {"unsolved constraint: %s", SeverityError, StageTyck},
	ErrT008: {"literal error: %s", SeverityError, StageTyck},
	ErrT009: {"arity error: %s", SeverityError, StageTyck},
	ErrP001: {"unhandled case: %s", SeverityError, StageTyck},
	ErrP002: {"clauses disagree: %s", SeverityError, StageTyck},
	ErrP003: {"dominated clause: %s", SeverityWarn, StageTyck},
	ErrP004: {"bad pattern: %s", SeverityError, StageTyck},
	ErrN001: {"termination check failed: %s", SeverityError, StageTerck},
	ErrR001: {"cannot check declaration: %s", SeverityError, StageResolve},
	ErrG001: {"goal: %s", SeverityGoal, StageTyck},
}

// DiagnosticError is a problem reported to the user.
type DiagnosticError struct {
	Code     ErrorCode
	Severity Severity
	Stage    Stage
	Pos      source.Pos
	Message  string
	Hint     string
}

// NewError builds a diagnostic for code at pos. The arguments fill the code's
// message template; severity and stage come from the catalog.
func NewError(code ErrorCode, pos source.Pos, args ...interface{}) *DiagnosticError {
	e, ok := catalog[code]
	if !ok {
		panic(Internalf("unknown error code %s", code))
	}
	msg := e.format
	if len(args) > 0 {
		msg = fmt.Sprintf(e.format, args...)
	}
	return &DiagnosticError{
		Code:     code,
		Severity: e.severity,
		Stage:    e.stage,
		Pos:      pos,
		Message:  msg,
	}
}

// WithHint attaches a note rendered under the message. Further hints go on new lines.
func (e *DiagnosticError) WithHint(format string, args ...interface{}) *DiagnosticError {
	hint := fmt.Sprintf(format, args...)
	if e.Hint != "" {
		hint = e.Hint + "\n" + hint
	}
	e.Hint = hint
	return e
}

func (e *DiagnosticError) IsError() bool {
	return e.Severity == SeverityError
}

func (e *DiagnosticError) Error() string {
	return fmt.Sprintf("%s: %s[%s]: %s", e.Pos, e.Severity, e.Code, e.Message)
}

// InternalError signals a broken invariant of the checker itself. It is raised
// with panic and never turned into a user diagnostic.
type InternalError struct {
	Message string
}

func Internalf(format string, args ...interface{}) *InternalError {
	return &InternalError{Message: fmt.Sprintf(format, args...)}
}

func (e *InternalError) Error() string {
	return "internal error: " + e.Message
}
