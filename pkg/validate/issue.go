package validate

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Code is a machine-readable issue code.
type Code string

const (
	// Errors
	CodeDuplicateID       Code = "duplicate-id"
	CodeMissingField      Code = "missing-field"
	CodeUnknownLocation   Code = "unknown-location"
	CodeAnswerCount       Code = "answer-count"
	CodeInvalidIndex      Code = "invalid-index"
	CodeTooFewChoices     Code = "too-few-choices"
	CodeDanglingReference Code = "dangling-reference"
	CodeMissingNGSS       Code = "missing-ngss"
	CodeMissingEPC        Code = "missing-epc"
	CodeInvalidEnum       Code = "invalid-enum"

	// Warnings
	CodeMissingEPCTag   Code = "missing-epc-tag"
	CodeEPCCoverage     Code = "epc-coverage"
	CodeFlaggedLanguage Code = "flagged-language"
)

// Severity separates fatal errors from advisory warnings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Subject names what an issue is about.
type Subject string

const (
	SubjectQuestion Subject = "question"
	SubjectEvent    Subject = "event"
	SubjectSummary  Subject = "summary"
	SubjectLocation Subject = "location"
)

// Issue is one finding of a validation pass.
type Issue struct {
	Severity Severity `json:"severity"`
	Code     Code     `json:"code"`
	Subject  Subject  `json:"subject"`
	ID       string   `json:"id,omitempty"` // record or location id, when known
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	return i.Message
}

// ErrValidationFailed is returned (wrapped) by Report.Err when any error was found.
var ErrValidationFailed = errors.New("content validation failed")

// Report is the result of one validation pass. Errors gate success; warnings never do.
type Report struct {
	RunID     uuid.UUID                     `json:"run_id"`
	Errors    []Issue                       `json:"errors"`
	Warnings  []Issue                       `json:"warnings"`
	Locations map[string]*LocationAggregate `json:"locations"`
	Order     []string                      `json:"location_order"` // location ids in first-seen order
}

// OK reports whether the pass found no errors.
func (r *Report) OK() bool {
	return len(r.Errors) == 0
}

// Err returns nil for a passing report, otherwise an error wrapping
// ErrValidationFailed with the error count.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%w: %d error(s), %d warning(s)", ErrValidationFailed, len(r.Errors), len(r.Warnings))
}

// ByCode returns every issue, error or warning, with the given code.
func (r *Report) ByCode(code Code) []Issue {
	var out []Issue
	for _, list := range [][]Issue{r.Errors, r.Warnings} {
		for _, i := range list {
			if i.Code == code {
				out = append(out, i)
			}
		}
	}
	return out
}

// ErrorMessages returns the error messages in report order.
func (r *Report) ErrorMessages() []string {
	return messages(r.Errors)
}

// WarningMessages returns the warning messages in report order.
func (r *Report) WarningMessages() []string {
	return messages(r.Warnings)
}

func messages(issues []Issue) []string {
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = is.Message
	}
	return out
}
