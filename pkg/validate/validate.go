// Package validate checks a content catalog for cross-file consistency,
// curriculum coverage and kid-safe wording.
package validate

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/baytides/climate-quest/pkg/content"
	"github.com/baytides/climate-quest/pkg/textfilter"
)

const (
	answersPerQuestion = 4
	minChoicesPerEvent = 2
)

// LanguageScreen finds words that do not belong in learner-facing text.
type LanguageScreen interface {
	Scan(text string) []textfilter.Match
}

// Option configures a Validator.
type Option func(*Validator)

// WithLanguageScreen enables flagged-language warnings using screen.
func WithLanguageScreen(screen LanguageScreen) Option {
	return func(v *Validator) {
		v.screen = screen
	}
}

// Validator checks catalogs against a location registry. It holds no state
// between runs, so one Validator can be reused and shared.
type Validator struct {
	registry content.Registry
	screen   LanguageScreen
}

// New returns a Validator for the given registry. A nil registry is treated
// as empty: every location reference is then unknown.
func New(registry content.Registry, opts ...Option) *Validator {
	if registry == nil {
		registry = content.NewLocationSet()
	}
	v := &Validator{registry: registry}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// run accumulates the findings of one Validate call.
type run struct {
	report *Report
}

func (r *run) errorf(code Code, subject Subject, id, format string, args ...any) {
	r.report.Errors = append(r.report.Errors, Issue{
		Severity: SeverityError,
		Code:     code,
		Subject:  subject,
		ID:       id,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (r *run) warnf(code Code, subject Subject, id, format string, args ...any) {
	r.report.Warnings = append(r.report.Warnings, Issue{
		Severity: SeverityWarning,
		Code:     code,
		Subject:  subject,
		ID:       id,
		Message:  fmt.Sprintf(format, args...),
	})
}

// aggregate returns the aggregate for loc, creating it on first use.
func (r *run) aggregate(loc string) *LocationAggregate {
	agg, ok := r.report.Locations[loc]
	if !ok {
		agg = newAggregate()
		r.report.Locations[loc] = agg
		r.report.Order = append(r.report.Order, loc)
	}
	return agg
}

// Validate runs every check over c and returns the full report. It never
// stops at the first problem; the report lists every error and warning found.
func (v *Validator) Validate(c *content.Catalog) *Report {
	r := &run{report: &Report{
		RunID:     uuid.New(),
		Errors:    []Issue{},
		Warnings:  []Issue{},
		Locations: make(map[string]*LocationAggregate),
	}}
	if c == nil {
		c = &content.Catalog{}
	}

	v.checkIDs(r, c)
	questionIDs := v.checkQuestions(r, c.Questions)
	v.checkEvents(r, c.Events, questionIDs)
	v.checkSummaries(r, c.Summaries)
	v.checkCoverage(r)
	if v.screen != nil {
		v.checkLanguage(r, c)
	}
	return r.report
}

// checkIDs reports ids used more than once across questions and events.
// Empty ids are left to the missing-field checks.
func (v *Validator) checkIDs(r *run, c *content.Catalog) {
	seen := make(map[string]bool, len(c.Questions)+len(c.Events))
	check := func(id string, subject Subject) {
		if id == "" {
			return
		}
		if seen[id] {
			r.errorf(CodeDuplicateID, subject, id, "Duplicate id: %s (%s)", id, subject)
			return
		}
		seen[id] = true
	}
	for _, q := range c.Questions {
		check(q.ID, SubjectQuestion)
	}
	for _, e := range c.Events {
		check(e.ID, SubjectEvent)
	}
}

func (v *Validator) checkQuestions(r *run, questions []content.Question) map[string]bool {
	ids := make(map[string]bool, len(questions))
	for i, q := range questions {
		if q.ID != "" {
			ids[q.ID] = true
		}
		name := label(q.ID, i)

		if q.ID == "" || q.LocationID == "" {
			r.errorf(CodeMissingField, SubjectQuestion, q.ID, "Question %s missing id or locationId", name)
		}
		if q.LocationID != "" && !v.registry.Has(q.LocationID) {
			r.errorf(CodeUnknownLocation, SubjectQuestion, q.ID, "Question %s has unknown locationId %s", name, q.LocationID)
		}
		if len(q.Answers) != answersPerQuestion {
			r.errorf(CodeAnswerCount, SubjectQuestion, q.ID, "Question %s must have %d answers", name, answersPerQuestion)
		}
		if q.CorrectIndex == nil || *q.CorrectIndex < 0 || *q.CorrectIndex >= answersPerQuestion {
			r.errorf(CodeInvalidIndex, SubjectQuestion, q.ID, "Question %s has invalid correctIndex", name)
		}
		if q.GradeBand != "" && !q.GradeBand.Valid() {
			r.errorf(CodeInvalidEnum, SubjectQuestion, q.ID, "Question %s has invalid gradeBand %q", name, q.GradeBand)
		}
		if q.Difficulty != "" && !q.Difficulty.Valid() {
			r.errorf(CodeInvalidEnum, SubjectQuestion, q.ID, "Question %s has invalid difficulty %q", name, q.Difficulty)
		}

		hasEPC := len(q.Tags.EPC) > 0
		if !hasEPC {
			r.warnf(CodeMissingEPCTag, SubjectQuestion, q.ID, "Question %s missing epc tags", name)
		}

		if q.LocationID == "" {
			continue
		}
		agg := r.aggregate(q.LocationID)
		agg.QuestionCount++
		if hasEPC {
			agg.QuestionsWithEPC++
		}
		agg.addNGSS(q.Tags.NGSS)
		agg.addEPC(q.Tags.EPC)
	}
	return ids
}

func (v *Validator) checkEvents(r *run, events []content.Event, questionIDs map[string]bool) {
	for i, e := range events {
		name := label(e.ID, i)

		if e.ID == "" || e.LocationID == "" {
			r.errorf(CodeMissingField, SubjectEvent, e.ID, "Event %s missing id or locationId", name)
		}
		if e.LocationID != "" && !v.registry.Has(e.LocationID) {
			r.errorf(CodeUnknownLocation, SubjectEvent, e.ID, "Event %s has unknown locationId %s", name, e.LocationID)
		}
		if len(e.Choices) < minChoicesPerEvent {
			r.errorf(CodeTooFewChoices, SubjectEvent, e.ID, "Event %s must have at least %d choices", name, minChoicesPerEvent)
		}
		if e.GradeBand != "" && !e.GradeBand.Valid() {
			r.errorf(CodeInvalidEnum, SubjectEvent, e.ID, "Event %s has invalid gradeBand %q", name, e.GradeBand)
		}
		if e.Type != "" && !e.Type.Valid() {
			r.errorf(CodeInvalidEnum, SubjectEvent, e.ID, "Event %s has invalid type %q", name, e.Type)
		}
		for _, qid := range e.FollowUpQuestionIDs {
			if !questionIDs[qid] {
				r.errorf(CodeDanglingReference, SubjectEvent, e.ID, "Event %s references unknown question %s", name, qid)
			}
		}

		if e.LocationID == "" {
			continue
		}
		agg := r.aggregate(e.LocationID)
		for _, ch := range e.Choices {
			agg.addNGSS(ch.Tags.NGSS)
			agg.addEPC(ch.Tags.EPC)
		}
	}
}

func (v *Validator) checkSummaries(r *run, summaries []content.Summary) {
	for _, s := range summaries {
		if s.LocationID == "" {
			r.errorf(CodeMissingField, SubjectSummary, "", "Summary missing locationId")
			continue
		}
		if !v.registry.Has(s.LocationID) {
			r.errorf(CodeUnknownLocation, SubjectSummary, s.LocationID, "Summary for unknown locationId %s", s.LocationID)
		}
		agg := r.aggregate(s.LocationID)
		agg.addNGSS(s.Tags.NGSS)
		agg.addEPC(s.Tags.EPC)
	}
}

// checkCoverage requires every location with content to carry NGSS and EP&C
// tags somewhere, and warns when fewer than a third of its questions are
// EP&C-tagged.
func (v *Validator) checkCoverage(r *run) {
	for _, loc := range r.report.Order {
		agg := r.report.Locations[loc]
		if len(agg.NGSS) == 0 {
			r.errorf(CodeMissingNGSS, SubjectLocation, loc, "Location %s missing NGSS tags across content", loc)
		}
		if len(agg.EPC) == 0 {
			r.errorf(CodeMissingEPC, SubjectLocation, loc, "Location %s missing EP&C tags across content", loc)
		}
		if agg.QuestionCount > 0 && agg.QuestionsWithEPC < agg.RequiredEPCQuestions() {
			r.warnf(CodeEPCCoverage, SubjectLocation, loc, "Location %s has %d/%d questions with EP&C tags",
				loc, agg.QuestionsWithEPC, agg.QuestionCount)
		}
	}
}

func (v *Validator) checkLanguage(r *run, c *content.Catalog) {
	screen := func(subject Subject, id, name, field, text string) {
		for _, m := range v.screen.Scan(text) {
			r.warnf(CodeFlaggedLanguage, subject, id, "%s %s %s contains %q (try %q)",
				titleOf(subject), name, field, m.Word, m.Replacement)
		}
	}

	for i, q := range c.Questions {
		name := label(q.ID, i)
		screen(SubjectQuestion, q.ID, name, "question", q.Question)
		for n, a := range q.Answers {
			screen(SubjectQuestion, q.ID, name, fmt.Sprintf("answer %d", n+1), a)
		}
		screen(SubjectQuestion, q.ID, name, "explanation", q.Explanation)
		screen(SubjectQuestion, q.ID, name, "misconception", q.Misconception)
	}
	for i, e := range c.Events {
		name := label(e.ID, i)
		screen(SubjectEvent, e.ID, name, "title", e.Title)
		screen(SubjectEvent, e.ID, name, "prompt", e.Prompt)
		for _, ch := range e.Choices {
			screen(SubjectEvent, e.ID, name, "choice "+ch.ID+" label", ch.Label)
			screen(SubjectEvent, e.ID, name, "choice "+ch.ID+" outcome", ch.Outcome)
		}
	}
	for _, s := range c.Summaries {
		screen(SubjectSummary, s.LocationID, s.LocationID, "title", s.Title)
		screen(SubjectSummary, s.LocationID, s.LocationID, "summary", s.Summary)
		screen(SubjectSummary, s.LocationID, s.LocationID, "keyTakeaway", s.KeyTakeaway)
	}
}

// label names a record in messages, falling back to its 1-based position
// when it has no id.
func label(id string, index int) string {
	if id != "" {
		return id
	}
	return fmt.Sprintf("#%d", index+1)
}

func titleOf(s Subject) string {
	switch s {
	case SubjectQuestion:
		return "Question"
	case SubjectEvent:
		return "Event"
	case SubjectSummary:
		return "Summary"
	}
	return "Location"
}
