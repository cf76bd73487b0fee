// Package builder turns parsed CSV rows into typed content records.
//
// Builders never reject a row because a field is empty; the validator owns
// those checks and reports them with record context. They fail when the line
// has a different number of cells than the header (a *csvsource.CellCountError,
// since every later field would be misaligned) or when a present cell cannot be
// decoded (a non-numeric correctIndex, an unknown effect key, a choice with the
// wrong number of fields).
package builder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/baytides/climate-quest/pkg/codec"
	"github.com/baytides/climate-quest/pkg/content"
	"github.com/baytides/climate-quest/pkg/csvsource"
)

// FieldError reports a cell that could not be decoded.
type FieldError struct {
	Line  int
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("line %d: field %s: %v", e.Line, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// BuildQuestion maps a questions.csv row to a Question.
func BuildQuestion(row csvsource.Row) (content.Question, error) {
	if err := row.CheckCells(); err != nil {
		return content.Question{}, err
	}
	q := content.Question{
		ID:            row.Value("id"),
		LocationID:    row.Value("locationId"),
		GradeBand:     content.GradeBand(row.Value("gradeBand")),
		Difficulty:    content.Difficulty(row.Value("difficulty")),
		Question:      row.Value("question"),
		Answers:       codec.SplitList(row.Value("answers")),
		Explanation:   row.Value("explanation"),
		Misconception: row.Value("misconception"),
		Tags:          buildTags(row),
	}

	if raw := strings.TrimSpace(row.Value("correctIndex")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return content.Question{}, &FieldError{Line: row.Line, Field: "correctIndex", Err: fmt.Errorf("%q is not an integer", raw)}
		}
		q.CorrectIndex = &n
	}

	return q, nil
}

// BuildEvent maps an events.csv row to an Event.
func BuildEvent(row csvsource.Row) (content.Event, error) {
	if err := row.CheckCells(); err != nil {
		return content.Event{}, err
	}
	choices, err := codec.ParseChoiceBlock(row.Value("choices"))
	if err != nil {
		return content.Event{}, &FieldError{Line: row.Line, Field: "choices", Err: err}
	}

	return content.Event{
		ID:                  row.Value("id"),
		LocationID:          row.Value("locationId"),
		GradeBand:           content.GradeBand(row.Value("gradeBand")),
		Type:                content.EventType(row.Value("type")),
		Title:               row.Value("title"),
		Prompt:              row.Value("prompt"),
		Choices:             choices,
		FollowUpQuestionIDs: codec.SplitList(row.Value("followUpQuestionIds")),
	}, nil
}

// BuildSummary maps a summaries.csv row to a Summary.
func BuildSummary(row csvsource.Row) (content.Summary, error) {
	if err := row.CheckCells(); err != nil {
		return content.Summary{}, err
	}
	return content.Summary{
		LocationID:  row.Value("locationId"),
		Title:       row.Value("title"),
		Summary:     row.Value("summary"),
		KeyTakeaway: row.Value("keyTakeaway"),
		Tags:        buildTags(row),
	}, nil
}

func buildTags(row csvsource.Row) content.Tags {
	return content.NewTags(
		codec.SplitList(row.Value("ngss")),
		codec.SplitList(row.Value("epc")),
		codec.SplitList(row.Value("topic")),
	)
}

// BuildAll builds every row of doc in order, stopping at the first failure.
// The result is never nil so it encodes as a JSON array.
func BuildAll[T any](doc *csvsource.Document, build func(csvsource.Row) (T, error)) ([]T, error) {
	items := make([]T, 0, len(doc.Rows))
	for _, row := range doc.Rows {
		item, err := build(row)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Build converts a parsed document of the given kind into its record slice.
// The returned value is a []content.Question, []content.Event or
// []content.Summary, ready for the emitter.
func Build(kind content.Kind, doc *csvsource.Document) (any, int, error) {
	switch kind {
	case content.KindQuestions:
		items, err := BuildAll(doc, BuildQuestion)
		return items, len(items), err
	case content.KindEvents:
		items, err := BuildAll(doc, BuildEvent)
		return items, len(items), err
	case content.KindSummaries:
		items, err := BuildAll(doc, BuildSummary)
		return items, len(items), err
	}
	return nil, 0, fmt.Errorf("no builder for content kind %q", kind)
}
