package content

import "fmt"

// Kind identifies one of the content collections produced by the pipeline.
type Kind string

const (
	KindQuestions Kind = "questions"
	KindEvents    Kind = "events"
	KindSummaries Kind = "summaries"
)

// Kinds lists every content kind in conversion order.
var Kinds = []Kind{KindEvents, KindQuestions, KindSummaries}

// SourceFile is the CSV file name a kind is authored in.
func (k Kind) SourceFile() string {
	return string(k) + ".csv"
}

// OutputFile is the JSON file name the game loads a kind from.
func (k Kind) OutputFile() string {
	return string(k) + ".json"
}

// ParseKind maps a user supplied name ("questions", "events", "summaries") to a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown content kind %q (expected one of %v)", s, Kinds)
}
