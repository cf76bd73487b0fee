package validate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/baytides/climate-quest/pkg/content"
)

// LoadCatalog reads the three emitted content files from dir. Each file must
// be a JSON array with no fields beyond the content schema. A question whose
// correctIndex is not a whole number, or whose answers are not a list of
// strings, still loads; the value is dropped so Validate reports it as
// invalid-index or answer-count alongside everything else.
func LoadCatalog(dir string) (*content.Catalog, error) {
	var c content.Catalog
	var questions []looseQuestion
	if err := loadFile(filepath.Join(dir, content.KindQuestions.OutputFile()), &questions); err != nil {
		return nil, err
	}
	c.Questions = make([]content.Question, len(questions))
	for i, q := range questions {
		c.Questions[i] = q.question()
	}
	if err := loadFile(filepath.Join(dir, content.KindEvents.OutputFile()), &c.Events); err != nil {
		return nil, err
	}
	if err := loadFile(filepath.Join(dir, content.KindSummaries.OutputFile()), &c.Summaries); err != nil {
		return nil, err
	}
	return &c, nil
}

func loadFile[T any](path string, dst *[]T) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", path)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", path, err)
	}
	if *dst == nil {
		*dst = []T{}
	}
	return nil
}

// looseQuestion accepts any JSON value for the fields the validator checks by
// value. Its own fields take precedence over the embedded ones.
type looseQuestion struct {
	content.Question
	Answers      json.RawMessage `json:"answers"`
	CorrectIndex json.RawMessage `json:"correctIndex"`
}

func (lq looseQuestion) question() content.Question {
	q := lq.Question
	q.Answers = decodeAnswers(lq.Answers)
	q.CorrectIndex = decodeIndex(lq.CorrectIndex)
	return q
}

func decodeAnswers(raw json.RawMessage) []string {
	var answers []string
	if err := json.Unmarshal(raw, &answers); err != nil {
		return nil
	}
	return answers
}

func decodeIndex(raw json.RawMessage) *int {
	var f float64
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(raw, &f); err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil
	}
	n := int(f)
	return &n
}
