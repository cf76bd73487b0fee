package codec

import (
	"fmt"
	"strings"

	"github.com/baytides/climate-quest/pkg/content"
)

const choiceSep = "||"

// choiceFields is the fixed positional layout of one choice.
var choiceFields = []string{"id", "label", "outcome", "effects", "ngss", "epc", "topic"}

// ChoiceError reports a malformed choice inside a choices cell.
type ChoiceError struct {
	Index  int // 1-based position of the choice in the cell
	Reason string
}

func (e *ChoiceError) Error() string {
	return fmt.Sprintf("choice %d: %s", e.Index, e.Reason)
}

// ParseChoiceBlock decodes a choices cell. Each choice is exactly seven
// pipe-separated fields, "id|label|outcome|effects|ngss|epc|topic", and choices
// are joined with "||". Empty fields are allowed, so a choice with no effects
// reads "id|label|outcome||ngss|epc|topic"; the layout is fixed width, which is
// what keeps that "||" from being mistaken for a choice boundary. Within the
// ngss, epc and topic fields several values are separated by ";".
func ParseChoiceBlock(raw string) ([]content.Choice, error) {
	choices := []content.Choice{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return choices, nil
	}

	tokens := strings.Split(raw, listSep)
	for i := range tokens {
		tokens[i] = strings.TrimSpace(tokens[i])
	}

	width := len(choiceFields)
	pos := 0
	for pos < len(tokens) && !allEmpty(tokens[pos:]) {
		index := len(choices) + 1
		if len(tokens)-pos < width {
			return nil, &ChoiceError{
				Index:  index,
				Reason: fmt.Sprintf("has %d fields, expected %d (%s)", len(tokens)-pos, width, strings.Join(choiceFields, "|")),
			}
		}
		fields := tokens[pos : pos+width]
		pos += width

		if pos < len(tokens) {
			if tokens[pos] != "" {
				return nil, &ChoiceError{
					Index:  index,
					Reason: fmt.Sprintf("unexpected field %q after topic; choices are separated by %q", tokens[pos], choiceSep),
				}
			}
			pos++
		}

		effects, err := ParseEffects(fields[3])
		if err != nil {
			return nil, &ChoiceError{Index: index, Reason: err.Error()}
		}

		choices = append(choices, content.Choice{
			ID:      fields[0],
			Label:   fields[1],
			Outcome: fields[2],
			Effects: effects,
			Tags:    content.NewTags(SplitSubList(fields[4]), SplitSubList(fields[5]), SplitSubList(fields[6])),
		})
	}

	return choices, nil
}

// FormatChoiceBlock is the inverse of ParseChoiceBlock.
func FormatChoiceBlock(choices []content.Choice) string {
	chunks := make([]string, 0, len(choices))
	for _, c := range choices {
		fields := []string{
			c.ID,
			c.Label,
			c.Outcome,
			FormatEffects(c.Effects),
			JoinSubList(c.Tags.NGSS),
			JoinSubList(c.Tags.EPC),
			JoinSubList(c.Tags.Topic),
		}
		chunks = append(chunks, strings.Join(fields, listSep))
	}
	return strings.Join(chunks, choiceSep)
}

func allEmpty(tokens []string) bool {
	for _, t := range tokens {
		if t != "" {
			return false
		}
	}
	return true
}
