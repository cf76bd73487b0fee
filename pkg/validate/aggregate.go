package validate

import (
	"encoding/json"
	"sort"
)

// LocationAggregate folds the tags and question stats of every content item
// pointing at one location.
type LocationAggregate struct {
	NGSS             map[string]struct{}
	EPC              map[string]struct{}
	QuestionCount    int
	QuestionsWithEPC int
}

func newAggregate() *LocationAggregate {
	return &LocationAggregate{
		NGSS: make(map[string]struct{}),
		EPC:  make(map[string]struct{}),
	}
}

func (a *LocationAggregate) addNGSS(codes []string) {
	for _, c := range codes {
		a.NGSS[c] = struct{}{}
	}
}

func (a *LocationAggregate) addEPC(codes []string) {
	for _, c := range codes {
		a.EPC[c] = struct{}{}
	}
}

// RequiredEPCQuestions is how many questions at the location need an EP&C tag:
// one in three, rounded up.
func (a *LocationAggregate) RequiredEPCQuestions() int {
	return (a.QuestionCount + 2) / 3
}

// NGSSCodes returns the folded NGSS codes sorted.
func (a *LocationAggregate) NGSSCodes() []string {
	return sortedKeys(a.NGSS)
}

// EPCCodes returns the folded EP&C codes sorted.
func (a *LocationAggregate) EPCCodes() []string {
	return sortedKeys(a.EPC)
}

// MarshalJSON renders the sets as sorted arrays.
func (a *LocationAggregate) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		NGSS             []string `json:"ngss"`
		EPC              []string `json:"epc"`
		QuestionCount    int      `json:"question_count"`
		QuestionsWithEPC int      `json:"questions_with_epc"`
	}{a.NGSSCodes(), a.EPCCodes(), a.QuestionCount, a.QuestionsWithEPC})
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
