package content

// GradeBand is the coarse grade grouping a content item targets.
type GradeBand string

const (
	GradeBand45 GradeBand = "4-5"
	GradeBand68 GradeBand = "6-8"
)

// Valid reports whether b is one of the known grade bands.
func (b GradeBand) Valid() bool {
	return b == GradeBand45 || b == GradeBand68
}

// Difficulty of a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// EventType classifies a map event.
type EventType string

const (
	EventTypeHazard      EventType = "hazard"
	EventTypeDecision    EventType = "decision"
	EventTypeRestoration EventType = "restoration"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventTypeHazard, EventTypeDecision, EventTypeRestoration:
		return true
	}
	return false
}

// Tags aligns a content item to NGSS performance expectations, California
// EP&C principles and free-text topics. Duplicates are kept as authored.
type Tags struct {
	NGSS  []string `json:"ngss"`
	EPC   []string `json:"epc"`
	Topic []string `json:"topic"`
}

// NewTags returns a Tags value whose lists are never nil, so they encode as [].
func NewTags(ngss, epc, topic []string) Tags {
	return Tags{NGSS: orEmpty(ngss), EPC: orEmpty(epc), Topic: orEmpty(topic)}
}

// Effects is the numeric consequence of picking an event choice.
type Effects struct {
	Health       int `json:"health"`
	Supplies     int `json:"supplies"`
	Biodiversity int `json:"biodiversity"`
	Time         int `json:"time"`
}

// EffectKeys is the fixed key set of an Effects value, in encoding order.
var EffectKeys = []string{"health", "supplies", "biodiversity", "time"}

// Set assigns v to the named key. It returns false for keys outside EffectKeys.
func (e *Effects) Set(key string, v int) bool {
	switch key {
	case "health":
		e.Health = v
	case "supplies":
		e.Supplies = v
	case "biodiversity":
		e.Biodiversity = v
	case "time":
		e.Time = v
	default:
		return false
	}
	return true
}

// Get returns the value stored under key, or 0 for unknown keys.
func (e Effects) Get(key string) int {
	switch key {
	case "health":
		return e.Health
	case "supplies":
		return e.Supplies
	case "biodiversity":
		return e.Biodiversity
	case "time":
		return e.Time
	}
	return 0
}

// Question is a multiple-choice trivia question shown at a location.
type Question struct {
	ID            string     `json:"id"`
	LocationID    string     `json:"locationId"`
	GradeBand     GradeBand  `json:"gradeBand"`
	Difficulty    Difficulty `json:"difficulty"`
	Question      string     `json:"question"`
	Answers       []string   `json:"answers"`
	CorrectIndex  *int       `json:"correctIndex"` // nil when the source cell was empty
	Explanation   string     `json:"explanation"`
	Misconception string     `json:"misconception,omitempty"`
	Tags          Tags       `json:"tags"`
}

// Choice is one option of an Event. Its id is scoped to the parent event.
type Choice struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	Outcome string  `json:"outcome"`
	Effects Effects `json:"effects"`
	Tags    Tags    `json:"tags"`
}

// Event is a hazard, decision or restoration encounter at a location.
type Event struct {
	ID                  string    `json:"id"`
	LocationID          string    `json:"locationId"`
	GradeBand           GradeBand `json:"gradeBand"`
	Type                EventType `json:"type"`
	Title               string    `json:"title"`
	Prompt              string    `json:"prompt"`
	Choices             []Choice  `json:"choices"`
	FollowUpQuestionIDs []string  `json:"followUpQuestionIds"`
}

// Summary is the end-of-location recap card.
type Summary struct {
	LocationID  string `json:"locationId"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	KeyTakeaway string `json:"keyTakeaway"`
	Tags        Tags   `json:"tags"`
}

// IntPtr returns a pointer to v. Handy for building questions in code.
func IntPtr(v int) *int {
	return &v
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
