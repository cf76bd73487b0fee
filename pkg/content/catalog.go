package content

import "math/rand/v2"

// Catalog is one complete content set: everything the game loads at startup.
type Catalog struct {
	Questions []Question
	Events    []Event
	Summaries []Summary
}

// QuestionByID returns the question with the given id.
func (c *Catalog) QuestionByID(id string) (Question, bool) {
	for _, q := range c.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// QuestionsForLocation returns the questions at locationID in catalog order.
// An empty band matches every grade band.
func (c *Catalog) QuestionsForLocation(locationID string, band GradeBand) []Question {
	var out []Question
	for _, q := range c.Questions {
		if q.LocationID == locationID && (band == "" || q.GradeBand == band) {
			out = append(out, q)
		}
	}
	return out
}

// RandomQuestionsForLocation picks up to n questions at locationID in random order.
func (c *Catalog) RandomQuestionsForLocation(locationID string, n int, band GradeBand, rng *rand.Rand) []Question {
	pool := c.QuestionsForLocation(locationID, band)
	if rng == nil {
		rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	} else {
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	}
	if n < 0 {
		n = 0
	}
	if n < len(pool) {
		pool = pool[:n]
	}
	return pool
}

// EventsForLocation returns the events at locationID in catalog order.
func (c *Catalog) EventsForLocation(locationID string, band GradeBand) []Event {
	var out []Event
	for _, e := range c.Events {
		if e.LocationID == locationID && (band == "" || e.GradeBand == band) {
			out = append(out, e)
		}
	}
	return out
}

// SummaryForLocation returns the first summary written for locationID.
func (c *Catalog) SummaryForLocation(locationID string) (Summary, bool) {
	for _, s := range c.Summaries {
		if s.LocationID == locationID {
			return s, true
		}
	}
	return Summary{}, false
}

// LocationIDs returns every location id referenced by the catalog, in first-seen
// order across questions, events and summaries.
func (c *Catalog) LocationIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, q := range c.Questions {
		add(q.LocationID)
	}
	for _, e := range c.Events {
		add(e.LocationID)
	}
	for _, s := range c.Summaries {
		add(s.LocationID)
	}
	return ids
}
