package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baytides/climate-quest/pkg/content"
	"github.com/baytides/climate-quest/pkg/emit"
	"github.com/baytides/climate-quest/pkg/textfilter"
)

func testRegistry() content.LocationSet {
	return content.NewLocationSet("start", "wetland", "forest")
}

func question(id, loc string) content.Question {
	return content.Question{
		ID:           id,
		LocationID:   loc,
		GradeBand:    content.GradeBand45,
		Difficulty:   content.DifficultyEasy,
		Question:     "Which habitat stores the most carbon per acre?",
		Answers:      []string{"Wetland", "Parking lot", "Desert", "Glacier"},
		CorrectIndex: content.IntPtr(0),
		Explanation:  "Wetland soils lock away carbon for centuries.",
		Tags:         content.NewTags([]string{"MS-ESS3-3"}, []string{"Principle II"}, []string{"carbon"}),
	}
}

func event(id, loc string, followUps ...string) content.Event {
	choice := func(cid string) content.Choice {
		return content.Choice{
			ID:      cid,
			Label:   "Plant dune grass",
			Outcome: "The dunes hold steady.",
			Effects: content.Effects{Biodiversity: 5},
			Tags:    content.NewTags([]string{"4-ESS3-2"}, []string{"Principle I"}, nil),
		}
	}
	if followUps == nil {
		followUps = []string{}
	}
	return content.Event{
		ID:                  id,
		LocationID:          loc,
		GradeBand:           content.GradeBand45,
		Type:                content.EventTypeHazard,
		Title:               "King Tide",
		Prompt:              "Water is rising over the boardwalk.",
		Choices:             []content.Choice{choice("a"), choice("b")},
		FollowUpQuestionIDs: followUps,
	}
}

func summary(loc string) content.Summary {
	return content.Summary{
		LocationID:  loc,
		Title:       "Coastal Beach",
		Summary:     "Dunes and tide pools buffer the coast.",
		KeyTakeaway: "Healthy dunes protect communities.",
		Tags:        content.NewTags([]string{"MS-ESS3-3"}, []string{"Principle II"}, nil),
	}
}

func cleanCatalog() *content.Catalog {
	return &content.Catalog{
		Questions: []content.Question{question("beach-1", "start")},
		Events:    []content.Event{event("beach-event-1", "start", "beach-1")},
		Summaries: []content.Summary{summary("start")},
	}
}

func TestValidate_CleanCatalog(t *testing.T) {
	rep := New(testRegistry()).Validate(cleanCatalog())

	assert.True(t, rep.OK())
	assert.NoError(t, rep.Err())
	assert.Empty(t, rep.Errors)
	assert.Empty(t, rep.Warnings)
	assert.Equal(t, []string{"start"}, rep.Order)

	agg := rep.Locations["start"]
	require.NotNil(t, agg)
	assert.Equal(t, 1, agg.QuestionCount)
	assert.Equal(t, 1, agg.QuestionsWithEPC)
	assert.Equal(t, []string{"4-ESS3-2", "MS-ESS3-3"}, agg.NGSSCodes())
	assert.Equal(t, []string{"Principle I", "Principle II"}, agg.EPCCodes())
}

func TestValidate_DuplicateID(t *testing.T) {
	c := cleanCatalog()
	c.Questions = append(c.Questions, question("beach-1", "start"))

	rep := New(testRegistry()).Validate(c)

	dups := rep.ByCode(CodeDuplicateID)
	require.Len(t, dups, 1)
	assert.Equal(t, "beach-1", dups[0].ID)
	assert.Equal(t, "Duplicate id: beach-1 (question)", dups[0].Message)
	assert.False(t, rep.OK())
	assert.True(t, errors.Is(rep.Err(), ErrValidationFailed))
}

func TestValidate_DuplicateIDAcrossKinds(t *testing.T) {
	c := cleanCatalog()
	c.Events = append(c.Events, event("beach-1", "start"))

	rep := New(testRegistry()).Validate(c)

	dups := rep.ByCode(CodeDuplicateID)
	require.Len(t, dups, 1)
	assert.Equal(t, SubjectEvent, dups[0].Subject)
}

func TestValidate_DanglingReference(t *testing.T) {
	c := cleanCatalog()
	c.Events[0].FollowUpQuestionIDs = []string{"beach-1", "beach-99"}

	rep := New(testRegistry()).Validate(c)

	refs := rep.ByCode(CodeDanglingReference)
	require.Len(t, refs, 1)
	assert.Contains(t, refs[0].Message, "beach-event-1")
	assert.Contains(t, refs[0].Message, "beach-99")
}

func TestValidate_FollowUpMustBeAQuestion(t *testing.T) {
	c := cleanCatalog()
	c.Events = append(c.Events, event("beach-event-2", "start", "beach-event-1"))

	rep := New(testRegistry()).Validate(c)

	assert.Len(t, rep.ByCode(CodeDanglingReference), 1)
}

func TestValidate_AnswerCount(t *testing.T) {
	tests := []struct {
		name    string
		answers []string
		wantErr bool
	}{
		{"three answers", []string{"A", "B", "C"}, true},
		{"four answers", []string{"A", "B", "C", "D"}, false},
		{"five answers", []string{"A", "B", "C", "D", "E"}, true},
		{"no answers", []string{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cleanCatalog()
			c.Questions[0].Answers = tt.answers

			rep := New(testRegistry()).Validate(c)

			if tt.wantErr {
				require.Len(t, rep.ByCode(CodeAnswerCount), 1)
				assert.Equal(t, "Question beach-1 must have 4 answers", rep.ByCode(CodeAnswerCount)[0].Message)
			} else {
				assert.Empty(t, rep.ByCode(CodeAnswerCount))
			}
		})
	}
}

func TestValidate_CorrectIndex(t *testing.T) {
	tests := []struct {
		name    string
		index   *int
		wantErr bool
	}{
		{"negative", content.IntPtr(-1), true},
		{"zero", content.IntPtr(0), false},
		{"one", content.IntPtr(1), false},
		{"two", content.IntPtr(2), false},
		{"three", content.IntPtr(3), false},
		{"four", content.IntPtr(4), true},
		{"missing", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cleanCatalog()
			c.Questions[0].CorrectIndex = tt.index

			rep := New(testRegistry()).Validate(c)

			assert.Equal(t, !tt.wantErr, rep.OK(), "errors: %v", rep.ErrorMessages())
			if tt.wantErr {
				assert.Len(t, rep.ByCode(CodeInvalidIndex), 1)
			}
		})
	}
}

func TestValidate_EPCCoverage(t *testing.T) {
	build := func(tagged int) *content.Catalog {
		c := cleanCatalog()
		c.Questions = nil
		for i := 0; i < 9; i++ {
			q := question(fmt.Sprintf("wet-%d", i+1), "wetland")
			if i >= tagged {
				q.Tags.EPC = []string{}
			}
			c.Questions = append(c.Questions, q)
		}
		c.Events = []content.Event{event("wet-event-1", "wetland")}
		c.Summaries = []content.Summary{summary("wetland")}
		return c
	}

	t.Run("two of nine tagged", func(t *testing.T) {
		rep := New(testRegistry()).Validate(build(2))

		assert.True(t, rep.OK(), "coverage is never fatal: %v", rep.ErrorMessages())
		cov := rep.ByCode(CodeEPCCoverage)
		require.Len(t, cov, 1)
		assert.Equal(t, "Location wetland has 2/9 questions with EP&C tags", cov[0].Message)
		assert.Len(t, rep.ByCode(CodeMissingEPCTag), 7)
	})

	t.Run("three of nine tagged", func(t *testing.T) {
		rep := New(testRegistry()).Validate(build(3))

		assert.True(t, rep.OK())
		assert.Empty(t, rep.ByCode(CodeEPCCoverage))
		assert.Len(t, rep.ByCode(CodeMissingEPCTag), 6)
	})
}

func TestValidate_MissingFields(t *testing.T) {
	c := cleanCatalog()
	c.Questions = append(c.Questions, question("", "start"), question("", "start"))
	c.Events = append(c.Events, event("beach-event-2", ""))
	c.Summaries = append(c.Summaries, summary(""))

	rep := New(testRegistry()).Validate(c)

	missing := rep.ErrorMessages()
	assert.Contains(t, missing, "Question #2 missing id or locationId")
	assert.Contains(t, missing, "Question #3 missing id or locationId")
	assert.Contains(t, missing, "Event beach-event-2 missing id or locationId")
	assert.Contains(t, missing, "Summary missing locationId")
	assert.Len(t, rep.ByCode(CodeMissingField), 4)
	assert.Empty(t, rep.ByCode(CodeDuplicateID), "empty ids are not duplicates")
	assert.Empty(t, rep.ByCode(CodeUnknownLocation), "missing location is not reported twice")
}

func TestValidate_UnknownLocation(t *testing.T) {
	c := cleanCatalog()
	c.Questions = append(c.Questions, question("moon-1", "moon"))
	c.Events = append(c.Events, event("moon-event-1", "moon"))
	c.Summaries = append(c.Summaries, summary("moon"))

	rep := New(testRegistry()).Validate(c)

	msgs := rep.ErrorMessages()
	assert.Contains(t, msgs, "Question moon-1 has unknown locationId moon")
	assert.Contains(t, msgs, "Event moon-event-1 has unknown locationId moon")
	assert.Contains(t, msgs, "Summary for unknown locationId moon")
	assert.Len(t, rep.ByCode(CodeUnknownLocation), 3)
}

func TestValidate_EmptyRegistry(t *testing.T) {
	for _, reg := range []content.Registry{nil, content.NewLocationSet()} {
		rep := New(reg).Validate(cleanCatalog())

		assert.False(t, rep.OK())
		assert.Len(t, rep.ByCode(CodeUnknownLocation), 3)
	}
}

func TestValidate_LocationTagCoverage(t *testing.T) {
	c := cleanCatalog()
	c.Questions[0].Tags = content.NewTags(nil, nil, nil)
	for i := range c.Events[0].Choices {
		c.Events[0].Choices[i].Tags = content.NewTags(nil, nil, nil)
	}
	c.Summaries[0].Tags = content.NewTags(nil, nil, nil)

	rep := New(testRegistry()).Validate(c)

	msgs := rep.ErrorMessages()
	assert.Contains(t, msgs, "Location start missing NGSS tags across content")
	assert.Contains(t, msgs, "Location start missing EP&C tags across content")
}

func TestValidate_SummaryTagsCountTowardLocation(t *testing.T) {
	c := cleanCatalog()
	c.Questions[0].Tags.NGSS = []string{}
	for i := range c.Events[0].Choices {
		c.Events[0].Choices[i].Tags.NGSS = []string{}
	}

	rep := New(testRegistry()).Validate(c)

	assert.Empty(t, rep.ByCode(CodeMissingNGSS))
}

func TestValidate_InvalidEnum(t *testing.T) {
	c := cleanCatalog()
	c.Questions[0].GradeBand = "9-12"
	c.Questions[0].Difficulty = "impossible"
	c.Events[0].Type = "party"

	rep := New(testRegistry()).Validate(c)

	assert.Len(t, rep.ByCode(CodeInvalidEnum), 3)
}

func TestValidate_TooFewChoices(t *testing.T) {
	c := cleanCatalog()
	c.Events[0].Choices = c.Events[0].Choices[:1]

	rep := New(testRegistry()).Validate(c)

	assert.Equal(t, []string{"Event beach-event-1 must have at least 2 choices"}, rep.ErrorMessages())
}

func TestValidate_ReportsEverything(t *testing.T) {
	c := cleanCatalog()
	c.Questions[0].Answers = []string{"A"}
	c.Questions[0].CorrectIndex = content.IntPtr(7)
	c.Events[0].Choices = nil
	c.Events[0].FollowUpQuestionIDs = []string{"nope"}

	rep := New(testRegistry()).Validate(c)

	assert.Len(t, rep.Errors, 4)
}

func TestValidate_Idempotent(t *testing.T) {
	c := cleanCatalog()
	c.Questions = append(c.Questions, question("beach-1", "moon"))
	c.Questions[0].Tags.EPC = []string{}

	v := New(testRegistry(), WithLanguageScreen(textfilter.NewProfanityFilter()))
	first := v.Validate(c)
	second := v.Validate(c)

	assert.Equal(t, first.Errors, second.Errors)
	assert.Equal(t, first.Warnings, second.Warnings)
	assert.Equal(t, first.Order, second.Order)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestValidate_LanguageScreen(t *testing.T) {
	c := cleanCatalog()
	c.Questions[0].Explanation = "Damn, that marsh is big."

	t.Run("off by default", func(t *testing.T) {
		rep := New(testRegistry()).Validate(c)
		assert.Empty(t, rep.ByCode(CodeFlaggedLanguage))
	})

	t.Run("enabled", func(t *testing.T) {
		rep := New(testRegistry(), WithLanguageScreen(textfilter.NewProfanityFilter())).Validate(c)

		flagged := rep.ByCode(CodeFlaggedLanguage)
		require.Len(t, flagged, 1)
		assert.Equal(t, SeverityWarning, flagged[0].Severity)
		assert.Equal(t, `Question beach-1 explanation contains "Damn" (try "Dang")`, flagged[0].Message)
		assert.True(t, rep.OK())
	})
}

func TestValidate_NilCatalog(t *testing.T) {
	rep := New(testRegistry()).Validate(nil)

	assert.True(t, rep.OK())
	assert.NotNil(t, rep.Errors)
	assert.NotNil(t, rep.Warnings)
}

func writeCatalog(t *testing.T, dir string, c *content.Catalog) {
	t.Helper()
	require.NoError(t, emit.WriteFile(filepath.Join(dir, "questions.json"), c.Questions))
	require.NoError(t, emit.WriteFile(filepath.Join(dir, "events.json"), c.Events))
	require.NoError(t, emit.WriteFile(filepath.Join(dir, "summaries.json"), c.Summaries))
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, cleanCatalog())

	c, err := LoadCatalog(dir)
	require.NoError(t, err)
	assert.Equal(t, cleanCatalog(), c)
}

func TestLoadCatalog_NullCorrectIndex(t *testing.T) {
	dir := t.TempDir()
	c := cleanCatalog()
	c.Questions[0].CorrectIndex = nil
	writeCatalog(t, dir, c)

	data, err := os.ReadFile(filepath.Join(dir, "questions.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"correctIndex": null`)

	loaded, err := LoadCatalog(dir)
	require.NoError(t, err)
	assert.Nil(t, loaded.Questions[0].CorrectIndex)
}

func questionJSON(t *testing.T, q content.Question, overrides map[string]any) map[string]any {
	t.Helper()
	data, err := json.Marshal(q)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for k, v := range overrides {
		m[k] = v
	}
	return m
}

func TestLoadCatalog_MalformedValuesAreReported(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, cleanCatalog())
	questions := []map[string]any{
		questionJSON(t, question("beach-1", "start"), nil),
		questionJSON(t, question("q-half", "start"), map[string]any{"correctIndex": 1.5}),
		questionJSON(t, question("q-string", "start"), map[string]any{"correctIndex": "2"}),
		questionJSON(t, question("q-answers", "start"), map[string]any{"answers": "A|B|C|D"}),
		questionJSON(t, question("q-moon", "moon"), map[string]any{"correctIndex": 2.0}),
	}
	require.NoError(t, emit.WriteFile(filepath.Join(dir, "questions.json"), questions))

	c, err := LoadCatalog(dir)
	require.NoError(t, err)
	require.Len(t, c.Questions, 5)
	assert.Nil(t, c.Questions[1].CorrectIndex)
	assert.Nil(t, c.Questions[2].CorrectIndex)
	assert.Nil(t, c.Questions[3].Answers)
	require.NotNil(t, c.Questions[4].CorrectIndex)
	assert.Equal(t, 2, *c.Questions[4].CorrectIndex)

	rep := New(testRegistry()).Validate(c)
	assert.ElementsMatch(t, []string{
		"Question q-half has invalid correctIndex",
		"Question q-string has invalid correctIndex",
		"Question q-answers must have 4 answers",
		"Question q-moon has unknown locationId moon",
	}, rep.ErrorMessages())
}

func TestLoadCatalog_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadCatalog(t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "questions.json")
	})

	t.Run("invalid json", func(t *testing.T) {
		dir := t.TempDir()
		writeCatalog(t, dir, cleanCatalog())
		require.NoError(t, os.WriteFile(filepath.Join(dir, "events.json"), []byte("[{"), 0644))

		_, err := LoadCatalog(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid JSON")
	})

	t.Run("unknown field", func(t *testing.T) {
		dir := t.TempDir()
		writeCatalog(t, dir, cleanCatalog())
		data := `[{"locationId":"start","title":"x","summary":"y","keyTakeaway":"z","tags":{"ngss":[],"epc":[],"topic":[]},"extra":1}]`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "summaries.json"), []byte(data), 0644))

		_, err := LoadCatalog(dir)
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "strict JSON"))
	})
}
