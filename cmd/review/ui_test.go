package main

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baytides/climate-quest/internal/report"
	"github.com/baytides/climate-quest/pkg/content"
	"github.com/baytides/climate-quest/pkg/validate"
)

type fakeRunner struct {
	rep       *validate.Report
	err       error
	validates int
	runs      int
}

func (f *fakeRunner) Validate(context.Context) (*validate.Report, error) {
	f.validates++
	return f.rep, f.err
}

func (f *fakeRunner) Run(context.Context) (*validate.Report, error) {
	f.runs++
	return f.rep, f.err
}

func failingReport() *validate.Report {
	catalog := &content.Catalog{
		Questions: []content.Question{{
			ID:           "beach-1",
			LocationID:   "beach",
			GradeBand:    content.GradeBand45,
			Difficulty:   content.DifficultyEasy,
			Question:     "What slows coastal erosion?",
			Answers:      []string{"Dune grass", "Seawall paint"},
			CorrectIndex: content.IntPtr(0),
			Tags:         content.NewTags([]string{"4-ESS2-1"}, []string{"Principle II"}, nil),
		}},
	}
	return validate.New(content.NewLocationSet("beach")).Validate(catalog)
}

func sized(t *testing.T, m ReviewUI) ReviewUI {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(ReviewUI)
}

func TestReviewUI_InitValidates(t *testing.T) {
	runner := &fakeRunner{rep: failingReport()}
	m := NewReviewUI(runner, false)

	msg := m.Init()()
	assert.Equal(t, 1, runner.validates)
	assert.Equal(t, 0, runner.runs)

	next, _ := sized(t, m).Update(msg)
	ui := next.(ReviewUI)
	assert.False(t, ui.loading)
	assert.Contains(t, ui.viewport.View(), "beach")
}

func TestReviewUI_ConvertRunsPipeline(t *testing.T) {
	runner := &fakeRunner{rep: failingReport()}
	m := NewReviewUI(runner, true)

	_ = m.Init()()
	assert.Equal(t, 1, runner.runs)
	assert.Equal(t, 0, runner.validates)
}

func TestReviewUI_Rerun(t *testing.T) {
	runner := &fakeRunner{rep: failingReport()}
	m := sized(t, NewReviewUI(runner, false))
	next, _ := m.Update(reportMsg{report: runner.rep})
	m = next.(ReviewUI)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = next.(ReviewUI)
	require.NotNil(t, cmd)
	assert.True(t, m.loading)

	_ = cmd()
	assert.Equal(t, 1, runner.validates)

	// A second r while the first run is still loading is ignored.
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	assert.Nil(t, cmd)
}

func TestReviewUI_CopyPlainReport(t *testing.T) {
	rep := failingReport()
	m := sized(t, NewReviewUI(&fakeRunner{rep: rep}, false))
	var copied string
	m.copy = func(s string) error {
		copied = s
		return nil
	}
	next, _ := m.Update(reportMsg{report: rep})
	m = next.(ReviewUI)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	require.NotNil(t, cmd)
	next, _ = next.(ReviewUI).Update(cmd())

	assert.Equal(t, report.Plain(rep), copied)
	assert.Contains(t, copied, report.FailedHeading)
	assert.Equal(t, "Report copied to clipboard.", next.(ReviewUI).status)
}

func TestReviewUI_CopyFailure(t *testing.T) {
	rep := failingReport()
	m := sized(t, NewReviewUI(&fakeRunner{rep: rep}, false))
	m.copy = func(string) error { return errors.New("no clipboard") }
	next, _ := m.Update(reportMsg{report: rep})

	_, cmd := next.(ReviewUI).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	next, _ = next.(ReviewUI).Update(cmd())
	assert.Equal(t, "Copy failed: no clipboard", next.(ReviewUI).status)
}

func TestReviewUI_CopyBeforeReport(t *testing.T) {
	m := NewReviewUI(&fakeRunner{}, false)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	assert.Nil(t, cmd)
}

func TestReviewUI_Quit(t *testing.T) {
	m := NewReviewUI(&fakeRunner{}, false)
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd := m.Update(key)
		require.NotNil(t, cmd)
		assert.Equal(t, tea.QuitMsg{}, cmd())
	}
}

func TestRenderContent(t *testing.T) {
	rep := failingReport()

	out := renderContent(rep, nil, false, 80)
	assert.Contains(t, out, "Question beach-1 must have 4 answers")
	assert.Contains(t, out, "1 error(s)")

	assert.Contains(t, renderContent(nil, nil, true, 80), "Running checks...")
	assert.Contains(t, renderContent(nil, errors.New("locations missing"), false, 80), "locations missing")
}
