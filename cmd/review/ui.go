package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/baytides/climate-quest/internal/report"
	"github.com/baytides/climate-quest/pkg/validate"
)

const helpLine = "r: re-run • c: copy report • ↑/↓: scroll • q: quit"

// Runner produces a validation report. *pipeline.Pipeline satisfies it.
type Runner interface {
	Validate(ctx context.Context) (*validate.Report, error)
	Run(ctx context.Context) (*validate.Report, error)
}

// ReviewUI is the BubbleTea model for the review screen.
type ReviewUI struct {
	runner   Runner
	convert  bool
	copy     func(string) error
	viewport viewport.Model
	report   *validate.Report
	err      error
	status   string
	loading  bool
	ready    bool
	width    int
	height   int
}

type reportMsg struct {
	report *validate.Report
	err    error
}

type copiedMsg struct {
	err error
}

var (
	panelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewReviewUI(runner Runner, convert bool) ReviewUI {
	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	return ReviewUI{
		runner:   runner,
		convert:  convert,
		copy:     clipboard.WriteAll,
		viewport: vp,
		loading:  true,
	}
}

func (m ReviewUI) Init() tea.Cmd {
	return m.runChecks()
}

func (m ReviewUI) runChecks() tea.Cmd {
	return func() tea.Msg {
		if m.convert {
			rep, err := m.runner.Run(context.Background())
			return reportMsg{rep, err}
		}
		rep, err := m.runner.Validate(context.Background())
		return reportMsg{rep, err}
	}
}

func (m ReviewUI) copyReport() tea.Cmd {
	text := report.Plain(m.report)
	return func() tea.Msg {
		return copiedMsg{m.copy(text)}
	}
}

func (m ReviewUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var vpCmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 4
		m.ready = true
		m.writeContent()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "r":
			if m.loading {
				return m, nil
			}
			m.loading = true
			m.status = ""
			m.writeContent()
			return m, m.runChecks()
		case "c":
			if m.report == nil {
				return m, nil
			}
			return m, m.copyReport()
		}

	case reportMsg:
		m.loading = false
		m.report = msg.report
		m.err = msg.err
		m.writeContent()
		m.viewport.GotoTop()
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.status = "Copy failed: " + msg.err.Error()
		} else {
			m.status = "Report copied to clipboard."
		}
		return m, nil
	}

	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, vpCmd
}

// writeContent rebuilds the viewport text for the current width.
func (m *ReviewUI) writeContent() {
	m.viewport.SetContent(renderContent(m.report, m.err, m.loading, m.viewport.Width))
}

func renderContent(rep *validate.Report, err error, loading bool, width int) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("CLIMATE QUEST CONTENT REVIEW") + "\n\n")

	switch {
	case loading:
		content.WriteString(loadingStyle.Render("Running checks...") + "\n")
		return content.String()
	case err != nil:
		content.WriteString(errorStyle.Render(wordwrap.String("Content pipeline failed: "+err.Error(), width)) + "\n")
		return content.String()
	case rep == nil:
		return content.String()
	}

	content.WriteString(report.Summary(rep) + "\n\n")

	var issues strings.Builder
	_ = report.Write(&issues, &issues, rep, report.Options{Width: width, Color: true})
	content.WriteString(issues.String())
	fmt.Fprintf(&content, "\n%d error(s), %d warning(s)\n", len(rep.Errors), len(rep.Warnings))
	return content.String()
}

func (m ReviewUI) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	footer := promptStyle.Render(helpLine)
	if m.status != "" {
		footer = promptStyle.Render(m.status) + "  " + footer
	}

	return panelStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.viewport.View(),
			"",
			footer,
		),
	)
}
