// Package report renders validation reports for terminals and logs.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/reflow/wordwrap"

	"github.com/baytides/climate-quest/pkg/validate"
)

const (
	FailedHeading   = "Content validation failed:"
	WarningsHeading = "Content validation warnings:"
	PassedLine      = "Content validation passed."
)

var (
	failedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")) // red

	warningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")) // yellow

	passedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")) // green

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")). // pink
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	shortfallStyle = cellStyle.
			Foreground(lipgloss.Color("214"))
)

// Options controls how a report is rendered.
type Options struct {
	Width int  // wrap messages to this many columns; 0 disables wrapping
	Color bool // style headings with lipgloss
}

// Write prints the errors of rep to errW and its warnings to warnW. Warnings
// are printed even when validation failed. A passing report ends with
// PassedLine on warnW.
func Write(errW, warnW io.Writer, rep *validate.Report, opts Options) error {
	if !rep.OK() {
		if err := writeList(errW, heading(FailedHeading, failedStyle, opts), rep.Errors, opts); err != nil {
			return err
		}
	}
	if len(rep.Warnings) > 0 {
		if err := writeList(warnW, heading(WarningsHeading, warningStyle, opts), rep.Warnings, opts); err != nil {
			return err
		}
	}
	if rep.OK() {
		if _, err := fmt.Fprintln(warnW, heading(PassedLine, passedStyle, opts)); err != nil {
			return err
		}
	}
	return nil
}

// Plain renders the whole report, errors then warnings, as unstyled text.
func Plain(rep *validate.Report) string {
	var b strings.Builder
	_ = Write(&b, &b, rep, Options{})
	return b.String()
}

func heading(text string, style lipgloss.Style, opts Options) string {
	if opts.Color {
		return style.Render(text)
	}
	return text
}

func writeList(w io.Writer, title string, issues []validate.Issue, opts Options) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	for _, issue := range issues {
		if _, err := fmt.Fprintln(w, bullet(issue.Message, opts.Width)); err != nil {
			return err
		}
	}
	return nil
}

// bullet formats one message as a "- " list item, wrapping long text and
// indenting continuation lines under the first.
func bullet(msg string, width int) string {
	if width <= 2 {
		return "- " + msg
	}
	lines := strings.Split(wordwrap.String(msg, width-2), "\n")
	for i := range lines {
		if i == 0 {
			lines[i] = "- " + lines[i]
		} else {
			lines[i] = "  " + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

// Summary renders one row per location with its question coverage and
// folded tags, in the order locations were first seen.
func Summary(rep *validate.Report) string {
	if len(rep.Order) == 0 {
		return "No locations have content yet."
	}

	rows := make([][]string, 0, len(rep.Order))
	short := make(map[int]bool)
	for i, loc := range rep.Order {
		agg := rep.Locations[loc]
		rows = append(rows, []string{
			loc,
			strconv.Itoa(agg.QuestionCount),
			fmt.Sprintf("%d/%d", agg.QuestionsWithEPC, agg.RequiredEPCQuestions()),
			joinOrDash(agg.NGSSCodes()),
			joinOrDash(agg.EPCCodes()),
		})
		if agg.QuestionsWithEPC < agg.RequiredEPCQuestions() {
			short[i] = true
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))). // dark grey
		Headers("LOCATION", "QUESTIONS", "EP&C TAGGED", "NGSS", "EP&C").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 2 && short[row]:
				return shortfallStyle
			}
			return cellStyle
		})
	return t.Render()
}

func joinOrDash(codes []string) string {
	if len(codes) == 0 {
		return "-"
	}
	return strings.Join(codes, ", ")
}
