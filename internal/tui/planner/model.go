// Package planner is the interactive entry form for `stoich plan`.
// It collects a target formula, a reagent list and a total amount, and
// validates each with the same parser the non-interactive path uses, so
// a formula that survives the form never fails later in the pipeline.
package planner

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/steveyegge/stoich/internal/formula"
	"github.com/steveyegge/stoich/internal/solve"
)

// Form field indices.
const (
	fieldTarget = iota
	fieldReagents
	fieldAmount
	fieldCount
)

// Inputs is the validated outcome of a completed form.
type Inputs struct {
	Target   string
	Reagents []string
	Amount   decimal.Decimal
	Unit     solve.AmountUnit
}

// Model is the bubbletea model for the planner form.
type Model struct {
	inputs [fieldCount]textinput.Model
	focus  int
	errMsg string

	keys     KeyMap
	help     help.Model
	showHelp bool
	width    int

	done    bool
	aborted bool
	result  Inputs
}

// New creates a planner form model.
func New() Model {
	m := Model{
		keys: DefaultKeyMap(),
		help: help.New(),
	}

	target := textinput.New()
	target.Placeholder = "Li5.5PS4.5Cl1.5"
	target.Prompt = ""
	target.Focus()
	m.inputs[fieldTarget] = target

	reagents := textinput.New()
	reagents.Placeholder = "LiCl, P2S5, Li2S"
	reagents.Prompt = ""
	m.inputs[fieldReagents] = reagents

	amount := textinput.New()
	amount.Placeholder = "1g (or e.g. 0.25mol)"
	amount.Prompt = ""
	m.inputs[fieldAmount] = amount

	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.aborted = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, m.keys.Prev):
			m.setFocus((m.focus + fieldCount - 1) % fieldCount)
			return m, nil

		// Enter on the last field submits; elsewhere it advances like tab.
		case key.Matches(msg, m.keys.Submit) && m.focus == fieldAmount:
			return m.submit()

		case key.Matches(msg, m.keys.Next):
			m.setFocus((m.focus + 1) % fieldCount)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// submit validates the form; on success it quits with the result set.
func (m Model) submit() (tea.Model, tea.Cmd) {
	inputs, field, err := validate(
		m.inputs[fieldTarget].Value(),
		m.inputs[fieldReagents].Value(),
		m.inputs[fieldAmount].Value(),
	)
	if err != nil {
		m.errMsg = err.Error()
		m.setFocus(field)
		return m, nil
	}
	m.errMsg = ""
	m.done = true
	m.result = inputs
	return m, tea.Quit
}

func (m *Model) setFocus(field int) {
	m.focus = field
	for i := range m.inputs {
		if i == field {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

// Done reports whether the form completed with valid inputs.
func (m Model) Done() bool { return m.done }

// Aborted reports whether the user cancelled the form.
func (m Model) Aborted() bool { return m.aborted }

// Result returns the validated inputs; meaningful only when Done.
func (m Model) Result() Inputs { return m.result }

// validate checks the three raw field values. On failure it returns the
// index of the offending field so focus can land there.
func validate(target, reagents, amount string) (Inputs, int, error) {
	target = strings.TrimSpace(target)
	if _, err := formula.Parse(target); err != nil {
		return Inputs{}, fieldTarget, fmt.Errorf("target: %v", err)
	}

	labels := splitReagents(reagents)
	if len(labels) == 0 {
		return Inputs{}, fieldReagents, fmt.Errorf("at least one reagent is required")
	}
	for _, label := range labels {
		if _, err := formula.Parse(label); err != nil {
			return Inputs{}, fieldReagents, fmt.Errorf("reagent %s: %v", label, err)
		}
	}

	value, unit, err := ParseAmount(amount)
	if err != nil {
		return Inputs{}, fieldAmount, err
	}

	return Inputs{
		Target:   target,
		Reagents: labels,
		Amount:   value,
		Unit:     unit,
	}, 0, nil
}

// splitReagents splits a comma- or space-separated reagent list.
func splitReagents(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	out := fields[:0]
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ParseAmount parses an amount literal with an optional unit suffix:
// "1", "1g", "2.5 g", "0.25mol". No suffix means grams.
func ParseAmount(s string) (decimal.Decimal, solve.AmountUnit, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	unit := solve.Grams
	switch {
	case strings.HasSuffix(s, "mol"):
		unit = solve.Moles
		s = strings.TrimSpace(strings.TrimSuffix(s, "mol"))
	case strings.HasSuffix(s, "g"):
		s = strings.TrimSpace(strings.TrimSuffix(s, "g"))
	}
	value, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, unit, fmt.Errorf("invalid amount %q", s)
	}
	if value.Sign() <= 0 {
		return decimal.Zero, unit, fmt.Errorf("amount must be positive, got %s", value)
	}
	return value, unit, nil
}
