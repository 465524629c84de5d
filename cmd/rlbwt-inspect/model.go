package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-rlbwt/pkg/rlbwt"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(0, 2).
			MarginLeft(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)
)

// maxTableRows caps the runs loaded into the table.
const maxTableRows = 10000

type focus int

const (
	focusTable focus = iota
	focusQuery
)

type keyMap struct {
	Tab   key.Binding
	Enter key.Binding
	Quit  key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch runs/query"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "run query"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("esc", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Enter, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Tab, k.Enter, k.Quit}}
}

type model struct {
	eng    *rlbwt.Engine
	source string
	runs   table.Model
	query  textinput.Model
	help   help.Model
	focus  focus
	result string
	err    error
}

func newModel(eng *rlbwt.Engine, source string) model {
	columns := []table.Column{
		{Title: "#", Width: 8},
		{Title: "Symbol", Width: 8},
		{Title: "Length", Width: 12},
		{Title: "Rows", Width: 24},
	}
	var rows []table.Row
	eng.ForEachRun(func(r rlbwt.RunSpan) bool {
		rows = append(rows, table.Row{
			fmt.Sprint(len(rows)),
			rlbwt.SymbolName(r.Sym),
			fmt.Sprint(r.Length),
			fmt.Sprintf("[%d, %d]", r.FirstRow, r.LastRow),
		})
		return len(rows) < maxTableRows
	})

	ti := textinput.New()
	ti.Placeholder = queryHelp
	ti.CharLimit = 64
	ti.Width = 60

	return model{
		eng:    eng,
		source: source,
		runs:   table.New(table.WithColumns(columns), table.WithRows(rows), table.WithFocused(true), table.WithHeight(12)),
		query:  ti,
		help:   help.New(),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Tab):
			m.toggleFocus()
			return m, nil
		case key.Matches(msg, keys.Enter) && m.focus == focusQuery:
			m.result, m.err = evalQuery(m.eng, m.query.Value())
			m.query.SetValue("")
			return m, nil
		}
	}

	if m.focus == focusQuery {
		m.query, cmd = m.query.Update(msg)
	} else {
		m.runs, cmd = m.runs.Update(msg)
	}
	return m, cmd
}

func (m *model) toggleFocus() {
	if m.focus == focusTable {
		m.focus = focusQuery
		m.runs.Blur()
		m.query.Focus()
		return
	}
	m.focus = focusTable
	m.query.Blur()
	m.runs.Focus()
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("RLBWT " + m.source))
	b.WriteString("\n")

	st := m.eng.Stats()
	stats := fmt.Sprintf("length %d   rows %d   end marker row %d\nruns %d   blocks %d   height %d   %d bytes",
		st.Length, st.LenWithEm, st.EmPos, st.Runs, st.Tree.Blocks, st.Tree.Height, st.MemBytes)
	b.WriteString(statsBoxStyle.Render(stats))
	b.WriteString("\n")

	b.WriteString(contentStyle.Render(m.runs.View()))
	b.WriteString("\n")
	b.WriteString(contentStyle.Render(m.query.View()))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(contentStyle.Render(errorStyle.Render(m.err.Error())))
	case m.result != "":
		b.WriteString(contentStyle.Render(successStyle.Render(m.result)))
	}
	b.WriteString("\n")
	b.WriteString(contentStyle.Render(m.help.View(keys)))
	return b.String()
}
