package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/san-kum/molopt/internal/driver"
	"github.com/san-kum/molopt/internal/structure"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

// Choice is one entry of the preset menu.
type Choice struct {
	Name     string
	Info     string
	Settings driver.Settings
}

const (
	stateMenu = iota
	stateLive
)

// Picker lets the user choose a preset before starting the live view.
type Picker struct {
	state     int
	cursor    int
	choices   []Choice
	structure *structure.Structure
	log       *zap.Logger
	live      Model
}

func NewPicker(choices []Choice, st *structure.Structure, log *zap.Logger) Picker {
	return Picker{choices: choices, structure: st, log: log}
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.state == stateLive {
		next, cmd := p.live.Update(msg)
		p.live = next.(Model)
		return p, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.choices)-1 {
			p.cursor++
		}
	case "enter", " ":
		if len(p.choices) == 0 {
			return p, nil
		}
		c := p.choices[p.cursor]
		p.live = NewModel(p.structure.Label+" / "+c.Name, c.Settings, p.structure, p.log)
		p.state = stateLive
		return p, p.live.Init()
	}
	return p, nil
}

// Selected returns the highlighted choice.
func (p Picker) Selected() (Choice, bool) {
	if len(p.choices) == 0 {
		return Choice{}, false
	}
	return p.choices[p.cursor], true
}

func (p Picker) View() string {
	if p.state == stateLive {
		return p.live.View()
	}

	var b strings.Builder
	b.WriteString(cyan.Bold(true).Render("molopt") + dim.Render(" · choose a preset") + "\n\n")
	b.WriteString(dim.Render(fmt.Sprintf("%s: %d atoms", p.structure.Label, p.structure.Len())) + "\n\n")
	for i, c := range p.choices {
		cursor, name := "  ", white.Render(c.Name)
		if i == p.cursor {
			cursor, name = yellow.Render("> "), yellow.Bold(true).Render(c.Name)
		}
		info := fmt.Sprintf("%d iterations, shift %.3g", c.Settings.Iterations, c.Settings.MaxShift)
		if c.Info != "" {
			info = c.Info + ", " + info
		}
		b.WriteString(cursor + name + "  " + dim.Render(info) + "\n")
	}
	b.WriteString("\n" + dim.Render("↑/↓ select · enter start · q quit"))
	return b.String()
}
