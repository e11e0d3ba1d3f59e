package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/san-kum/molopt/internal/driver"
	"github.com/san-kum/molopt/internal/energy"
	"github.com/san-kum/molopt/internal/forcefield"
	"github.com/san-kum/molopt/internal/molecule"
	"github.com/san-kum/molopt/internal/structure"
)

const (
	width           = 60
	height          = 20
	historyCapacity = 600
	tickInterval    = time.Second / 30
)

// Snapshot is one recorded configuration for replay.
type Snapshot struct {
	Iteration int
	Positions []molecule.Vec3
	Energy    energy.State
	Accepted  bool
}

type TickMsg time.Time

// Model steps an optimization experiment on every tick and draws the
// working structure.
type Model struct {
	label        string
	settings     driver.Settings
	source       *structure.Structure
	log          *zap.Logger
	exp          *driver.Experiment
	stepsPerTick int

	iteration int
	current   energy.State
	initial   energy.State
	accepted  int
	energies  []float64
	history   []Snapshot
	playHead  int
	err       error

	canvas   *Canvas
	camera   *Camera
	running  bool
	showHelp bool
}

// NewModel prepares a live run of s over a private copy of st.
func NewModel(label string, s driver.Settings, st *structure.Structure, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	if s.Params == nil {
		s.Params = forcefield.Default()
	}
	m := Model{
		label:        label,
		settings:     s,
		source:       st.Clone(),
		log:          log,
		stepsPerTick: 1,
		canvas:       NewCanvas(width, height),
		camera:       NewCamera(),
		running:      true,
	}
	m.reset()
	m.camera.Fit(m.exp.Structure().Positions())
	return m
}

// SetStepsPerTick changes how many optimizer steps run per frame.
func (m *Model) SetStepsPerTick(n int) {
	if n > 0 {
		m.stepsPerTick = n
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles key presses and advances the optimization.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			NextTheme()
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "f":
			m.camera.Fit(m.positions())
		}
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				for k := 0; k < m.stepsPerTick && !m.Done(); k++ {
					m.step()
				}
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		return m, tick()
	}
	return m, nil
}

// Done reports whether every iteration has run or a step failed.
func (m Model) Done() bool {
	return m.err != nil || m.iteration >= m.settings.Iterations
}

func (m Model) Iteration() int        { return m.iteration }
func (m Model) Current() energy.State { return m.current }
func (m Model) Err() error            { return m.err }

// step runs one optimizer iteration on the working structure.
func (m *Model) step() {
	st := m.exp.Structure()
	if m.settings.Rebond && m.iteration > 0 {
		st.Rebond(m.settings.Params.Cutoffs)
	}

	state, err := m.exp.Optimizer().Step(m.iteration, st)
	if err != nil {
		m.err = fmt.Errorf("step %d: %w", m.iteration, err)
		m.running = false
		m.log.Error("live step failed", zap.Error(err))
		return
	}

	accepted := m.exp.Optimizer().Last().Accepted
	if accepted {
		m.accepted++
	}
	m.current = state
	m.energies = append(m.energies, state.Total())
	if len(m.energies) > historyCapacity {
		m.energies = m.energies[1:]
	}

	m.history = append(m.history, Snapshot{
		Iteration: m.iteration,
		Positions: molecule.ClonePositions(st.Positions()),
		Energy:    state,
		Accepted:  accepted,
	})
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
	m.iteration++
}

// scrub moves the replay position through recorded configurations.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

// reset starts a fresh experiment from the input geometry.
func (m *Model) reset() {
	m.exp = driver.NewExperiment(m.settings, m.source, m.log)
	m.iteration = 0
	m.accepted = 0
	m.energies = m.energies[:0]
	m.history = m.history[:0]
	m.playHead = -1
	m.err = nil

	initial, err := m.exp.Evaluator().Evaluate(m.exp.Structure())
	if err != nil {
		m.err = err
		m.running = false
		return
	}
	m.initial = initial
	m.current = initial
}

func (m Model) positions() []molecule.Vec3 {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return m.history[m.playHead].Positions
	}
	return m.exp.Structure().Positions()
}

func (m Model) draw() {
	m.canvas.Clear()
	st := m.exp.Structure()
	if g := st.Graph(); g != nil {
		RenderMolecule(m.canvas, m.camera, m.positions(), g.Bonds())
	} else {
		RenderMolecule(m.canvas, m.camera, m.positions(), nil)
	}
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return lipgloss.NewStyle().Foreground(CurrentTheme.Error).Bold(true).Render("FAILED")
	case m.playHead != -1:
		snap := m.history[m.playHead]
		return statusStyle(m.running).Render(fmt.Sprintf("REPLAY #%d", snap.Iteration))
	case m.Done():
		return statusStyle(true).Render("DONE")
	case !m.running:
		return statusStyle(false).Render("PAUSED")
	}
	return statusStyle(true).Render("RUNNING")
}

// View renders the canvas next to the statistics panel.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	shown := m.current
	if m.playHead != -1 {
		shown = m.history[m.playHead].Energy
	}

	var s strings.Builder
	s.WriteString(headerStyle().Render(strings.ToUpper(m.label)) + "\n")
	s.WriteString(m.status() + "\n\n")

	if chart := EnergyChart(m.energies, 30, 5, "Total energy"); len(m.energies) > 1 && chart != "" {
		s.WriteString(graphStyle().Render(chart) + "\n\n")
	}

	progress := 0.0
	if m.settings.Iterations > 0 {
		progress = float64(m.iteration) / float64(m.settings.Iterations)
	}
	s.WriteString(statLine("Iteration", fmt.Sprintf("%d/%d", m.iteration, m.settings.Iterations)))
	s.WriteString(labelStyle.Render("") + ProgressBar(progress, 20) + "\n")
	s.WriteString(statLine("Atoms", fmt.Sprintf("%d", m.exp.Structure().Len())))
	if g := m.exp.Structure().Graph(); g != nil {
		s.WriteString(statLine("Bonds", fmt.Sprintf("%d", g.BondCount())))
	}
	s.WriteString(statLine("Bond", formatEnergy(shown.Bond)))
	s.WriteString(statLine("VDW", formatEnergy(shown.VDW)))
	s.WriteString(statLine("Total", formatEnergy(shown.Total())))
	s.WriteString(statLine("Drop", formatEnergy(m.initial.Total()-m.current.Total())))
	if m.iteration > 0 {
		rate := float64(m.accepted) / float64(m.iteration)
		s.WriteString(statLine("Accepted", fmt.Sprintf("%d (%.1f%%)", m.accepted, 100*rate)))
	}
	s.WriteString(statLine("Phase", m.exp.Optimizer().Phase().String()))
	if m.err != nil {
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(CurrentTheme.Error).Render(m.err.Error()) + "\n")
	}
	s.WriteString(helpStyle.Render("─────────────────────\nSP:Pause R:Reset Q:Quit\nT:Theme  ?:Help  [ ]:Replay"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Restart from input       ║
║  Q        - Quit                     ║
║  x/y/z    - Rotate (shift reverses)  ║
║  +/-      - Zoom                     ║
║  F        - Fit molecule to view     ║
║  [ ]      - Step through history     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// RunProgram shows m full screen until the user quits.
func RunProgram(m tea.Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
