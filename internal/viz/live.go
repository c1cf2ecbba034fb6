package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/piddle/internal/control"
	"github.com/san-kum/piddle/internal/dynamo"
	"github.com/san-kum/piddle/internal/metrics"
	"github.com/san-kum/piddle/internal/sim"
)

const (
	canvasCols      = 40
	canvasRows      = 12
	historyCapacity = 400
	frameRate       = 30
)

type TickMsg time.Time

// Options describes the loop shown by the live view.
type Options struct {
	Plant      string
	System     dynamo.System
	Integrator dynamo.Integrator
	Loop       *control.Loop
	X0         dynamo.State
	Dt         float64
}

// Model steps a closed loop and renders it.
type Model struct {
	plant  string
	system dynamo.System
	integ  dynamo.Integrator
	sim    *sim.Simulator
	loop   *control.Loop
	stats  []dynamo.Metric

	x0    dynamo.State
	state dynamo.State
	u     dynamo.Control
	t, dt float64
	// ticks advanced per frame to stay near wall-clock speed
	ticksPerFrame int

	measured []float64
	command  []float64

	canvas        *Canvas
	running       bool
	err           error
	params        map[string]float64
	initialParams map[string]float64
	paramKeys     []string
	selected      int
	notice        string
}

func NewModel(opts Options) Model {
	params := opts.Loop.GetParams()
	keys := make([]string, 0, len(params))
	initial := make(map[string]float64, len(params))
	for k, v := range params {
		keys = append(keys, k)
		initial[k] = v
	}
	sort.Strings(keys)

	ticks := int(math.Round(1 / (frameRate * opts.Dt)))
	if ticks < 1 {
		ticks = 1
	}

	m := Model{
		plant:         opts.Plant,
		system:        opts.System,
		integ:         opts.Integrator,
		loop:          opts.Loop,
		x0:            opts.X0.Clone(),
		state:         opts.X0.Clone(),
		u:             make(dynamo.Control, opts.System.ControlDim()),
		dt:            opts.Dt,
		ticksPerFrame: ticks,
		measured:      make([]float64, 0, historyCapacity),
		command:       make([]float64, 0, historyCapacity),
		canvas:        NewCanvas(canvasCols, canvasRows),
		running:       true,
		params:        params,
		initialParams: initial,
		paramKeys:     keys,
	}
	m.attachMetrics()
	return m
}

// attachMetrics rebuilds the running metrics against the current target
// and bounds.
func (m *Model) attachMetrics() {
	upper, lower := m.loop.PID.Bounds()
	m.stats = metrics.Default(m.loop.Target, upper, lower)
	m.sim = sim.New(m.system, m.integ, m.loop, nil)
	for _, s := range m.stats {
		m.sim.AddMetric(s)
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

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
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		}
	case TickMsg:
		if m.running && m.err == nil {
			for i := 0; i < m.ticksPerFrame; i++ {
				if !m.step() {
					break
				}
			}
		}
		return m, tick()
	}
	return m, nil
}

// step advances one control tick and reports whether the loop may continue.
func (m *Model) step() bool {
	next, u, err := m.sim.Advance(m.state, m.t, m.dt)
	if err != nil {
		m.err = err
		return false
	}
	if !next.IsValid() {
		m.err = fmt.Errorf("%w at t=%.2fs", dynamo.ErrInvalidState, m.t)
		return false
	}
	m.state, m.u = next, u
	m.t += m.dt

	m.measured = pushBounded(m.measured, m.state[m.loop.Index])
	m.command = pushBounded(m.command, m.u[0])
	return true
}

func pushBounded(s []float64, v float64) []float64 {
	if len(s) == historyCapacity {
		copy(s, s[1:])
		s = s[:len(s)-1]
	}
	return append(s, v)
}

func (m *Model) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

// adjustParam scales the selected parameter. A zero parameter is nudged off
// zero so it can be grown.
func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	val := m.params[key] * factor
	if m.params[key] == 0 && factor > 1 {
		val = 0.01
	}
	if err := m.loop.SetParam(key, val); err != nil {
		m.notice = err.Error()
		return
	}
	m.notice = ""
	m.params[key] = val
	upper, lower := m.loop.PID.Bounds()
	metrics.Retarget(m.stats, m.loop.Target, upper, lower)
}

// reset restores the initial state, clears the controller and puts every
// parameter back to its starting value.
func (m *Model) reset() {
	m.state = m.x0.Clone()
	m.u = make(dynamo.Control, len(m.u))
	m.t = 0
	m.err = nil
	m.notice = ""
	m.measured = m.measured[:0]
	m.command = m.command[:0]

	_ = m.loop.PID.SetBounds(m.initialParams["upper"], m.initialParams["lower"])
	for k, v := range m.initialParams {
		if k == "upper" || k == "lower" {
			continue
		}
		_ = m.loop.SetParam(k, v)
	}
	for k, v := range m.initialParams {
		m.params[k] = v
	}
	m.loop.Reset()
	m.attachMetrics()
}

func (m Model) View() string {
	drawPlant(m.canvas, m.plant, m.state, m.loop.Target)
	left := lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render(strings.ToUpper(m.plant)),
		canvasStyle.Render(m.canvas.String()),
		m.charts(),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, statsStyle.Render(m.panel()))
}

func (m Model) charts() string {
	if len(m.measured) < 2 {
		return ""
	}
	target := make([]float64, len(m.measured))
	for i := range target {
		target[i] = m.loop.Target
	}
	out := asciigraph.PlotMany([][]float64{m.measured, target},
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Red),
		asciigraph.Caption("measured (green) vs target (red)"),
	)
	u := asciigraph.Plot(m.command,
		asciigraph.Height(4),
		asciigraph.Width(60),
		asciigraph.Caption("control"),
	)
	return graphStyle.Render(out) + "\n\n" + graphStyle.Render(u)
}

func (m Model) panel() string {
	var s strings.Builder

	switch {
	case m.err != nil:
		s.WriteString(statusFailed.Render("STOPPED") + "\n" + valueStyle.Render(m.err.Error()) + "\n\n")
	case m.running:
		s.WriteString(statusRunning.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(statusPaused.Render("PAUSED") + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.t))
	if len(m.state) > m.loop.Index {
		row("Measured", fmt.Sprintf("%.4f", m.state[m.loop.Index]))
	}
	row("Target", fmt.Sprintf("%.4f", m.loop.Target))

	terms := m.loop.PID.Last()
	upper, lower := m.loop.PID.Bounds()
	row("P", fmt.Sprintf("%+.4f", terms.P))
	row("I", fmt.Sprintf("%+.4f", terms.I))
	row("D", fmt.Sprintf("%+.4f", terms.D))
	row("Gate", fmt.Sprintf("%.0f", terms.Gate))
	row("Output", fmt.Sprintf("%+.4f", terms.Output))
	s.WriteString(labelStyle.Render("") + outputBar(terms.Output, lower, upper, 20) + "\n")

	s.WriteString("\nMETRICS\n")
	for _, st := range m.stats {
		row(st.Name(), fmt.Sprintf("%.4f", st.Value()))
	}

	s.WriteString("\nPARAMETERS\n")
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-8s %10.4f", k, m.params[k])
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + valueStyle.Render(line) + "\n")
		}
	}
	if m.notice != "" {
		s.WriteString(statusFailed.Render(m.notice) + "\n")
	}

	s.WriteString(helpStyle.Render("SPACE pause  R reset  Q quit\nTAB select  ↑/↓ tune ±5%"))
	return s.String()
}

// Run starts the live view in the alternate screen.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
