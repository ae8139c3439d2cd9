// Package tui renders a running simulation in the terminal: a braille
// projection of the atom cloud next to live thermo readouts and energy
// history charts.
package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/stevetorr/flare-pp/internal/atoms"
	"github.com/stevetorr/flare-pp/internal/md"
)

const (
	canvasWidth  = 46
	canvasHeight = 18
	historyCap   = 600

	// Oblique projection factor for the depth axis.
	shear = 0.35
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(44)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model drives a runner from the UI event loop, advancing a few steps
// per frame so the terminal stays responsive regardless of system size.
type Model struct {
	runner       *md.Runner
	title        string
	stepsPerTick int
	running      bool
	showStd      bool
	err          error
	canvas       *Canvas
	peHistory    []float64
	stdHistory   []float64
}

func NewModel(runner *md.Runner, title string, stepsPerTick int) Model {
	if stepsPerTick < 1 {
		stepsPerTick = 1
	}
	return Model{
		runner:       runner,
		title:        title,
		stepsPerTick: stepsPerTick,
		running:      true,
		showStd:      len(runner.Arena().Stds) > 0,
		canvas:       NewCanvas(canvasWidth, canvasHeight),
		peHistory:    make([]float64, 0, historyCap),
		stdHistory:   make([]float64, 0, historyCap),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "+", "=":
			if m.stepsPerTick < 256 {
				m.stepsPerTick *= 2
			}
		case "-", "_":
			if m.stepsPerTick > 1 {
				m.stepsPerTick /= 2
			}
		}
	case TickMsg:
		if m.running && m.err == nil {
			for i := 0; i < m.stepsPerTick; i++ {
				if err := m.runner.Step(); err != nil {
					m.err = err
					m.running = false
					break
				}
			}
			th := m.runner.Thermo()
			m.peHistory = appendCapped(m.peHistory, th.Potential)
			if m.showStd {
				m.stdHistory = appendCapped(m.stdHistory, th.MaxStd)
			}
		}
		m.draw()
		return m, tick()
	}
	return m, nil
}

func appendCapped(hist []float64, v float64) []float64 {
	hist = append(hist, v)
	if len(hist) > historyCap {
		hist = hist[1:]
	}
	return hist
}

// draw projects the owned atoms and the cell frame onto the canvas
// with an oblique projection: the y axis recedes into the screen.
func (m *Model) draw() {
	m.canvas.Clear()
	st := m.runner.Structure()
	dw, dh := m.canvas.DotSize()

	uMin, uMax, vMin, vMax := bounds(st)
	uRange, vRange := uMax-uMin, vMax-vMin
	if uRange <= 0 {
		uRange = 1
	}
	if vRange <= 0 {
		vRange = 1
	}
	sx := float64(dw-3) / uRange
	sy := float64(dh-3) / vRange
	if sy < sx {
		sx = sy
	}

	dot := func(x, y, z float64) (int, int) {
		u := x + shear*y
		v := z + shear*y
		return 1 + int((u-uMin)*sx), dh - 2 - int((v-vMin)*sx)
	}

	if st.Cell.Periodic() {
		L := st.Cell.L
		var corner [8][2]int
		for i := 0; i < 8; i++ {
			x := float64(i&1) * L[0]
			y := float64(i>>1&1) * L[1]
			z := float64(i>>2&1) * L[2]
			corner[i][0], corner[i][1] = dot(x, y, z)
		}
		for i := 0; i < 8; i++ {
			for _, j := range []int{i ^ 1, i ^ 2, i ^ 4} {
				if j > i {
					m.canvas.DrawLine(corner[i][0], corner[i][1], corner[j][0], corner[j][1])
				}
			}
		}
	}

	for i := 0; i < st.NLocal; i++ {
		x, y := dot(st.Pos[3*i], st.Pos[3*i+1], st.Pos[3*i+2])
		m.canvas.Set(x, y)
		m.canvas.Set(x+1, y)
	}
}

// bounds returns the projected extent of the cell frame, or of the
// atoms themselves under open boundaries.
func bounds(st *atoms.Structure) (uMin, uMax, vMin, vMax float64) {
	first := true
	take := func(x, y, z float64) {
		u, v := x+shear*y, z+shear*y
		if first {
			uMin, uMax, vMin, vMax = u, u, v, v
			first = false
			return
		}
		uMin = math.Min(uMin, u)
		uMax = math.Max(uMax, u)
		vMin = math.Min(vMin, v)
		vMax = math.Max(vMax, v)
	}

	if st.Cell.Periodic() {
		L := st.Cell.L
		for i := 0; i < 8; i++ {
			take(float64(i&1)*L[0], float64(i>>1&1)*L[1], float64(i>>2&1)*L[2])
		}
		return
	}
	for i := 0; i < st.NLocal; i++ {
		take(st.Pos[3*i], st.Pos[3*i+1], st.Pos[3*i+2])
	}
	return
}

func (m Model) View() string {
	th := m.runner.Thermo()

	status := "RUNNING"
	if m.err != nil {
		status = "ERROR"
	} else if !m.running {
		status = "PAUSED"
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(status + "\n")

	if len(m.peHistory) > 1 {
		chart := asciigraph.Plot(m.peHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Potential energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	if m.showStd && len(m.stdHistory) > 1 {
		chart := asciigraph.Plot(m.stdHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Max uncertainty"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	s.WriteString("\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Step", fmt.Sprintf("%d", th.Step))
	row("Time", fmt.Sprintf("%.3f ps", th.Time))
	row("Temp", fmt.Sprintf("%.1f K", th.Temp))
	row("Potential", fmt.Sprintf("%.4f eV", th.Potential))
	row("Kinetic", fmt.Sprintf("%.4f eV", th.Kinetic))
	row("Total", fmt.Sprintf("%.4f eV", th.Total))
	if m.showStd {
		row("Max std", fmt.Sprintf("%.4g", th.MaxStd))
	}
	row("Rebuilds", fmt.Sprintf("%d", m.runner.Rebuilds()))
	row("Steps/frame", fmt.Sprintf("%d", m.stepsPerTick))

	if m.err != nil {
		s.WriteString("\n" + warnStyle.Render(m.err.Error()) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause  +/-:Speed  Q:Quit"))

	canvasView := canvasStyle.Render(m.canvas.String())
	statsView := statsStyle.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}
