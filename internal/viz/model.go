package viz

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/stardrop/internal/container"
	"github.com/san-kum/stardrop/internal/dynamo"
)

const (
	width           = 60
	height          = 24
	historyCapacity = 600
	warmupFrames    = 120
)

// Jar is everything the live view needs from the simulator. Drawing goes
// through the embedded Reader only.
type Jar interface {
	dynamo.Reader
	AddStar(x, y, z float64) (int, error)
	Step(dt float64)
	Warmup(n int)
	SettleAll()
	Reset()
	HasActiveStars() bool
	Capacity() int
	Active() int
}

// Spawner picks where the next star is dropped.
type Spawner func() (x, y, z float64)

type TickMsg time.Time

// Model is the live jar view: it plays the host render loop, clamping the
// frame delta before every Step.
type Model struct {
	jar        Jar
	shape      container.Shape
	spawn      Spawner
	name       string
	frameDt    float64
	maxFrameDt float64
	lastTick   time.Time
	t          float64
	canvas     *Canvas
	running    bool
	theme      int
	status     string
	active     []float64
	recording  bool
	frames     []*image.Paletted
	showHelp   bool
}

func NewModel(name string, jar Jar, shape container.Shape, spawn Spawner, frameDt, maxFrameDt float64) Model {
	return Model{
		jar:        jar,
		shape:      shape,
		spawn:      spawn,
		name:       name,
		frameDt:    frameDt,
		maxFrameDt: maxFrameDt,
		canvas:     NewCanvas(width, height),
		running:    true,
		active:     make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd {
	return tick(m.frameDt)
}

func tick(dt float64) tea.Cmd {
	return tea.Tick(time.Duration(dt*float64(time.Second)), func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
			m.lastTick = time.Time{}
		case "a":
			m.addStar()
		case "s":
			m.jar.SettleAll()
			m.status = "settled all"
		case "w":
			m.jar.Warmup(warmupFrames)
			m.status = fmt.Sprintf("warmed up %d frames", warmupFrames)
		case "r":
			m.jar.Reset()
			m.t = 0
			m.active = m.active[:0]
			m.status = "reset"
		case "t":
			m.theme = nextTheme(m.theme)
		case "g":
			if m.recording {
				if err := m.saveGIF("stardrop.gif"); err != nil {
					m.status = "gif: " + err.Error()
				} else {
					m.status = "saved stardrop.gif"
				}
				m.recording = false
				m.frames = nil
			} else {
				m.recording = true
				m.frames = make([]*image.Paletted, 0)
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.advance(time.Time(msg))
		}
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, tick(m.frameDt)
	}
	return m, nil
}

func (m *Model) addStar() {
	x, y, z := m.spawn()
	if _, err := m.jar.AddStar(x, y, z); errors.Is(err, dynamo.ErrStoreFull) {
		m.status = "jar is full"
		return
	}
	m.status = ""
}

// advance steps once using the wall clock delta since the previous tick,
// clamped to maxFrameDt. Nothing is stepped while every star is settled.
func (m *Model) advance(now time.Time) {
	dt := m.frameDt
	if !m.lastTick.IsZero() {
		dt = now.Sub(m.lastTick).Seconds()
	}
	m.lastTick = now
	dt = min(dt, m.maxFrameDt)

	if m.jar.HasActiveStars() {
		m.jar.Step(dt)
	}
	m.t += dt

	m.active = append(m.active, float64(m.jar.Active()))
	if len(m.active) > historyCapacity {
		m.active = m.active[1:]
	}
}

func (m *Model) draw() {
	m.canvas.Clear()
	DrawJar(m.canvas, m.shape, m.jar)
}

func (m Model) View() string {
	theme := Themes[m.theme]
	m.draw()
	canvasView := glassStyle(theme).Render(m.canvas.String())

	count, capacity := m.jar.Count(), m.jar.Capacity()
	settled := count - m.jar.Active()

	var s strings.Builder
	s.WriteString(headerStyle(theme).Render(strings.ToUpper(m.name)) + "\n")
	status := "RUNNING"
	switch {
	case !m.running:
		status = "PAUSED"
	case !m.jar.HasActiveStars():
		status = "IDLE"
	}
	if m.recording {
		status += " ● REC"
	}
	s.WriteString(status + "\n\n")

	if len(m.active) > 1 {
		chart := asciigraph.Plot(m.active, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Falling"))
		s.WriteString(graphStyle.Foreground(theme.Accent).Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.t)) + "\n")
	s.WriteString(labelStyle.Render("Stars") + valueStyle.Render(fmt.Sprintf("%d / %d", count, capacity)) + "\n")
	s.WriteString(labelStyle.Render("Falling") + valueStyle.Render(fmt.Sprintf("%d", m.jar.Active())) + "\n")
	s.WriteString(labelStyle.Render("Settled") + valueStyle.Render(fmt.Sprintf("%d", settled)) + "\n")
	fill := 0.0
	if capacity > 0 {
		fill = float64(count) / float64(capacity)
	}
	s.WriteString(labelStyle.Render("Fill") + lipgloss.NewStyle().Foreground(theme.Star).Render(ProgressBar(fill, 16)) + "\n")

	if m.status != "" {
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.Warning).Render(m.status) + "\n")
	}
	s.WriteString(helpStyle.Render("─────────────────────\nSP:Pause A:Add S:Settle\nW:Warmup R:Reset Q:Quit\nT:Theme  G:Record ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  A        - Drop a star              ║
║  S        - Settle every star        ║
║  W        - Warm up (fast-forward)   ║
║  R        - Empty the jar            ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// Run starts the live view on the alternate screen and blocks until quit.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
