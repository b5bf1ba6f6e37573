// Package tui is the interactive buffer explorer: pick a preset, then
// adjust concentrations and temperature and watch the equilibrium follow.
package tui

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/ionize/internal/chem"
	"github.com/san-kum/ionize/internal/config"
	"github.com/san-kum/ionize/internal/equilibrium"
	"github.com/san-kum/ionize/internal/ion"
	"github.com/san-kum/ionize/internal/solution"
	"github.com/san-kum/ionize/internal/viz"
)

const (
	historyLen = 60
	stepFactor = 1.25
)

type screen int

const (
	screenMenu screen = iota
	screenExplore
)

type Explorer struct {
	screen   screen
	db       solution.Resolver
	presets  []string
	cursor   int
	selected string

	ions        []*ion.Ion
	conc        []float64
	temperature float64
	row         int
	editing     bool
	editBuf     string
	theme       int

	eq      equilibrium.State
	props   []solution.Properties
	sigma   float64
	beta    float64
	err     error
	history []float64

	width  int
	height int
}

func NewExplorer(db solution.Resolver) *Explorer {
	return &Explorer{
		screen:      screenMenu,
		db:          db,
		presets:     config.ListPresets(),
		temperature: chem.ReferenceT,
		width:       80,
		height:      24,
	}
}

func (m Explorer) Init() tea.Cmd { return nil }

func (m Explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m Explorer) handleKey(msg tea.KeyMsg) (Explorer, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.screen {
	case screenMenu:
		return m.menuKey(msg)
	case screenExplore:
		if m.editing {
			return m.editKey(msg), nil
		}
		return m.exploreKey(msg)
	}
	return m, nil
}

func (m Explorer) menuKey(msg tea.KeyMsg) (Explorer, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.presets[m.cursor]
		m.load()
		m.screen = screenExplore
		return m, tea.ClearScreen
	}
	return m, nil
}

func (m Explorer) exploreKey(msg tea.KeyMsg) (Explorer, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.screen = screenMenu
		return m, tea.ClearScreen
	case "up", "k":
		if m.row > 0 {
			m.row--
		}
	case "down", "j":
		if m.row < len(m.ions)-1 {
			m.row++
		}
	case "+", "=", "right", "l":
		m.scale(stepFactor)
	case "-", "_", "left", "h":
		m.scale(1 / stepFactor)
	case "]":
		m.temperature = math.Min(m.temperature+1, chem.BoilingT)
		m.solve()
	case "[":
		m.temperature = math.Max(m.temperature-1, chem.FreezingT)
		m.solve()
	case "enter":
		if len(m.ions) > 0 {
			m.editing = true
			m.editBuf = strconv.FormatFloat(m.conc[m.row], 'g', 4, 64)
		}
	case "r":
		m.load()
	case "t":
		m.theme = (m.theme + 1) % len(viz.Themes)
		viz.SetTheme(viz.Themes[m.theme].Name)
	}
	return m, nil
}

func (m Explorer) editKey(msg tea.KeyMsg) Explorer {
	switch msg.String() {
	case "enter":
		if v, err := strconv.ParseFloat(m.editBuf, 64); err == nil && v >= 0 {
			m.conc = slices.Clone(m.conc)
			m.conc[m.row] = v
			m.solve()
		}
		m.editing = false
		m.editBuf = ""
	case "esc":
		m.editing = false
		m.editBuf = ""
	case "backspace":
		if len(m.editBuf) > 0 {
			m.editBuf = m.editBuf[:len(m.editBuf)-1]
		}
	default:
		if s := msg.String(); len(s) == 1 {
			c := s[0]
			if (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == '-' {
				m.editBuf += s
			}
		}
	}
	return m
}

func (m *Explorer) scale(f float64) {
	if len(m.ions) == 0 {
		return
	}
	m.conc = slices.Clone(m.conc)
	m.conc[m.row] *= f
	m.solve()
}

// load resets the composition to the selected preset.
func (m *Explorer) load() {
	m.history = nil
	m.row = 0
	cfg := config.GetPreset(m.selected)
	if cfg == nil {
		m.err = fmt.Errorf("unknown preset %q", m.selected)
		return
	}
	s, err := cfg.Build(m.db)
	if err != nil {
		m.err = err
		m.ions, m.conc = nil, nil
		return
	}
	m.ions = s.Ions()
	m.conc = s.Concentrations()
	m.temperature = s.Temperature()
	m.solve()
}

func (m *Explorer) solve() {
	m.err = nil
	s, err := solution.New(m.ions, m.conc, solution.WithTemperature(m.temperature))
	if err == nil {
		m.eq, err = s.Equilibrium()
	}
	if err == nil {
		m.props, err = s.Properties()
	}
	if err == nil {
		m.sigma, err = s.Conductivity()
	}
	if err == nil {
		m.beta, err = s.BufferingCapacity()
	}
	if err != nil {
		m.err = err
		return
	}
	m.history = append(m.history, m.eq.PH)
	if len(m.history) > historyLen {
		m.history = m.history[len(m.history)-historyLen:]
	}
}

func (m Explorer) View() string {
	switch m.screen {
	case screenMenu:
		return m.viewMenu()
	case screenExplore:
		return m.viewExplore()
	}
	return ""
}

func (m Explorer) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n  " + viz.Title.Render("ionize") + viz.Subtle.Render("  buffer explorer") + "\n\n")
	for i, name := range m.presets {
		line := "  " + name
		if i == m.cursor {
			line = viz.Selected.Render("▸ " + name)
		}
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("\n  " + viz.KeyHint.Render("↑/↓ select · enter open · q quit") + "\n")
	return b.String()
}

func (m Explorer) viewExplore() string {
	var b strings.Builder
	b.WriteString("\n  " + viz.Header.Render(m.selected) + "\n\n")

	if m.err != nil {
		b.WriteString("  " + viz.Error.Render("error: "+m.err.Error()) + "\n\n")
	} else {
		b.WriteString(fmt.Sprintf("  %s %s   %s %s   %s %s\n",
			viz.Label.Render("pH"), viz.PH(m.eq.PH),
			viz.Label.Render("I"), viz.Value.Render(fmt.Sprintf("%.4g M", m.eq.IonicStrength)),
			viz.Label.Render("T"), viz.Value.Render(fmt.Sprintf("%.1f °C", m.temperature))))
		b.WriteString(fmt.Sprintf("  %s %s   %s %s\n\n",
			viz.Label.Render("σ"), viz.Value.Render(fmt.Sprintf("%.4g S/m", m.sigma)),
			viz.Label.Render("β"), viz.Value.Render(fmt.Sprintf("%.4g M/pH", m.beta))))
		for _, line := range strings.Split(viz.PHScale(m.eq.PH, 43), "\n") {
			b.WriteString("  " + line + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(viz.Label.Render(fmt.Sprintf("    %-24s %10s %8s %11s  %s", "ion", "c (M)", "z", "μ (m²/Vs)", "current")) + "\n")
	for k, i := range m.ions {
		var z, mu, tr float64
		if m.err == nil && k < len(m.props) {
			z, mu, tr = m.props[k].Charge, m.props[k].Mobility, m.props[k].Transference
		}
		row := fmt.Sprintf("%-24s %10.4g %8.3f %11.3g  %s", i.Name(), m.conc[k], z, mu, viz.Bar(tr, 12))
		if k == m.row {
			if m.editing {
				row = fmt.Sprintf("%-24s %10s", i.Name(), m.editBuf+"▏")
			}
			b.WriteString("  " + viz.Selected.Render("▸ ") + row + "\n")
		} else {
			b.WriteString("    " + row + "\n")
		}
	}

	b.WriteString("\n  " + viz.Label.Render("pH history ") + viz.Sparkline(m.history, historyLen) + "\n")
	b.WriteString("\n  " + viz.KeyHint.Render("↑/↓ ion · +/- concentration · enter set · [/] temperature · r reset · t theme · esc back") + "\n")
	return b.String()
}
