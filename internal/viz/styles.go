package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Selected = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff00ff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	Label = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888899"))

	Value = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#00ccff")).
		Bold(true)

	Warning = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#ffaa00"))

	Error = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#ff4444"))

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#ffffff")).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(lipgloss.Color("#444466"))

	SparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	SparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	SparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// indicator approximates universal indicator colours at pH 0, 1, ..., 14.
var indicator = []string{
	"#ee1c25", "#f26724", "#f8c611", "#f5ed1c", "#b5d333",
	"#84c341", "#4db749", "#33a94b", "#0ab8b6", "#4690cd",
	"#3853a4", "#5a51a2", "#63459d", "#6c2180", "#49176e",
}

// PHColor returns the indicator colour of pH, clamped to [0, 14] and
// interpolated between whole units.
func PHColor(pH float64) lipgloss.Color {
	if math.IsNaN(pH) {
		return lipgloss.Color("#888888")
	}
	pH = math.Max(0, math.Min(14, pH))
	lo := int(math.Floor(pH))
	if lo >= len(indicator)-1 {
		return lipgloss.Color(indicator[len(indicator)-1])
	}
	t := pH - float64(lo)
	r1, g1, b1 := parseHex(indicator[lo])
	r2, g2, b2 := parseHex(indicator[lo+1])
	return lipgloss.Color(hexColor(
		r1+int(t*float64(r2-r1)),
		g1+int(t*float64(g2-g1)),
		b1+int(t*float64(b2-b1)),
	))
}

// PH renders pH with two decimals in its indicator colour.
func PH(pH float64) string {
	return lipgloss.NewStyle().Bold(true).Foreground(PHColor(pH)).Render(fmt.Sprintf("%.2f", pH))
}

// PHScale renders a 0-14 indicator strip of the given width with a marker
// under pH.
func PHScale(pH float64, width int) string {
	if width < 2 {
		width = 2
	}
	var strip strings.Builder
	for i := 0; i < width; i++ {
		v := 14 * float64(i) / float64(width-1)
		strip.WriteString(lipgloss.NewStyle().Foreground(PHColor(v)).Render("█"))
	}
	pos := int(math.Round(math.Max(0, math.Min(14, pH)) / 14 * float64(width-1)))
	if math.IsNaN(pH) {
		pos = 0
	}
	marker := strings.Repeat(" ", pos) + "▲"
	return strip.String() + "\n" + marker
}

// Bar renders fraction in [0, 1] as a filled bar.
func Bar(fraction float64, width int) string {
	filled := int(math.Round(math.Abs(fraction) * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	if fraction > 0.5 {
		return SparkHigh.Render(bar)
	} else if fraction > 0.1 {
		return SparkMid.Render(bar)
	}
	return SparkLow.Render(bar)
}

// Sparkline renders values as a one-line chart at most width runes wide.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var result strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / rng
		idx := int(norm * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))

		c := string(chars[idx])
		switch {
		case norm > 0.7:
			result.WriteString(SparkHigh.Render(c))
		case norm > 0.3:
			result.WriteString(SparkMid.Render(c))
		default:
			result.WriteString(SparkLow.Render(c))
		}
	}
	return result.String()
}

// BoxWithTitle renders content in a rounded box headed by title.
func BoxWithTitle(title, content string, width int) string {
	box := Panel.Width(width)
	fill := width - lipgloss.Width(title) - 6
	if fill < 0 {
		fill = 0
	}
	header := "╭─ " + Title.Render(title) + " " + strings.Repeat("─", fill) + "╮"
	return header + "\n" + box.Render(content)
}

func Separator(width int) string {
	mid := width / 2
	left := strings.Repeat("─", max(mid-3, 0))
	right := strings.Repeat("─", max(width-mid-3, 0))
	return Subtle.Render(left + " ◆ " + right)
}

func parseHex(hex string) (r, g, b int) {
	if len(hex) != 7 || hex[0] != '#' {
		return 255, 255, 255
	}
	return parseHexByte(hex[1:3]), parseHexByte(hex[3:5]), parseHexByte(hex[5:7])
}

func parseHexByte(s string) int {
	var val int
	for _, c := range s {
		val *= 16
		switch {
		case c >= '0' && c <= '9':
			val += int(c - '0')
		case c >= 'a' && c <= 'f':
			val += int(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			val += int(c - 'A' + 10)
		}
	}
	return val
}

func hexColor(r, g, b int) string {
	return "#" + hexByte(r) + hexByte(g) + hexByte(b)
}

func hexByte(v int) string {
	v = max(0, min(v, 255))
	const hex = "0123456789abcdef"
	return string(hex[v/16]) + string(hex[v%16])
}
