package tui

import "github.com/muesli/termenv"

// Styler colors REPL output. The zero value is colorless.
type Styler struct {
	profile termenv.Profile
	enabled bool
}

// NewStyler detects the terminal color profile when color is true.
func NewStyler(color bool) Styler {
	if !color {
		return Styler{profile: termenv.Ascii}
	}
	return Styler{profile: termenv.ColorProfile(), enabled: true}
}

// Result styles an evaluation result.
func (s Styler) Result(text string) string {
	return s.paint(text, "#22c55e")
}

// Error styles an error message.
func (s Styler) Error(text string) string {
	return s.paint(text, "#ef4444")
}

// Prompt styles the input prompt.
func (s Styler) Prompt(text string) string {
	if !s.enabled {
		return text
	}
	return termenv.String(text).Foreground(s.profile.Color("#818cf8")).Bold().String()
}

func (s Styler) paint(text, color string) string {
	if !s.enabled {
		return text
	}
	return termenv.String(text).Foreground(s.profile.Color(color)).String()
}
