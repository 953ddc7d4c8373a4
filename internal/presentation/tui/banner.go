package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the REPL banner with the version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"     _                      _ ", "#facc15"},
		{"    (_)___  _____   ______ _| |", "#fbbf24"},
		{"    | / __|/ _ \\ \\ / / _` | |", "#f59e0b"},
		{"    | \\__ \\  __/\\ V / (_| | |", "#f97316"},
		{"   _/ |___/\\___| \\_/ \\__,_|_|", "#ea580c"},
		{"  |__/", "#c2410c"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintf(w, "  %s\n\n", termenv.String("v"+strings.TrimSpace(version)).Faint())
}
