package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the mold banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"                 _     _ ", "#818cf8"},
		{"  _ __ ___   ___ | | __| |", "#a78bfa"},
		{" | '_ ` _ \\ / _ \\| |/ _` |", "#c084fc"},
		{" | | | | | | (_) | | (_| |", "#e879f9"},
		{" |_| |_| |_|\\___/|_|\\__,_|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String(" v"+version).Faint())
	fmt.Fprintln(w)
}

// Error formats an error line, in red when the terminal supports color.
func Error(msg string) string {
	p := termenv.ColorProfile()
	return termenv.String("error: " + msg).Foreground(p.Color("#fb7185")).Bold().String()
}

// Label formats a message category.
func Label(s string) string {
	p := termenv.ColorProfile()
	return termenv.String(s).Foreground(p.Color("#a78bfa")).String()
}
