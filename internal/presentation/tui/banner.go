package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`              _             _       _   _            `, "#818cf8"},
	{`  _ __   ___ | |_   _  __ _| | ___ | |_| |_ ___ _ __ `, "#a78bfa"},
	{` | '_ \ / _ \| | | | |/ _' | |/ _ \| __| __/ _ \ '__|`, "#c084fc"},
	{` | |_) | (_) | | |_| | (_| | | (_) | |_| ||  __/ |   `, "#e879f9"},
	{` | .__/ \___/|_|\__, |\__, |_|\___/ \__|\__\___|_|   `, "#f472b6"},
	{` |_|            |___/ |___/                          `, "#fb7185"},
}

// PrintBanner writes the polyglotter ASCII art banner followed by the version.
// Colors degrade to plain text when w is not a terminal.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, out.String(line.text).Foreground(out.Color(line.color)))
	}
	if version != "" {
		fmt.Fprintln(w, out.String("  "+version).Faint())
	}
	fmt.Fprintln(w)
}
