package cmd

import (
	"fmt"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"os"
)

// setColor applies a --color mode: auto colors only a terminal that did not ask for NO_COLOR
func setColor(mode string) error {
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	case "auto":
		_, noColor := os.LookupEnv("NO_COLOR")
		fd := os.Stdout.Fd()
		color.NoColor = noColor || !(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
	default:
		return fmt.Errorf("unknown color mode %q, expected auto, always or never", mode)
	}
	return nil
}

func withoutColor(f func()) {
	prev := color.NoColor
	color.NoColor = true
	f()
	color.NoColor = prev
}

func title(s string) string {
	if color.NoColor {
		return s
	}
	return color.New(color.Bold, color.Underline).Sprint(s)
}

func rewritten(s string) string {
	if color.NoColor {
		return s
	}
	return color.GreenString(s)
}

func kept(s string) string {
	if color.NoColor {
		return s
	}
	return color.RedString(s)
}

func extra(s string) string {
	if color.NoColor {
		return fmt.Sprintf("(%s)", s)
	}
	return color.New(color.Faint).Sprintf("(%s)", s)
}
