package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const (
	colorModeAutoConstant       = "auto"
	colorModeAlwaysConstant     = "always"
	colorModeNeverConstant      = "never"
	unsupportedColorModeMessage = "unsupported color mode"
	headingColorConstant        = "6"
	// NoColorEnvironmentVariable opts out of automatic coloring when present, regardless of its value.
	NoColorEnvironmentVariable = "NO_COLOR"
)

// ColorMode selects when headings are colored.
type ColorMode string

// Supported color modes.
const (
	ColorModeAuto   ColorMode = ColorMode(colorModeAutoConstant)
	ColorModeAlways ColorMode = ColorMode(colorModeAlwaysConstant)
	ColorModeNever  ColorMode = ColorMode(colorModeNeverConstant)
)

// ErrUnsupportedColorMode indicates an unknown color mode value.
var ErrUnsupportedColorMode = errors.New(unsupportedColorModeMessage)

// ColorModeChoices lists the accepted color mode values.
func ColorModeChoices() []string {
	return []string{colorModeAutoConstant, colorModeAlwaysConstant, colorModeNeverConstant}
}

// ParseColorMode converts user input into a ColorMode.
func ParseColorMode(rawValue string) (ColorMode, error) {
	switch ColorMode(strings.ToLower(strings.TrimSpace(rawValue))) {
	case ColorModeAuto:
		return ColorModeAuto, nil
	case ColorModeAlways:
		return ColorModeAlways, nil
	case ColorModeNever:
		return ColorModeNever, nil
	default:
		return "", fmt.Errorf(unsupportedValueTemplateConstant, ErrUnsupportedColorMode, rawValue)
	}
}

// ColorEnvironment captures the process facts the automatic color decision depends on.
type ColorEnvironment struct {
	OutputIsTerminal bool
	NoColorRequested bool
}

// NewColorEnvironment builds a ColorEnvironment from a terminal probe result and an environment lookup.
func NewColorEnvironment(outputIsTerminal bool, lookupEnvironment func(string) (string, bool)) ColorEnvironment {
	noColorRequested := false
	if lookupEnvironment != nil {
		_, noColorRequested = lookupEnvironment(NoColorEnvironmentVariable)
	}
	return ColorEnvironment{OutputIsTerminal: outputIsTerminal, NoColorRequested: noColorRequested}
}

// Enabled reports whether the mode colors output in the given environment.
func (mode ColorMode) Enabled(environment ColorEnvironment) bool {
	switch mode {
	case ColorModeAlways:
		return true
	case ColorModeNever:
		return false
	default:
		return environment.OutputIsTerminal && !environment.NoColorRequested
	}
}

// NewHeadingColorStyle returns the bold cyan heading style rendered for writer.
// Disabled color renders through the ASCII profile, which leaves text untouched.
func NewHeadingColorStyle(writer io.Writer, colorEnabled bool) lipgloss.Style {
	if writer == nil {
		writer = io.Discard
	}
	colorProfile := termenv.Ascii
	if colorEnabled {
		colorProfile = termenv.ANSI
	}
	renderer := lipgloss.NewRenderer(writer, termenv.WithProfile(colorProfile))
	renderer.SetColorProfile(colorProfile)
	return renderer.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(headingColorConstant)).
		TabWidth(lipgloss.NoTabConversion)
}
