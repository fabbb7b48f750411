// Package theme defines color themes for the hflow planner TUI.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme maps the planner's color roles to concrete colors.
type Theme struct {
	Name         string
	Background   lipgloss.Color // screen background
	Surface      lipgloss.Color // cards and panels
	Border       lipgloss.Color
	BorderFocus  lipgloss.Color // selected category, focused dialog
	TextDim      lipgloss.Color // hints, disabled keys
	TextMuted    lipgloss.Color // labels
	TextPrimary  lipgloss.Color // figures and body text
	Accent       lipgloss.Color // active step, slider knob, chart bars
	AccentBright lipgloss.Color
	Positive     lipgloss.Color // completed actions, email sent
	Warning      lipgloss.Color // narrow-terminal notice
	Negative     lipgloss.Color // failures and validation errors
	Heading      lipgloss.Color // overlay section titles
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default theme, a warm paper-inspired dark palette.
var FlexokiDark = Theme{
	Name:         "flexoki-dark",
	Background:   lipgloss.Color("#100F0F"),
	Surface:      lipgloss.Color("#1C1B1A"),
	Border:       lipgloss.Color("#403E3C"),
	BorderFocus:  lipgloss.Color("#3AA99F"),
	TextDim:      lipgloss.Color("#575653"),
	TextMuted:    lipgloss.Color("#878580"),
	TextPrimary:  lipgloss.Color("#FFFCF0"),
	Accent:       lipgloss.Color("#3AA99F"),
	AccentBright: lipgloss.Color("#5BC8BE"),
	Positive:     lipgloss.Color("#879A39"),
	Warning:      lipgloss.Color("#DA702C"),
	Negative:     lipgloss.Color("#D14D41"),
	Heading:      lipgloss.Color("#24837B"),
}

// CatppuccinMocha is a soft pastel palette.
var CatppuccinMocha = Theme{
	Name:         "catppuccin-mocha",
	Background:   lipgloss.Color("#1E1E2E"),
	Surface:      lipgloss.Color("#313244"),
	Border:       lipgloss.Color("#585B70"),
	BorderFocus:  lipgloss.Color("#89B4FA"),
	TextDim:      lipgloss.Color("#6C7086"),
	TextMuted:    lipgloss.Color("#A6ADC8"),
	TextPrimary:  lipgloss.Color("#CDD6F4"),
	Accent:       lipgloss.Color("#89B4FA"),
	AccentBright: lipgloss.Color("#B4D0FB"),
	Positive:     lipgloss.Color("#A6E3A1"),
	Warning:      lipgloss.Color("#FAB387"),
	Negative:     lipgloss.Color("#F38BA8"),
	Heading:      lipgloss.Color("#94E2D5"),
}

// TokyoNight is a cool blue and purple palette.
var TokyoNight = Theme{
	Name:         "tokyo-night",
	Background:   lipgloss.Color("#1A1B26"),
	Surface:      lipgloss.Color("#24283B"),
	Border:       lipgloss.Color("#565F89"),
	BorderFocus:  lipgloss.Color("#7AA2F7"),
	TextDim:      lipgloss.Color("#565F89"),
	TextMuted:    lipgloss.Color("#A9B1D6"),
	TextPrimary:  lipgloss.Color("#C0CAF5"),
	Accent:       lipgloss.Color("#7AA2F7"),
	AccentBright: lipgloss.Color("#A9C1FF"),
	Positive:     lipgloss.Color("#9ECE6A"),
	Warning:      lipgloss.Color("#FF9E64"),
	Negative:     lipgloss.Color("#F7768E"),
	Heading:      lipgloss.Color("#7DCFFF"),
}

// Terminal sticks to the 16 ANSI colors for maximum compatibility.
var Terminal = Theme{
	Name:         "terminal",
	Background:   lipgloss.Color("0"),
	Surface:      lipgloss.Color("0"),
	Border:       lipgloss.Color("8"),
	BorderFocus:  lipgloss.Color("6"),
	TextDim:      lipgloss.Color("8"),
	TextMuted:    lipgloss.Color("7"),
	TextPrimary:  lipgloss.Color("15"),
	Accent:       lipgloss.Color("6"),
	AccentBright: lipgloss.Color("14"),
	Positive:     lipgloss.Color("2"),
	Warning:      lipgloss.Color("3"),
	Negative:     lipgloss.Color("1"),
	Heading:      lipgloss.Color("6"),
}

// All available themes.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// Names lists the available theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// Lookup returns the theme with the given name.
func Lookup(name string) (Theme, bool) {
	for _, t := range All {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}

// SetActive sets the active theme by name and reports whether it was known.
func SetActive(name string) bool {
	t, ok := Lookup(name)
	if !ok {
		t = FlexokiDark
	}
	Active = t
	return ok
}
