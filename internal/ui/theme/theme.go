package theme

import (
	"charm.land/lipgloss/v2"
)

// Palette tuned for dark terminals.
var (
	Primary   = lipgloss.Color("#60A5FA") // Sky
	Secondary = lipgloss.Color("#2DD4BF") // Teal
	Accent    = lipgloss.Color("#FB923C") // Flag orange
	Success   = lipgloss.Color("#4ADE80")
	Warning   = lipgloss.Color("#FACC15")
	Error     = lipgloss.Color("#F87171")
	Text      = lipgloss.Color("#E5E7EB")
	TextDim   = lipgloss.Color("#9CA3AF")
	BgCard    = lipgloss.Color("#1F2937")
	Border    = lipgloss.Color("#374151")
)

// Text
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Answer states
var (
	// Saved marks a question the service reports as answered.
	Saved = lipgloss.NewStyle().
		Foreground(Success)

	// Pending marks a local edit not yet submitted.
	Pending = lipgloss.NewStyle().
		Foreground(Warning).
		Bold(true)
)

// Controls and overlays
var (
	ButtonActive = lipgloss.NewStyle().
			Background(Primary).
			Foreground(BgCard).
			Bold(true).
			Padding(0, 2)

	ButtonInactive = lipgloss.NewStyle().
			Foreground(TextDim).
			Border(lipgloss.NormalBorder()).
			BorderForeground(Border).
			Padding(0, 2)

	Modal = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.DoubleBorder()).
		BorderForeground(Primary).
		Padding(1, 3)
)
