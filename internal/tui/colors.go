package tui

// Color constants for the studytrack TUI theme
const (
	ColorBorder = "#3A3F55" // Grey-blue

	// Text Colors
	ColorPrimaryText   = "#E6EAF2" // Primary text (labels, titles)
	ColorSecondaryText = "#B1B8C7" // Secondary text - subtle purple-tinted grey
	ColorDisabledText  = "#6D7383" // Disabled/muted text
	ColorHelpText      = "240"     // Dark grey for help text

	// Accent Colors (Purple theme)
	ColorAccentMain   = "#7C3AED" // Logo, accent elements, active borders
	ColorAccentBright = "#A78BFA" // Running clock, highlights

	// State Colors
	ColorError   = "#EF4444" // Rejected transitions
	ColorSuccess = "#22C55E" // Saved sessions
	ColorWarning = "#F59E0B" // Paused clock
)
