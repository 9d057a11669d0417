package logger

// Output controls what categories of information are shown at each verbosity level.
//
// Unlike log levels (which filter by severity), output categories control
// WHAT types of information are displayed regardless of severity.
//
// Verbosity Levels:
//
//	0 (default) - User-facing output only: results, errors, final status
//	1 (-v)      - + Startup banner, exploration progress
//	3 (-vvv)    - + Inbound websocket messages

// OutputCategory defines a category of output that can be enabled/disabled
type OutputCategory int

const (
	// Level 1 (-v) - Informational
	OutputStartup  OutputCategory = iota // Startup banner, config summary
	OutputProgress                       // Expansion timing and cache size

	// Level 3 (-vvv) - Debug
	OutputWSMessages // Inbound websocket messages
)

// categoryLevels maps each output category to its minimum verbosity level
var categoryLevels = map[OutputCategory]int{
	OutputStartup:  VerbosityInfo,
	OutputProgress: VerbosityInfo,

	OutputWSMessages: VerbosityTrace,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		// Unknown category, default to highest verbosity required
		return verbosity >= VerbosityAll
	}
	return verbosity >= minLevel
}

// categoryNames provides human-readable names for output categories
var categoryNames = map[OutputCategory]string{
	OutputStartup:    "startup",
	OutputProgress:   "progress",
	OutputWSMessages: "ws-messages",
}

// CategoryName returns the human-readable name for an output category
func CategoryName(category OutputCategory) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return "unknown"
}
