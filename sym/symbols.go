// Package sym defines the glyphs actorgraph prints for its commands and
// graph elements. They are stable across the CLI, the banner and docs.
package sym

// Command glyphs
const (
	AM      = "≡" // am: configuration
	DB      = "⊔" // db: the actor/movie store
	Explore = "⋈" // explore: expand an actor into its collaborators
	Serve   = "꩜" // server: REST proxy and websocket sessions
)

// Graph glyphs
const (
	Actor    = "●" // a node
	Selected = "◉" // a selected node
	Costar   = "─" // a co-starring link
	Skeleton = "┄" // the selection path
	Movie    = "▣" // a shared movie
)

// entry binds a glyph to its command and description
type entry struct {
	glyph       string
	command     string
	description string
}

var registry = []entry{
	{AM, "am", "Configuration: settings and where they came from"},
	{DB, "db", "Store: migrate, import, export, statistics"},
	{Explore, "explore", "Explore: expand an actor headlessly"},
	{Serve, "server", "Server: REST proxy and exploration sessions"},
}

// Commands lists the command names in help order
var Commands []string

// SymbolToCommand maps glyph strings to their command names
var SymbolToCommand = map[string]string{}

// CommandToSymbol maps command names to their glyphs
var CommandToSymbol = map[string]string{}

// CommandDescriptions explains each command in one line
var CommandDescriptions = map[string]string{}

func init() {
	for _, e := range registry {
		Commands = append(Commands, e.command)
		SymbolToCommand[e.glyph] = e.command
		CommandToSymbol[e.command] = e.glyph
		CommandDescriptions[e.command] = e.description
	}
}

// For returns the glyph of command, or "" if it has none
func For(command string) string {
	return CommandToSymbol[command]
}

// Node returns the glyph for a graph node
func Node(selected bool) string {
	if selected {
		return Selected
	}
	return Actor
}
