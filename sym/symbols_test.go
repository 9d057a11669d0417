package sym

import (
	"testing"
	"unicode/utf8"
)

func TestSymbolToCommandAndCommandToSymbolAreBidirectional(t *testing.T) {
	for symbol, cmd := range SymbolToCommand {
		got, ok := CommandToSymbol[cmd]
		if !ok {
			t.Errorf("SymbolToCommand has %q → %q, but CommandToSymbol has no entry for %q", symbol, cmd, cmd)
			continue
		}
		if got != symbol {
			t.Errorf("bidirectional mismatch: SymbolToCommand[%q] = %q, but CommandToSymbol[%q] = %q", symbol, cmd, cmd, got)
		}
	}
}

func TestMapsHaveSameSize(t *testing.T) {
	if len(SymbolToCommand) != len(CommandToSymbol) {
		t.Errorf("map size mismatch: SymbolToCommand has %d entries, CommandToSymbol has %d",
			len(SymbolToCommand), len(CommandToSymbol))
	}
	if len(Commands) != len(CommandToSymbol) {
		t.Errorf("Commands has %d entries, CommandToSymbol has %d", len(Commands), len(CommandToSymbol))
	}
}

func TestCommandDescriptionsCoversAllCommands(t *testing.T) {
	for _, cmd := range Commands {
		if CommandDescriptions[cmd] == "" {
			t.Errorf("CommandDescriptions missing entry for command %q", cmd)
		}
	}
}

func TestSymbolsAreSingleRunes(t *testing.T) {
	glyphs := []string{AM, DB, Explore, Serve, Actor, Selected, Costar, Skeleton, Movie}
	seen := make(map[string]bool, len(glyphs))
	for _, g := range glyphs {
		if !utf8.ValidString(g) || utf8.RuneCountInString(g) != 1 {
			t.Errorf("glyph %q is not a single rune", g)
		}
		if seen[g] {
			t.Errorf("glyph %q is used twice", g)
		}
		seen[g] = true
	}
}

func TestFor(t *testing.T) {
	if got := For("db"); got != DB {
		t.Errorf("For(db) = %q, want %q", got, DB)
	}
	if got := For("version"); got != "" {
		t.Errorf("For(version) = %q, want empty", got)
	}
}

func TestNode(t *testing.T) {
	if Node(true) != Selected || Node(false) != Actor {
		t.Errorf("Node glyphs mixed up")
	}
}
