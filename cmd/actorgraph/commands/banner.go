package commands

import (
	"fmt"

	"github.com/teranos/actorgraph/am"
	"github.com/teranos/actorgraph/logger"
	"github.com/teranos/actorgraph/version"
)

// printStartupBanner prints the user-friendly startup message
func printStartupBanner(verbosity int, cfg *am.Config, storeLocation, source string) {
	// ANSI escape codes
	cyan := "\033[36m"
	green := "\033[32m"
	yellow := "\033[33m"
	blue := "\033[34m"
	bold := "\033[1m"
	reset := "\033[0m"

	versionInfo := version.Get()

	fmt.Printf("\n%s%s", cyan, bold)
	fmt.Printf("   ╔═══════════════════════════════════════════════════╗\n")
	fmt.Printf("   ║                                                   ║\n")
	fmt.Printf("   ║      (actor) ──── movie ──── (actor)              ║\n")
	fmt.Printf("   ║          \\                     /                  ║\n")
	fmt.Printf("   ║           ──── (actor) ────────                   ║\n")
	fmt.Printf("   ║                                                   ║\n")
	fmt.Printf("   ║              a c t o r g r a p h                  ║\n")
	fmt.Printf("   ║                                                   ║\n")
	fmt.Printf("   ╚═══════════════════════════════════════════════════╝%s\n\n", reset)

	fmt.Printf("%s%s┌─ actorgraph ────────────────────────────────────────┐%s\n", green, bold, reset)
	fmt.Printf("%s│%s Version:   %s (commit %s)\n", green, reset, versionInfo.Version, versionInfo.Short())
	fmt.Printf("%s│%s Built:     %s\n", green, reset, versionInfo.BuildTime)
	fmt.Printf("%s│%s Verbosity: %s\n", green, reset, logger.LevelName(verbosity))
	fmt.Printf("%s│%s Store:     %s (%s)\n", green, reset, storeLocation, cfg.Database.Backend)
	if source != "local store" {
		fmt.Printf("%s│%s Proxy:     sessions read through %s\n", green, reset, source)
	}
	fmt.Printf("%s│%s REST:      http://localhost:%d/api\n", green, reset, cfg.GetServerPort())
	fmt.Printf("%s│%s Sessions:  ws://localhost:%d/ws\n", green, reset, cfg.GetServerPort())
	fmt.Printf("%s└─────────────────────────────────────────────────────┘%s\n", green, reset)

	fmt.Printf("\n%s%s✨ Starting actor: %s, expand limit %d%s\n", yellow, bold, cfg.GetStartingActor(), cfg.GetExpandLimit(), reset)
	fmt.Printf("%s💡 Press Ctrl+C to stop%s\n\n", blue, reset)
}
