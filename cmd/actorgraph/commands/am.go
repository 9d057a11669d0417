package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/actorgraph/am"
	"github.com/teranos/actorgraph/display"
	"github.com/teranos/actorgraph/sym"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: sym.AM + " Manage actorgraph configuration",
	Long: sym.AM + ` am - Manage actorgraph configuration ("as configured")

Display and manage actorgraph configuration settings.

Configuration sources (in order of precedence):
1. Environment variables (ACTORGRAPH_* prefix)
2. Project config (./actorgraph.toml or ./am.toml, searched upward)
3. User config (~/.actorgraph/am.toml)
4. System config (/etc/actorgraph/am.toml)
5. Default values

Examples:
  actorgraph am show                        # Show current configuration
  actorgraph am show --format json          # Show configuration in JSON format
  actorgraph am show --sources              # Show where every value came from
  actorgraph am get explore.expand_limit    # Get specific config value
  actorgraph am set explore.expand_limit 8  # Persist a value in the user config
  actorgraph am validate                    # Validate current configuration`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the effective actorgraph configuration merged from all sources",
	Args:  cobra.NoArgs,
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., database.path, explore.expand_limit)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Persist a configuration value",
	Long: `Write a value into the user config file (~/.actorgraph/am.toml). Integers,
floats and booleans are stored typed; anything else as a string. The previous
file is kept as a backup. A running server watching its project config is
not affected; put live-tunable settings in the project file instead.`,
	Args: cobra.ExactArgs(2),
	RunE: runAmSet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	Long:  "Validate that the current actorgraph configuration is valid",
	Args:  cobra.NoArgs,
	RunE:  runAmValidate,
}

var (
	configFormat string
	showSources  bool
)

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")
	amShowCmd.Flags().BoolVar(&showSources, "sources", false, "List every setting with the source that provided it")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amSetCmd)
	AmCmd.AddCommand(amValidateCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if showSources {
		return printSources(os.Stdout, am.Introspect(am.GetViper()))
	}
	return printConfig(os.Stdout, cfg, configFormat)
}

func printConfig(w io.Writer, cfg *am.Config, format string) error {
	switch format {
	case "json":
		if err := display.OutputJSON(w, cfg); err != nil {
			return fmt.Errorf("failed to marshal config to JSON: %w", err)
		}

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config to YAML: %w", err)
		}
		fmt.Fprintf(w, "# actorgraph configuration\n%s", string(data))

	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config to TOML: %w", err)
		}
		fmt.Fprintf(w, "# actorgraph configuration\n%s", string(data))

	default:
		return fmt.Errorf("unsupported format: %s (supported: toml, json, yaml)", format)
	}
	return nil
}

func printSources(w io.Writer, settings []am.SettingInfo) error {
	data := pterm.TableData{{"KEY", "VALUE", "SOURCE"}}
	for _, s := range settings {
		valueStr := fmt.Sprintf("%v", s.Value)
		// Truncate long values
		if len(valueStr) > 50 {
			valueStr = valueStr[:47] + "..."
		}
		source := string(s.Source)
		if s.SourcePath != "" {
			source += " (" + s.SourcePath + ")"
		}
		data = append(data, []string{s.Key, valueStr, source})
	}
	return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render()
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	if _, err := am.Load(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !am.GetViper().IsSet(key) {
		return fmt.Errorf("configuration key %q not found", key)
	}

	fmt.Println(am.Get(key))
	return nil
}

func runAmSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]
	value := am.ParseValue(raw)

	if err := am.SetValue(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	// Reload so validation sees the merged result
	am.Reset()
	cfg, err := am.Load()
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("⚠ %s saved to %s, but the configuration is now invalid: %v\n", key, am.UserConfigPath(), err)
		return nil
	}

	fmt.Printf("✓ %s = %v (%s)\n", key, value, am.UserConfigPath())
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	fmt.Println("✓ Configuration is valid")
	return nil
}
