package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lightway-xas/lightway/internal/adapters/driven/config/file"
	"github.com/lightway-xas/lightway/internal/adapters/driven/storage/memory"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and edit configuration",
	Long: `Configuration is read from ~/.lightway/config.toml (or --config) and
overridden by LIGHTWAY_* environment variables, e.g. LIGHTWAY_STORE_DATA_DIR.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a config value",
	Long: `Sets a dotted config key, e.g.

  lightway config set store.data_dir /data/lightway
  lightway config set derive.policy strict
  lightway config set validation.facilities NSLSII,SSRL
  lightway config set validation.beamlines ISS,

Comma-separated values are stored as lists; a trailing comma makes a
one-element list.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	_, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	doc, err := cfg.TOML()
	if err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	cmd.Print(doc)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	settings, err := file.NewConfigStore(configPath)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	cmd.Println(settings.Path())
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]

	settings, err := file.NewConfigStore(configPath)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	value := configValue(raw)

	// Check the result before touching the file.
	candidate := make(map[string]any)
	for _, k := range settings.Keys() {
		candidate[k], _ = settings.Get(k)
	}
	candidate[key] = value
	if _, err := file.Load(memory.NewConfigStore(candidate)); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	if err := settings.Set(key, value); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	cmd.Printf("Set %s = %v\n", key, value)
	return nil
}

// configValue converts a command line value: booleans and numbers keep
// their type, comma-separated values become lists.
func configValue(raw string) any {
	if strings.Contains(raw, ",") {
		parts := strings.Split(raw, ",")
		out := make([]any, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return parseValue(raw)
}
