package cmd

import (
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/tabcanvas/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long:  `Commands for managing tabcanvas configuration.`,
}

var configDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the effective configuration",
	Long: `Dump the effective configuration in YAML format.

Without a config file this shows every option with its default value, so the
output can be used as a template:

  tabcanvas config dump > config.yaml

Configuration can be set via:
  - Config file (config.yaml, ./configs, /etc/tabcanvas, $HOME/.tabcanvas)
  - Environment variables (TABCANVAS_SERVER_PORT, TABCANVAS_DATABASE_DSN, etc.)
  - Command-line flags (for some options)

Environment variables use the TABCANVAS_ prefix and underscores for nesting.
Example: server.port -> TABCANVAS_SERVER_PORT`,
	RunE: runConfigDump,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configDumpCmd)
}

// secretKeys are replaced in dumps when set.
var secretKeys = map[string]bool{"access_key": true}

// toMap converts a config struct to a map keyed by mapstructure tags,
// formatting durations and sizes for human readability.
func toMap(v any) map[string]any {
	result := make(map[string]any)
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	typ := val.Type()

	for i := range val.NumField() {
		field := val.Field(i)
		key := typ.Field(i).Tag.Get("mapstructure")
		if key == "" {
			key = typ.Field(i).Name
		}

		switch fv := field.Interface().(type) {
		case time.Duration:
			result[key] = fv.String()
		case config.ByteSize:
			result[key] = fv.String()
		case string:
			if secretKeys[key] && fv != "" {
				result[key] = "********"
			} else {
				result[key] = fv
			}
		default:
			if field.Kind() == reflect.Struct {
				result[key] = toMap(field.Interface())
			} else {
				result[key] = field.Interface()
			}
		}
	}
	return result
}

func runConfigDump(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	yamlData, err := yaml.Marshal(toMap(cfg))
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "# tabcanvas configuration")
	fmt.Fprintln(out, "#")
	fmt.Fprintln(out, "# Duration format: 30s, 5m, 1h")
	fmt.Fprintln(out, "# Size format: 5MiB, 800kB")
	fmt.Fprintln(out, "# Cron format: minute hour day-of-month month day-of-week, or @every 1h")
	fmt.Fprintln(out)
	fmt.Fprint(out, string(yamlData))
	return nil
}
