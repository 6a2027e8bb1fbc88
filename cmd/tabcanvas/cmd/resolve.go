package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/tabcanvas/internal/models"
	"github.com/jmylchreest/tabcanvas/internal/service"
)

var (
	resolveFormat   string
	resolveSelector string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [file]",
	Short: "Resolve background settings into a style",
	Long: `Resolve background settings read from a JSON or YAML file into presentation
properties. With no file, or "-", settings are read from stdin.

  tabcanvas resolve settings.json
  tabcanvas resolve --format css --selector '#bg' settings.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveFormat, "format", "json", "output format (json, css)")
	resolveCmd.Flags().StringVar(&resolveSelector, "selector", "body", "CSS selector for css output")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening settings: %w", err)
		}
		defer f.Close()
		in = f
	}

	settings, err := readSettings(in)
	if err != nil {
		return err
	}
	if err := service.ValidateSettings(settings); err != nil {
		return err
	}
	res := service.ResolveSettings(settings)

	out := cmd.OutOrStdout()
	switch resolveFormat {
	case "css":
		_, err = fmt.Fprint(out, res.Style.CSS(resolveSelector))
		return err
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	default:
		return fmt.Errorf("unsupported format %q (want json or css)", resolveFormat)
	}
}

// readSettings decodes settings over the defaults so partial documents work.
// YAML is a superset of JSON, so one decoder handles both.
func readSettings(r io.Reader) (models.BackgroundSettings, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.BackgroundSettings{}, fmt.Errorf("reading settings: %w", err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return models.BackgroundSettings{}, fmt.Errorf("parsing settings: %w", err)
	}
	// Round trip through JSON so the model's json tags apply.
	normalized, err := json.Marshal(doc)
	if err != nil {
		return models.BackgroundSettings{}, fmt.Errorf("parsing settings: %w", err)
	}

	settings := models.DefaultBackgroundSettings()
	if err := json.Unmarshal(normalized, &settings); err != nil {
		return models.BackgroundSettings{}, fmt.Errorf("decoding settings: %w", err)
	}
	return settings, nil
}
