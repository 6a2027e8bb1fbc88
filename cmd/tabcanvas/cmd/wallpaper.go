package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/tabcanvas/internal/models"
	"github.com/jmylchreest/tabcanvas/internal/provider"
	"github.com/jmylchreest/tabcanvas/internal/service"
)

var wallpaperOpts struct {
	source      string
	sources     []string
	randomCount int
	mixedCount  int
	orientation string
	category    string
	profile     string
	quality     string
	recommended bool
	limit       int
	json        bool
}

var wallpaperCmd = &cobra.Command{
	Use:   "wallpaper",
	Short: "Query image providers and rotate wallpapers",
}

var wallpaperRandomCmd = &cobra.Command{
	Use:   "random",
	Short: "Fetch random images from one provider",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
		images, err := a.wallpapers.Random(ctx, models.ImageSource(wallpaperOpts.source), wallpaperOpts.randomCount, wallpaperFilters())
		if err != nil {
			return err
		}
		return printImages(cmd.OutOrStdout(), images)
	}),
}

var wallpaperSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search images across providers",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
		images, err := a.wallpapers.Search(ctx, args[0], sourceList(), wallpaperFilters())
		if err != nil {
			return err
		}
		return printImages(cmd.OutOrStdout(), images)
	}),
}

var wallpaperMixedCmd = &cobra.Command{
	Use:   "mixed",
	Short: "Fetch a shuffled mix of images from several providers",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
		sources := sourceList()
		if len(sources) == 0 {
			sources = a.registry.Sources()
		}
		images, err := a.wallpapers.Mixed(ctx, wallpaperOpts.mixedCount, sources, wallpaperFilters())
		if err != nil {
			return err
		}
		return printImages(cmd.OutOrStdout(), images)
	}),
}

var wallpaperNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Rotate a profile's wallpaper",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
		res, err := a.wallpapers.Next(ctx, service.NextRequest{
			Profile:          wallpaperOpts.profile,
			Sources:          sourceList(),
			Filters:          wallpaperFilters(),
			Quality:          provider.ParseQuality(wallpaperOpts.quality),
			ApplyRecommended: wallpaperOpts.recommended,
		})
		if err != nil {
			return err
		}
		return printImages(cmd.OutOrStdout(), []models.BackgroundImage{res.Image})
	}),
}

var wallpaperHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List a profile's recently applied wallpapers",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
		entries, err := a.wallpapers.History(ctx, wallpaperOpts.profile, wallpaperOpts.limit)
		if err != nil {
			return err
		}
		return printHistory(cmd.OutOrStdout(), entries)
	}),
}

func init() {
	pf := wallpaperCmd.PersistentFlags()
	pf.StringVar(&wallpaperOpts.orientation, "orientation", "", "orientation filter (landscape, portrait, squarish)")
	pf.StringVar(&wallpaperOpts.category, "category", "", "category filter")
	pf.BoolVar(&wallpaperOpts.json, "json", false, "print images as JSON")

	wallpaperRandomCmd.Flags().StringVar(&wallpaperOpts.source, "source", "", "provider (default provider when empty)")
	wallpaperRandomCmd.Flags().IntVarP(&wallpaperOpts.randomCount, "count", "n", 1, "number of images")

	wallpaperSearchCmd.Flags().StringSliceVar(&wallpaperOpts.sources, "sources", nil, "providers to search")

	wallpaperMixedCmd.Flags().StringSliceVar(&wallpaperOpts.sources, "sources", nil, "providers to draw from (all when empty)")
	wallpaperMixedCmd.Flags().IntVarP(&wallpaperOpts.mixedCount, "count", "n", 10, "number of images")

	wallpaperNextCmd.Flags().StringVar(&wallpaperOpts.profile, "profile", models.DefaultProfile, "profile to update")
	wallpaperNextCmd.Flags().StringSliceVar(&wallpaperOpts.sources, "sources", nil, "providers to pick from")
	wallpaperNextCmd.Flags().StringVar(&wallpaperOpts.quality, "quality", string(provider.QualityLarge), "image quality (original, large, medium, small)")
	wallpaperNextCmd.Flags().BoolVar(&wallpaperOpts.recommended, "apply-recommended", false, "apply the provider's recommended display settings")

	wallpaperHistoryCmd.Flags().StringVar(&wallpaperOpts.profile, "profile", models.DefaultProfile, "profile to list")
	wallpaperHistoryCmd.Flags().IntVarP(&wallpaperOpts.limit, "limit", "n", 20, "maximum entries")

	wallpaperCmd.AddCommand(wallpaperRandomCmd, wallpaperSearchCmd, wallpaperMixedCmd, wallpaperNextCmd, wallpaperHistoryCmd)
	rootCmd.AddCommand(wallpaperCmd)
}

// withApp loads config, wires the service graph and closes it after fn.
func withApp(fn func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := newApp(ctx, cfg, newLogger(cfg.Logging))
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()
		return fn(ctx, cmd, a, args)
	}
}

func wallpaperFilters() provider.Filters {
	return provider.Filters{
		Category:    wallpaperOpts.category,
		Orientation: provider.Orientation(wallpaperOpts.orientation),
	}
}

func sourceList() []models.ImageSource {
	return lo.Map(lo.Compact(wallpaperOpts.sources), func(s string, _ int) models.ImageSource {
		return models.ImageSource(s)
	})
}

func printImages(w io.Writer, images []models.BackgroundImage) error {
	if wallpaperOpts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(images)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tID\tSIZE\tAUTHOR\tURL")
	for _, img := range images {
		author := ""
		if img.Author != nil {
			author = img.Author.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%s\t%s\n", img.Source, img.ID, img.Width, img.Height, author, img.URL)
	}
	return tw.Flush()
}

func printHistory(w io.Writer, entries []*models.WallpaperHistory) error {
	if wallpaperOpts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "APPLIED\tSOURCE\tID\tURL")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.AppliedAt.Local().Format(time.DateTime), e.Source, e.ImageID, e.Image.URL)
	}
	return tw.Flush()
}
