package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"phddash/domain/dataset"
	"phddash/internal/charts"
	"phddash/internal/config"
	"phddash/internal/container"
	"phddash/internal/export"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "phdctl",
		Short: "Inspect, filter and render the U.S. doctorate recipients dataset",
	}
	var source string
	rootCmd.PersistentFlags().StringVar(&source, "source", "", "Dataset location (http(s)://, file://, s3:// or a path); defaults to DATA_SOURCE_URL")

	rootCmd.AddCommand(
		newFetchCmd(&source),
		newFilterCmd(&source),
		newRenderCmd(&source),
		newExportCmd(&source),
	)
	return rootCmd
}

func loadTable(ctx context.Context, source string) (*dataset.Table, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if source != "" {
		cfg.Data.SourceURL = source
	}
	c, err := container.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	table, err := c.Loader.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return table, cfg, nil
}

// filterFor applies --year, clamped the same way the dashboard slider is
func filterFor(table *dataset.Table, cfg *config.Config, year int) (*dataset.Table, int) {
	threshold := container.SliderFor(cfg).Clamp(year)
	return dataset.FilterByYear(table, threshold), threshold
}

func newFetchCmd(source *string) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Download and parse the dataset, then print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, _, err := loadTable(cmd.Context(), *source)
			if err != nil {
				return err
			}
			min, max := table.Years()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "source:  %s\n", table.Source)
			fmt.Fprintf(out, "rows:    %d\n", table.Len())
			fmt.Fprintf(out, "years:   %d-%d\n", min, max)
			fmt.Fprintf(out, "decades: %v\n", table.Decades())
			fmt.Fprintf(out, "digest:  %s\n", table.Digest)
			return nil
		},
	}
}

func newFilterCmd(source *string) *cobra.Command {
	var year int
	var format string

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Print the rows with Year <= --year",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, cfg, err := loadTable(cmd.Context(), *source)
			if err != nil {
				return err
			}
			filtered, _ := filterFor(table, cfg, year)
			return writeTable(cmd.OutOrStdout(), filtered, format)
		},
	}
	cmd.Flags().IntVar(&year, "year", 2017, "Inclusive upper bound on Year (clamped to the slider range)")
	cmd.Flags().StringVar(&format, "format", "tsv", "Output format: tsv or json")
	return cmd
}

func writeTable(w io.Writer, t *dataset.Table, format string) error {
	switch format {
	case "tsv":
		return export.WriteTSV(w, t)
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(t)
	default:
		return fmt.Errorf("unknown format %q (use tsv or json)", format)
	}
}

func newRenderCmd(source *string) *cobra.Command {
	var year int
	var chart string
	var output string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the line or box chart to an SVG file",
		Long: `Render one of the dashboard charts as a static SVG.

Example: phdctl render --chart box --year 1990 -o box.svg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, cfg, err := loadTable(cmd.Context(), *source)
			if err != nil {
				return err
			}
			filtered, threshold := filterFor(table, cfg, year)
			return writeFile(output, cmd.OutOrStdout(), func(w io.Writer) error {
				log.Printf("Rendering %s chart through %d (%d rows)", chart, threshold, filtered.Len())
				return charts.Render(w, chart, filtered)
			})
		},
	}
	cmd.Flags().IntVar(&year, "year", 2017, "Inclusive upper bound on Year")
	cmd.Flags().StringVar(&chart, "chart", "line", "Chart to render: line or box")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func newExportCmd(source *string) *cobra.Command {
	var year int
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered table to an XLSX workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return fmt.Errorf("--output is required")
			}
			table, cfg, err := loadTable(cmd.Context(), *source)
			if err != nil {
				return err
			}
			filtered, _ := filterFor(table, cfg, year)
			return writeFile(output, cmd.OutOrStdout(), func(w io.Writer) error {
				return export.WriteXLSX(w, filtered)
			})
		},
	}
	cmd.Flags().IntVar(&year, "year", 2017, "Inclusive upper bound on Year")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output .xlsx file")
	return cmd
}

func writeFile(path string, stdout io.Writer, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
