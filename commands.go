package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cli/browser"
	"github.com/gdpchart/downloader"
	"github.com/gdpchart/export"
	"github.com/gdpchart/models"
	"github.com/gdpchart/server"
	"github.com/spf13/cobra"
)

func newRootCmd(cfg *Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gdpchart",
		Short: "Chart US quarterly GDP",
		Long: `gdpchart fetches the quarterly US GDP series, falling back to a local
copy when the published source is unavailable, and draws it as a bar chart.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.PrimaryURL, "primary", cfg.PrimaryURL, "URL of the GDP dataset")
	flags.StringVar(&cfg.Fallback, "fallback", cfg.Fallback, "Fallback file (relative to --data-dir) or URL")
	flags.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory holding the fallback file")
	flags.BoolVar(&cfg.FallbackOnTransportError, "fallback-on-transport-error", cfg.FallbackOnTransportError,
		"Also use the fallback when the primary source cannot be reached at all")

	rootCmd.AddCommand(newServeCmd(cfg), newRenderCmd(cfg), newExportCmd(cfg))
	return rootCmd
}

func newLoader(cfg *Config) *downloader.Loader {
	loader := downloader.NewLoader(cfg.PrimaryURL, cfg.Fallback, cfg.DataDir, nil)
	loader.FallbackOnTransportError = cfg.FallbackOnTransportError
	loader.OnState = func(s downloader.State) {
		log.Printf("Loader: %s", s)
	}
	return loader
}

func newServeCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logFile, err := server.SetupLogging(cfg.LogDir)
			if err != nil {
				return fmt.Errorf("failed to set up logging: %w", err)
			}
			defer logFile.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(newLoader(cfg), server.Config{Port: cfg.Port, Width: cfg.Width})
			// a failed load still serves the error page
			srv.Load(ctx)

			if cfg.Open {
				go func() {
					if err := browser.OpenURL(srv.URL()); err != nil {
						log.Printf("Failed to open browser: %v", err)
						log.Printf("Open %s manually", srv.URL())
					}
				}()
			}

			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&cfg.Port, "port", "p", cfg.Port, "Port to listen on")
	cmd.Flags().StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Directory for app.log")
	cmd.Flags().IntVar(&cfg.Width, "width", cfg.Width, "Initial chart width in pixels")
	cmd.Flags().BoolVar(&cfg.Open, "open", cfg.Open, "Open the chart in a browser")
	return cmd
}

func newRenderCmd(cfg *Config) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write the chart page as a standalone HTML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			payload, loadErr := newLoader(cfg).Load(ctx)

			return withOutput(outputPath, func(w io.Writer) error {
				if loadErr != nil {
					if err := server.RenderError(ctx, w, loadErr); err != nil {
						return err
					}
					return fmt.Errorf("failed to load data: %w", loadErr)
				}
				return server.RenderPage(ctx, w, payload, cfg.Width)
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().IntVar(&cfg.Width, "width", cfg.Width, "Chart width in pixels")
	return cmd
}

func newExportCmd(cfg *Config) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the series and a column chart to an .xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := newLoader(cfg).Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load data: %w", err)
			}
			ds, err := models.ParseDataset(payload.Body)
			if err != nil {
				return err
			}
			if err := ds.CheckQuarters(); err != nil {
				log.Printf("Quarter check: %v", err)
			}

			return withOutput(outputPath, func(w io.Writer) error {
				return export.WriteWorkbook(w, ds)
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "gdp.xlsx", "Output file path")
	return cmd
}

// withOutput runs write against the named file, or stdout when path is empty.
func withOutput(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Printf("Wrote %s", path)
	return nil
}
