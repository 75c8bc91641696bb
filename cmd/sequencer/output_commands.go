package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"artwork-sequencer/internal/app"
	"artwork-sequencer/internal/project"
	"artwork-sequencer/internal/report"
	"artwork-sequencer/internal/sequence"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "export <project>",
		Short: "Write the composite image and text report",
		Long: `Export renders every lamp post onto the street photograph and writes
Artwork_sequence_<timestamp>.png and Artwork_report_<timestamp>.txt into the
output directory ([output] dir unless --out is given).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			state := app.NewState(cfg)
			if err := state.LoadProject(args[0]); err != nil {
				return err
			}
			res, err := state.Export(strings.TrimSpace(outDir), time.Now())
			if err != nil {
				return err
			}
			slog.Info("export complete", "project", args[0], "posts", res.Tally.Placements, "image", res.ImagePath)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s\n", res.ImagePath)
			fmt.Fprintf(out, "Wrote %s\n", res.ReportPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory")
	return cmd
}

func newReportCommand(ctx *commandContext) *cobra.Command {
	var (
		format    string
		output    string
		composite bool
	)

	cmd := &cobra.Command{
		Use:   "report <project>",
		Short: "Count how many copies of each artwork are needed",
		Long: `Report tallies the project. Formats: text (the exported report), table,
json, yaml and pdf. The default is a table on a terminal and text otherwise.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if target := strings.TrimSpace(output); target != "" {
				f, err := os.Create(target)
				if err != nil {
					return fmt.Errorf("create report file: %w", err)
				}
				defer f.Close()
				w = f
			}
			if format == "" {
				format = "text"
				if isTerminal(w) {
					format = "table"
				}
			}

			var (
				tally report.Tally
				png   []byte
			)
			if format == "pdf" && composite {
				state := app.NewState(cfg)
				if err := state.LoadProject(args[0]); err != nil {
					return err
				}
				if png, err = state.CompositePNG(); err != nil {
					return err
				}
				tally, _ = state.Tally()
			} else {
				doc, err := project.OpenDocument(args[0])
				if err != nil {
					return err
				}
				tally = report.NewTally(doc)
			}
			return writeReport(w, tally, format, time.Now(), png)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "text, table, json, yaml or pdf")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().BoolVar(&composite, "composite", false, "Include the rendered image in a pdf report")
	return cmd
}

func writeReport(w io.Writer, t report.Tally, format string, generated time.Time, composite []byte) error {
	switch strings.ToLower(format) {
	case "text":
		return report.WriteText(w, t, generated)
	case "table":
		_, err := fmt.Fprintln(w, renderTally(t))
		return err
	case "json":
		return report.WriteJSON(w, t, generated)
	case "yaml":
		return report.WriteYAML(w, t, generated)
	case "pdf":
		return report.WritePDF(w, t, generated, report.PDFOptions{Composite: composite})
	default:
		return &sequence.ValidationError{Field: "format", Msg: fmt.Sprintf("unknown report format %q", format)}
	}
}
