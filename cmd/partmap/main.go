package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"partmap/internal/config"
	"partmap/internal/logging"
	"partmap/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	must(err)

	logger, err := logging.New(cfg)
	must(err)
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	rootCmd := &cobra.Command{
		Use:           "partmap",
		Short:         "Resolve superseded part identifiers and aggregate record sheets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(runCmd(cfg), resolveCmd(), tiersCmd())

	must(rootCmd.Execute())
}

func runCmd(cfg config.Config) *cobra.Command {
	var mappingPath, outPath string
	cmd := &cobra.Command{
		Use:   "run --mapping mapping.xlsx [flags] records.xlsx...",
		Short: "Resolve and aggregate record files into one result workbook",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mappingFile, err := readInput(mappingPath)
			if err != nil {
				return err
			}
			files := make([]pipeline.InputFile, 0, len(args))
			for _, path := range args {
				f, err := readInput(path)
				if err != nil {
					return err
				}
				files = append(files, f)
			}

			batch, err := pipeline.NewBatchService(cfg).Run(mappingFile, files)
			if err != nil {
				return err
			}
			for _, w := range batch.Warnings {
				fmt.Fprintf(os.Stderr, "warning: %s\n", w)
			}
			if len(batch.Files) == 0 {
				return pipeline.ErrNoOutput
			}

			out := resultPath(cfg, outPath, time.Now())
			if err := pipeline.ExportBatchToXLSX(batch, pipeline.ExportOptionsFromConfig(cfg), out); err != nil {
				return err
			}
			fmt.Printf("run %s: files=%d skipped=%d changed=%d output=%s\n",
				batch.RunID, len(batch.Files), len(batch.Warnings), batch.Changes.Len(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&mappingPath, "mapping", "m", "", "mapping workbook")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "result workbook (default: OUTPUT_DIR/<prefix>_<timestamp>.xlsx)")
	_ = cmd.MarkFlagRequired("mapping")
	return cmd
}

func resolveCmd() *cobra.Command {
	var mappingPath string
	cmd := &cobra.Command{
		Use:   "resolve --mapping mapping.xlsx ID...",
		Short: "Show how identifiers resolve against a mapping",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mappingFile, err := readInput(mappingPath)
			if err != nil {
				return err
			}
			resolver, err := pipeline.LoadResolver(mappingFile)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RAW\tFINAL\tCHANGED\tTIERS")
			for _, id := range args {
				res := resolver.Resolve(id)
				fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", res.Raw, res.Final, res.Changed, strings.Join(res.Tiers, ","))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&mappingPath, "mapping", "m", "", "mapping workbook")
	_ = cmd.MarkFlagRequired("mapping")
	return cmd
}

func tiersCmd() *cobra.Command {
	var mappingPath string
	cmd := &cobra.Command{
		Use:   "tiers --mapping mapping.xlsx",
		Short: "Report tier sizes and duplicate mapping keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mappingFile, err := readInput(mappingPath)
			if err != nil {
				return err
			}
			resolver, err := pipeline.LoadResolver(mappingFile)
			if err != nil {
				return err
			}

			for _, tier := range resolver.Tiers() {
				spec := tier.Spec()
				fmt.Printf("%s (%s -> %s): %d entries\n", tier.Name(), spec.Old.Header(), spec.New.Header(), tier.Len())
				for _, ow := range tier.Overwrites() {
					fmt.Printf("  duplicate %q at row %d: %q replaces %q\n", ow.Key, ow.Row, ow.Current, ow.Previous)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&mappingPath, "mapping", "m", "", "mapping workbook")
	_ = cmd.MarkFlagRequired("mapping")
	return cmd
}

func readInput(path string) (pipeline.InputFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return pipeline.InputFile{}, err
	}
	return pipeline.InputFile{Name: filepath.Base(path), Content: content}, nil
}

// resultPath places bare names and the default name under OUTPUT_DIR.
func resultPath(cfg config.Config, out string, now time.Time) string {
	if out == "" {
		out = pipeline.ResultFileName(cfg.ResultPrefix, now)
	}
	if filepath.Base(out) == out {
		return filepath.Join(cfg.OutputDir, out)
	}
	return out
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
