package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/segeodata/deso-cli/internal/analyze"
	"github.com/segeodata/deso-cli/internal/codes"
	"github.com/segeodata/deso-cli/internal/export"
	"github.com/segeodata/deso-cli/internal/model"
	"github.com/segeodata/deso-cli/internal/scb"
	"github.com/segeodata/deso-cli/internal/store"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute and classify the socioeconomic index",
	Long: `Fetches the three indicator series from SCB (or the local cache),
merges them per (area, year), computes the index as the unweighted mean
of the three percentages, and classifies every area into one of five
area types relative to its year's distribution.

Examples:
  # Classify the latest configured years and print a table
  analyze --years 2023 --format table

  # Multi-year run exported to a spreadsheet
  analyze --years 2020-2023 --format xlsx --output deso.xlsx

  # English labels, persist the run for later inspection
  analyze --years 2023 --language en --save

  # Reuse cached indicator data instead of calling SCB
  analyze --years 2023 --cached`,
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.String("years", "", "comma-separated years or ranges, e.g. 2021,2023 or 2020-2023")
	f.String("method", "", "classification method (overrides config)")
	f.String("language", "", "label language: sv or en (overrides config)")
	f.String("format", "", "output format: csv, table, or xlsx (overrides config)")
	f.String("output", "", "output file path (default: stdout)")
	f.Bool("save", false, "persist the run and its results to the store")
	f.Bool("cached", false, "use cached indicator data instead of fetching from SCB")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate(); err != nil {
		return err
	}

	log := zap.L().With(zap.String("command", "analyze"))

	yearsFlag, _ := cmd.Flags().GetString("years")
	years, err := resolveYears(yearsFlag)
	if err != nil {
		return err
	}

	methodStr, _ := cmd.Flags().GetString("method")
	if methodStr == "" {
		methodStr = cfg.Analysis.Method
	}
	method, err := analyze.ParseMethod(methodStr)
	if err != nil {
		return err
	}

	langStr, _ := cmd.Flags().GetString("language")
	if langStr == "" {
		langStr = cfg.Analysis.Language
	}
	lang, err := model.ParseLanguage(langStr)
	if err != nil {
		return err
	}

	formatStr, _ := cmd.Flags().GetString("format")
	if formatStr == "" {
		formatStr = cfg.Export.Format
	}
	format, err := export.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		outputPath = cfg.Export.Output
	}
	save, _ := cmd.Flags().GetBool("save")
	cached, _ := cmd.Flags().GetBool("cached")

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	// Gather the three indicator series.
	var set *scb.IndicatorSet
	if cached {
		set, err = loadCachedIndicators(ctx, st, years)
	} else {
		set, err = scb.FetchAll(ctx, newSCBClient(), years)
		if err == nil {
			err = cacheIndicators(ctx, st, set)
		}
	}
	if err != nil {
		return eris.Wrap(err, "analyze: gather indicators")
	}

	var run *model.Run
	if save {
		run, err = st.CreateRun(ctx, years, string(method), langStr)
		if err != nil {
			return err
		}
	}

	records, err := classifyIndicators(set, years, method, lang)
	if err != nil {
		if run != nil {
			if failErr := st.FailRun(ctx, run.ID, err); failErr != nil {
				log.Warn("could not mark run failed", zap.Error(failErr))
			}
		}
		return err
	}

	// Attach kommun and län names.
	registry, err := codes.Default()
	if err != nil {
		return err
	}
	registry.Enrich(records)

	if err := export.WriteFile(outputPath, format, records); err != nil {
		return err
	}

	if run != nil {
		if err := st.PutResults(ctx, run.ID, records); err != nil {
			return err
		}
		if err := st.CompleteRun(ctx, run.ID, len(records)); err != nil {
			return err
		}
		fmt.Printf("Run %s saved (%d classified areas)\n", truncateID(run.ID), len(records))
	}

	log.Info("analysis complete",
		zap.Ints("years", years),
		zap.Int("areas", len(records)),
	)
	return nil
}

func classifyIndicators(set *scb.IndicatorSet, years []int, method analyze.Method, lang language.Tag) ([]model.ClassifiedRecord, error) {
	merged := analyze.Merge(set.Education, set.Economic, set.Unemployment, years)
	return analyze.Classify(merged, analyze.Options{Method: method, Language: lang})
}

func loadCachedIndicators(ctx context.Context, st store.Store, years []int) (*scb.IndicatorSet, error) {
	var set scb.IndicatorSet
	var err error

	if set.Education, err = st.GetIndicators(ctx, model.SourceEducation, years); err != nil {
		return nil, err
	}
	if set.Economic, err = st.GetIndicators(ctx, model.SourceEconomic, years); err != nil {
		return nil, err
	}
	if set.Unemployment, err = st.GetIndicators(ctx, model.SourceUnemployment, years); err != nil {
		return nil, err
	}
	return &set, nil
}

func cacheIndicators(ctx context.Context, st store.Store, set *scb.IndicatorSet) error {
	if err := st.PutIndicators(ctx, model.SourceEducation, set.Education); err != nil {
		return err
	}
	if err := st.PutIndicators(ctx, model.SourceEconomic, set.Economic); err != nil {
		return err
	}
	return st.PutIndicators(ctx, model.SourceUnemployment, set.Unemployment)
}
