package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/segeodata/deso-cli/internal/model"
	"github.com/segeodata/deso-cli/internal/scb"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch indicator data from SCB into the local cache",
	Long: `Downloads the three indicator tables from SCB's PxAPI and stores the
reduced per-area percentages in the local store, so later analyze runs
can use --cached instead of hitting the API.

Examples:
  # Cache all three indicators for two years
  fetch --years 2022,2023

  # Refresh only the unemployment series
  fetch --years 2023 --source unemployment`,
	RunE: runFetch,
}

func init() {
	f := fetchCmd.Flags()
	f.String("years", "", "comma-separated years or ranges, e.g. 2021,2023 or 2020-2023")
	f.String("source", "", "fetch a single indicator: education, economic_standard, or unemployment")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate(); err != nil {
		return err
	}

	yearsFlag, _ := cmd.Flags().GetString("years")
	years, err := resolveYears(yearsFlag)
	if err != nil {
		return err
	}
	sourceFlag, _ := cmd.Flags().GetString("source")

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	client := newSCBClient()
	log := zap.L().With(zap.String("command", "fetch"))

	var indicators []scb.Indicator
	if sourceFlag == "" {
		indicators = scb.All()
	} else {
		ind, err := indicatorByName(model.IndicatorSource(sourceFlag))
		if err != nil {
			return err
		}
		indicators = []scb.Indicator{ind}
	}

	total := 0
	for _, ind := range indicators {
		records, err := ind.Fetch(ctx, client, years)
		if err != nil {
			return eris.Wrapf(err, "fetch: indicator %s", ind.Name())
		}
		if err := st.PutIndicators(ctx, ind.Name(), records); err != nil {
			return err
		}
		log.Info("cached indicator",
			zap.String("indicator", string(ind.Name())),
			zap.Int("rows", len(records)),
		)
		total += len(records)
	}

	fmt.Printf("Cached %d indicator values for %d year(s)\n", total, len(years))
	return nil
}

func indicatorByName(source model.IndicatorSource) (scb.Indicator, error) {
	for _, ind := range scb.All() {
		if ind.Name() == source {
			return ind, nil
		}
	}
	return nil, eris.Errorf("fetch: unknown indicator %q (valid: %s, %s, %s)",
		source, model.SourceEducation, model.SourceEconomic, model.SourceUnemployment)
}
