package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/airport-lookup/internal/fetcher"
	"github.com/sells-group/airport-lookup/internal/importer"
)

var importILSPath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load airport reference data into the store",
}

var importDatasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Download and load the published OurAirports snapshot",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		f := fetcher.New(fetcher.Options{
			UserAgent:  cfg.Import.UserAgent,
			Timeout:    time.Duration(cfg.Import.TimeoutSecs) * time.Second,
			RatePerSec: cfg.Import.RatePerSec,
		})

		res, err := importer.New(st, f, cfg.Import.BaseURL).ImportAll(ctx)
		if err != nil {
			return err
		}

		zap.L().Info("import complete",
			zap.Int64("countries", res.Countries),
			zap.Int64("regions", res.Regions),
			zap.Int64("airports", res.Airports),
			zap.Int64("runways", res.Runways),
			zap.Int64("frequencies", res.Frequencies),
			zap.Int64("navaids", res.Navaids),
		)
		return nil
	},
}

var importILSCmd = &cobra.Command{
	Use:   "ils",
	Short: "Load ILS runway associations from a local CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		inserted, err := importer.New(st, nil, "").ImportILS(ctx, importILSPath)
		if err != nil {
			return err
		}

		zap.L().Info("ils import complete",
			zap.Int64("inserted", inserted),
			zap.String("csv", importILSPath),
		)
		return nil
	},
}

func init() {
	importILSCmd.Flags().StringVar(&importILSPath, "csv", "", "path to ILS CSV file (required)")
	_ = importILSCmd.MarkFlagRequired("csv")
	importCmd.AddCommand(importDatasetCmd, importILSCmd)
	rootCmd.AddCommand(importCmd)
}
