package main

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/airport-lookup/internal/query"
)

var (
	exportOut     string
	exportType    string
	exportRegion  string
	exportILSOnly bool
)

var exportCmd = &cobra.Command{
	Use:   "export <country>",
	Short: "Export a country listing to an XLSX workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		listing, err := newService(st).ListByCountry(cmd.Context(), query.CountryRequest{
			Country: args[0],
			Type:    exportType,
			Region:  exportRegion,
			ILSOnly: exportILSOnly,
		})
		if err != nil {
			return err
		}

		if err := writeWorkbook(exportOut, listing); err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.String("country", args[0]),
			zap.Int("airports", len(listing.Items)),
			zap.String("out", exportOut),
		)
		return nil
	},
}

func writeWorkbook(path string, listing *query.CountryListing) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Airports")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Ident", "IATA", "Name", "Type", "Municipality", "Region", "Scheduled", "Latitude", "Longitude", "Elevation ft"} {
		header.AddCell().Value = h
	}

	for _, item := range listing.Items {
		row := sheet.AddRow()
		row.AddCell().Value = item.Ident
		row.AddCell().Value = strOrBlank(item.IATACode)
		row.AddCell().Value = item.Name
		row.AddCell().Value = item.Type
		row.AddCell().Value = strOrBlank(item.Municipality)
		row.AddCell().Value = item.ISORegion
		row.AddCell().Value = strconv.FormatBool(item.ScheduledService)
		if item.Latitude != nil {
			row.AddCell().SetFloat(*item.Latitude)
		} else {
			row.AddCell()
		}
		if item.Longitude != nil {
			row.AddCell().SetFloat(*item.Longitude)
		} else {
			row.AddCell()
		}
		if item.ElevationFt != nil {
			row.AddCell().SetInt64(*item.ElevationFt)
		} else {
			row.AddCell()
		}
	}

	summary, err := f.AddSheet("Counts")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}
	for _, entry := range []struct {
		label string
		n     int
	}{
		{"Total", listing.Counts.Total},
		{"Large", listing.Counts.Large},
		{"Medium", listing.Counts.Medium},
		{"Small", listing.Counts.Small},
		{"Heliports", listing.Counts.Heli},
		{"ILS verified", listing.Counts.ILSVerified},
	} {
		row := summary.AddRow()
		row.AddCell().Value = entry.label
		row.AddCell().SetInt(entry.n)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save workbook")
	}
	return nil
}

func strOrBlank(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "airports.xlsx", "output file path")
	exportCmd.Flags().StringVar(&exportType, "type", "", "airport type facet (default large_airport)")
	exportCmd.Flags().StringVar(&exportRegion, "region", "", "ISO region facet")
	exportCmd.Flags().BoolVar(&exportILSOnly, "ils", false, "only airports with a verified ILS")
	rootCmd.AddCommand(exportCmd)
}
