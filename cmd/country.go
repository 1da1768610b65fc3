package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/airport-lookup/internal/query"
)

var (
	countryType    string
	countryRegion  string
	countryILSOnly bool
)

var countryCmd = &cobra.Command{
	Use:   "country <code>",
	Short: "List airports of a country with optional facets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		listing, err := newService(st).ListByCountry(cmd.Context(), query.CountryRequest{
			Country: args[0],
			Type:    countryType,
			Region:  countryRegion,
			ILSOnly: countryILSOnly,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(listing)
	},
}

func init() {
	countryCmd.Flags().StringVar(&countryType, "type", "", "airport type facet (default large_airport)")
	countryCmd.Flags().StringVar(&countryRegion, "region", "", "ISO region facet")
	countryCmd.Flags().BoolVar(&countryILSOnly, "ils", false, "only airports with a verified ILS")
	rootCmd.AddCommand(countryCmd)
}
