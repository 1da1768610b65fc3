package main

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var nearbyLimit int

var nearbyCmd = &cobra.Command{
	Use:   "nearby <lat> <lon>",
	Short: "List the closest airports to a position",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return eris.Wrapf(err, "invalid latitude %q", args[0])
		}
		lon, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return eris.Wrapf(err, "invalid longitude %q", args[1])
		}

		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		results, err := newService(st).Nearby(cmd.Context(), lat, lon, nearbyLimit)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	},
}

func init() {
	nearbyCmd.Flags().IntVar(&nearbyLimit, "limit", 0, "max results (clamped to 20, default 12)")
	rootCmd.AddCommand(nearbyCmd)
}
