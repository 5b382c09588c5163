package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync <mangaId>",
	Short: "Pousse vers les trackers le dernier chapitre lu",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mangaID, err := positiveArg(args[0], "mangaId")
		if err != nil {
			return err
		}
		st, _, logs, err := openStack(cmd.Context())
		if err != nil {
			return err
		}
		defer logs.Close()

		res, err := st.Tracking.Sync(cmd.Context(), mangaID)
		// Close attend la fin des envois lancés par Sync.
		if cerr := st.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}
