package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sheetpilot/internal/store"
)

func newRecoverCmd(root *rootOptions) *cobra.Command {
	var resetFailed bool
	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Fail rows stuck mid-submission and optionally requeue failed rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := root.load()
			if err != nil {
				return err
			}
			db, err := store.Open(cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer db.Close()

			stuck, err := db.RecoverStuck(store.StuckThreshold)
			if err != nil {
				return err
			}
			if stuck > 0 {
				fmt.Printf("%s %d stuck rows marked failed\n", yellow("Recovered"), stuck)
			} else {
				fmt.Println(green("No stuck rows"))
			}

			if resetFailed {
				n, err := db.ResetFailed()
				if err != nil {
					return err
				}
				fmt.Printf("%s %d failed rows back to draft\n", green("Reset"), n)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&resetFailed, "reset-failed", false, "return failed rows to draft")
	return cmd
}
