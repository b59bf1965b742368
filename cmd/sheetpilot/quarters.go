package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newQuartersCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "quarters",
		Short: "List the configured quarters and their destination forms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := root.load()
			if err != nil {
				return err
			}
			table, err := quarterTable(cfg)
			if err != nil {
				return err
			}

			current := table.Current()
			for _, def := range table.Definitions() {
				marker := "  "
				name := def.Name
				if current != nil && def.ID == current.ID {
					marker = green("> ")
					name = bold(def.Name)
				}
				fmt.Printf("%s%s  %s to %s  %s\n", marker, name, def.StartDate, def.EndDate, gray(def.FormURL))
			}
			return nil
		},
	}
}
