package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sheetpilot/internal/logging"
	"sheetpilot/internal/store"
)

func newCredentialsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage saved login credentials",
	}
	cmd.AddCommand(
		newCredentialsSaveCmd(root),
		newCredentialsShowCmd(root),
		newCredentialsClearCmd(root),
	)
	return cmd
}

func newCredentialsSaveCmd(root *rootOptions) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save credentials for later submit runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("SHEETPILOT_PASSWORD")
			}
			if email == "" || password == "" {
				return errors.New("pass --email and --password (or SHEETPILOT_PASSWORD)")
			}
			db, err := openStore(root)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.SaveCredentials(email, password); err != nil {
				return err
			}
			fmt.Printf("%s credentials for %s\n", green("Saved"), logging.RedactEmail(email))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "login password (or SHEETPILOT_PASSWORD)")
	return cmd
}

func newCredentialsShowCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the saved login email (redacted)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(root)
			if err != nil {
				return err
			}
			defer db.Close()
			email, _, err := db.Credentials()
			if errors.Is(err, store.ErrNoCredentials) {
				fmt.Println(yellow("No saved credentials"))
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Println(logging.RedactEmail(email))
			return nil
		},
	}
}

func newCredentialsClearCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove saved credentials and sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(root)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.ClearCredentials(); err != nil {
				return err
			}
			fmt.Println(green("Cleared"))
			return nil
		},
	}
}

func openStore(root *rootOptions) (*store.Store, error) {
	cfg, _, err := root.load()
	if err != nil {
		return nil, err
	}
	return store.Open(cfg.DatabasePath)
}
