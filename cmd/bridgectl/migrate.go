package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/Dan9191/salary-bridge/internal/repository"
)

var flagDBConn string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the bridge schema in Postgres",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&flagDBConn, "db", os.Getenv("DB_CONN"), "Postgres connection string")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	if flagDBConn == "" {
		return errors.New("no connection string: set --db or DB_CONN")
	}
	db, err := sql.Open("postgres", flagDBConn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := repository.NewRepository(db).Migrate(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("  Schema is up to date"))
	return nil
}
