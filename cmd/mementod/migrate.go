package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mementodev/mementod/internal/migrate"
	"github.com/mementodev/mementod/internal/store/sqlite"
)

var (
	migrateJSONLPath  string
	migrateSQLitePath string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Stream a jsonl file into a SQLite database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dest, err := sqlite.New(migrateSQLitePath)
		if err != nil {
			return err
		}
		defer dest.Close()

		n, err := migrate.ToSQLite(context.Background(), migrateJSONLPath, dest)
		if err != nil {
			return err
		}
		fmt.Printf("Migrated %d entries\n", n)
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateJSONLPath, "jsonl", "", "path to the source jsonl file")
	migrateCmd.Flags().StringVar(&migrateSQLitePath, "sqlite", "", "path to the destination SQLite database file")
	migrateCmd.MarkFlagRequired("jsonl")
	migrateCmd.MarkFlagRequired("sqlite")
	rootCmd.AddCommand(migrateCmd)
}
