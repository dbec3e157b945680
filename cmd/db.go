package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytsum/internal"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the database tables",
	Example: `  # Create tables in the configured database
  ytsum init-db

  # Use another database and schema file
  ytsum init-db --db postgres://localhost/ytsum --schema schema.sql`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.HandleDatabaseFlag(cmd, config); err != nil {
			return err
		}
		if cmd.Flags().Changed("schema") {
			config.SchemaFile, _ = cmd.Flags().GetString("schema")
		}

		dialect, _, dsn, err := internal.ParseDatabaseURL(config.DatabaseURL)
		if err != nil {
			return err
		}
		if dialect == internal.DialectSQLite {
			if err := internal.EnsureDirs(filepath.Dir(dsn)); err != nil {
				return err
			}
		}

		store, err := internal.OpenStore(cmd.Context(), config.DatabaseURL)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Init(cmd.Context(), config.SchemaFile); err != nil {
			return err
		}

		logger.Info("initialized database", "dialect", dialect, "schema", config.SchemaFile)
		if !config.Quiet {
			fmt.Printf("Initialized %s database\n", dialect)
		}
		return nil
	},
}

var dropDBCmd = &cobra.Command{
	Use:   "drop-db",
	Short: "Delete the database",
	Long: `Delete the database. A SQLite database file is removed; on PostgreSQL
the application's tables are dropped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.HandleDatabaseFlag(cmd, config); err != nil {
			return err
		}

		dialect, _, dsn, err := internal.ParseDatabaseURL(config.DatabaseURL)
		if err != nil {
			return err
		}

		if dialect == internal.DialectSQLite {
			removed, err := internal.DropDB(dsn)
			if err != nil {
				return err
			}
			if !removed {
				logger.Warn("database file does not exist", "path", dsn)
				return nil
			}
			logger.Info("removed database", "path", dsn)
			if !config.Quiet {
				fmt.Printf("Removed %s\n", dsn)
			}
			return nil
		}

		store, err := internal.OpenStore(cmd.Context(), config.DatabaseURL)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.DropTables(cmd.Context()); err != nil {
			return err
		}
		logger.Info("dropped tables", "dialect", dialect)
		if !config.Quiet {
			fmt.Println("Dropped tables")
		}
		return nil
	},
}

func init() {
	initDBCmd.Flags().String("db", "", "Database URL (default from config)")
	initDBCmd.Flags().String("schema", "", "Schema file (default: built-in schema)")
	dropDBCmd.Flags().String("db", "", "Database URL (default from config)")
	rootCmd.AddCommand(initDBCmd)
	rootCmd.AddCommand(dropDBCmd)
}
