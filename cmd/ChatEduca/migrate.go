package main

import (
	"ChatEduca/internal/initial"
	"ChatEduca/pkg/zlog"

	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	opts := &Options{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, db, cleanup, err := opts.setup()
			if err != nil {
				return err
			}
			defer cleanup()
			if err := initial.AutoMigrate(db, conf.MigrateLegacyTables); err != nil {
				return err
			}
			zlog.Info("migration finished")
			return nil
		},
	}
	opts.AddFlags(cmd.Flags())
	return cmd
}

func newSeedCommand() *cobra.Command {
	opts := &Options{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "create the demo accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, db, cleanup, err := opts.setup()
			if err != nil {
				return err
			}
			defer cleanup()
			if err := initial.AutoMigrate(db, conf.MigrateLegacyTables); err != nil {
				return err
			}
			if err := initial.Seed(cmd.Context(), db); err != nil {
				return err
			}
			zlog.Info("seed finished")
			return nil
		},
	}
	opts.AddFlags(cmd.Flags())
	return cmd
}
