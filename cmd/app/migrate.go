package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wichananm65/fakturera/internal/database"
	"github.com/wichananm65/fakturera/internal/migrations"
)

func newMigrateCmd(a *app) *cobra.Command {
	var status bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := database.Open(a.cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := database.Ping(ctx, db, a.cfg.Database.PingTimeout); err != nil {
				return fmt.Errorf("connect database: %w", err)
			}

			svc := migrations.NewService(db, a.log)
			out := cmd.OutOrStdout()
			if status {
				rows, err := svc.Status(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "MIGRATION\tAPPLIED AT")
				for _, r := range rows {
					at := "pending"
					if r.AppliedAt != nil {
						at = r.AppliedAt.Format("2006-01-02 15:04:05")
					}
					fmt.Fprintf(w, "%s\t%s\n", r.Name, at)
				}
				return w.Flush()
			}

			applied, err := svc.Apply(ctx)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(out, "Database is up to date")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintln(out, "applied", name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "list migrations and whether they ran")
	return cmd
}
