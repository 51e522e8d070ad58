package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dd0wney/owlgraph/pkg/pgexport"
)

func newExportCommand(a *app) *cobra.Command {
	var dsn, schema string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Copy the stored graph into PostgreSQL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				dsn = a.cfg.Export.DSN
			}
			if schema == "" {
				schema = a.cfg.Export.Schema
			}
			if dsn == "" {
				return errors.New("a PostgreSQL DSN is required (--dsn or OWLGRAPH_PG_DSN)")
			}

			gs, err := a.openStore(true)
			if err != nil {
				return err
			}
			defer gs.Close()

			exp, err := pgexport.Open(cmd.Context(), dsn, schema, a.logger, a.metrics)
			if err != nil {
				return err
			}
			defer exp.Close()

			stats, err := exp.Export(cmd.Context(), gs)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "exported %d nodes and %d edges to schema %s\n", stats.Nodes, stats.Edges, schema)
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "PostgreSQL connection string (overrides OWLGRAPH_PG_DSN)")
	cmd.Flags().StringVar(&schema, "schema", "", "Target schema (overrides export.schema)")
	return cmd
}
