package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/dd0wney/owlgraph/pkg/graphql"
	"github.com/dd0wney/owlgraph/pkg/materialize"
)

func newQueryCommand(a *app) *cobra.Command {
	var (
		limit int
		query string
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "List the newest nodes, or run a GraphQL query",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gs, err := a.openStore(true)
			if err != nil {
				return err
			}
			defer gs.Close()

			if query == "" {
				t := table.New().
					Border(lipgloss.HiddenBorder()).
					Headers("ID", "KEY", "NAME", "LABELS")
				for _, n := range gs.NewestNodes(limit) {
					t.Row(strconv.FormatUint(n.ID, 10),
						n.StringProperty(materialize.PropKey),
						n.StringProperty(materialize.PropName),
						strings.Join(n.Labels, ","))
				}
				_, err := fmt.Fprintln(a.stdout, t.Render())
				return err
			}

			executor, err := graphql.NewExecutor(gs, nil)
			if err != nil {
				return err
			}
			result := executor.Execute(cmd.Context(), query, nil)
			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}
			fmt.Fprintln(a.stdout, string(out))
			if result.HasErrors() {
				return fmt.Errorf("query returned %d errors", len(result.Errors))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 30, "Number of nodes to list")
	cmd.Flags().StringVar(&query, "graphql", "", "GraphQL query to run instead of listing nodes")
	return cmd
}
