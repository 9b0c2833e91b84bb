package cmd

import (
	"context"
	"strconv"
	"strings"

	"github.com/bnema/legalai-cli/internal/application"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(state *cliState) *cobra.Command {
	var description string
	var caseType string
	var facts []string

	cmd := &cobra.Command{
		Use:   "analyze [description]",
		Short: "Predict the outcome of a case",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if description == "" {
				description = strings.Join(args, " ")
			}

			return state.run(cmd, runOptions{restore: true}, func(ctx context.Context, app *app) error {
				form := application.NewForm().
					Set("description", description).
					Set("case_type", caseType)
				for _, fact := range facts {
					form.Add("fact", fact)
				}
				return app.dispatch(ctx, application.ActionAnalyze, form)
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Case description")
	cmd.Flags().StringVar(&caseType, "case-type", "", "Case type (default civil)")
	cmd.Flags().StringArrayVar(&facts, "fact", nil, "Relevant fact (repeatable)")

	return cmd
}

func newSearchCmd(state *cliState) *cobra.Command {
	var query string
	var tribunal string
	var subject string
	var from string
	var to string
	var limit int

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search jurisprudence",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if query == "" {
				query = strings.Join(args, " ")
			}

			return state.run(cmd, runOptions{restore: true}, func(ctx context.Context, app *app) error {
				form := application.NewForm().
					Set("query", query).
					Set("tribunal", tribunal).
					Set("subject", subject).
					Set("from", from).
					Set("to", to)
				if cmd.Flags().Changed("limit") {
					form.Set("limit", strconv.Itoa(limit))
				}
				return app.dispatch(ctx, application.ActionSearch, form)
			})
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Search terms")
	cmd.Flags().StringVar(&tribunal, "tribunal", "", "Restrict to a tribunal")
	cmd.Flags().StringVar(&subject, "subject", "", "Restrict to a subject")
	cmd.Flags().StringVar(&from, "from", "", "Earliest judgment date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Latest judgment date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")

	return cmd
}
