package cmd

import (
	"context"
	"strings"

	"github.com/bnema/legalai-cli/internal/application"
	"github.com/spf13/cobra"
)

func newCasesCmd(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cases",
		Short: "Manage your cases",
	}

	cmd.AddCommand(
		newCasesListCmd(state),
		newCasesShowCmd(state),
		newCasesCreateCmd(state),
		newCasesUpdateCmd(state),
		newCasesStatusCmd(state),
		newCasesDeleteCmd(state),
		newCasesDocumentsCmd(state),
	)

	return cmd
}

func newCasesListCmd(state *cliState) *cobra.Command {
	var status string
	var caseType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your cases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return state.run(cmd, runOptions{restore: true}, func(ctx context.Context, app *app) error {
				form := application.NewForm().
					Set("status", status).
					Set("case_type", caseType)
				return app.dispatch(ctx, application.ActionLoadCases, form)
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only cases in this status (initiated|in_progress|resolved|archived)")
	cmd.Flags().StringVar(&caseType, "case-type", "", "Only cases of this type")

	return cmd
}

func newCasesShowCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "show <case-id>",
		Short: "Show one case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return state.run(cmd, runOptions{restore: true}, func(ctx context.Context, app *app) error {
				return app.dispatch(ctx, application.ActionGetCase, application.NewForm().Set("case_id", args[0]))
			})
		},
	}
}

func newCasesCreateCmd(state *cliState) *cobra.Command {
	var expedient string
	var title string
	var description string
	var caseType string
	var status string
	var priority string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a case",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return state.run(cmd, runOptions{restore: true}, func(ctx context.Context, app *app) error {
				form := application.NewForm().
					Set("expedient_number", expedient).
					Set("title", title).
					Set("description", description).
					Set("case_type", caseType).
					Set("status", status).
					Set("priority", priority)
				return app.dispatch(ctx, application.ActionCreateCase, form)
			})
		},
	}

	cmd.Flags().StringVar(&expedient, "expedient", "", "Expedient number")
	cmd.Flags().StringVar(&title, "title", "", "Case title")
	cmd.Flags().StringVar(&description, "description", "", "Case description")
	cmd.Flags().StringVar(&caseType, "type", "", "Case type")
	cmd.Flags().StringVar(&status, "status", "", "Initial status (default initiated)")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority (low|medium|high|urgent)")

	return cmd
}

func newCasesUpdateCmd(state *cliState) *cobra.Command {
	var title string
	var description string
	var caseType string
	var status string

	cmd := &cobra.Command{
		Use:   "update <case-id>",
		Short: "Update the fields of a case",
		Long:  "Update the fields of a case. Only the flags given are sent.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return state.run(cmd, runOptions{restore: true}, func(ctx context.Context, app *app) error {
				form := application.NewForm().Set("case_id", args[0])
				flags := cmd.Flags()
				for key, value := range map[string]string{
					"title":       title,
					"description": description,
					"case-type":   caseType,
					"status":      status,
				} {
					if flags.Changed(key) {
						form.Set(strings.ReplaceAll(key, "-", "_"), value)
					}
				}
				return app.dispatch(ctx, application.ActionUpdateCase, form)
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&caseType, "case-type", "", "New case type")
	cmd.Flags().StringVar(&status, "status", "", "New status (initiated|in_progress|resolved|archived)")

	return cmd
}

func newCasesStatusCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "status <case-id> <status>",
		Short: "Change the status of a case",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return state.run(cmd, runOptions{restore: true}, func(ctx context.Context, app *app) error {
				form := application.NewForm().
					Set("case_id", args[0]).
					Set("status", args[1])
				return app.dispatch(ctx, application.ActionChangeCaseStatus, form)
			})
		},
	}
}

func newCasesDeleteCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <case-id>",
		Short: "Delete a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return state.run(cmd, runOptions{restore: true}, func(ctx context.Context, app *app) error {
				return app.dispatch(ctx, application.ActionDeleteCase, application.NewForm().Set("case_id", args[0]))
			})
		},
	}
}

func newCasesDocumentsCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "documents <case-id>",
		Short: "List the documents generated for a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return state.run(cmd, runOptions{restore: true}, func(ctx context.Context, app *app) error {
				return app.dispatch(ctx, application.ActionCaseDocuments, application.NewForm().Set("case_id", args[0]))
			})
		},
	}
}
