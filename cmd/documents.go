package cmd

import (
	"context"

	"github.com/bnema/legalai-cli/internal/application"
	"github.com/spf13/cobra"
)

func newGenerateCmd(state *cliState) *cobra.Command {
	var caseID string
	var documentType string
	var template string
	var details map[string]string
	var attachment string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a legal document for a case",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return state.run(cmd, runOptions{restore: true}, func(ctx context.Context, app *app) error {
				form := application.NewForm().
					Set("case_id", caseID).
					Set("document_type", documentType).
					Set("template", template)
				for name, value := range details {
					form.Set("detail."+name, value)
				}
				if attachment != "" {
					form.SetFile("attachment", attachment)
				}
				return app.dispatch(ctx, application.ActionGenerateDocument, form)
			})
		},
	}

	cmd.Flags().StringVar(&caseID, "case", "", "Case id")
	cmd.Flags().StringVar(&documentType, "type", "", "Document type (demanda, contestacion, recurso...)")
	cmd.Flags().StringVar(&template, "template", "", "Template name")
	cmd.Flags().StringToStringVar(&details, "detail", nil, "Template detail as name=value (repeatable)")
	cmd.Flags().StringVar(&attachment, "attachment", "", "File to attach")

	return cmd
}

func newDocumentsCmd(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "Summarize documents and list templates",
	}

	cmd.AddCommand(newDocumentsSummarizeCmd(state), newDocumentsTemplatesCmd(state))

	return cmd
}

func newDocumentsSummarizeCmd(state *cliState) *cobra.Command {
	var content string
	var file string
	var kind string

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize a document for a technical or citizen audience",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return state.run(cmd, runOptions{restore: true}, func(ctx context.Context, app *app) error {
				form := application.NewForm().
					Set("content", content).
					Set("kind", kind)
				if file != "" {
					form.SetFile("document", file)
				}
				return app.dispatch(ctx, application.ActionSummarize, form)
			})
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "Text to summarize")
	cmd.Flags().StringVar(&file, "file", "", "Read the text to summarize from a file")
	cmd.Flags().StringVar(&kind, "kind", "", "Summary kind (technical|citizen)")
	cmd.MarkFlagsMutuallyExclusive("content", "file")

	return cmd
}

func newDocumentsTemplatesCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List document templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return state.run(cmd, runOptions{restore: true}, func(ctx context.Context, app *app) error {
				return app.dispatch(ctx, application.ActionLoadTemplates, application.NewForm())
			})
		},
	}
}
