package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"feedback-backend/internal/models"
)

func newFeedbackCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Maintain stored feedback",
	}
	cmd.AddCommand(newPurgeTrialCmd(a))
	return cmd
}

func newPurgeTrialCmd(a *app) *cobra.Command {
	var (
		emails  []string
		domains []string
		dryRun  bool
	)
	cmd := &cobra.Command{
		Use:     "purge-trial",
		Short:   "Soft-delete feedback sent from trial or internal addresses",
		Example: "  feedbackctl feedback purge-trial --email qa@example.com --domain example.com --dry-run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := a.maintenance.PurgeTrial(cmd.Context(), emails, domains, dryRun)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(result.Matched) == 0 {
				fmt.Fprintln(out, "No matching live feedback found.")
				return nil
			}
			printMatches(out, result.Matched)

			if dryRun {
				fmt.Fprintf(out, "Dry run: %d record(s) would be soft-deleted.\n", len(result.Matched))
				return nil
			}
			a.log.Info().Int64("soft_deleted", result.SoftDeleted).Msg("trial feedback purged")
			fmt.Fprintf(out, "Soft-deleted %d record(s).\n", result.SoftDeleted)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&emails, "email", nil, "exact sender address to purge (repeatable)")
	cmd.Flags().StringSliceVar(&domains, "domain", nil, "sender domain to purge, e.g. example.com (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only list the matching records")
	return cmd
}

func printMatches(out io.Writer, matched []models.Feedback) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tCOMPANY\tCREATED")
	for _, f := range matched {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.ID.Hex(), f.Email, f.CompanyName, f.CreatedAt.Format(time.RFC3339))
	}
	tw.Flush()
}
