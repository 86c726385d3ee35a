package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/doc-web/internal/check"
	"github.com/ziadkadry99/doc-web/internal/progress"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that every summary entry has a page",
	Long: `Fetches the summary and every page it links to, reporting entries whose page
is missing. With local docs, markdown files the summary never links to are
listed as orphans.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Bool("strict", false, "treat orphan pages as errors")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := check.Options{
		SummaryMD: cfg.SummaryMD,
		Index:     cfg.Index,
		Reporter:  progress.NewReporter("Checking pages"),
	}
	if cfg.BaseURL == "" {
		opts.Docs = os.DirFS(cfg.DocsDir)
	}

	report, err := check.Run(cmd.Context(), newFetcher(cfg), newRenderer(cfg), opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Checked %d pages (%d external links)\n", report.Pages, report.External)
	for _, m := range report.Missing {
		reason := "not found"
		if !m.IsNotFound() {
			reason = m.Err.Error()
		}
		fmt.Fprintf(out, "  MISSING  %s -> %s (%s)\n", m.Entry.Text, m.Entry.Href, reason)
	}
	for _, o := range report.Orphans {
		fmt.Fprintf(out, "  ORPHAN   %s\n", o)
	}

	if !report.OK() {
		return fmt.Errorf("%d summary entries have no page", len(report.Missing))
	}
	if strict, _ := cmd.Flags().GetBool("strict"); strict && len(report.Orphans) > 0 {
		return fmt.Errorf("%d pages are not linked from %s", len(report.Orphans), cfg.SummaryMD)
	}
	fmt.Fprintln(out, "All summary entries resolve.")
	return nil
}
