package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/doc-web/internal/nav"
	"github.com/ziadkadry99/doc-web/internal/viewer"
)

var viewCmd = &cobra.Command{
	Use:   "view [FRAGMENT]",
	Short: "Render one page the way the site would, without a browser",
	Long: `Resolves FRAGMENT (e.g. "chapter1" or "chapter1_Usage"; empty for the
default page) exactly as the site does and prints the document title and the
decorated content HTML to stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runView,
}

func init() {
	viewCmd.Flags().Bool("sidebar", false, "also print the rendered sidebar")
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	fragment := ""
	if len(args) == 1 {
		fragment = args[0]
	}

	content := &viewer.Recorder{}
	sidebarView := &viewer.SidebarRecorder{}
	vcfg, deps := viewerSetup(cfg, logger)
	v := viewer.New(vcfg, deps, viewer.Ports{
		Location: nav.NewMemoryLocation(fragment, nil),
		Content:  content,
		Sidebar:  sidebarView,
		Window:   content,
	})

	err = v.Start(cmd.Context())
	var fetchErr *viewer.FetchError
	if errors.As(err, &fetchErr) {
		return fmt.Errorf("page %q: %w", fetchErr.Page, fetchErr.Err)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "<!-- %s -->\n", content.Title())
	if show, _ := cmd.Flags().GetBool("sidebar"); show {
		fmt.Fprintln(out, sidebarView.HTML())
	}
	fmt.Fprintln(out, content.Content())
	return nil
}
