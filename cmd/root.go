package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/doc-web/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "docweb",
	Short: "Serve a markdown book as a single-page documentation site",
	Long: `docweb turns a directory of markdown pages and a SUMMARY.md table of
contents into a documentation site. Pages are addressed by the URL fragment
(#page or #page_anchor), rendered with syntax highlighting, and linked with
previous/next navigation taken from the summary.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
