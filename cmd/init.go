package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/doc-web/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize docweb configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to describe your book (title, summary, default page, docs directory) and generates a .docweb.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
