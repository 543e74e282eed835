package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var ingestTitle string

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Upload a text document for retrieval",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		res, err := api.Upload(cmd.Context(), args[0], ingestTitle)
		if err != nil {
			exitWithError("%v", err)
		}
		color.Green("Document %q %s (id %s)", res.Title, res.Status, res.Id)
	},
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestTitle, "title", "t", "", "document title (default: file name)")
}
