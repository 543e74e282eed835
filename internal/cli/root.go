// Package cli provides the command-line client for the chatbot server.
package cli

import (
	"fmt"
	"os"

	"rag-chatbot-be/internal/client"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	serverURL string
	natsURL   string

	api *client.Client
)

var rootCmd = &cobra.Command{
	Use:   "chat-cli",
	Short: "Talk to the RAG chatbot from a terminal",
	Long: `chat-cli drives the chatbot server: chat over the websocket, browse
and delete sessions, ask one-off questions, ingest documents and follow the
application events published on NATS.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		api = client.New(serverURL)
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "server base URL (default $CHAT_SERVER_URL or http://localhost:3000)")
	rootCmd.PersistentFlags().StringVar(&natsURL, "nats", os.Getenv("NATS_URL"), "NATS URL for the events command")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(eventsCmd)
}

// exitWithError prints an error message and exits with code 1.
func exitWithError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
