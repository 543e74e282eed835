package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List chat sessions, most recent first",
	Run: func(cmd *cobra.Command, args []string) {
		sessions, err := api.Sessions(cmd.Context())
		if err != nil {
			exitWithError("%v", err)
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions yet.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SESSION\tTITLE\tLAST ACTIVITY")
		for _, s := range sessions {
			fmt.Fprintf(w, "%s\t%s\t%s\n", s.SessionId, s.Title, s.LastActivity.Local().Format(time.DateTime))
		}
		_ = w.Flush()
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <session-id>",
	Short: "Print the messages of a session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		messages, err := api.History(cmd.Context(), args[0])
		if err != nil {
			exitWithError("%v", err)
		}
		for _, m := range messages {
			label := color.GreenString("%-9s", m.Role)
			if m.Role != "user" {
				label = color.YellowString("%-9s", m.Role)
			}
			fmt.Printf("%s %s\n", label, m.Content)
		}
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete every message of a session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		res, err := api.DeleteSession(cmd.Context(), args[0])
		if err != nil {
			exitWithError("%v", err)
		}
		color.Green("Deleted %d messages from %s", res.Deleted, res.SessionId)
	},
}
