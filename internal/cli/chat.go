package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var chatSession string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat over the websocket",
	Long: `Opens the chat socket and sends every line typed on stdin as one turn.
Replies are streamed as they arrive. Type /quit to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if chatSession == "" {
			chatSession = uuid.NewString()
		}

		conv, err := api.Dial(ctx, "cli-"+uuid.NewString())
		if err != nil {
			return err
		}
		defer conv.Close()

		color.Cyan("Session %s. Type /quit to leave.", chatSession)
		prompt := color.New(color.FgGreen, color.Bold)
		bot := color.New(color.FgYellow)

		scanner := bufio.NewScanner(os.Stdin)
		for {
			prompt.Print("you> ")
			if !scanner.Scan() {
				fmt.Println()
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "/quit" {
				return nil
			}

			bot.Print("bot> ")
			if _, err := conv.Say(chatSession, line, func(chunk string) { bot.Print(chunk) }); err != nil {
				fmt.Println()
				color.Red("%v", err)
				continue
			}
			fmt.Println()
		}
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a one-off question against the ingested documents",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		res, err := api.Ask(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			exitWithError("%v", err)
		}
		fmt.Println(res.Answer)
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatSession, "session", "", "session id to continue (default: a new one)")
}
