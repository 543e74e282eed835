package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"rag-chatbot-be/pkg/events"
	pktNats "rag-chatbot-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Follow application events published on NATS",
	RunE: func(cmd *cobra.Command, args []string) error {
		if natsURL == "" {
			return fmt.Errorf("--nats or NATS_URL is required")
		}

		sub, err := pktNats.NewSubscriber(natsURL)
		if err != nil {
			return err
		}
		defer sub.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		color.Cyan("Listening on %s>", pktNats.SubjectPrefix)
		return sub.Subscribe(ctx, pktNats.SubjectPrefix+">", "", printEvent)
	},
}

func printEvent(_ context.Context, event events.Event) error {
	payload, err := json.Marshal(event.Payload())
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", color.MagentaString("[%s]", event.EventType()), payload)
	return nil
}
