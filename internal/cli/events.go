package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ragchat-client/internal/constant"
	"ragchat-client/internal/pkg/logger"
	"ragchat-client/pkg/events"

	pktNats "ragchat-client/pkg/nats"
)

var (
	eventsDurable string
	eventsType    string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Follow session events mirrored to NATS",
	Long: `Prints events published by chat clients running with NATS_ENABLED=true.
By default only new events are shown; --durable resumes a named consumer.`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().StringVar(&eventsDurable, "durable", "", "Durable consumer name")
	eventsCmd.Flags().StringVar(&eventsType, "type", "", "Only this event type, e.g. session.changed")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	l := logger.NewIsolatedLogger(cfg.App.LogFilePath, cfg.App.Debug)
	defer func() { _ = l.Sync() }()

	sub, err := pktNats.NewSubscriber(cfg.Events.NatsURL, constant.NatsStreamName, l)
	if err != nil {
		return err
	}
	defer sub.Close()

	subject := cfg.Events.SubjectPrefix + ".>"
	if eventsType != "" {
		subject = pktNats.Subject(cfg.Events.SubjectPrefix, eventsType)
	}

	ctx, cancel := signalContext()
	defer cancel()

	headerColor.Fprintf(os.Stdout, "Following %s\n", subject)
	return sub.Subscribe(ctx, subject, eventsDurable, func(_ context.Context, e events.Event) error {
		data, err := json.Marshal(e.Payload())
		if err != nil {
			return err
		}
		faintColor.Fprintf(os.Stdout, "%s ", e.Timestamp().Local().Format("15:04:05"))
		citationColor.Fprintf(os.Stdout, "%s ", e.EventType())
		fmt.Fprintln(os.Stdout, string(data))
		return nil
	})
}
