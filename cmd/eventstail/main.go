package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"arcana-be/internal/config"
	"arcana-be/pkg/events"
	pktNats "arcana-be/pkg/nats"

	"github.com/fatih/color"
)

// eventstail follows the event stream and prints every workspace event
// as it arrives. Useful while watching a long sync from another
// terminal.
//
// Usage: eventstail [subject-filter]   (default "events.>")
func main() {
	cfg := config.Load()
	if cfg.App.NatsURL == "" {
		log.Fatal("NATS_URL is not configured")
	}

	subject := "events.>"
	if len(os.Args) > 1 {
		subject = os.Args[1]
	}

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Fatal("Failed to connect to NATS:", err)
	}
	defer sub.Close()

	ts := color.New(color.Faint)
	kind := color.New(color.FgCyan, color.Bold)
	failed := color.New(color.FgRed, color.Bold)

	err = sub.Subscribe(subject, "eventstail", func(_ context.Context, event events.Event) error {
		line := kind
		if event.EventType() == events.TypeSyncFailed {
			line = failed
		}
		ts.Printf("%s  ", event.Timestamp().Format("15:04:05"))
		line.Printf("%-22s", event.EventType())
		for k, v := range event.Payload() {
			fmt.Printf(" %s=%v", k, v)
		}
		fmt.Println()
		return nil
	})
	if err != nil {
		log.Fatal("Failed to subscribe:", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
}
