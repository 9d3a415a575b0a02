package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/FerryF19999/chatinterface/clients/go/chat"
	"github.com/FerryF19999/chatinterface/internal/broadcast"
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Bool("poll", false, "poll snapshots instead of the push channel")
	watchCmd.Flags().Duration("interval", 3*time.Second, "polling interval")
	watchCmd.Flags().String("relay", "", "subscribe to the Redis relay at this URL instead")
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream chat events as they happen",
	Long: `Stream chat events as they happen. The delivery strategy is picked
once at connection time: the push channel by default, the Redis relay with
--relay, or snapshot polling with --poll (also the automatic fallback when
the push channel is unavailable). All strategies reconcile through the same
deduplicating view, so no event is ever printed twice.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		poll, _ := cmd.Flags().GetBool("poll")
		interval, _ := cmd.Flags().GetDuration("interval")
		relayURL, _ := cmd.Flags().GetString("relay")

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		c := client()
		view := chat.NewView()

		switch {
		case relayURL != "":
			return watchRelay(ctx, c, relayURL, view)
		case poll:
			return watchPoll(ctx, c, interval, view)
		default:
			err := watchPush(ctx, c, view)
			if err == nil || ctx.Err() != nil {
				return nil
			}
			// Push channel unavailable (e.g. relay-mode server): fall back
			// to polling with the same view.
			fmt.Println("push channel unavailable, falling back to polling")
			return watchPoll(ctx, c, interval, view)
		}
	},
}

func watchPush(ctx context.Context, c *chat.Client, view *chat.View) error {
	return c.Watch(ctx, func(e chat.Event) error {
		applied, err := view.Apply(e)
		if err != nil {
			return err
		}
		if applied {
			printEvent(e)
		}
		return nil
	})
}

func watchPoll(ctx context.Context, c *chat.Client, interval time.Duration, view *chat.View) error {
	seededMessages := len(view.Messages)
	err := c.Poll(ctx, interval, view, func(v *chat.View) {
		for _, msg := range v.Messages[seededMessages:] {
			printMessage(msg)
		}
		seededMessages = len(v.Messages)
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func watchRelay(ctx context.Context, c *chat.Client, relayURL string, view *chat.View) error {
	opts, err := redis.ParseURL(relayURL)
	if err != nil {
		return fmt.Errorf("parse relay url: %w", err)
	}
	rdb := redis.NewClient(opts)
	defer rdb.Close()

	sub := rdb.Subscribe(ctx, broadcast.EventsChannel())
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("relay subscribe: %w", err)
	}

	// Seed the view from a snapshot; the relay has no init event and may
	// redeliver, so everything funnels through the deduplicating view.
	snap, err := c.GetSnapshot()
	if err != nil {
		return err
	}
	view.ApplySnapshot(*snap)
	fmt.Printf("watching relay (%d participants, %d messages seen)\n",
		len(view.Participants), len(view.Messages))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var e chat.Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				fmt.Printf("bad relay frame: %v\n", err)
				continue
			}
			applied, err := view.Apply(e)
			if err != nil {
				fmt.Printf("bad relay event: %v\n", err)
				continue
			}
			if applied {
				printEvent(e)
			}
		}
	}
}

func printEvent(e chat.Event) {
	switch e.Name {
	case chat.EventInit:
		fmt.Println("synced")
	case chat.EventMessageNew:
		var msg chat.Message
		if json.Unmarshal(e.Data, &msg) == nil {
			printMessage(msg)
		}
	case chat.EventActivityNew:
		var a chat.Activity
		if json.Unmarshal(e.Data, &a) == nil {
			ts := time.UnixMilli(a.Timestamp).Format("15:04:05")
			fmt.Printf("[%s] %-8s %s\n", ts, a.Type, a.Description)
		}
	case chat.EventParticipantUpdated:
		var p chat.Participant
		if json.Unmarshal(e.Data, &p) == nil {
			line := fmt.Sprintf("%s is %s", p.Name, p.Status)
			if p.CurrentTask != "" {
				line += " (" + p.CurrentTask + ")"
			}
			fmt.Println("-- " + line)
		}
	case chat.EventMessageRead:
		// quiet; read receipts only matter to the view
	}
}
