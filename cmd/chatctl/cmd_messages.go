package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/FerryF19999/chatinterface/clients/go/chat"
)

func init() {
	rootCmd.AddCommand(sendCmd, readCmd, logCmd, callCmd)

	sendCmd.Flags().String("to", "", "recipient id (default: broadcast)")
	sendCmd.Flags().String("kind", "", "message kind (default: text)")

	readCmd.Flags().Int("limit", 20, "maximum messages to fetch")
	readCmd.Flags().String("participant", "", "filter to one participant's view")
	readCmd.Flags().Bool("mark-read", false, "mark fetched messages as read")

	logCmd.Flags().Int("limit", 20, "maximum activities to fetch")

	callCmd.Flags().String("from", "", "calling participant id (required)")
	callCmd.Flags().Bool("owner", false, "use the owner-only dispatch path")
	_ = callCmd.MarkFlagRequired("from")
}

var sendCmd = &cobra.Command{
	Use:   "send <from> <content>",
	Short: "Send a chat message",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, _ := cmd.Flags().GetString("to")
		kind, _ := cmd.Flags().GetString("kind")

		msg, err := client().SendMessage(args[0], to, args[1], kind)
		if err != nil {
			return err
		}
		fmt.Printf("Sent: %s\n", msg.ID)
		return nil
	},
}

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read recent messages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		participant, _ := cmd.Flags().GetString("participant")
		markRead, _ := cmd.Flags().GetBool("mark-read")

		c := client()
		messages, err := c.ListMessages(limit, participant)
		if err != nil {
			return err
		}
		for _, msg := range messages {
			printMessage(msg)
			if markRead && !msg.Read {
				if _, err := c.MarkRead(msg.ID); err != nil {
					return err
				}
			}
		}
		return nil
	},
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the activity log, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		activities, err := client().ListActivities(limit)
		if err != nil {
			return err
		}
		for _, a := range activities {
			ts := time.UnixMilli(a.Timestamp).Format("15:04:05")
			fmt.Printf("[%s] %-8s %s\n", ts, a.Type, a.Description)
		}
		return nil
	},
}

var callCmd = &cobra.Command{
	Use:   "call <agent> <command>",
	Short: "Dispatch a command to an agent",
	Long: `Dispatch a command to an agent. The command message id is printed
immediately; the agent's response arrives asynchronously and can be seen
with "chatctl read" or "chatctl watch".`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		owner, _ := cmd.Flags().GetBool("owner")

		c := client()
		var (
			msgID string
			err   error
		)
		if owner {
			msgID, err = c.DispatchOwnerCommand(args[0], args[1], from)
		} else {
			msgID, err = c.DispatchCommand(args[0], args[1], from)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Accepted: %s\n", msgID)
		return nil
	},
}

func printMessage(msg chat.Message) {
	ts := time.UnixMilli(msg.Timestamp).Format("2006-01-02 15:04:05")
	target := "all"
	if msg.To != "" {
		target = msg.To
	}
	marker := " "
	if msg.Read {
		marker = "*"
	}
	fmt.Printf("[%s]%s %s -> %s: %s\n", ts, marker, msg.From, target, msg.Content)
}
