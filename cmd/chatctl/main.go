// chatctl is the command line client for the chatinterface server. It
// performs the same operations as the browser dashboard over the same
// request surface, and can watch the event stream, the Redis relay, or fall
// back to polling.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/FerryF19999/chatinterface/clients/go/chat"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "chatctl",
	Short: "Command line client for the agent chat dashboard",
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
}

func init() {
	defaultURL := os.Getenv("CHAT_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultURL, "server URL (env: CHAT_URL)")
}

func client() *chat.Client {
	return chat.NewClient(serverURL)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
