package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(agentsCmd, loginCmd, logoutCmd, statusCmd, healthCmd)

	statusCmd.Flags().String("status", "", "new status (online, offline, busy, away)")
	statusCmd.Flags().String("task", "", "current task description")
}

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List all participants",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		participants, err := client().ListParticipants()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tROLE\tSTATUS\tTASK")
		for _, p := range participants {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Role, p.Status, p.CurrentTask)
		}
		return w.Flush()
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <id>",
	Short: "Mark a participant online",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := client().Login(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s is now %s\n", p.Name, p.Status)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout <id>",
	Short: "Mark a participant offline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := client().Logout(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s is now %s\n", p.Name, p.Status)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <id>",
	Short: "Update a participant's status or task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var status, task *string
		if cmd.Flags().Changed("status") {
			s, _ := cmd.Flags().GetString("status")
			status = &s
		}
		if cmd.Flags().Changed("task") {
			t, _ := cmd.Flags().GetString("task")
			task = &t
		}
		if status == nil && task == nil {
			return fmt.Errorf("nothing to change, pass --status and/or --task")
		}

		p, err := client().SetStatus(args[0], status, task)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s", p.Name, p.Status)
		if p.CurrentTask != "" {
			fmt.Printf(" (%s)", p.CurrentTask)
		}
		fmt.Println()
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server health",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := client().Health()
		if err != nil {
			return err
		}
		data, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(data))
		return nil
	},
}
