package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hcpro/triaged/internal/config"
)

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}

// --- triages ---

var triagesCmd = &cobra.Command{
	Use:   "triages",
	Short: "Inspect the triage audit log",
}

var triagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent triages",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		client := newAPIClient(cfg)

		resp, err := client.get(fmt.Sprintf("/triages?limit=%d", limit))
		if err != nil {
			return err
		}

		var list struct {
			Triages []struct {
				ID           string `json:"id"`
				CreatedAt    string `json:"created_at"`
				Source       string `json:"source"`
				ReportStatus string `json:"report_status"`
			} `json:"triages"`
		}
		if err := decodeJSON(resp, &list); err != nil {
			return err
		}

		if len(list.Triages) == 0 {
			fmt.Println("No triages found.")
			return nil
		}

		for _, t := range list.Triages {
			fmt.Printf("%s  %s  %-8s report=%s\n",
				colorize(colorCyan, t.ID[:8]),
				t.CreatedAt,
				t.Source,
				t.ReportStatus,
			)
		}
		return nil
	},
}

var triagesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single triage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		client := newAPIClient(cfg)

		resp, err := client.get("/triages/" + args[0])
		if err != nil {
			return err
		}

		var triage any
		if err := decodeJSON(resp, &triage); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(triage)
	},
}

func init() {
	triagesListCmd.Flags().Int("limit", 20, "maximum number of triages to list")
	triagesCmd.AddCommand(triagesListCmd)
	triagesCmd.AddCommand(triagesShowCmd)
}
