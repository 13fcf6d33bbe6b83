package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"sparkos/internal/uplink"
)

var reportOut string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the weekly SITREP",
	Long: `Asks GENESIS for the weekly situation report over the current state
and renders it to the terminal (or writes raw markdown with --out).`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "write raw markdown to a file instead of rendering")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	_, st, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	gemini, err := uplink.NewGeminiClient(cfg)
	if err != nil {
		return err
	}
	defer gemini.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.GetGeminiTimeout())
	defer cancel()

	advisor := uplink.NewAdvisor(gemini)
	report := advisor.SitrepReport(ctx, st.Projects(), st.Manpower(), st.Transactions())

	if reportOut != "" {
		if err := os.WriteFile(reportOut, []byte(report), 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("report written to %s\n", reportOut)
		return nil
	}

	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Println(report)
		return nil
	}
	rendered, err := renderer.Render(report)
	if err != nil {
		fmt.Println(report)
		return nil
	}
	fmt.Print(rendered)
	return nil
}
