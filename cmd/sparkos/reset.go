package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Factory reset: wipe every collection",
	Long: `Deletes all projects, manpower, inventory, transactions, registries,
chat history, and settings. There is no undo; take a backup first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes {
			fmt.Print("This wipes ALL console data. Type 'RESET' to confirm: ")
			line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if strings.TrimSpace(line) != "RESET" {
				fmt.Println("aborted")
				return nil
			}
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		_, st, err := openEngine(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Reset(); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		fmt.Println("factory reset complete")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip the confirmation prompt")
}
