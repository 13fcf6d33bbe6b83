package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var backupDir string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export the full state to a JSON backup file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		_, st, err := openEngine(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		dir := backupDir
		if dir == "" {
			dir = cfg.Backup.Directory
		}
		path, err := st.ExportBackup(dir)
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}
		fmt.Printf("backup written to %s\n", path)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore [backup-file]",
	Short: "Restore state from a JSON backup file",
	Long: `Replaces every collection with the contents of the backup document.
Collections absent from the file are left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		_, st, err := openEngine(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.RestoreBackup(args[0]); err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}
		fmt.Printf("state restored from %s\n", args[0])
		return nil
	},
}

func init() {
	backupCmd.Flags().StringVarP(&backupDir, "dir", "d", "", "backup directory (default from config)")
}
