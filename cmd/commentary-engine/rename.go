// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/commentary-engine/internal/cpf"
)

var renameCmd = &cobra.Command{
	Use:   "rename <dir>",
	Short: "Rename CPF files in a directory to match their header titles",
	Long: `Rename reads the title from each CPF file's header and renames the file
to <title>.cpf.txt. Files whose names already match are left alone;
name collisions get a numeric suffix.`,
	Args: cobra.ExactArgs(1),
	RunE: runRename,
}

func init() {
	rootCmd.AddCommand(renameCmd)
}

func runRename(cmd *cobra.Command, args []string) error {
	summary, err := cpf.RenameDir(args[0], os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d file(s) failed renaming", summary.Failed)
	}
	return nil
}
