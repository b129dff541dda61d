package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"vsixget/internal/config"
	"vsixget/internal/extensions"
	"vsixget/internal/prompt"
)

var keepLatest bool

var deleteCmd = &cobra.Command{
	Use:   "delete [EXTENSION_ID]",
	Short: "Deletes downloaded packages of an extension",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runDelete(cmd, args[0])
	},
}

func init() {
	deleteCmd.Flags().BoolVar(&keepLatest, "keep-latest", false, "keep the newest downloaded version")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, extensionID string) error {
	config := config.GetConfig()
	extManager := extensions.New(config.DownloadDir)
	out := cmd.OutOrStdout()

	packages, err := extManager.Packages(extensionID)
	if err != nil {
		return fmt.Errorf("error listing packages: %w", err)
	}
	if keepLatest && len(packages) > 0 {
		fmt.Fprintf(out, "Keeping %s %s\n", extensionID, packages[0].Version)
		packages = packages[1:]
	}
	if len(packages) == 0 {
		fmt.Fprintf(out, "No packages to delete for %s in %s\n", extensionID, extManager.GetExtensionsDir())
		return nil
	}

	fmt.Fprintf(out, "Found packages for deletion:\n")
	for _, pkg := range packages {
		fmt.Fprintf(out, "  %s (%s)\n", pkg.FilePath, humanize.Bytes(uint64(pkg.Size)))
	}

	confirmer := prompt.NewYesNoConfirmer(cmd.InOrStdin(), out)
	ok, err := confirmer.Confirm(cmd.Context(), "\nContinue with deletion? (y/N): ")
	if err != nil {
		return fmt.Errorf("error reading confirmation: %w", err)
	}
	if !ok {
		fmt.Fprintln(out, "Deletion cancelled")
		return nil
	}

	removed, err := extManager.Delete(packages)
	if err != nil {
		return fmt.Errorf("error deleting packages: %w", err)
	}

	fmt.Fprintf(out, "Deleted %d package(s)\n", removed)
	return nil
}
