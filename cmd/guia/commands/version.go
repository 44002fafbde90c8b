// ABOUTME: Version command to display build information
// ABOUTME: Shows version, commit hash, and build date
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionInfo = VersionInfo{
	Version: "dev",
	Commit:  "none",
	Date:    "unknown",
}

// VersionInfo contains build information
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// SetVersion sets the version information (called from main)
func SetVersion(version, commit, date string) {
	versionInfo = VersionInfo{Version: version, Commit: commit, Date: date}
}

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date for guia.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputFormat == "json" {
				return writeJSON(cmd.OutOrStdout(), versionInfo)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "guia %s\n", versionInfo.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Commit: %s\n", versionInfo.Commit)
			fmt.Fprintf(cmd.OutOrStdout(), "Built:  %s\n", versionInfo.Date)
			return nil
		},
	}
}
