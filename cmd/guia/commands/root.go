// ABOUTME: Root command and global flags for the guia CLI
// ABOUTME: Registers every subcommand and validates the persistent flags
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Global flags shared by all subcommands
var (
	verbose      bool
	quiet        bool
	outputFormat string
	configPath   string
)

const banner = `
 ██████  ██    ██ ██  █████
██       ██    ██ ██ ██   ██
██   ███ ██    ██ ██ ███████
██    ██ ██    ██ ██ ██   ██
 ██████   ██████  ██ ██   ██
`

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guia",
		Short: "Assistente de legislação tributária e viagens",
		Long: banner + `
guia answers questions about the Manaus municipal tax legislation using
retrieval-augmented generation over the law PDFs, and offers travel
helpers: query routing to specialist personas, session chat, itinerary
planning and destination suggestions.

Configuration comes from an optional YAML file (--config), environment
variables and a .env file in the working directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch outputFormat {
			case "auto", "text", "json":
				return nil
			default:
				return fmt.Errorf("invalid --format %q: must be auto, text or json", outputFormat)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (debug logging)")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print results")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, text or json")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(
		NewAskCmd(),
		NewRouteCmd(),
		NewChatCmd(),
		NewItineraryCmd(),
		NewSuggestCmd(),
		NewTUICmd(),
		NewServeCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
