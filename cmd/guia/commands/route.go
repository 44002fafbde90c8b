// ABOUTME: CLI command that routes a travel question to a specialist persona
// ABOUTME: Classifies into praia, aventura or gastronomia and prints the routed answer
package commands

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/guia/internal/app"
)

const routePrompt = "Qual o seu objetivo de viagem? "

// NewRouteCmd creates the route command
func NewRouteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route [query]",
		Short: "Route a travel question to a specialist",
		Long: `Classify a travel question as praia, aventura or gastronomia and answer
it with the matching specialist persona.

Examples:
  guia route "Quero relaxar numa praia tranquila no Nordeste"
  guia route --format json "Onde comer a melhor moqueca?"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRoute,
	}
}

func runRoute(cmd *cobra.Command, args []string) error {
	query := ""
	if len(args) > 0 {
		query = args[0]
	} else {
		line, err := readLine(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(), routePrompt)
		if err != nil {
			return fmt.Errorf("reading query: %w", err)
		}
		query = line
	}
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("no query provided")
	}

	a, err := app.New(configPath, verbose, quiet)
	if err != nil {
		return err
	}
	defer a.Close()

	router := a.Router()

	ctx, cancel := a.CallContext(cmd.Context())
	defer cancel()

	routed, err := router.Dispatch(ctx, query)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), routed)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "[%s]\n", routed.Route)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", routed.Text)
	return nil
}
