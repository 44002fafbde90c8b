// ABOUTME: CLI command that suggests a destination for an interest
// ABOUTME: Prints the destination, popular restaurants and cultural activities
package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/guia/internal/app"
	"github.com/harper/guia/internal/models"
)

const suggestPrompt = "Quais são os interesses da sua viagem? (ex: aventura, cultura, gastronomia): "

// NewSuggestCmd creates the suggest command
func NewSuggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest [interest]",
		Short: "Suggest a destination, restaurants and cultural activities",
		Long: `Suggest a Brazilian destination for an interest, then list popular
restaurants and cultural activities there.

Examples:
  guia suggest praias
  guia suggest --format json "ecoturismo"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSuggest,
	}
}

func runSuggest(cmd *cobra.Command, args []string) error {
	interest := ""
	if len(args) > 0 {
		interest = args[0]
	} else {
		line, err := readLine(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(), suggestPrompt)
		if err != nil {
			return fmt.Errorf("reading interest: %w", err)
		}
		interest = line
	}
	if strings.TrimSpace(interest) == "" {
		return fmt.Errorf("no interest provided")
	}

	a, err := app.New(configPath, verbose, quiet)
	if err != nil {
		return err
	}
	defer a.Close()

	planner := a.Planner()

	// three chained calls
	ctx, cancel := context.WithTimeout(cmd.Context(), 3*a.Config.Timeout)
	defer cancel()

	suggestion, err := planner.Suggest(ctx, interest)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), suggestion)
	}
	printSuggestion(cmd.OutOrStdout(), suggestion)
	return nil
}

func printSuggestion(w io.Writer, s *models.Suggestion) {
	fmt.Fprintf(w, "Destino: %s\n", s.Destination.City)
	if s.Destination.Reason != "" {
		fmt.Fprintf(w, "Motivo: %s\n", s.Destination.Reason)
	}
	if len(s.Restaurants.Names) > 0 {
		fmt.Fprintf(w, "\nRestaurantes:\n")
		for _, name := range s.Restaurants.Names {
			fmt.Fprintf(w, "  • %s\n", name)
		}
	}
	fmt.Fprintf(w, "\nAtividades culturais:\n%s\n", s.Culture)
}
