// ABOUTME: CLI command to plan a day-by-day travel itinerary
// ABOUTME: Missing trip details are asked for interactively
package commands

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harper/guia/internal/app"
	"github.com/harper/guia/internal/models"
)

var (
	itinDays        int
	itinAdults      int
	itinChildren    int
	itinDestination string
	itinInterests   string
	itinPeriod      string
	itinBudget      string
)

// NewItineraryCmd creates the itinerary command
func NewItineraryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "itinerary",
		Short: "Plan a travel itinerary",
		Long: `Plan a day-by-day travel itinerary for a family.

Any of --days, --adults and --destination that is not given is asked for
on standard input. Period and budget are optional.

Examples:
  guia itinerary --days 5 --adults 2 --children 1 --destination Manaus --interests "natureza, cultura"
  guia itinerary --destination Salvador --days 3 --adults 2 --period julho --budget "R$ 6000"`,
		Args: cobra.NoArgs,
		RunE: runItinerary,
	}

	cmd.Flags().IntVar(&itinDays, "days", 0, "Number of days")
	cmd.Flags().IntVar(&itinAdults, "adults", 0, "Number of adults")
	cmd.Flags().IntVar(&itinChildren, "children", 0, "Number of children")
	cmd.Flags().StringVar(&itinDestination, "destination", "", "Destination")
	cmd.Flags().StringVar(&itinInterests, "interests", "", "Family interests (e.g. aventura, cultura, gastronomia)")
	cmd.Flags().StringVar(&itinPeriod, "period", "", "Travel month(s)")
	cmd.Flags().StringVar(&itinBudget, "budget", "", "Approximate budget")

	return cmd
}

func runItinerary(cmd *cobra.Command, args []string) error {
	req := models.ItineraryRequest{
		Days:        itinDays,
		Adults:      itinAdults,
		Children:    itinChildren,
		Destination: itinDestination,
		Interests:   itinInterests,
		Period:      itinPeriod,
		Budget:      itinBudget,
	}
	if err := completeItineraryRequest(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(), &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	a, err := app.New(configPath, verbose, quiet)
	if err != nil {
		return err
	}
	defer a.Close()

	planner := a.Planner()

	ctx, cancel := a.CallContext(cmd.Context())
	defer cancel()

	plan, err := planner.Itinerary(ctx, req)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
			"request":   req,
			"itinerary": plan,
		})
	}
	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "Roteiro de Viagem:")
	}
	fmt.Fprintln(cmd.OutOrStdout(), plan)
	return nil
}

// completeItineraryRequest prompts for the required fields left unset
func completeItineraryRequest(r *bufio.Reader, w io.Writer, req *models.ItineraryRequest) error {
	var err error
	if req.Days <= 0 {
		if req.Days, err = readInt(r, w, "Digite o número de dias da viagem: "); err != nil {
			return fmt.Errorf("reading days: %w", err)
		}
	}
	if req.Adults <= 0 {
		if req.Adults, err = readInt(r, w, "Digite o número de adultos na família: "); err != nil {
			return fmt.Errorf("reading adults: %w", err)
		}
	}
	if req.Destination == "" {
		if req.Destination, err = readLine(r, w, "Digite o destino da viagem: "); err != nil {
			return fmt.Errorf("reading destination: %w", err)
		}
	}
	return nil
}
