// ABOUTME: CLI command to ask questions about the Manaus tax legislation
// ABOUTME: Ingests the configured law texts, then answers one question or loops until "sair"
package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/guia/internal/app"
	"github.com/harper/guia/internal/models"
)

const askPrompt = "Digite sua pergunta sobre a legislação tributária de Manaus-AM: "

var (
	askShowChunks bool
	askLoop       bool
)

// NewAskCmd creates the ask command
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask about the Manaus municipal tax legislation",
		Long: `Ask a question about the Manaus municipal tax legislation.

The configured sources are loaded, chunked and embedded first; the
answer is generated from the most similar excerpts.

Examples:
  guia ask "Qual a alíquota do ISS para serviços de informática?"
  guia ask --show-chunks=false "Quem é contribuinte do IPTU?"
  guia ask --loop
  guia ask --format json "O que é fato gerador?"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().BoolVar(&askShowChunks, "show-chunks", true, "Print the retrieved excerpts before the answer")
	cmd.Flags().BoolVar(&askLoop, "loop", false, "Keep asking until \"sair\" or end of input")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := app.New(configPath, verbose, quiet)
	if err != nil {
		return err
	}
	defer a.Close()

	engine, stats, err := a.BuildEngine(cmd.Context())
	if err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Indexed %d chunk(s) from %d page(s)\n", stats.Chunks, stats.Documents)
	}

	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	question := ""
	if len(args) > 0 {
		question = args[0]
	}

	for {
		if question == "" {
			question, err = readLine(in, out, askPrompt)
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("reading question: %w", err)
			}
		}
		if isExit(question) {
			return nil
		}

		if strings.TrimSpace(question) != "" {
			ctx, cancel := a.CallContext(cmd.Context())
			answer, err := engine.Ask(ctx, question)
			cancel()
			if err != nil {
				if !askLoop {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			} else if err := printAnswer(out, answer, askShowChunks); err != nil {
				return err
			}
		}

		if !askLoop {
			return nil
		}
		question = ""
	}
}

// printAnswer renders an answer in the selected output format
func printAnswer(w io.Writer, answer *models.Answer, showChunks bool) error {
	if outputFormat == "json" {
		if !showChunks {
			trimmed := *answer
			trimmed.Sources = nil
			return writeJSON(w, trimmed)
		}
		return writeJSON(w, answer)
	}

	if showChunks && len(answer.Sources) > 0 {
		fmt.Fprintf(w, "\nTrechos utilizados:\n")
		for i, sc := range answer.Sources {
			fmt.Fprintf(w, "\n[%d] %s (score %.3f)\n%s\n", i+1, sc.Chunk.Label(), sc.Score, sc.Chunk.Content)
		}
		fmt.Fprintf(w, "\nResposta:\n")
	}
	fmt.Fprintf(w, "\n%s\n\n", answer.Text)
	return nil
}

// isExit reports whether the user asked to leave an interactive loop
func isExit(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sair", "exit", "quit":
		return true
	}
	return false
}
