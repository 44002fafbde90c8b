// ABOUTME: CLI command for a multi-turn travel chat with remembered history
// ABOUTME: Each run is one session; type "sair" or send EOF to leave
package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/harper/guia/internal/app"
	"github.com/harper/guia/internal/core"
)

var chatSession string

// NewChatCmd creates the chat command
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the travel concierge",
		Long: `Start a conversation with Sr. Destinos, the travel concierge.

Earlier turns of the session are sent with every message, so follow-up
questions can refer to them. Type "sair" or press Ctrl-D to leave.`,
		Args: cobra.NoArgs,
		RunE: runChat,
	}

	cmd.Flags().StringVar(&chatSession, "session", "", "Session id (default: a new random id)")

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := app.New(configPath, verbose, quiet)
	if err != nil {
		return err
	}
	defer a.Close()

	sessionID := chatSession
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	concierge := a.Concierge()
	store := core.NewSessionStore()

	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()
	if !quiet {
		fmt.Fprintf(out, "Sessão %s. Digite \"sair\" para encerrar.\n", sessionID)
	}

	for {
		text, err := readLine(in, out, "Você: ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading message: %w", err)
		}
		if isExit(text) {
			return nil
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		ctx, cancel := a.CallContext(cmd.Context())
		reply, err := concierge.Reply(ctx, store, sessionID, text)
		cancel()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "Sr. Destinos: %s\n\n", reply)
	}
}
