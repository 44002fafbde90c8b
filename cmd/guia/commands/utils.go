// ABOUTME: Shared utility functions for CLI commands
// ABOUTME: Output helpers and interactive prompting
package commands

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// validatePositiveInt returns error if n is not positive
func validatePositiveInt(n int, name string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return nil
}

// writeJSON writes v as indented JSON followed by a newline
func writeJSON(w io.Writer, v interface{}) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", jsonData)
	return err
}

// readLine prints prompt and reads one trimmed line. io.EOF is returned
// when the input ends without any text.
func readLine(r *bufio.Reader, w io.Writer, prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(w, prompt)
	}
	line, err := r.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return line, nil
		}
		return line, err
	}
	return line, nil
}

// readInt prompts until a positive integer is entered, or fails on EOF
func readInt(r *bufio.Reader, w io.Writer, prompt string) (int, error) {
	for {
		line, err := readLine(r, w, prompt)
		if err != nil {
			return 0, err
		}
		n, convErr := strconv.Atoi(line)
		if convErr == nil && n > 0 {
			return n, nil
		}
		fmt.Fprintln(w, "Digite um número válido.")
	}
}
