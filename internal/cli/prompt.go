package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PromptResult contains the result of a user prompt interaction.
type PromptResult struct {
	// Accepted is true if the user accepted the prompt (typed "y" or "yes")
	Accepted bool
	// Cancelled is true if reading input failed
	Cancelled bool
}

// ConfirmPurge asks before dropping every cached record under directory.
//
// The prompt defaults to "No": empty input, EOF and anything other than
// y/yes decline. A piped, already-closed stdin therefore declines rather
// than purging.
func ConfirmPurge(writer io.Writer, reader io.Reader, directory string) PromptResult {
	fmt.Fprintf(writer, "Purge all cached records under %s? [y/N] ", directory)

	scanner := bufio.NewScanner(reader)
	if !scanner.Scan() {
		if scanner.Err() != nil {
			return PromptResult{Cancelled: true}
		}
		return PromptResult{Accepted: false}
	}

	input := strings.TrimSpace(scanner.Text())
	if input == "" {
		return PromptResult{Accepted: false}
	}

	switch strings.ToLower(input) {
	case "y", "yes":
		return PromptResult{Accepted: true}
	default:
		return PromptResult{Accepted: false}
	}
}
