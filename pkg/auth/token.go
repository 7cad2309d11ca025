// Package auth handles the paste-token login flow. GroupMe access tokens
// come from the developer console; there is no OAuth dance to run here.
package auth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// PasteToken prompts for an access token on w and reads one line from r.
func PasteToken(r io.Reader, w io.Writer) (string, error) {
	fmt.Fprintln(w, "Paste your GroupMe access token from dev.groupme.com:")
	fmt.Fprint(w, "> ")

	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("reading token: %w", err)
		}
		return "", errors.New("no input received")
	}

	token := strings.TrimSpace(scanner.Text())
	if token == "" {
		return "", errors.New("token cannot be empty")
	}

	return token, nil
}
