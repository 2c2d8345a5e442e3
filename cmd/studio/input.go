package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Stdin access goes through package vars so tests can simulate piped input.
var (
	stdinReader io.Reader = os.Stdin

	stdinIsPipe = func() bool {
		stat, err := os.Stdin.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) == 0
	}
)

// readPrompt loads prompt content from a file, or from stdin when piped.
func readPrompt(promptFile string) (string, error) {
	var content string

	if promptFile != "" {
		data, err := os.ReadFile(promptFile)
		if err != nil {
			return "", fmt.Errorf("failed to read prompt file: %w", err)
		}
		content = string(data)
	} else if stdinIsPipe() {
		data, err := io.ReadAll(stdinReader)
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		content = string(data)
	} else {
		return "", errors.New("no prompt provided: use --prompt or pipe content to stdin")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return "", errors.New("prompt content is empty")
	}
	return content, nil
}
