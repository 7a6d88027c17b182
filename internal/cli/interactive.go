// Package cli implements the interactive terminal front ends: quiz runs, the assistant chat and progress output.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
)

var errEnd = errors.New("end")

// Session runs one interaction step. It returns errEnd when the interaction is over.
type Session interface {
	Session(ctx context.Context) error
}

// InteractiveCLI holds the terminal state shared by the interactive commands.
type InteractiveCLI struct {
	stdinReader  *bufio.Reader
	stdoutWriter io.Writer
	bold         *color.Color
	italic       *color.Color
	green        *color.Color
	red          *color.Color
	faint        *color.Color
}

func NewInteractiveCLI(in io.Reader, out io.Writer) *InteractiveCLI {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &InteractiveCLI{
		stdinReader:  bufio.NewReader(in),
		stdoutWriter: out,
		bold:         color.New(color.Bold),
		italic:       color.New(color.Italic),
		green:        color.New(color.FgGreen),
		red:          color.New(color.FgRed),
		faint:        color.New(color.Faint),
	}
}

// Run repeats session steps until one ends the interaction, fails, or the process is interrupted.
func (cli *InteractiveCLI) Run(ctx context.Context, session Session) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		for ctx.Err() == nil {
			if err := session.Session(ctx); err != nil {
				if !errors.Is(err, errEnd) {
					errCh <- err
				}
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(cli.stdoutWriter, "Received interrupt signal, exiting...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error: %w", err)
		}
	}
	return nil
}

// readLine reads one trimmed line. io.EOF is returned as errEnd once the input is exhausted.
func (cli *InteractiveCLI) readLine() (string, error) {
	line, err := cli.stdinReader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if strings.TrimSpace(line) != "" {
				return strings.TrimSpace(line), nil
			}
			return "", errEnd
		}
		return "", fmt.Errorf("error reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question on the terminal. Anything but y or yes declines.
func (cli *InteractiveCLI) Confirm(message string) bool {
	_, _ = cli.bold.Fprintf(cli.stdoutWriter, "%s [y/N]: ", message)
	answer, err := cli.readLine()
	if err != nil {
		fmt.Fprintln(cli.stdoutWriter)
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// parseOption converts an answer letter (A-D, any case) or number (1-4) into an option index.
func parseOption(input string, options int) (int, bool) {
	input = strings.ToUpper(strings.TrimSpace(input))
	if len(input) != 1 {
		return 0, false
	}
	var index int
	switch c := input[0]; {
	case c >= 'A' && c <= 'Z':
		index = int(c - 'A')
	case c >= '1' && c <= '9':
		index = int(c - '1')
	default:
		return 0, false
	}
	if index >= options {
		return 0, false
	}
	return index, true
}

func optionLetter(index int) string {
	return string(rune('A' + index))
}
