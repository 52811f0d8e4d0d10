package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/mustache/log"
)

const defaultEditor = "vi"

// editDataCommand implements [tea.ExecCommand] for the data
// edit-parse-retry loop. It writes the current data as YAML to a temp file,
// opens the user's editor, and decodes the result. On a decode error the
// user is asked whether to edit again; declining exits the program.
type editDataCommand struct {
	ctx     context.Context
	data    map[string]any
	newData map[string]any
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editDataCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editDataCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editDataCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. An emptied file cancels the edit and leaves
// newData nil.
func (c *editDataCommand) Run() error {
	content, err := yaml.MarshalContext(c.ctx, c.data, yaml.Indent(2))
	if err != nil {
		return fmt.Errorf("encode data: %w", err)
	}

	f, err := os.CreateTemp("", "mustache-repl-*.yaml")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	f.Close()

	for {
		if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
			return err
		}

		if err := runEditor(c.ctx, c.stdin, c.stdout, c.stderr, tmpPath); err != nil {
			return err
		}

		content, err = os.ReadFile(tmpPath)
		if err != nil {
			return err
		}

		if strings.TrimSpace(string(content)) == "" {
			return nil
		}

		var data map[string]any

		decodeErr := yaml.UnmarshalContext(c.ctx, content, &data)
		c.logger.TraceContext(
			c.ctx,
			"editor decode attempt",
			slog.Int("content_length", len(content)),
			slog.Bool("success", decodeErr == nil),
		)

		if decodeErr == nil {
			if data == nil {
				data = map[string]any{}
			}

			c.newData = data

			return nil
		}

		fmt.Fprintf(c.stderr, "\nYAML error: %s\n", decodeErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return ErrEditDeclined
		}
	}
}

// runEditor runs $EDITOR on path and waits for it to exit.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
