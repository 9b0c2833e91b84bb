package cmd

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/bnema/legalai-cli/internal/application"
	"github.com/spf13/cobra"
)

const fileValuePrefix = "@"

var errMalformedLine = errors.New("malformed shell line")

func newShellCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run actions read from stdin, one per line, concurrently",
		Long: `shell reads lines of the form

  <action> key=value key=value ...

and dispatches each line as soon as it is read, so actions overlap. Quote a
whole pair to keep spaces ("description=robo en banda"), repeat a key for
list fields (fact=...), and prefix a value with @ to pass a file path
(attachment=@contrato.pdf). Empty lines and lines starting with # are
ignored; "help" lists the actions and "exit" stops reading.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return state.run(cmd, runOptions{restore: true, showSession: true}, func(ctx context.Context, app *app) error {
				return runShell(ctx, app, cmd.InOrStdin(), cmd.OutOrStdout())
			})
		},
	}
}

func runShell(ctx context.Context, app *app, in io.Reader, out io.Writer) error {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)

	scanner := bufio.NewScanner(in)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case line == "exit" || line == "quit":
			wg.Wait()
			return shellResult(failed)
		case line == "help":
			for _, action := range application.Actions() {
				_, _ = fmt.Fprintln(out, action)
			}
			continue
		}

		action, form, err := parseShellLine(line)
		if err != nil {
			app.logger.Warn("skip shell line", "line", lineNo, "error", err)
			mu.Lock()
			failed++
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := app.dispatch(ctx, action, form); err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read shell input: %w", err)
	}

	return shellResult(failed)
}

func shellResult(failed int) error {
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%d shell actions failed: %w", failed, errActionFailed)
}

// parseShellLine splits a line into the action id and its form.
func parseShellLine(line string) (application.ActionID, application.Form, error) {
	reader := csv.NewReader(strings.NewReader(line))
	reader.Comma = ' '
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	fields, err := reader.Read()
	if err != nil {
		return "", application.Form{}, fmt.Errorf("%w: %w", errMalformedLine, err)
	}

	fields = compact(fields)
	if len(fields) == 0 {
		return "", application.Form{}, fmt.Errorf("%w: no action", errMalformedLine)
	}

	form := application.NewForm()
	for _, field := range fields[1:] {
		key, value, ok := strings.Cut(field, "=")
		if !ok || key == "" {
			return "", application.Form{}, fmt.Errorf("%w: %q is not key=value", errMalformedLine, field)
		}
		if path, isFile := strings.CutPrefix(value, fileValuePrefix); isFile {
			form.SetFile(key, path)
			continue
		}
		form.Add(key, value)
	}

	return application.ActionID(fields[0]), form, nil
}

func compact(fields []string) []string {
	out := fields[:0]
	for _, field := range fields {
		if field != "" {
			out = append(out, field)
		}
	}
	return out
}
