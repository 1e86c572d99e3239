// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bureau-foundation/outpass/lib/outpass"
	"github.com/bureau-foundation/outpass/lib/secret"
)

// LineConfirmer asks for confirmation on a line-oriented terminal. It
// implements outpass.Confirmer.
type LineConfirmer struct {
	In  io.Reader
	Out io.Writer

	// AssumeYes accepts every prompt without reading (--yes).
	AssumeYes bool

	reader *bufio.Reader
}

var _ outpass.Confirmer = (*LineConfirmer)(nil)

// Confirm prints the prompt and reads y/N. Anything other than y or yes
// declines; so does end of input.
func (c *LineConfirmer) Confirm(ctx context.Context, prompt outpass.Prompt) (bool, error) {
	return c.Ask(ctx, prompt.Title+": "+describeRecord(prompt.Record), prompt.Message)
}

// Ask prints subject and question and reads y/N.
func (c *LineConfirmer) Ask(ctx context.Context, subject, question string) (bool, error) {
	if c.AssumeYes {
		return true, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if c.reader == nil {
		c.reader = bufio.NewReader(c.In)
	}

	fmt.Fprintln(c.Out, subject)
	fmt.Fprintf(c.Out, "%s [y/N] ", question)
	line, err := c.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func describeRecord(record outpass.Request) string {
	name := record.Student.Name
	if name == "" {
		name = record.ID
	}
	return fmt.Sprintf("%s, %s leave, %s", name, record.Type, record.Window())
}

// ReadPassword reads the login password from path ("-" for stdin), or
// from the terminal with echo disabled when path is empty. The caller
// closes the buffer.
func ReadPassword(path string, prompt io.Writer) (*secret.Buffer, error) {
	if path != "" {
		return secret.ReadFromPath(path)
	}
	buffer, err := secret.ReadTerminal(int(os.Stdin.Fd()), "Password: ", prompt)
	if err != nil {
		return nil, Validation("no terminal to prompt for a password; pass --password-file").WithHint(err.Error())
	}
	return buffer, nil
}
