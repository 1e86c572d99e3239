// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ReadFromPath reads a single secret from path, or from stdin when path
// is "-". Surrounding whitespace is trimmed. An empty secret is an error.
func ReadFromPath(path string) (*Buffer, error) {
	var data []byte
	if path == "-" {
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("secret: reading stdin: %w", err)
			}
			return nil, fmt.Errorf("secret: stdin is empty")
		}
		data = scanner.Bytes()
	} else {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("secret: %w", err)
		}
	}
	return protectTrimmed(data)
}

// ReadTerminal prints prompt to output and reads a line from the terminal
// file descriptor fd with echo disabled.
func ReadTerminal(fd int, prompt string, output io.Writer) (*Buffer, error) {
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("secret: file descriptor %d is not a terminal", fd)
	}
	fmt.Fprint(output, prompt)
	data, err := term.ReadPassword(fd)
	fmt.Fprintln(output)
	if err != nil {
		return nil, fmt.Errorf("secret: reading terminal: %w", err)
	}
	return protectTrimmed(data)
}

func protectTrimmed(data []byte) (*Buffer, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		Zero(data)
		return nil, fmt.Errorf("secret: value is empty")
	}
	buffer, err := NewFromBytes(trimmed)
	Zero(data)
	if err != nil {
		return nil, err
	}
	return buffer, nil
}
