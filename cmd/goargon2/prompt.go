package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// maxPasswordBytes bounds a password read from a pipe.
const maxPasswordBytes = 4096

var errPasswordMismatch = errors.New("passwords do not match")

// readPassword prompts on the terminal without echo. When stdin is not a
// terminal the first line is used as-is, without its line terminator.
func readPassword(stdin io.Reader, stderr io.Writer, prompt string, confirm bool) ([]byte, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return readTerminal(int(f.Fd()), stderr, prompt, confirm)
	}
	return readLine(stdin)
}

func readTerminal(fd int, stderr io.Writer, prompt string, confirm bool) ([]byte, error) {
	fmt.Fprint(stderr, prompt)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(stderr)
	if err != nil {
		return nil, err
	}
	if !confirm {
		return pw, nil
	}

	fmt.Fprint(stderr, "Confirm: ")
	again, err := term.ReadPassword(fd)
	fmt.Fprintln(stderr)
	if err != nil {
		clear(pw)
		return nil, err
	}
	defer clear(again)
	if !bytes.Equal(pw, again) {
		clear(pw)
		return nil, errPasswordMismatch
	}
	return pw, nil
}

func readLine(r io.Reader) ([]byte, error) {
	br := bufio.NewReader(io.LimitReader(r, maxPasswordBytes+2))
	line, err := br.ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if errors.Is(err, io.EOF) && len(line) == 0 {
		return nil, errors.New("no password on stdin")
	}
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(line) > maxPasswordBytes {
		return nil, fmt.Errorf("password longer than %d bytes", maxPasswordBytes)
	}
	return line, nil
}
