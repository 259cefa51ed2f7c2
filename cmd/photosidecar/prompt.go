package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// confirmTokens are the answers accepted as a yes.
var confirmTokens = map[string]bool{"oui": true, "o": true, "yes": true, "y": true}

// prompter asks the user questions on the terminal.
type prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

func newPrompter() *prompter {
	return &prompter{
		in:          bufio.NewReader(os.Stdin),
		out:         os.Stdout,
		interactive: term.IsTerminal(int(os.Stdin.Fd())),
	}
}

// ask prints question and returns the trimmed answer line.
func (p *prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// confirm asks a yes/no question. End of input counts as no.
func (p *prompter) confirm(question string) (bool, error) {
	answer, err := p.ask(question)
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return confirmTokens[strings.ToLower(answer)], nil
}

// dir returns given when set, and otherwise asks for a directory when
// running on a terminal. The result must be an existing directory.
func (p *prompter) dir(given, question string) (string, error) {
	if given == "" {
		if !p.interactive {
			return "", fmt.Errorf("directory argument is required")
		}
		answer, err := p.ask(question)
		if err != nil {
			return "", fmt.Errorf("reading directory: %w", err)
		}
		given = answer
	}
	if given == "" {
		return "", fmt.Errorf("directory is not specified")
	}
	info, err := os.Stat(given)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("directory does not exist: %s", given)
	}
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", given)
	}
	return given, nil
}
