package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prompter asks yes/no questions on a terminal. When Interactive is false
// every question is answered "no" without reading input, so unattended runs
// never hang on a prompt.
type Prompter struct {
	In          io.Reader
	Out         io.Writer
	Interactive bool

	r *bufio.Reader
}

// NewPrompter reads stdin and writes to stderr; it is interactive only when
// stdin is a terminal.
func NewPrompter() *Prompter {
	return &Prompter{In: os.Stdin, Out: os.Stderr, Interactive: IsTerminal(os.Stdin)}
}

// Confirm prints question with a [Y/n] hint. An empty answer means yes.
func (p *Prompter) Confirm(question string) (bool, error) {
	if !p.Interactive {
		fmt.Fprintf(p.Out, "%s %s\n", question, dimStyle.Render("(not a terminal, use --yes to accept)"))
		return false, nil
	}
	if p.r == nil {
		p.r = bufio.NewReader(p.In)
	}
	fmt.Fprintf(p.Out, "%s [Y/n] ", question)
	line, err := p.r.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read answer: %w", err)
	}
	if err == io.EOF && line == "" {
		return false, nil
	}
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "" || line == "y" || line == "yes", nil
}
