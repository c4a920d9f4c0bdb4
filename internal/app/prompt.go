package app

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// prompter asks yes/no questions on the terminal. An empty answer
// counts as yes; anything other than y/n re-prompts.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// ask prints the question and reads answers until one of Y/y/N/n or an
// empty line arrives. EOF counts as no.
func (p *prompter) ask(question string) bool {
	for {
		fmt.Fprintf(p.out, "%s (Y/n): ", question)

		line, err := p.in.ReadString('\n')
		if err != nil && line == "" {
			return false
		}

		switch strings.TrimSpace(line) {
		case "", "Y", "y":
			return true
		case "N", "n":
			return false
		}

		if err != nil {
			// Partial line at EOF with an unrecognised answer.
			return false
		}
	}
}
