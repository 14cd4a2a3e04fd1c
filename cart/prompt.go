package cart

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter is the line based dialogue with the user.
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

func (p *Prompter) Say(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Ask prints question and returns the next trimmed input line. It returns
// io.EOF once input is exhausted. An empty question prints nothing.
func (p *Prompter) Ask(question string) (string, error) {
	if question != "" {
		p.Say("%s", question)
	}
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

func (p *Prompter) Confirm(question string) (bool, error) {
	answer, err := p.Ask(question)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, "y"), nil
}
