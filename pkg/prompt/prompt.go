// Package prompt reads interactive answers for the CLI commands.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Provider asks the user questions
type Provider interface {
	// Ask shows question and returns the trimmed answer
	Ask(question string) (string, error)
	// Confirm shows question and reports whether the answer was y or Y
	Confirm(question string) (bool, error)
}

// Terminal reads answers line by line from an input stream
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
}

// NewTerminal creates a Terminal reading from in and printing questions to out
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	fd := -1
	if f, ok := in.(*os.File); ok {
		fd = int(f.Fd())
	}
	return &Terminal{in: bufio.NewReader(in), out: out, fd: fd}
}

// NewStdTerminal creates a Terminal on stdin and stdout
func NewStdTerminal() *Terminal {
	return NewTerminal(os.Stdin, os.Stdout)
}

// Interactive reports whether input comes from a terminal
func (t *Terminal) Interactive() bool {
	return t.fd >= 0 && term.IsTerminal(t.fd)
}

func (t *Terminal) Ask(question string) (string, error) {
	fmt.Fprint(t.out, question)

	line, err := t.in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (t *Terminal) Confirm(question string) (bool, error) {
	answer, err := t.Ask(question)
	if err != nil {
		return false, err
	}
	return isYes(answer), nil
}

func isYes(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), "y")
}

// Scripted replays canned answers, for tests and non-interactive runs
type Scripted struct {
	answers []string
	asked   []string
}

// NewScripted creates a provider answering with answers in order
func NewScripted(answers ...string) *Scripted {
	return &Scripted{answers: answers}
}

func (s *Scripted) Ask(question string) (string, error) {
	s.asked = append(s.asked, question)
	if len(s.answers) == 0 {
		return "", io.EOF
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return strings.TrimSpace(answer), nil
}

func (s *Scripted) Confirm(question string) (bool, error) {
	answer, err := s.Ask(question)
	if err != nil {
		return false, err
	}
	return isYes(answer), nil
}

// Asked returns every question shown so far
func (s *Scripted) Asked() []string {
	return s.asked
}

// AskPositiveInt asks until the answer is empty (def is returned) or a
// positive integer. invalid is called with a message for every rejected answer.
func AskPositiveInt(p Provider, question string, def int, invalid func(msg string)) (int, error) {
	for {
		answer, err := p.Ask(question)
		if err != nil {
			return 0, err
		}
		if answer == "" {
			return def, nil
		}

		n, err := strconv.Atoi(answer)
		switch {
		case err != nil:
			if invalid != nil {
				invalid("Invalid input, please enter a number.")
			}
		case n <= 0:
			if invalid != nil {
				invalid("Please enter a positive integer.")
			}
		default:
			return n, nil
		}
	}
}
