package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

type prompter struct {
	reader *bufio.Reader
	out    io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

func (p *prompter) readLine(prompt string) (string, error) {
	if _, err := fmt.Fprint(p.out, prompt); err != nil {
		return "", err
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	value := strings.TrimSpace(normalizeLineInput(line))
	if errors.Is(err, io.EOF) && value == "" {
		return "", io.EOF
	}
	return value, nil
}

// normalizeLineInput applies backspace and delete characters that reach us
// when the terminal is not in raw mode.
func normalizeLineInput(line string) string {
	var runes []rune
	for _, r := range line {
		switch r {
		case '\b', 0x7f:
			if len(runes) > 0 {
				runes = runes[:len(runes)-1]
			}
		default:
			runes = append(runes, r)
		}
	}
	return string(runes)
}

func (p *prompter) required(prompt string) (string, error) {
	for {
		value, err := p.readLine(prompt)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", errors.New("input required")
			}
			return "", err
		}
		if value != "" {
			return value, nil
		}
	}
}

func (p *prompter) optional(prompt string) (string, error) {
	value, err := p.readLine(prompt)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

func (p *prompter) confirm(prompt string, defaultValue bool) (bool, error) {
	suffix := " [y/N]: "
	if defaultValue {
		suffix = " [Y/n]: "
	}
	for {
		value, err := p.readLine(prompt + suffix)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return defaultValue, nil
			}
			return false, err
		}
		switch strings.ToLower(value) {
		case "":
			return defaultValue, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			fmt.Fprintf(p.out, "invalid choice: %s\n", value)
		}
	}
}
