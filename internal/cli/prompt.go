package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

type Prompter interface {
	Confirm(ctx context.Context, message string) (bool, error)
	Ask(ctx context.Context, message, def string) (string, error)
}

// LinePrompter reads one answer per line from in and writes questions to out.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

func (p *LinePrompter) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm defaults to no.
func (p *LinePrompter) Confirm(ctx context.Context, message string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N] ", message)
	line, err := p.readLine(ctx)
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (p *LinePrompter) Ask(ctx context.Context, message, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s (%s) ", message, def)
	} else {
		fmt.Fprintf(p.out, "%s ", message)
	}
	line, err := p.readLine(ctx)
	if err != nil && err != io.EOF {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}
