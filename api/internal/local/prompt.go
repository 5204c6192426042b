package local

import (
	"strings"

	"github.com/chzyer/readline"
)

// ReadlinePrompter reads answers from the terminal.
type ReadlinePrompter struct {
	rl *readline.Instance
}

func NewReadlinePrompter() (*ReadlinePrompter, error) {
	rl, err := readline.NewEx(&readline.Config{
		HistoryLimit:    -1,
		InterruptPrompt: "^C",
	})
	if err != nil {
		return nil, err
	}
	return &ReadlinePrompter{rl: rl}, nil
}

func (p *ReadlinePrompter) Prompt(label string) (string, error) {
	p.rl.SetPrompt(label)
	line, err := p.rl.Readline()
	if err != nil { // io.EOF, readline.ErrInterrupt
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *ReadlinePrompter) Close() error {
	return p.rl.Close()
}
