package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// linePrompter asks questions one line at a time.
type linePrompter struct {
	r   *bufio.Reader
	out io.Writer
}

func newLinePrompter(in io.Reader, out io.Writer) *linePrompter {
	return &linePrompter{r: bufio.NewReader(in), out: out}
}

// Prompt prints message and reads an answer.  An empty line keeps def.
// End of input with nothing typed counts as a cancel.
func (p *linePrompter) Prompt(message, def string) (string, bool) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s] ", message, def)
	} else {
		fmt.Fprintf(p.out, "%s ", message)
	}
	line, err := p.r.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, true
	}
	return line, true
}

// Confirm accepts y or yes.
func (p *linePrompter) Confirm(message string) bool {
	fmt.Fprintf(p.out, "%s [y/N] ", message)
	line, _ := p.r.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
