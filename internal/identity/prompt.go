package identity

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// LinePrompter returns a Prompter that writes the question to w and reads
// one line from scanner. EOF counts as a dismissal.
func LinePrompter(scanner *bufio.Scanner, w io.Writer) Prompter {
	return func(ctx context.Context, question string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if _, err := fmt.Fprintf(w, "%s ", question); err != nil {
			return "", err
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return scanner.Text(), nil
	}
}
