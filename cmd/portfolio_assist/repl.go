package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"portfolio_assist/internal/assessment"
)

const prompt = "ask> "

func isExit(line string) bool {
	switch strings.ToLower(line) {
	case "exit", "quit":
		return true
	}
	return false
}

// repl answers one question per input line until exit, quit or EOF. A failed
// answer is reported and the loop goes on.
func repl(ctx context.Context, qa assessment.QuestionAnswerer, in io.Reader, out io.Writer, render func(string) string) error {
	r := bufio.NewReader(in)
	fmt.Fprintln(out, "\nAsk about your portfolio. Type 'exit' to quit.")

	for {
		fmt.Fprint(out, prompt)
		line, readErr := r.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return readErr
		}

		question := strings.TrimSpace(line)
		if isExit(question) {
			return nil
		}
		if question != "" {
			answer, err := qa.Ask(ctx, question)
			if err != nil {
				fmt.Fprintln(out, "error:", err)
			} else {
				fmt.Fprint(out, render(answer))
			}
		}

		if readErr != nil {
			fmt.Fprintln(out)
			return nil
		}
	}
}
