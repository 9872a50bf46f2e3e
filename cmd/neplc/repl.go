// repl.go: interactive evaluator.
//
// The REPL evaluates expressions with the compiler's constant evaluator, so
// builtins produce their stand-in values rather than real host results. It
// is a scratchpad for the language, not a runtime.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	nepl "github.com/neknaj/NEPLg1"
)

const (
	historyFile = ".nepl_history"
	promptMain  = "nepl> "
)

func runREPL() int {
	fmt.Printf("NEPL %s interactive evaluator. Ctrl+D or :quit to exit.\n", nepl.Version)
	fmt.Println("Builtins evaluate to their compile-time stand-in constants here.")

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	defer func() {
		if histPath == "" {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		line, err := ln.Prompt(promptMain)
		if err != nil {
			// io.EOF on Ctrl+D, liner.ErrPromptAborted on Ctrl+C.
			if err == liner.ErrPromptAborted {
				continue
			}
			fmt.Println()
			return 0
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if trimmed == ":quit" || trimmed == ":q" {
			return 0
		}
		ln.AppendHistory(line)

		expr, err := nepl.Parse(trimmed)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		v, err := nepl.Evaluate(expr)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		fmt.Println(v)
	}
}
