// Command lua is the CLI entry point (SPEC_FULL.md's "Supplemented
// Features": a CLI/REPL kept as ambient tooling on top of the language
// core), grounded on the teacher's main.go (script runner) and repl.go
// (interactive loop), rewritten onto the lua facade package instead of the
// teacher's own state.New/OpenLibs/Load/Call C-API calls.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/lollipopkit/luacore/internal/term"
	"github.com/lollipopkit/luacore/lua"
	"github.com/lollipopkit/luacore/luaerr"
	"github.com/lollipopkit/luacore/state"
)

func main() {
	log := term.Default()
	if len(os.Args) > 1 {
		runFile(log, os.Args[1])
		return
	}
	repl(log)
}

func runFile(log *term.Logger, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Err("%s", err)
		os.Exit(1)
	}
	st := lua.NewState(lua.StateOptions{})
	if err := runChunk(st, string(data), path); err != nil {
		reportError(log, string(data), err)
		os.Exit(1)
	}
}

// reportError renders a parse or runtime error through luaerr's Reporter,
// the teacher's equivalent being a bare panic(err) in main.go.
func reportError(log *term.Logger, source string, err error) {
	reporter := luaerr.NewReporter(log.Color)
	switch e := err.(type) {
	case *luaerr.ParseError:
		fmt.Fprint(log.Out, reporter.Format(source, e))
	case *luaerr.RuntimeError:
		fmt.Fprint(log.Out, reporter.FormatRuntime(e))
	default:
		log.Err("%s", err)
	}
}

func repl(log *term.Logger) {
	st := lua.NewState(lua.StateOptions{})
	fmt.Println(banner)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := runChunk(st, line, "=stdin"); err != nil {
			reportError(log, line, err)
		}
	}
}

func runChunk(st *state.State, source, name string) error {
	chunk, err := lua.Parse(source, name)
	if err != nil {
		return err
	}
	p, err := lua.Compile(chunk, lua.CompileOptions{SourceName: name})
	if err != nil {
		return err
	}
	results, err := lua.Execute(p, st)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Println(r)
	}
	return nil
}

const banner = ` _     _      ____            _
| |   | | __ |  _ \ ___ _ __ | |
| |   | |/ / | |_) / _ \ '_ \| |
| |___|   <  |  _ <  __/ |_) | |
|_____|_|\_\ |_| \_\___| .__/|_|
                       |_|      `
