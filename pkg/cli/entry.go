// Package cli is the public entry point for the tagval command line: a
// REPL over a private heap, one-shot classification, literal script files,
// and the inspection service.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/funvibe/tagval/internal/config"
	"github.com/funvibe/tagval/internal/service"
)

const usage = `Usage: tagval [options] [script.tv]

  (no args)        start a REPL
  -e <literal>     classify one literal and exit
  serve            run the gRPC inspection service
  -c <config.yml>  config file (with serve)
  -help            show this help
`

// Entry runs the CLI and returns the process exit code.
func Entry(args []string) int {
	if len(args) == 0 {
		return runREPL()
	}

	switch args[0] {
	case "-help", "--help", "help":
		fmt.Print(usage)
		return 0
	case "-e":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "tagval: -e needs a literal")
			return 2
		}
		return runOnce(strings.Join(args[1:], " "))
	case "serve":
		return runServe(args[1:])
	}

	if strings.HasSuffix(args[0], config.ScriptFileExt) {
		return runScript(args[0])
	}
	fmt.Fprintf(os.Stderr, "tagval: unknown argument %q\n", args[0])
	fmt.Fprint(os.Stderr, usage)
	return 2
}

func runServe(args []string) int {
	cfgPath := "tagval.yml"
	for i := 0; i < len(args); i++ {
		if args[i] == "-c" && i+1 < len(args) {
			cfgPath = args[i+1]
			i++
			continue
		}
		fmt.Fprintf(os.Stderr, "tagval: unknown serve argument %q\n", args[i])
		return 2
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tagval: %v\n", err)
		return 1
	}

	srv := service.New()
	if err := srv.LoadProto(cfg.Proto); err != nil {
		fmt.Fprintf(os.Stderr, "tagval: %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stderr, "tagval: serving on %s\n", cfg.Listen)
	if err := srv.Serve(cfg.Listen); err != nil {
		fmt.Fprintf(os.Stderr, "tagval: %v\n", err)
		return 1
	}
	return 0
}

func runScript(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tagval: %v\n", err)
		return 1
	}
	s := newSession(os.Stdout)
	code := 0
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := s.eval(line); err != nil {
			fmt.Fprintf(os.Stderr, "tagval: %s: %v\n", path, err)
			code = 1
		}
	}
	return code
}

func runOnce(src string) int {
	s := newSession(os.Stdout)
	if err := s.eval(src); err != nil {
		fmt.Fprintf(os.Stderr, "tagval: %v\n", err)
		return 1
	}
	return 0
}
