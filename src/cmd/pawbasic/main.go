package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/term"

	"github.com/phroun/pawbasic"
)

// errorPrintf prints an error message to stderr, using color if supported
func errorPrintf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	if pawbasic.SupportsColor(os.Stderr) {
		fmt.Fprintf(os.Stderr, "\x1b[93m%s\x1b[0m", message)
	} else {
		fmt.Fprint(os.Stderr, message)
	}
}

func showUsage() {
	fmt.Fprintf(os.Stderr, `Usage: pawbasic [options] [script.bas [args...]]

Runs script.bas, or the program on stdin when it is redirected, or an
interactive session otherwise.

Options:
`)
	flag.PrintDefaults()
}

// findScriptFile resolves name, trying a .bas extension when it has none
func findScriptFile(name string) string {
	if _, err := os.Stat(name); err == nil {
		return name
	}
	if filepath.Ext(name) == "" {
		if _, err := os.Stat(name + ".bas"); err == nil {
			return name + ".bas"
		}
	}
	return ""
}

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug output")
	flag.BoolVar(debugFlag, "d", false, "Enable debug output (short)")
	strictFlag := flag.Bool("strict", false, "Disable implicit conversions between kinds")
	preciseFlag := flag.Bool("precise", false, "Use exact decimal numbers")
	throwFlag := flag.Bool("throw", false, "Stop at the first failing line")
	configFlag := flag.String("config", "", "Load settings from a YAML or TOML file")
	watchFlag := flag.Bool("watch", false, "Re-run the script whenever it changes")
	evalFlag := flag.String("e", "", "Run the given program text")
	versionFlag := flag.Bool("version", false, "Show version")
	flag.Usage = showUsage
	flag.Parse()

	if *versionFlag {
		fmt.Println("pawbasic", pawbasic.Version)
		return
	}

	cfg := pawbasic.DefaultConfig()
	if *configFlag != "" {
		loaded, err := pawbasic.LoadConfigFile(*configFlag)
		if err != nil {
			errorPrintf("Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *debugFlag {
		cfg.Debug = true
	}
	if *strictFlag {
		cfg.StrictTypes = true
	}
	if *preciseFlag {
		cfg.Precision = "precise"
	}
	if *throwFlag {
		cfg.ThrowOnError = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	args := flag.Args()
	switch {
	case *evalFlag != "":
		os.Exit(runSource(ctx, cfg, *evalFlag, "<eval>"))

	case len(args) > 0:
		scriptFile := findScriptFile(args[0])
		if scriptFile == "" {
			errorPrintf("Error: Script file not found: %s\n", args[0])
			os.Exit(1)
		}
		cfg.Args = args[1:]
		if *watchFlag {
			os.Exit(watch(ctx, cfg, scriptFile))
		}
		os.Exit(runFile(ctx, cfg, scriptFile))

	case !term.IsTerminal(int(os.Stdin.Fd())):
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			errorPrintf("Error reading from stdin: %v\n", err)
			os.Exit(1)
		}
		// The program itself came from stdin, so INPUT has nothing to read.
		cfg.Input = nil
		os.Exit(runSource(ctx, cfg, string(content), "<stdin>"))

	default:
		interp := pawbasic.New(cfg)
		repl := pawbasic.NewREPL(interp, pawbasic.DefaultREPLConfig(), os.Stdout, os.Stderr)
		if err := repl.Run(ctx); err != nil {
			errorPrintf("Error: %v\n", err)
			os.Exit(1)
		}
	}
}

func runFile(ctx context.Context, cfg *pawbasic.Config, path string) int {
	content, err := os.ReadFile(path)
	if err != nil {
		errorPrintf("Error reading script file: %v\n", err)
		return 1
	}
	return runSource(ctx, cfg, string(content), path)
}

// runSource runs a program in a fresh interpreter and maps the outcome to
// an exit code: 0 on success, the last status when a line failed, 1 for
// host errors and 130 when interrupted.
func runSource(ctx context.Context, cfg *pawbasic.Config, source, filename string) int {
	interp := pawbasic.New(cfg)
	err := interp.ExecuteFile(ctx, source, filename)
	switch {
	case errors.Is(err, context.Canceled):
		return 130
	case err != nil:
		interp.ReportError(err, source, filename)
		var le *pawbasic.LineError
		if errors.As(err, &le) {
			if de, ok := pawbasic.AsError(le.Err); ok {
				return int(de.Status)
			}
		}
		return 1
	}
	return int(interp.Status())
}

// watch runs path, then runs it again after every write until ctx ends.
func watch(ctx context.Context, cfg *pawbasic.Config, path string) int {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		errorPrintf("Error: %v\n", err)
		return 1
	}
	defer watcher.Close()

	// Editors often replace the file, so watch the directory.
	abs, err := filepath.Abs(path)
	if err != nil {
		errorPrintf("Error: %v\n", err)
		return 1
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		errorPrintf("Error watching %s: %v\n", path, err)
		return 1
	}

	run := func() {
		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		code := runFile(runCtx, cfg, path)
		fmt.Fprintf(os.Stderr, "--- %s exited with status %d; watching for changes\n", path, code)
	}
	run()

	// Rerun once a burst of events has settled.
	const settle = 100 * time.Millisecond
	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return 0
		case ev, ok := <-watcher.Events:
			if !ok {
				return 0
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer = time.After(settle)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return 0
			}
			errorPrintf("Watch error: %v\n", err)
		case <-timer:
			timer = nil
			run()
		}
	}
}
