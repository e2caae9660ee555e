package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/windjammer-lang/windjammer/internal/codegen"
	"github.com/windjammer-lang/windjammer/internal/compiler"
	"github.com/windjammer-lang/windjammer/internal/interp"
	"github.com/windjammer-lang/windjammer/internal/parser"
	"github.com/windjammer-lang/windjammer/internal/project"
)

const version = "0.34.0"

const usage = `wjc - The Windjammer compiler

Usage:
  wjc build <file.wj> [--target <target>] [--watch]   Compile to target source
  wjc check <file.wj>                                 Run all analyses, no output
  wjc run <file.wj>                                   Interpret directly
  wjc version                                         Print the compiler version

Options:
  --target <t>   Output target: rust (default), wasm, node, python, c
  --watch        Rebuild whenever a .wj file in the entry's directory changes

Environment:
  WJ_TARGET, WJ_OPT, WJ_MAX_UNROLL, WJ_SMALLVEC_MAX override the defaults.

Exit codes:
  0  success
  1  user-facing error (diagnostics printed)
  2  internal error
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	switch command := os.Args[1]; command {
	case "build":
		handleBuild(os.Args[2:])
	case "check":
		handleCheck(os.Args[2:])
	case "run":
		handleRun(os.Args[2:])
	case "version", "--version":
		fmt.Printf("wjc %s\n", version)
	case "help", "--help", "-h":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func handleBuild(args []string) {
	var filePath, targetFlag string
	watch := false

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--watch":
			watch = true
		case arg == "--target":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "Error: --target needs a value")
				os.Exit(1)
			}
			i++
			targetFlag = args[i]
		case strings.HasPrefix(arg, "--target="):
			targetFlag = strings.TrimPrefix(arg, "--target=")
		case strings.HasPrefix(arg, "-"):
			fmt.Fprintf(os.Stderr, "Unknown option: %s\n", arg)
			os.Exit(1)
		default:
			filePath = arg
		}
	}

	if filePath == "" {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		os.Exit(1)
	}

	cfg, err := compiler.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	if targetFlag != "" {
		target, err := codegen.ParseTarget(targetFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		cfg.Target = target
	}
	if !cfg.Target.Supported() {
		fmt.Fprintf(os.Stderr, "Error: target %s is recognized but not yet supported\n", cfg.Target)
		os.Exit(1)
	}

	checkManifest(filePath)

	if watch {
		if err := compiler.Watch(filePath, cfg, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(2)
		}
		return
	}

	res, outPath, err := compiler.BuildFile(filePath, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(2)
	}
	if res.Diagnostics.HasErrors() {
		fmt.Fprintln(os.Stderr, res.Diagnostics.Format(filePath))
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", outPath)
}

// checkManifest enforces the wj.toml compiler constraint when the entry
// file lives inside a project directory.
func checkManifest(filePath string) {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return
	}
	manifestPath, found := project.Find(filepath.Dir(abs))
	if !found {
		return
	}
	manifest, err := project.Load(manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	if err := manifest.CheckCompiler(version); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func handleCheck(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		os.Exit(1)
	}
	filePath := args[0]

	diag, err := compiler.CheckFile(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	if diag.HasErrors() {
		fmt.Fprintln(os.Stderr, diag.Format(filePath))
		os.Exit(1)
	}
	for _, d := range diag.All() {
		fmt.Printf("%s:%d:%d: %s: %s\n", filePath, d.Line, d.Column, d.Severity, d.Message)
	}
	fmt.Println("No errors found.")
}

func handleRun(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		os.Exit(1)
	}
	filePath := args[0]

	source, err := os.ReadFile(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %s\n", err)
		os.Exit(1)
	}

	// the interpreter runs the same analyses first so that a program
	// rejected by build is also rejected by run
	if diag := compiler.Check(string(source)); diag.HasErrors() {
		fmt.Fprintln(os.Stderr, diag.Format(filePath))
		os.Exit(1)
	}

	p := parser.New(string(source))
	prog := p.Parse()
	if _, err := interp.New(prog, os.Stdout).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "runtime error: %s\n", err)
		os.Exit(1)
	}
}
