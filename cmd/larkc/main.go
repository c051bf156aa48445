package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"lark/compiler-go/pkg/driver"
)

const cliToolVersion = "larkc 0.1.0-dev"

const manifestName = "lark.yml"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}
	switch args[0] {
	case "--help", "-h":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "check":
		return runCheck(args[1:])
	case "install":
		return runInstall(args[1:])
	default:
		return runCheck(args)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  larkc check <file.ast.json>")
	fmt.Fprintln(os.Stderr, "  larkc install")
	fmt.Fprintln(os.Stderr, "  larkc --version")
}

func runCheck(args []string) int {
	if len(args) != 1 {
		printUsage()
		return 2
	}
	entry := args[0]

	searchPaths := []string{filepath.Dir(entry)}
	if manifest, err := driver.LoadManifest(manifestName); err == nil {
		searchPaths = append(manifest.Sources, searchPaths...)
	}

	pc := driver.NewCompiler(searchPaths...)
	_, result, err := pc.CheckFile(entry)
	if err != nil {
		color.New(color.FgRed, color.Bold).Fprint(os.Stderr, "type error: ")
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, diag := range result.Diagnostics {
		color.New(color.FgYellow).Fprint(os.Stderr, "advisory: ")
		fmt.Fprintln(os.Stderr, diag.Message)
	}
	color.New(color.FgGreen).Fprintf(os.Stdout, "ok")
	fmt.Fprintf(os.Stdout, "  %s  (%d exports)\n", entry, len(result.Exports))
	return 0
}
