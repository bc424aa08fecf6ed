// cmd/beltvm is the belt machine's CLI: compile-and-run a single script
// (run), compile-only (check), or validate a whole transaction's inputs and
// preambles (verify-tx).
package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

var commandAliases = map[string]string{
	"r": "run",
	"c": "check",
	"v": "verify-tx",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		os.Exit(1)
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	if cmd == "--help" || cmd == "-h" || cmd == "help" {
		showUsage()
		return
	}
	if cmd == "--version" || cmd == "-v" || cmd == "version" {
		fmt.Println("beltvm " + version)
		return
	}

	var err error
	switch cmd {
	case "run":
		err = runCommand(args[1:])
	case "check":
		err = checkCommand(args[1:])
	case "verify-tx":
		err = verifyTxCommand(args[1:])
	default:
		showUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "beltvm: %v\n", err)
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`beltvm -- belt machine script compiler/runner

Usage:
  beltvm run <script.belt> [--ram-size N] [--loop-trees file] [--trace]
  beltvm check <script.belt>
  beltvm verify-tx <tx.json>
  beltvm version

Aliases: r=run, c=check, v=verify-tx`)
}
