package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"

	"beltvm/internal/compiler"
	"beltvm/internal/debugtrace"
	"beltvm/internal/instr"
	"beltvm/internal/loopstack"
	"beltvm/internal/looptree"
	"beltvm/internal/vm"
)

// runCommand compiles and executes a single script against an optional
// loop-tree witness file and RAM size.
func runCommand(args []string) error {
	var scriptPath, loopTreesPath string
	ramSize := 256
	trace := false

	var positional []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--ram-size":
			i++
			if i >= len(args) {
				return fmt.Errorf("--ram-size needs a value")
			}
			n, err := strconv.Atoi(args[i])
			if err != nil {
				return fmt.Errorf("--ram-size: %w", err)
			}
			ramSize = n
		case "--loop-trees":
			i++
			if i >= len(args) {
				return fmt.Errorf("--loop-trees needs a value")
			}
			loopTreesPath = args[i]
		case "--trace":
			trace = true
		default:
			positional = append(positional, args[i])
		}
	}
	if len(positional) < 1 {
		return fmt.Errorf("usage: beltvm run <script.belt> [--ram-size N] [--loop-trees file] [--trace]")
	}
	scriptPath = positional[0]

	src, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", scriptPath, err)
	}
	compileResult, err := compiler.Compile(string(src))
	if err != nil {
		return err
	}

	var forest []looptree.Tree
	if loopTreesPath != "" {
		data, err := os.ReadFile(loopTreesPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", loopTreesPath, err)
		}
		forest, err = looptree.ParseForest(data)
		if err != nil {
			return fmt.Errorf("decoding loop trees: %w", err)
		}
	}

	machine := vm.New(loopstack.New(forest), compileResult.NumLocals, ramSize)
	program := instr.NewBlock(compileResult.Instructions)

	if trace {
		header := "== trace =="
		if isatty.IsTerminal(os.Stdout.Fd()) {
			header = "\x1b[1m" + header + "\x1b[0m"
		}
		fmt.Println(header)
		return debugtrace.New(machine, os.Stdout).Run(program)
	}
	return machine.Run(program)
}
