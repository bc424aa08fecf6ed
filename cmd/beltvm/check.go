package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"beltvm/internal/compiler"
)

// checkCommand compiles a script without running it, reporting the
// instruction count and the number of local slots it declares.
func checkCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: beltvm check <script.belt>")
	}
	src, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	result, err := compiler.Compile(string(src))
	if err != nil {
		return err
	}
	fmt.Printf("ok: %s instructions, %d locals\n",
		humanize.Comma(int64(len(result.Instructions))), result.NumLocals)
	return nil
}
