// Package debugtrace provides an optional per-instruction execution tracer,
// printing the belt's contents after every instruction the way the original
// Python interpreter's Block.run did unconditionally. Tracing is opt-in here
// and driven by the CLI.
package debugtrace

import (
	"fmt"
	"io"

	"github.com/kr/pretty"

	"beltvm/internal/belt"
	"beltvm/internal/instr"
)

// Tracer wraps instr.Machine, intercepting belt state for a pretty-printed
// dump between each instruction of a traced Run.
type Tracer struct {
	machine instr.Machine
	out     io.Writer
	step    int
}

// New wraps machine so Run can step it while printing to out.
func New(machine instr.Machine, out io.Writer) *Tracer {
	return &Tracer{machine: machine, out: out}
}

// Run executes program one instruction at a time, printing the belt's
// contents (via kr/pretty) after each step. Tracing only covers the
// top-level block's own instructions -- a loop or if/else's nested block
// runs through its own untraced Run, matching how deeply to instrument
// nested control flow without restructuring Machine.
func (t *Tracer) Run(program instr.Block) error {
	return t.runBlock(program)
}

func (t *Tracer) runBlock(block instr.Block) error {
	for _, ins := range block.Instructions {
		br, err := ins.Run(t.machine)
		t.step++
		t.dump(ins, br, err)
		if err != nil {
			return err
		}
		if br != nil && br.Depth > 0 {
			return nil
		}
	}
	return nil
}

func (t *Tracer) dump(ins instr.Instruction, br *instr.Break, err error) {
	items := make([]belt.Item, belt.Size)
	for i := range items {
		item, getErr := t.machine.Belt().Get(i)
		if getErr != nil {
			continue
		}
		items[i] = item
	}
	fmt.Fprintf(t.out, "step %d: %T\n", t.step, ins)
	fmt.Fprintf(t.out, "  belt: %# v\n", pretty.Formatter(items))
	if br != nil {
		fmt.Fprintf(t.out, "  break: %# v\n", pretty.Formatter(*br))
	}
	if err != nil {
		fmt.Fprintf(t.out, "  error: %v\n", err)
	}
}
