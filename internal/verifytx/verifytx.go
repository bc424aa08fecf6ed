// Package verifytx drives the end-to-end validation of one transaction:
// balance accounting, then compiling and running each input's unlocking
// script and each preamble script against its own witness-supplied loop
// shape and RAM size, independently and concurrently (spec.md Section 5 --
// no shared state crosses VM boundaries).
package verifytx

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"beltvm/internal/compiler"
	"beltvm/internal/instr"
	"beltvm/internal/loopstack"
	"beltvm/internal/looptree"
	"beltvm/internal/tx"
	"beltvm/internal/vm"
)

// Result records one script's outcome, tagged with a run ID so concurrent
// failures can be correlated back to a specific input or preamble in logs.
type Result struct {
	RunID       uuid.UUID
	Kind        string // "input" or "preamble"
	Index       int
	NumLocals   int
	Instruction int
	Err         error
}

// VerifyTx checks t's balance, then compiles and runs every input's
// unlocking script and every preamble script, one independent VM per
// script. The first script failure (if any) is returned. That failure
// cancels the shared context, so a script that has not started by then
// returns the context error without running; scripts already running
// finish, and their errors are dropped.
func VerifyTx(ctx context.Context, t tx.Tx) error {
	if err := tx.CheckBalance(t); err != nil {
		return fmt.Errorf("balance check failed: %w", err)
	}

	numScripts := len(t.Inputs) + len(t.Preambles)
	if len(t.Witnesses) < numScripts {
		return fmt.Errorf("expected %d witnesses, got %d", numScripts, len(t.Witnesses))
	}

	group, ctx := errgroup.WithContext(ctx)
	for idx, input := range t.Inputs {
		idx, input := idx, input
		witness := t.Witnesses[idx]
		group.Go(func() error {
			return runScript(ctx, "input", idx, input.Bytecode, witness)
		})
	}
	for idx, preamble := range t.Preambles {
		idx, preamble := idx, preamble
		witness := t.Witnesses[len(t.Inputs)+idx]
		group.Go(func() error {
			return runScript(ctx, "preamble", idx, preamble, witness)
		})
	}
	return group.Wait()
}

func runScript(ctx context.Context, kind string, idx int, bytecode []byte, witness tx.UnlockData) error {
	runID := uuid.New()
	if err := ctx.Err(); err != nil {
		return err
	}

	compileResult, err := compiler.Compile(string(bytecode))
	if err != nil {
		return fmt.Errorf("%s[%d] (run %s): compile failed: %w", kind, idx, runID, err)
	}

	forest, err := looptree.ParseForest(witness.LoopTrees)
	if err != nil {
		return fmt.Errorf("%s[%d] (run %s): loop tree decode failed: %w", kind, idx, runID, err)
	}

	ls := loopstack.New(forest)
	machine := vm.New(ls, compileResult.NumLocals, witness.RamSize)
	program := instr.NewBlock(compileResult.Instructions)
	if err := machine.Run(program); err != nil {
		return fmt.Errorf("%s[%d] (run %s): %w", kind, idx, runID, err)
	}
	return nil
}
