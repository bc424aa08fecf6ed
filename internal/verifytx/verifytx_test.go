package verifytx

import (
	"context"
	"testing"

	"beltvm/internal/tx"
)

const trivialScript = `
version 0.0.1;
a = 1u8;
verify(a);
`

const failingScript = `
version 0.0.1;
a = 0u8;
verify(a);
`

func TestVerifyTxRunsInputAndPreambleScripts(t *testing.T) {
	txn := tx.Tx{
		Inputs: []tx.Input{
			{Outpoints: []tx.Outpoint{{Amount: 100}}, Bytecode: []byte(trivialScript)},
		},
		Outputs:   []tx.Output{{Amount: 50}},
		Preambles: [][]byte{[]byte(trivialScript)},
		Witnesses: []tx.UnlockData{
			{}, // input 0
			{}, // preamble 0
		},
	}
	if err := VerifyTx(context.Background(), txn); err != nil {
		t.Fatalf("VerifyTx: %v", err)
	}
}

func TestVerifyTxRejectsOverspend(t *testing.T) {
	txn := tx.Tx{
		Inputs:    []tx.Input{{Outpoints: []tx.Outpoint{{Amount: 10}}, Bytecode: []byte(trivialScript)}},
		Outputs:   []tx.Output{{Amount: 20}},
		Witnesses: []tx.UnlockData{{}},
	}
	if err := VerifyTx(context.Background(), txn); err == nil {
		t.Fatalf("VerifyTx should reject an overspending transaction before running any script")
	}
}

func TestVerifyTxRejectsMissingWitness(t *testing.T) {
	txn := tx.Tx{
		Inputs:  []tx.Input{{Outpoints: []tx.Outpoint{{Amount: 10}}, Bytecode: []byte(trivialScript)}},
		Outputs: []tx.Output{{Amount: 5}},
		// no witnesses supplied
	}
	if err := VerifyTx(context.Background(), txn); err == nil {
		t.Fatalf("VerifyTx should reject a transaction missing a witness for one of its scripts")
	}
}

func TestVerifyTxSurfacesScriptFailure(t *testing.T) {
	txn := tx.Tx{
		Inputs:    []tx.Input{{Outpoints: []tx.Outpoint{{Amount: 10}}, Bytecode: []byte(failingScript)}},
		Outputs:   []tx.Output{{Amount: 5}},
		Witnesses: []tx.UnlockData{{}},
	}
	if err := VerifyTx(context.Background(), txn); err == nil {
		t.Fatalf("VerifyTx should surface a script that traps at runtime")
	}
}

func TestVerifyTxSurfacesCompileFailure(t *testing.T) {
	txn := tx.Tx{
		Inputs:    []tx.Input{{Outpoints: []tx.Outpoint{{Amount: 10}}, Bytecode: []byte("version 9.9.9;\n")}},
		Outputs:   []tx.Output{{Amount: 5}},
		Witnesses: []tx.UnlockData{{}},
	}
	if err := VerifyTx(context.Background(), txn); err == nil {
		t.Fatalf("VerifyTx should surface a compile failure")
	}
}
