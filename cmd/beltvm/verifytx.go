package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"beltvm/internal/tx"
	"beltvm/internal/verifytx"
)

// jsonTx mirrors tx.Tx with byte slices base64-encoded, since JSON has no
// native binary type. Loading one of these and converting is the CLI's only
// concern with the wire format; internal/tx itself stays JSON-agnostic.
type jsonTx struct {
	Inputs     []jsonInput     `json:"inputs"`
	Outputs    []jsonOutput    `json:"outputs"`
	Preambles  []string        `json:"preambles"`
	Witnesses  []jsonUnlock    `json:"witnesses"`
	Signatures []jsonSignature `json:"signatures"`
}

type jsonInput struct {
	Outpoints          []jsonOutpoint      `json:"outpoints"`
	BytecodeMerklePath []jsonMerkleBranch  `json:"bytecode_merkle_path"`
	Bytecode           string              `json:"bytecode"`
}

type jsonOutput struct {
	Amount             uint64 `json:"amount"`
	BytecodeMerkleRoot string `json:"bytecode_merkle_root"`
}

type jsonUnlock struct {
	Data      []string `json:"data"`
	LoopTrees string   `json:"loop_trees"`
	RamSize   int      `json:"ram_size"`
}

type jsonSignature struct {
	SigFlags         int    `json:"sig_flags"`
	NumCoveredChecks int    `json:"num_covered_checks"`
	Signature        string `json:"signature"`
}

type jsonOutpoint struct {
	TxHash      string            `json:"tx_hash"`
	Idx         int               `json:"idx"`
	Amount      uint64            `json:"amount"`
	Constraints []jsonConstraint  `json:"constraints"`
	Carryover   string            `json:"carryover"`
}

type jsonMerkleBranch struct {
	Side       string `json:"side"` // "left" or "right"
	BranchHash string `json:"branch_hash"`
}

type jsonConstraint struct {
	Type    string `json:"type"`
	Payload string `json:"payload"`
}

func verifyTxCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: beltvm verify-tx <tx.json>")
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	var parsed jsonTx
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}
	t, err := parsed.toTx()
	if err != nil {
		return fmt.Errorf("decoding %s: %w", args[0], err)
	}
	if err := verifytx.VerifyTx(context.Background(), t); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}

func (j jsonTx) toTx() (tx.Tx, error) {
	result := tx.Tx{}
	for _, in := range j.Inputs {
		bytecode, err := b64(in.Bytecode)
		if err != nil {
			return tx.Tx{}, err
		}
		path, err := in.toMerklePath()
		if err != nil {
			return tx.Tx{}, err
		}
		outpoints, err := toOutpoints(in.Outpoints)
		if err != nil {
			return tx.Tx{}, err
		}
		result.Inputs = append(result.Inputs, tx.Input{
			Outpoints:          outpoints,
			BytecodeMerklePath: path,
			Bytecode:           bytecode,
		})
	}
	for _, out := range j.Outputs {
		root, err := b64(out.BytecodeMerkleRoot)
		if err != nil {
			return tx.Tx{}, err
		}
		result.Outputs = append(result.Outputs, tx.Output{Amount: out.Amount, BytecodeMerkleRoot: root})
	}
	for _, p := range j.Preambles {
		decoded, err := b64(p)
		if err != nil {
			return tx.Tx{}, err
		}
		result.Preambles = append(result.Preambles, decoded)
	}
	for _, w := range j.Witnesses {
		var data [][]byte
		for _, d := range w.Data {
			decoded, err := b64(d)
			if err != nil {
				return tx.Tx{}, err
			}
			data = append(data, decoded)
		}
		loopTrees, err := b64(w.LoopTrees)
		if err != nil {
			return tx.Tx{}, err
		}
		result.Witnesses = append(result.Witnesses, tx.UnlockData{Data: data, LoopTrees: loopTrees, RamSize: w.RamSize})
	}
	for _, s := range j.Signatures {
		sig, err := b64(s.Signature)
		if err != nil {
			return tx.Tx{}, err
		}
		result.Signatures = append(result.Signatures, tx.Signature{
			SigFlags:         s.SigFlags,
			NumCoveredChecks: s.NumCoveredChecks,
			Signature:        sig,
		})
	}
	return result, nil
}

func (in jsonInput) toMerklePath() ([]tx.MerkleBranch, error) {
	var path []tx.MerkleBranch
	for _, b := range in.BytecodeMerklePath {
		hash, err := b64(b.BranchHash)
		if err != nil {
			return nil, err
		}
		side := tx.MerkleLeft
		if b.Side == "right" {
			side = tx.MerkleRight
		}
		path = append(path, tx.MerkleBranch{Side: side, BranchHash: hash})
	}
	return path, nil
}

func toOutpoints(outpoints []jsonOutpoint) ([]tx.Outpoint, error) {
	var result []tx.Outpoint
	for _, o := range outpoints {
		txHash, err := b64(o.TxHash)
		if err != nil {
			return nil, err
		}
		carryover, err := b64(o.Carryover)
		if err != nil {
			return nil, err
		}
		constraints, err := toConstraints(o.Constraints)
		if err != nil {
			return nil, err
		}
		result = append(result, tx.Outpoint{
			TxHash:      txHash,
			Idx:         o.Idx,
			Amount:      o.Amount,
			Constraints: constraints,
			Carryover:   carryover,
		})
	}
	return result, nil
}

var constraintTypes = map[string]tx.ConstraintType{
	"preamble_hash":  tx.ConstraintPreambleHash,
	"preambles_hash": tx.ConstraintPreamblesHash,
	"block_height":   tx.ConstraintBlockHeight,
	"block_hash":     tx.ConstraintBlockHash,
	"age":            tx.ConstraintAge,
	"timestamp":      tx.ConstraintTimestamp,
}

func toConstraints(constraints []jsonConstraint) ([]tx.Constraint, error) {
	var result []tx.Constraint
	for _, c := range constraints {
		payload, err := b64(c.Payload)
		if err != nil {
			return nil, err
		}
		kind, ok := constraintTypes[c.Type]
		if !ok {
			return nil, fmt.Errorf("unknown constraint type %q", c.Type)
		}
		result = append(result, tx.Constraint{Type: kind, Payload: payload})
	}
	return result, nil
}

func b64(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(s)
}
