// Package tx defines the transaction data model a script validates against
// (spec.md Section 6's external collaborator): inputs, outputs, the witness
// data a script's loop shapes and RAM size come from, and the constraint/
// signature payloads a script may reference but this package does not itself
// cryptographically verify.
package tx

// Tx is one transaction: a set of inputs spending prior outputs, a set of
// new outputs, zero or more preamble scripts, and per-input/per-preamble
// witness data driving each script's VM.
type Tx struct {
	Inputs     []Input
	Outputs    []Output
	Preambles  [][]byte
	Witnesses  []UnlockData
	Signatures []Signature
}

// Input spends one or more prior outpoints, unlocked by running Bytecode.
type Input struct {
	Outpoints          []Outpoint
	BytecodeMerklePath []MerkleBranch
	Bytecode           []byte
}

// Output creates a new spendable amount, locked behind a script whose hash
// is BytecodeMerkleRoot.
type Output struct {
	Amount             uint64
	BytecodeMerkleRoot []byte
}

// UnlockData is the witness data backing one script execution: the
// attached data slices a script's preamble buffers draw from, the
// LEB128-encoded loop-tree forest, and the RAM arena size to allocate.
type UnlockData struct {
	Data      [][]byte
	LoopTrees []byte
	RamSize   int
}

// Signature is a covering signature over some subset of the transaction.
// Cryptographic validation of Signature is a Non-goal here: this package
// only carries the payload shape.
type Signature struct {
	SigFlags         int
	NumCoveredChecks int
	Signature        []byte
}

// Outpoint references one prior output being spent.
type Outpoint struct {
	TxHash      []byte
	Idx         int
	Amount      uint64
	Constraints []Constraint
	Carryover   []byte
}

// MerkleSide records which side of a hash pair a MerkleBranch's sibling
// hash sits on.
type MerkleSide int

const (
	MerkleLeft MerkleSide = iota + 1
	MerkleRight
)

// MerkleBranch is one step of a Merkle inclusion path: the sibling hash
// and which side it sits on relative to the running hash.
type MerkleBranch struct {
	Side       MerkleSide
	BranchHash []byte
}

// ConstraintType enumerates the kinds of spending constraint an Outpoint
// may carry.
type ConstraintType int

const (
	ConstraintPreambleHash ConstraintType = iota + 1
	ConstraintPreamblesHash
	ConstraintBlockHeight
	ConstraintBlockHash
	ConstraintAge
	ConstraintTimestamp
)

// Constraint restricts when or how an Outpoint may be spent.
type Constraint struct {
	Type    ConstraintType
	Payload []byte
}
