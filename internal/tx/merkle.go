package tx

import (
	"bytes"

	"golang.org/x/crypto/blake2b"
)

// VerifyMerklePath recomputes the Merkle root of bytecode by walking path
// leaf-to-root, hashing bytecode itself as the leaf, and reports whether the
// result equals root.
func VerifyMerklePath(bytecode []byte, path []MerkleBranch, root []byte) bool {
	running := hashLeaf(bytecode)
	for _, branch := range path {
		switch branch.Side {
		case MerkleLeft:
			running = hashPair(branch.BranchHash, running)
		case MerkleRight:
			running = hashPair(running, branch.BranchHash)
		default:
			return false
		}
	}
	return bytes.Equal(running, root)
}

func hashLeaf(data []byte) []byte {
	sum := blake2b.Sum256(data)
	return sum[:]
}

func hashPair(left, right []byte) []byte {
	h, _ := blake2b.New256(nil)
	h.Write(left)
	h.Write(right)
	return h.Sum(nil)
}
