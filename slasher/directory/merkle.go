package directory

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// The signer set of an epoch is committed to by a binary Keccak256 Merkle
// tree. Leaf i is keccak256(signer_i); the leaf count is padded to the next
// power of two with zero hashes and a node is keccak256(left ++ right).

// TreeDepth returns the depth of the signer tree for n leaves.
func TreeDepth(n uint64) uint64 {
	depth := uint64(0)
	for width := uint64(1); width < n; width <<= 1 {
		depth++
	}
	return depth
}

func signerLeaf(signer common.Address) common.Hash {
	return crypto.Keccak256Hash(signer.Bytes())
}

func parentHash(left, right common.Hash) common.Hash {
	return crypto.Keccak256Hash(left.Bytes(), right.Bytes())
}

func treeLayers(signers []common.Address) [][]common.Hash {
	width := uint64(1) << TreeDepth(uint64(len(signers)))
	leaves := make([]common.Hash, width)
	for i, s := range signers {
		leaves[i] = signerLeaf(s)
	}
	layers := [][]common.Hash{leaves}
	for len(layers[len(layers)-1]) > 1 {
		prev := layers[len(layers)-1]
		next := make([]common.Hash, len(prev)/2)
		for i := range next {
			next[i] = parentHash(prev[2*i], prev[2*i+1])
		}
		layers = append(layers, next)
	}
	return layers
}

// SignersRoot computes the Merkle root of a signer set.
func SignersRoot(signers []common.Address) common.Hash {
	layers := treeLayers(signers)
	return layers[len(layers)-1][0]
}

// SignerBranch returns the sibling hashes of leaf index, bottom-up.
func SignerBranch(signers []common.Address, index uint64) ([]common.Hash, error) {
	if index >= uint64(len(signers)) {
		return nil, errors.Errorf("index %d out of range for %d signers", index, len(signers))
	}
	layers := treeLayers(signers)
	branch := make([]common.Hash, 0, len(layers)-1)
	idx := index
	for _, layer := range layers[:len(layers)-1] {
		branch = append(branch, layer[idx^1])
		idx /= 2
	}
	return branch, nil
}

// VerifySignerBranch checks that signer sits at index of a tree with
// numValidators leaves and the given root.
func VerifySignerBranch(root common.Hash, signer common.Address, index uint64, branch []common.Hash, numValidators uint64) bool {
	if index >= numValidators || uint64(len(branch)) != TreeDepth(numValidators) {
		return false
	}
	value := signerLeaf(signer)
	idx := index
	for _, sibling := range branch {
		if idx%2 == 1 {
			value = parentHash(sibling, value)
		} else {
			value = parentHash(value, sibling)
		}
		idx /= 2
	}
	return value == root
}
