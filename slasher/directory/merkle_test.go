package directory

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sealwatch/slasher/testing/assert"
	"github.com/sealwatch/slasher/testing/require"
)

func signerSet(n int) []common.Address {
	signers := make([]common.Address, n)
	for i := range signers {
		signers[i] = common.BigToAddress(big.NewInt(int64(0x1000 + i)))
	}
	return signers
}

func TestTreeDepth(t *testing.T) {
	tests := []struct {
		n     uint64
		depth uint64
	}{
		{0, 0}, {1, 0}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {8, 3}, {9, 4}, {100, 7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.depth, TreeDepth(tt.n), "n=%d", tt.n)
	}
}

func TestSignersRoot_SingleSigner(t *testing.T) {
	signer := common.HexToAddress("0x05")
	assert.Equal(t, crypto.Keccak256Hash(signer.Bytes()), SignersRoot([]common.Address{signer}))
}

func TestSignersRoot_PadsWithZeroLeaves(t *testing.T) {
	signers := signerSet(3)
	l0 := crypto.Keccak256Hash(signers[0].Bytes())
	l1 := crypto.Keccak256Hash(signers[1].Bytes())
	l2 := crypto.Keccak256Hash(signers[2].Bytes())
	want := crypto.Keccak256Hash(
		crypto.Keccak256(l0.Bytes(), l1.Bytes()),
		crypto.Keccak256(l2.Bytes(), common.Hash{}.Bytes()),
	)
	assert.Equal(t, want, SignersRoot(signers))
}

func TestVerifySignerBranch(t *testing.T) {
	for n := 1; n <= 9; n++ {
		signers := signerSet(n)
		root := SignersRoot(signers)
		for i := 0; i < n; i++ {
			branch, err := SignerBranch(signers, uint64(i))
			require.NoError(t, err)
			assert.Equal(t, true, VerifySignerBranch(root, signers[i], uint64(i), branch, uint64(n)), "n=%d i=%d", n, i)
			other := signers[(i+1)%n]
			if n > 1 {
				assert.Equal(t, false, VerifySignerBranch(root, other, uint64(i), branch, uint64(n)), "n=%d i=%d wrong signer", n, i)
			}
		}
	}
}

func TestVerifySignerBranch_Invalid(t *testing.T) {
	signers := signerSet(4)
	root := SignersRoot(signers)
	branch, err := SignerBranch(signers, 2)
	require.NoError(t, err)

	assert.Equal(t, false, VerifySignerBranch(root, signers[2], 3, branch, 4), "wrong position")
	assert.Equal(t, false, VerifySignerBranch(root, signers[2], 4, branch, 4), "index out of range")
	assert.Equal(t, false, VerifySignerBranch(root, signers[2], 2, branch[:1], 4), "short branch")
	assert.Equal(t, false, VerifySignerBranch(common.Hash{1}, signers[2], 2, branch, 4), "wrong root")

	_, err = SignerBranch(signers, 4)
	assert.ErrorContains(t, "out of range", err)
}
