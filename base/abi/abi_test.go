package abi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMethods(t *testing.T) {
	req := require.New(t)

	m, ok := ERC1271ABI.Methods["isValidSignature"]
	req.True(ok)
	req.Equal(ERC1271MagicValue[:], m.ID)

	_, ok = ERC2981ABI.Methods["royaltyInfo"]
	req.True(ok)
	m, ok = ERC2981ABI.Methods["supportsInterface"]
	req.True(ok)
	req.Equal([]byte{0x01, 0xff, 0xc9, 0xa7}, m.ID)
}
