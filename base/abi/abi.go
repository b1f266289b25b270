// Package abi holds the parsed interfaces of the contracts the engine reads
// from chain.
package abi

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var (
	// ERC1271MagicValue is returned by isValidSignature for an accepted signature
	ERC1271MagicValue = [4]byte{0x16, 0x26, 0xba, 0x7e}
	// ERC2981InterfaceId is the ERC-165 id of royaltyInfo(uint256,uint256)
	ERC2981InterfaceId = [4]byte{0x2a, 0x55, 0x20, 0x5a}

	ERC1271ABI = mustParse("erc1271", `[
  {"type":"function","name":"isValidSignature","stateMutability":"view",
   "inputs":[{"type":"bytes32","name":"hash"},{"type":"bytes","name":"signature"}],
   "outputs":[{"type":"bytes4","name":"magicValue"}]}
]`)

	ERC2981ABI = mustParse("erc2981", `[
  {"type":"function","name":"supportsInterface","stateMutability":"view",
   "inputs":[{"type":"bytes4","name":"interfaceId"}],
   "outputs":[{"type":"bool"}]},
  {"type":"function","name":"royaltyInfo","stateMutability":"view",
   "inputs":[{"type":"uint256","name":"tokenId"},{"type":"uint256","name":"salePrice"}],
   "outputs":[{"type":"address","name":"receiver"},{"type":"uint256","name":"royaltyAmount"}]}
]`)
)

func mustParse(name, def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic("failed to parse " + name + " abi: " + err.Error())
	}
	return parsed
}
