package blockchain

import (
	"github.com/ethereum/go-ethereum/common"
)

// ZeroAddress marks a tie in VRF completion events.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

func IsAddress(address string) bool {
	return common.IsHexAddress(address)
}

// SameAddress compares two hex addresses ignoring checksum casing.
func SameAddress(a, b string) bool {
	if !common.IsHexAddress(a) || !common.IsHexAddress(b) {
		return false
	}
	return common.HexToAddress(a) == common.HexToAddress(b)
}

func IsZeroAddress(address string) bool {
	return common.IsHexAddress(address) && common.HexToAddress(address) == (common.Address{})
}
