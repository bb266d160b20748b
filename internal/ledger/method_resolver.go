package ledger

import (
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Known contract entry points. The commit/reveal ones only appear on rows
// ingested before the VRF contract.
var knownSignatures = map[string]string{
	"rollDice()":                               "rollDice",
	"rawFulfillRandomWords(uint256,uint256[])": "vrfCallback",
	"fulfillRandomWords(uint256,uint256[])":    "vrfCallback",
	"commit(bytes32)":                          "commit",
	"multiPostRandomness(uint256[],bytes32[])": "multiPostRandomness",
	"reveal(uint256,bytes32)":                  "reveal",
}

var methodsBySelector = buildSelectorIndex()

func buildSelectorIndex() map[string]string {
	index := make(map[string]string, len(knownSignatures))
	for signature, name := range knownSignatures {
		selector := hexutil.Encode(crypto.Keccak256([]byte(signature))[:4])
		index[selector] = name
	}
	return index
}

// ResolveMethod maps a text signature, a 4-byte selector or raw calldata to a
// readable method name. Unknown input is returned unchanged.
func ResolveMethod(signature string) string {
	trimmed := strings.TrimSpace(signature)
	if name, ok := knownSignatures[trimmed]; ok {
		return name
	}

	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "0x") && len(lower) >= 10 {
		if name, ok := methodsBySelector[lower[:10]]; ok {
			return name
		}
	}

	if open := strings.IndexByte(trimmed, '('); open > 0 {
		return trimmed[:open]
	}
	return trimmed
}
