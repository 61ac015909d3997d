package utils

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Keccak256Hex returns the hex encoded legacy keccak256 hash of the provided data.
func Keccak256Hex(data []byte) string {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}
