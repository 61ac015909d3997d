package types

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExtractContractMetadata verifies metadata located through the trailing length is decoded.
func TestExtractContractMetadata(t *testing.T) {
	ipfsHash := bytes.Repeat([]byte{0xab}, 34)
	bytecode := append([]byte{0x60, 0x80, 0x60, 0x40, 0x52, 0x00, 0xfe}, testMetadata(ipfsHash)...)

	metadata := ExtractContractMetadata(bytecode)
	require.NotNil(t, metadata)
	assert.Equal(t, ipfsHash, metadata.ExtractBytecodeHash())
	assert.Equal(t, "0.8.20", metadata.CompilerVersion())

	fromHex := ExtractContractMetadataFromHex("0x" + hex.EncodeToString(bytecode))
	require.NotNil(t, fromHex)
	assert.Equal(t, "0.8.20", fromHex.CompilerVersion())
}

// TestExtractContractMetadataMissing ensures bytecode without metadata, or unlinked bytecode, yields nil.
func TestExtractContractMetadataMissing(t *testing.T) {
	assert.Nil(t, ExtractContractMetadataFromHex("0x6080604052"))
	assert.Nil(t, ExtractContractMetadataFromHex("73__$1234567890abcdef1234567890abcdef12$__6080"))
	assert.Nil(t, ExtractContractMetadataFromHex(""))
}

// Helper functions

// testMetadata builds the CBOR metadata the Solidity compiler appends to bytecode, followed by its length.
func testMetadata(ipfsHash []byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte(0xa2)
	buf.WriteByte(0x64)
	buf.WriteString("ipfs")
	buf.WriteByte(0x58)
	buf.WriteByte(byte(len(ipfsHash)))
	buf.Write(ipfsHash)
	buf.WriteByte(0x64)
	buf.WriteString("solc")
	buf.WriteByte(0x43)
	buf.Write([]byte{0, 8, 20})

	length := make([]byte, 2)
	binary.BigEndian.PutUint16(length, uint16(buf.Len()))
	return append(buf.Bytes(), length...)
}
