package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSolidityParser verifies every import form is extracted, comments are ignored and pragmas are combined.
func TestSolidityParser(t *testing.T) {
	source := `// SPDX-License-Identifier: MIT
pragma solidity >=0.8.0;
pragma solidity <0.9.0;
pragma abicoder v2;

import "./A.sol";
import * as B from "./B.sol";
import {C, D as E} from '../lib/C.sol';
import "@oz/F.sol" as F;
// import "./Commented.sol";
/* import "./Block.sol";
   pragma solidity ^0.4.0; */

contract Example {
    string constant URL = "https://example.com/*not-a-comment";
}
`
	parsed, err := NewSolidityParser().Parse("src/Example.sol", []byte(source))
	require.NoError(t, err)

	assert.Equal(t, ">=0.8.0 <0.9.0", parsed.VersionRequirement)
	assert.Equal(t, []Import{
		{Candidates: []string{"./A.sol"}},
		{Candidates: []string{"./B.sol"}},
		{Candidates: []string{"../lib/C.sol"}},
		{Candidates: []string{"@oz/F.sol"}},
	}, parsed.Imports)
}

// TestSolidityParserNoPragma ensures files without a pragma have no version requirement.
func TestSolidityParserNoPragma(t *testing.T) {
	parsed, err := NewSolidityParser().Parse("src/Lib.sol", []byte("library Lib {}\n"))
	require.NoError(t, err)

	assert.Empty(t, parsed.VersionRequirement)
	assert.Empty(t, parsed.Imports)
}

// TestStripSolidityComments verifies comments are removed while string literals and line numbers are preserved.
func TestStripSolidityComments(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "line comment", input: "a // b\nc", expected: "a \nc"},
		{name: "block comment", input: "a /* b\nb */c", expected: "a \n c"},
		{name: "quoted slashes", input: `x = "//" + '/*';`, expected: `x = "//" + '/*';`},
		{name: "escaped quote", input: `x = "a\"//b"; // c`, expected: `x = "a\"//b"; `},
		{name: "unterminated block", input: "a /* b", expected: "a "},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, stripSolidityComments(test.input))
		})
	}
}
