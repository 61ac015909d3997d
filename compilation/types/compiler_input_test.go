package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSparseOutputSelection verifies contract outputs are only requested for the given files.
func TestSparseOutputSelection(t *testing.T) {
	selection := OutputSelection{"*": {"*": {"abi", "storageLayout"}, "": {"ast"}}}

	sparse := selection.Sparse([]string{"src/A.sol"})
	assert.Equal(t, OutputSelection{
		"*":         {"": {"ast"}},
		"src/A.sol": {"*": {"abi", "storageLayout"}, "": {"ast"}},
	}, sparse)

	// The original selection is left untouched.
	sparse["src/A.sol"]["*"][0] = "changed"
	assert.Equal(t, "abi", selection["*"]["*"][0])
}

// TestSettingsForLanguage verifies Vyper inputs drop the settings the Vyper compiler rejects.
func TestSettingsForLanguage(t *testing.T) {
	settings := DefaultSettings()
	settings.ViaIR = true
	settings.Remappings = []string{"@oz/=lib/openzeppelin/"}
	settings.EVMVersion = "cancun"

	vyper := settings.ForLanguage(LanguageVyper)
	assert.Nil(t, vyper.Optimizer)
	assert.False(t, vyper.ViaIR)
	assert.Nil(t, vyper.Remappings)
	assert.Equal(t, "cancun", vyper.EVMVersion)

	solidity := settings.ForLanguage(LanguageSolidity)
	assert.Equal(t, settings, solidity)
	assert.NotNil(t, settings.Optimizer)

	empty := Settings{}.ForLanguage(LanguageSolidity)
	assert.Equal(t, DefaultOutputSelection(), empty.OutputSelection)
}

// TestSettingsFingerprint verifies the fingerprint only changes when the settings do.
func TestSettingsFingerprint(t *testing.T) {
	settings := DefaultSettings()
	clone := settings.Clone()
	assert.Equal(t, settings.Fingerprint(), clone.Fingerprint())

	clone.Optimizer.Runs = 1000
	assert.NotEqual(t, settings.Fingerprint(), clone.Fingerprint())
	assert.Equal(t, 200, settings.Optimizer.Runs)
}

// TestNewInput verifies an input holds every source of a set.
func TestNewInput(t *testing.T) {
	set := NewVersionedSourceSet(LanguageVyper, mustParseVersion(t, "0.4.0"), "default")
	set.Add(NewSource("src/Token.vy", []byte("# pragma version ^0.4.0")))

	input := NewInput(set, DefaultSettings())
	assert.Equal(t, LanguageVyper, input.Language)
	assert.Equal(t, map[string]InputSource{"src/Token.vy": {Content: "# pragma version ^0.4.0"}}, input.Sources)
	assert.Nil(t, input.Settings.Optimizer)
}
