package colors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorize(t *testing.T) {
	EnableColor()
	defer EnableColor()
	if !enabled {
		t.Skip("the console does not support ANSI escape codes")
	}

	assert.Equal(t, "\x1b[31mfailed\x1b[0m", Red("failed"))
	assert.Equal(t, "\x1b[1m\x1b[32mok\x1b[0m\x1b[0m", GreenBold("ok"))
	assert.Equal(t, "7", Reset(7))

	DisableColor()
	assert.Equal(t, "failed", Red("failed"))
	assert.Equal(t, "ok", GreenBold("ok"))
	assert.Equal(t, "src/A.sol", Bold("src/A.sol"))
}
