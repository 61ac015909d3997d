package colors

import "fmt"

// enabled describes whether ANSI coloring is applied by Colorize.
var enabled bool

// init enables coloring where the console supports it. Unix consoles always do, Windows consoles need a kernel call.
func init() {
	EnableColor()
}

// DisableColor disables ANSI coloring, so every ColorFunc returns its input as a plain string.
func DisableColor() {
	enabled = false
}

// Colorize returns the string s wrapped in ANSI code c, or s unchanged if coloring is disabled.
// Source: https://github.com/rs/zerolog/blob/4fff5db29c3403bc26dee9895e12a108aacc0203/console.go
func Colorize(s any, c Color) string {
	if !enabled {
		return fmt.Sprintf("%v", s)
	}
	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", c, s)
}
