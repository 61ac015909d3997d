package colors

import "fmt"

// ColorFunc is an alias type for a coloring function that accepts anything and returns a colorized string
type ColorFunc = func(s any) string

// Reset is a ColorFunc that simply returns the input as a string. It is basically a no-op and is used for resetting the
// color context during complex logging operations.
func Reset(s any) string {
	return fmt.Sprintf("%v", s)
}

// newColorFunc returns a ColorFunc applying color c, and bold text on top of it if requested.
func newColorFunc(c Color, bold bool) ColorFunc {
	return func(s any) string {
		if bold {
			return Colorize(Colorize(s, c), BOLD)
		}
		return Colorize(s, c)
	}
}

var (
	// Red colors diagnostics of error severity.
	Red = newColorFunc(RED, false)
	// RedBold colors failure headlines and the error log level.
	RedBold = newColorFunc(RED, true)
	// Green colors successful results.
	Green = newColorFunc(GREEN, false)
	// GreenBold colors success headlines and the info log level.
	GreenBold = newColorFunc(GREEN, true)
	// Yellow colors diagnostics of warning severity.
	Yellow = newColorFunc(YELLOW, false)
	// YellowBold colors the warning log level.
	YellowBold = newColorFunc(YELLOW, true)
	// BlueBold colors the debug log level.
	BlueBold = newColorFunc(BLUE, true)
	// Cyan colors diagnostics of info severity.
	Cyan = newColorFunc(CYAN, false)
	// CyanBold colors the trace log level.
	CyanBold = newColorFunc(CYAN, true)
	// DarkGray colors secondary details such as source locations.
	DarkGray = newColorFunc(DARK_GRAY, false)
)

// Bold is a ColorFunc that returns a bolded string of the provided input
func Bold(s any) string {
	return Colorize(s, BOLD)
}
