package colors

// Color is an ANSI SGR code.
type Color int

// ANSI codes used to colorize console output, following zerolog's console writer.
// Source: https://github.com/rs/zerolog/blob/4fff5db29c3403bc26dee9895e12a108aacc0203/console.go
const (
	RED    Color = 31
	GREEN  Color = 32
	YELLOW Color = 33
	BLUE   Color = 34
	CYAN   Color = 36

	// BOLD is the ANSI code for bold text
	BOLD Color = 1
	// DARK_GRAY is the ANSI code for dark gray
	DARK_GRAY Color = 90
)

// Glyphs used for pretty console output
const (
	// LEFT_ARROW marks info level log lines
	LEFT_ARROW = "⇾"
	// CHECK_MARK prefixes a successful compilation summary
	CHECK_MARK = "✔"
	// CROSS_MARK prefixes a failed compilation summary
	CROSS_MARK = "✘"
)
