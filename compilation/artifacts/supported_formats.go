package artifacts

import (
	"fmt"
	"sort"
)

// DefaultFormat is the artifact format used when none is configured.
const DefaultFormat = "standard"

// converterGenerators is a mapping of format identifier to functions creating a converter for it. Each format with a
// generator in this mapping is considered a supported artifact format. Items are populated in the init method.
var converterGenerators map[string]func() Converter

// init populates converterGenerators with the supported formats.
func init() {
	generators := []func() Converter{
		func() Converter { return NewStandardConverter() },
		func() Converter { return NewCompactConverter() },
		func() Converter { return NewRawConverter() },
	}

	converterGenerators = make(map[string]func() Converter)
	for _, generator := range generators {
		format := generator().Format()

		// Each format should have a unique identifier.
		if _, exists := converterGenerators[format]; exists {
			panic(fmt.Errorf("the artifact format '%s' is registered with more than one converter", format))
		}
		converterGenerators[format] = generator
	}
}

// GetSupportedFormats returns the identifiers of every supported artifact format, sorted.
func GetSupportedFormats() []string {
	formats := make([]string, 0, len(converterGenerators))
	for format := range converterGenerators {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// IsSupportedFormat returns a boolean indicating if an artifact format identifier is supported.
func IsSupportedFormat(format string) bool {
	_, ok := converterGenerators[format]
	return ok
}

// GetConverter returns a converter for the provided artifact format.
func GetConverter(format string) (Converter, error) {
	generator, ok := converterGenerators[format]
	if !ok {
		return nil, fmt.Errorf("unsupported artifact format '%s', expected one of %v", format, GetSupportedFormats())
	}
	return generator(), nil
}
