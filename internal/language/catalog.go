// Package language provides the static catalog of languages NewsFlash can
// summarize and speak in.
//
// The catalog is immutable after construction and safe to share between
// concurrent requests. Lookups are total: [Catalog.FallbackFor] and
// [Catalog.DescriptorFor] always produce a usable answer, degrading to the
// default language for anything unknown.
package language

import "strings"

// DefaultCode is the language every fallback chain ends in.
const DefaultCode = "en"

// Descriptor holds the metadata for one supported language.
type Descriptor struct {
	// Code is the lowercase two-letter language code (e.g., "en", "hi").
	Code string `yaml:"code"`

	// Name is the English display name of the language.
	Name string `yaml:"name"`

	// NativeName is the language's name in its own script.
	NativeName string `yaml:"native_name"`

	// SpeechCode is the code passed to TTS backends. Defaults to Code.
	SpeechCode string `yaml:"speech_code"`

	// Enabled marks the language as selectable. Disabled entries are treated
	// as unsupported by all lookups.
	Enabled bool `yaml:"enabled"`
}

// Catalog is an immutable registry of supported languages with a designated
// default. The zero value is not usable; construct with [New] or [Builtin].
type Catalog struct {
	byCode      map[string]Descriptor
	order       []string
	defaultCode string
}

// Builtin returns the catalog NewsFlash ships with: English (default), Hindi
// and Marathi.
func Builtin() *Catalog {
	c, _ := New(DefaultCode, BuiltinDescriptors())
	return c
}

// BuiltinDescriptors returns a fresh copy of the built-in language set.
func BuiltinDescriptors() []Descriptor {
	return []Descriptor{
		{Code: "en", Name: "English", NativeName: "English", Enabled: true},
		{Code: "hi", Name: "Hindi", NativeName: "हिंदी", Enabled: true},
		{Code: "mr", Name: "Marathi", NativeName: "मराठी", Enabled: true},
	}
}

// New builds a catalog from descriptors. Codes are normalized to lowercase;
// a descriptor with an empty SpeechCode gets its Code. The default must name
// an enabled entry.
func New(defaultCode string, descriptors []Descriptor) (*Catalog, error) {
	c := &Catalog{byCode: make(map[string]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		d.Code = normalize(d.Code)
		if d.Code == "" {
			return nil, errEmptyCode
		}
		if _, dup := c.byCode[d.Code]; dup {
			return nil, &DuplicateCodeError{Code: d.Code}
		}
		if d.SpeechCode == "" {
			d.SpeechCode = d.Code
		}
		c.byCode[d.Code] = d
		c.order = append(c.order, d.Code)
	}

	c.defaultCode = normalize(defaultCode)
	if d, ok := c.byCode[c.defaultCode]; !ok || !d.Enabled {
		return nil, &UnknownDefaultError{Code: defaultCode}
	}
	return c, nil
}

// IsSupported reports whether code names an enabled catalog entry. Empty,
// whitespace-only, or unknown codes are unsupported. Matching is
// case-insensitive and ignores surrounding whitespace.
func (c *Catalog) IsSupported(code string) bool {
	d, ok := c.byCode[normalize(code)]
	return ok && d.Enabled
}

// FallbackFor returns the normalized code when supported, otherwise the
// default code. It never fails.
func (c *Catalog) FallbackFor(code string) string {
	if c.IsSupported(code) {
		return normalize(code)
	}
	return c.defaultCode
}

// DescriptorFor returns the descriptor for code, or the default language's
// descriptor when code is unsupported.
func (c *Catalog) DescriptorFor(code string) Descriptor {
	return c.byCode[c.FallbackFor(code)]
}

// SpeechCodeFor returns the TTS code for code, falling back like
// [Catalog.DescriptorFor].
func (c *Catalog) SpeechCodeFor(code string) string {
	return c.DescriptorFor(code).SpeechCode
}

// Default returns the default language code.
func (c *Catalog) Default() string {
	return c.defaultCode
}

// Codes returns the enabled language codes in registration order.
func (c *Catalog) Codes() []string {
	codes := make([]string, 0, len(c.order))
	for _, code := range c.order {
		if c.byCode[code].Enabled {
			codes = append(codes, code)
		}
	}
	return codes
}

func normalize(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
