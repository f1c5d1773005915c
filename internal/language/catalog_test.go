package language

import (
	"errors"
	"testing"
)

func TestBuiltin_DefaultIsEnglish(t *testing.T) {
	c := Builtin()
	if c.Default() != "en" {
		t.Fatalf("Default() = %q, want en", c.Default())
	}
	codes := c.Codes()
	if len(codes) != 3 {
		t.Fatalf("Codes() = %v, want 3 entries", codes)
	}
}

func TestIsSupported(t *testing.T) {
	c := Builtin()
	tests := []struct {
		code string
		want bool
	}{
		{"en", true},
		{"hi", true},
		{"mr", true},
		{"EN", true},
		{"  hi ", true},
		{"", false},
		{"   ", false},
		{"xx", false},
		{"english", false},
	}
	for _, tt := range tests {
		if got := c.IsSupported(tt.code); got != tt.want {
			t.Errorf("IsSupported(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestFallbackFor(t *testing.T) {
	c := Builtin()
	tests := []struct {
		code string
		want string
	}{
		{"hi", "hi"},
		{"HI", "hi"},
		{" Mr\t", "mr"},
		{"en", "en"},
		{"xx", "en"},
		{"", "en"},
	}
	for _, tt := range tests {
		if got := c.FallbackFor(tt.code); got != tt.want {
			t.Errorf("FallbackFor(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestDescriptorFor_UnsupportedYieldsDefault(t *testing.T) {
	c := Builtin()
	d := c.DescriptorFor("zz")
	if d.Code != "en" {
		t.Fatalf("DescriptorFor(zz).Code = %q, want en", d.Code)
	}

	d = c.DescriptorFor("hi")
	if d.NativeName != "हिंदी" {
		t.Fatalf("DescriptorFor(hi).NativeName = %q, want हिंदी", d.NativeName)
	}
}

func TestSpeechCodeFor_DefaultsToCode(t *testing.T) {
	c := Builtin()
	if got := c.SpeechCodeFor("mr"); got != "mr" {
		t.Fatalf("SpeechCodeFor(mr) = %q, want mr", got)
	}
	if got := c.SpeechCodeFor("nope"); got != "en" {
		t.Fatalf("SpeechCodeFor(nope) = %q, want en", got)
	}
}

func TestNew_RejectsDuplicateCodes(t *testing.T) {
	_, err := New("en", []Descriptor{
		{Code: "en", Enabled: true},
		{Code: "EN", Enabled: true},
	})
	var dup *DuplicateCodeError
	if !errors.As(err, &dup) {
		t.Fatalf("err = %v, want DuplicateCodeError", err)
	}
}

func TestNew_RejectsDisabledDefault(t *testing.T) {
	_, err := New("hi", []Descriptor{
		{Code: "en", Enabled: true},
		{Code: "hi", Enabled: false},
	})
	var unknown *UnknownDefaultError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want UnknownDefaultError", err)
	}
}

func TestNew_DisabledEntriesAreUnsupported(t *testing.T) {
	c, err := New("en", []Descriptor{
		{Code: "en", Enabled: true},
		{Code: "hi", Enabled: false},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.IsSupported("hi") {
		t.Fatal("disabled language reported as supported")
	}
	if got := c.FallbackFor("hi"); got != "en" {
		t.Fatalf("FallbackFor(hi) = %q, want en", got)
	}
	if codes := c.Codes(); len(codes) != 1 {
		t.Fatalf("Codes() = %v, want [en]", codes)
	}
}
