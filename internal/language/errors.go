package language

import (
	"errors"
	"fmt"
)

var errEmptyCode = errors.New("language: descriptor code must not be empty")

// DuplicateCodeError reports two descriptors sharing the same code.
type DuplicateCodeError struct {
	Code string
}

func (e *DuplicateCodeError) Error() string {
	return fmt.Sprintf("language: duplicate code %q in catalog", e.Code)
}

// UnknownDefaultError reports a default code that is missing or disabled.
type UnknownDefaultError struct {
	Code string
}

func (e *UnknownDefaultError) Error() string {
	return fmt.Sprintf("language: default %q is not an enabled catalog entry", e.Code)
}
