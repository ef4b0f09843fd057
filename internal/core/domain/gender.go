package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidGender is returned when a gender filter cannot be parsed.
var ErrInvalidGender = errors.New("could not parse gender")

// Gender is the gender facet of a name, as requested or as reported by the provider.
type Gender string

const (
	GenderMale   Gender = "m"
	GenderFemale Gender = "f"
	GenderUnisex Gender = "u"
	// GenderAny is a request filter only. It is sent to the provider as-is
	// (no gender parameter) and never resolved client-side.
	GenderAny Gender = ""
)

// ParseGender parses a user or provider supplied gender filter.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any", "a":
		return GenderAny, nil
	case "m", "male":
		return GenderMale, nil
	case "f", "female":
		return GenderFemale, nil
	case "u", "mf", "fm", "unisex":
		return GenderUnisex, nil
	default:
		return GenderAny, fmt.Errorf("%w: %q", ErrInvalidGender, s)
	}
}

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	case GenderUnisex:
		return "unisex"
	default:
		return "any"
	}
}
