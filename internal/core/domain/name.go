package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMode is returned when a generation mode cannot be parsed.
var ErrInvalidMode = errors.New("could not parse generation mode")

// NameCandidate is a name generated by the provider. It is never empty.
type NameCandidate string

// GenerationMode selects the resolution strategy.
type GenerationMode string

const (
	// ModeCoherent pairs a first name with a last name sharing one of its usages.
	ModeCoherent GenerationMode = "coherent"
	// ModeChaotic pairs two independently drawn names.
	ModeChaotic GenerationMode = "chaotic"
)

// ParseMode parses a generation mode; an empty string selects ModeCoherent.
func ParseMode(s string) (GenerationMode, error) {
	switch GenerationMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeCoherent:
		return ModeCoherent, nil
	case ModeChaotic:
		return ModeChaotic, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// ResolvedName is the outcome of one resolution. Exactly one of Last and
// LastErr is set.
type ResolvedName struct {
	First   NameCandidate
	Last    NameCandidate
	LastErr *ResolutionError
}

// IsMononym reports whether no last name could be found.
func (n ResolvedName) IsMononym() bool {
	return n.LastErr != nil
}

// FullName joins first and last name, or returns the first name alone.
func (n ResolvedName) FullName() string {
	if n.IsMononym() || n.Last == "" {
		return string(n.First)
	}
	return string(n.First) + " " + string(n.Last)
}
