package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownStatus = errors.New("domain: unknown publish status")
	ErrUnknownKind   = errors.New("domain: unknown content kind")
)

// Valid reports whether the status is one of the known publish states.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusPublished:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus coerces user input into a known status. Empty input maps to draft,
// matching the default applied to freshly uploaded items.
func ParseStatus(input string) (Status, error) {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if trimmed == "" {
		return StatusDraft, nil
	}
	status := Status(trimmed)
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, input)
	}
	return status, nil
}

// Valid reports whether the kind is supported.
func (k Kind) Valid() bool {
	switch k {
	case KindWallpaper, KindBanner, KindMedia, KindSparkle, KindPopupBanner:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind normalises a kind identifier. Dashes are accepted in place of
// underscores so URL segments like "popup-banner" resolve.
func ParseKind(input string) (Kind, error) {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	trimmed = strings.ReplaceAll(trimmed, "-", "_")
	kind := Kind(trimmed)
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, input)
	}
	return kind, nil
}
