// Package share implements the copyright-safe sharing pipeline: building a
// compliant SafeRecipe per shared recipe and exchanging it through a
// single-use, time-boxed token.
package share

import (
	"fmt"
	"strings"
)

// ErrTokenNotFound indicates no share token exists for the given value.
type ErrTokenNotFound struct{}

func (e *ErrTokenNotFound) Error() string {
	return "share link not found"
}

// ErrTokenGone indicates a terminal token state: already redeemed or past
// its expiry. Reason distinguishes the two for user-facing messages.
type ErrTokenGone struct {
	Reason string
}

func (e *ErrTokenGone) Error() string {
	return fmt.Sprintf("share link is no longer valid: %s", e.Reason)
}

// Gone reasons.
const (
	ReasonUsed    = "this link has already been used"
	ReasonExpired = "this link has expired"
)

// ErrInvalidScope indicates a token whose scope is not the private-import
// literal. Should not occur with tokens issued by this service.
type ErrInvalidScope struct {
	Scope string
}

func (e *ErrInvalidScope) Error() string {
	return fmt.Sprintf("share link has invalid scope %q", e.Scope)
}

// ErrSelfImport indicates the sender tried to redeem their own link.
type ErrSelfImport struct{}

func (e *ErrSelfImport) Error() string {
	return "you cannot import your own shared recipes"
}

// ErrEmptyBatch indicates that no recipe in a create-share batch could be
// made shareable. It carries every per-recipe issue collected on the way.
type ErrEmptyBatch struct {
	Issues []string
}

func (e *ErrEmptyBatch) Error() string {
	if len(e.Issues) == 0 {
		return "no recipes could be shared"
	}
	return "no recipes could be shared: " + strings.Join(e.Issues, "; ")
}
