// Package gate decides whether a participant may view and submit a feedback
// session based on the registration key access check.
package gate

import (
	"submission_service/internal/api"
)

type Decision int

const (
	// Allow lets the caller proceed to load the session and questions.
	Allow Decision = iota
	// DenyUsedKey redirects to the submission page with the key stripped:
	// the key has been claimed, the logged-in identity takes over.
	DenyUsedKey
	// DenyOther redirects to the landing page with an error message.
	DenyOther
)

// Navigator is the redirect collaborator. Exactly one call is made for a
// deny decision, none for Allow.
type Navigator interface {
	ToSessionSubmission()
	ToFrontWithError(message string)
}

const deniedMessage = "You are not authorized to view this page."

type Gate struct {
	nav Navigator
}

func New(nav Navigator) *Gate {
	return &Gate{nav: nav}
}

// Check evaluates an access decision over a registration key. A used key
// always yields DenyUsedKey regardless of validity.
func (g *Gate) Check(validity api.RegkeyValidity) Decision {
	if validity.IsAllowedAccess {
		return Allow
	}
	if validity.IsUsed {
		g.nav.ToSessionSubmission()
		return DenyUsedKey
	}
	g.nav.ToFrontWithError(deniedMessage)
	return DenyOther
}
