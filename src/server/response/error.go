package response

import "github.com/hiveminds/marketplace/src/purchase"

type Error struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`

	// Echoed back on purchase failures so the caller can tell a
	// not-yet-indexed payment from a bad one
	Verification *purchase.Verdict `json:"verification,omitempty"`
}
