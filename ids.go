package fincal

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a fresh opaque identifier like "tx_6f0c...".
//
// Identifiers are only compared for equality, their content carries no meaning.
func NewID(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
