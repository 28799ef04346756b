package types

import (
	"math/big"

	"github.com/google/uuid"
)

// UUIDRoot is the UID root for UUID derived UIDs, PS3.5 B.2
const UUIDRoot = "2.25"

// NewUID returns a new UID made of UUIDRoot and a random UUID as a decimal integer
func NewUID() string {
	return UIDFromUUID(uuid.New())
}

// UIDFromUUID converts a UUID to its UID form
func UIDFromUUID(id uuid.UUID) string {
	n := new(big.Int).SetBytes(id[:])
	return UUIDRoot + "." + n.String()
}
