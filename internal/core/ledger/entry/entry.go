package entry

import (
	"fmt"
)

// Type represents a ledger entry type.
type Type uint16

// All known ledger entry types.
const (
	// Account objects
	TypeAccountRoot Type = 0x0061

	// Card objects
	TypeCardStats Type = 0x0063 // Immutable card attributes
	TypeCustody   Type = 0x0075 // Current holder of a card
	TypeListing   Type = 0x006c // Marketplace listing with trade history
)

// String returns the string representation of the Type.
func (t Type) String() string {
	switch t {
	case TypeAccountRoot:
		return "AccountRoot"
	case TypeCardStats:
		return "CardStats"
	case TypeCustody:
		return "Custody"
	case TypeListing:
		return "Listing"
	default:
		return fmt.Sprintf("Unknown(0x%04x)", uint16(t))
	}
}

// IsValid reports whether the type is a known ledger entry type.
func (t Type) IsValid() bool {
	switch t {
	case TypeAccountRoot, TypeCardStats, TypeCustody, TypeListing:
		return true
	default:
		return false
	}
}
