package sle

import (
	"github.com/solcards/gocardsd/internal/core/ledger/entry"
)

// Element is a card's element type.
type Element uint8

const (
	ElementWholesome Element = iota
	ElementToxic
	ElementDank
	ElementCursed
)

// String returns the element name.
func (e Element) String() string {
	switch e {
	case ElementWholesome:
		return "Wholesome"
	case ElementToxic:
		return "Toxic"
	case ElementDank:
		return "Dank"
	case ElementCursed:
		return "Cursed"
	default:
		return "Unknown"
	}
}

// IsValid reports whether the element is a known value.
func (e Element) IsValid() bool { return e <= ElementCursed }

// Rarity is a card's rarity tier.
type Rarity uint8

const (
	RarityCommon Rarity = iota
	RarityRare
	RarityEpic
	RarityLegendary
	RarityMythic
	RarityGodTier
)

// String returns the rarity name.
func (r Rarity) String() string {
	switch r {
	case RarityCommon:
		return "Common"
	case RarityRare:
		return "Rare"
	case RarityEpic:
		return "Epic"
	case RarityLegendary:
		return "Legendary"
	case RarityMythic:
		return "Mythic"
	case RarityGodTier:
		return "GodTier"
	default:
		return "Unknown"
	}
}

// IsValid reports whether the rarity is a known value.
func (r Rarity) IsValid() bool { return r <= RarityGodTier }

// Card attribute limits.
const (
	MaxCardName   = 32
	MaxCardSymbol = 10
	MaxCardURI    = 200
	MaxCardStat   = 100
)

// CardStats is the immutable record of a card's identity and game
// attributes, created once at mint and never modified afterwards.
type CardStats struct {
	Card    [32]byte
	Creator string
	Name    string
	Symbol  string
	URI     string
	Attack  uint8
	Defense uint8
	Element Element
	Rarity  Rarity

	PreviousTxnID     [32]byte
	PreviousTxnLgrSeq uint32
}

// SerializeCardStats encodes card stats to their binary form.
func SerializeCardStats(c *CardStats) ([]byte, error) {
	creatorID, err := DecodeAccountID(c.Creator)
	if err != nil {
		return nil, err
	}

	w := newWriter(entry.TypeCardStats)
	w.bytes(c.Card[:])
	w.bytes(creatorID[:])
	if err := w.str(c.Name); err != nil {
		return nil, err
	}
	if err := w.str(c.Symbol); err != nil {
		return nil, err
	}
	if err := w.str(c.URI); err != nil {
		return nil, err
	}
	w.uint8(c.Attack)
	w.uint8(c.Defense)
	w.uint8(uint8(c.Element))
	w.uint8(uint8(c.Rarity))
	w.bytes(c.PreviousTxnID[:])
	w.uint32(c.PreviousTxnLgrSeq)
	return w.buf, nil
}

// ParseCardStats decodes card stats from their binary form.
func ParseCardStats(data []byte) (*CardStats, error) {
	r := newReader(data, entry.TypeCardStats)

	c := &CardStats{}
	c.Card = r.hash256()
	creatorID := r.accountID()
	c.Name = r.str()
	c.Symbol = r.str()
	c.URI = r.str()
	c.Attack = r.uint8()
	c.Defense = r.uint8()
	c.Element = Element(r.uint8())
	c.Rarity = Rarity(r.uint8())
	c.PreviousTxnID = r.hash256()
	c.PreviousTxnLgrSeq = r.uint32()

	if r.err != nil {
		return nil, r.err
	}
	c.Creator = EncodeAccountID(creatorID)
	return c, nil
}
