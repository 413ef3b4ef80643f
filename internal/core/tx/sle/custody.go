package sle

import (
	"github.com/solcards/gocardsd/internal/core/ledger/entry"
)

// Custody records the current holder of a card. Ownership transfer on
// purchase rewrites this entry.
type Custody struct {
	Card   [32]byte
	Holder string

	PreviousTxnID     [32]byte
	PreviousTxnLgrSeq uint32
}

// SerializeCustody encodes a custody entry to its binary form.
func SerializeCustody(c *Custody) ([]byte, error) {
	holderID, err := DecodeAccountID(c.Holder)
	if err != nil {
		return nil, err
	}

	w := newWriter(entry.TypeCustody)
	w.bytes(c.Card[:])
	w.bytes(holderID[:])
	w.bytes(c.PreviousTxnID[:])
	w.uint32(c.PreviousTxnLgrSeq)
	return w.buf, nil
}

// ParseCustody decodes a custody entry from its binary form.
func ParseCustody(data []byte) (*Custody, error) {
	r := newReader(data, entry.TypeCustody)

	c := &Custody{}
	c.Card = r.hash256()
	holderID := r.accountID()
	c.PreviousTxnID = r.hash256()
	c.PreviousTxnLgrSeq = r.uint32()

	if r.err != nil {
		return nil, r.err
	}
	c.Holder = EncodeAccountID(holderID)
	return c, nil
}
