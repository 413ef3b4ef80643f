package sle

import (
	"github.com/solcards/gocardsd/internal/core/ledger/entry"
)

// AccountRoot represents an account in the ledger
type AccountRoot struct {
	Account           string
	Balance           uint64
	Sequence          uint32
	OwnerCount        uint32
	Flags             uint32
	PreviousTxnID     [32]byte
	PreviousTxnLgrSeq uint32
}

// NewAccountRoot creates an account root with the starting sequence.
func NewAccountRoot(address string, balance uint64) *AccountRoot {
	return &AccountRoot{
		Account:  address,
		Balance:  balance,
		Sequence: 1,
	}
}

// SerializeAccountRoot encodes an account root to its binary form.
func SerializeAccountRoot(a *AccountRoot) ([]byte, error) {
	accountID, err := DecodeAccountID(a.Account)
	if err != nil {
		return nil, err
	}

	w := newWriter(entry.TypeAccountRoot)
	w.bytes(accountID[:])
	w.uint64(a.Balance)
	w.uint32(a.Sequence)
	w.uint32(a.OwnerCount)
	w.uint32(a.Flags)
	w.bytes(a.PreviousTxnID[:])
	w.uint32(a.PreviousTxnLgrSeq)
	return w.buf, nil
}

// ParseAccountRoot decodes an account root from its binary form.
func ParseAccountRoot(data []byte) (*AccountRoot, error) {
	r := newReader(data, entry.TypeAccountRoot)

	a := &AccountRoot{}
	accountID := r.accountID()
	a.Balance = r.uint64()
	a.Sequence = r.uint32()
	a.OwnerCount = r.uint32()
	a.Flags = r.uint32()
	a.PreviousTxnID = r.hash256()
	a.PreviousTxnLgrSeq = r.uint32()

	if r.err != nil {
		return nil, r.err
	}
	a.Account = EncodeAccountID(accountID)
	return a, nil
}
