package sle

import (
	"errors"

	"github.com/solcards/gocardsd/internal/core/ledger/entry"
)

// ListingStatus is the lifecycle state of a listing entry.
type ListingStatus uint8

const (
	ListingNotActive ListingStatus = 0
	ListingActive    ListingStatus = 1
)

// String returns the status name.
func (s ListingStatus) String() string {
	switch s {
	case ListingNotActive:
		return "NotActive"
	case ListingActive:
		return "Active"
	default:
		return "Unknown"
	}
}

// TradeAction identifies what a trade history record describes.
type TradeAction uint8

const (
	TradeList TradeAction = iota
	TradeUpdatePrice
	TradePurchase
	TradeCancel
)

// String returns the action name.
func (a TradeAction) String() string {
	switch a {
	case TradeList:
		return "List"
	case TradeUpdatePrice:
		return "UpdatePrice"
	case TradePurchase:
		return "Purchase"
	case TradeCancel:
		return "Cancel"
	default:
		return "Unknown"
	}
}

// MaxHistory is the maximum number of trade records a listing keeps.
const MaxHistory = 16

// ErrHistoryFull is returned when a listing's trade history is at capacity.
var ErrHistoryFull = errors.New("listing trade history full")

// TradeRecord is one entry in a listing's append-only trade history.
type TradeRecord struct {
	Price     uint64
	Timestamp int64
	Action    TradeAction
}

// Listing is the marketplace state for a card. The entry persists
// across relist cycles, accumulating history until MaxHistory.
type Listing struct {
	Status    ListingStatus
	Seller    string
	Card      [32]byte
	Price     uint64
	CreatedAt int64
	History   []TradeRecord

	PreviousTxnID     [32]byte
	PreviousTxnLgrSeq uint32
}

// AppendHistory appends a trade record, failing when at capacity.
func (l *Listing) AppendHistory(rec TradeRecord) error {
	if len(l.History) >= MaxHistory {
		return ErrHistoryFull
	}
	l.History = append(l.History, rec)
	return nil
}

// SerializeListing encodes a listing to its binary form.
func SerializeListing(l *Listing) ([]byte, error) {
	sellerID, err := DecodeAccountID(l.Seller)
	if err != nil {
		return nil, err
	}
	if len(l.History) > MaxHistory {
		return nil, ErrHistoryFull
	}

	w := newWriter(entry.TypeListing)
	w.uint8(uint8(l.Status))
	w.bytes(sellerID[:])
	w.bytes(l.Card[:])
	w.uint64(l.Price)
	w.int64(l.CreatedAt)
	w.uint16(uint16(len(l.History)))
	for _, rec := range l.History {
		w.uint64(rec.Price)
		w.int64(rec.Timestamp)
		w.uint8(uint8(rec.Action))
	}
	w.bytes(l.PreviousTxnID[:])
	w.uint32(l.PreviousTxnLgrSeq)
	return w.buf, nil
}

// ParseListing decodes a listing from its binary form.
func ParseListing(data []byte) (*Listing, error) {
	r := newReader(data, entry.TypeListing)

	l := &Listing{}
	l.Status = ListingStatus(r.uint8())
	sellerID := r.accountID()
	l.Card = r.hash256()
	l.Price = r.uint64()
	l.CreatedAt = r.int64()

	count := int(r.uint16())
	if count > MaxHistory {
		return nil, ErrHistoryFull
	}
	for i := 0; i < count && r.err == nil; i++ {
		var rec TradeRecord
		rec.Price = r.uint64()
		rec.Timestamp = r.int64()
		rec.Action = TradeAction(r.uint8())
		l.History = append(l.History, rec)
	}
	l.PreviousTxnID = r.hash256()
	l.PreviousTxnLgrSeq = r.uint32()

	if r.err != nil {
		return nil, r.err
	}
	l.Seller = EncodeAccountID(sellerID)
	return l, nil
}
