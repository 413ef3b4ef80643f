package node

import (
	"errors"
	"strconv"
	"time"

	"github.com/solcards/gocardsd/internal/codec/addresscodec"
	"github.com/solcards/gocardsd/internal/core/ledger"
	"github.com/solcards/gocardsd/internal/core/ledger/keylet"
	"github.com/solcards/gocardsd/internal/core/tx/market"
	"github.com/solcards/gocardsd/internal/core/tx/sle"
)

// Query errors
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrCardNotFound    = errors.New("card not found")
	ErrListingNotFound = errors.New("listing not found")
)

// getLedgerForQuery resolves a ledger_index parameter to a ledger.
// Caller holds s.mu (read).
func (s *Service) getLedgerForQuery(ledgerIndex string) (*ledger.Ledger, bool, error) {
	switch ledgerIndex {
	case "current", "":
		if s.openLedger == nil {
			return nil, false, ErrNoOpenLedger
		}
		return s.openLedger, false, nil
	case "closed", "validated":
		if s.closedLedger == nil {
			return nil, false, ErrLedgerNotFound
		}
		return s.closedLedger, true, nil
	default:
		seq, err := strconv.ParseUint(ledgerIndex, 10, 32)
		if err != nil {
			return nil, false, errors.New("invalid ledger_index")
		}
		l, ok := s.ledgerHistory[uint32(seq)]
		if !ok {
			return nil, false, ErrLedgerNotFound
		}
		return l, l.Closed(), nil
	}
}

// AccountInfoResult contains account information from the ledger.
type AccountInfoResult struct {
	Account     string
	Balance     uint64
	Sequence    uint32
	OwnerCount  uint32
	Flags       uint32
	LedgerIndex uint32
	LedgerHash  [32]byte
	Validated   bool
}

// GetAccountInfo retrieves account information from the ledger.
func (s *Service) GetAccountInfo(account string, ledgerIndex string) (*AccountInfoResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	targetLedger, validated, err := s.getLedgerForQuery(ledgerIndex)
	if err != nil {
		return nil, err
	}

	accountID, err := addresscodec.Decode(account)
	if err != nil {
		return nil, errors.New("invalid account address: " + err.Error())
	}

	data, err := targetLedger.Read(keylet.Account(accountID))
	if err != nil {
		return nil, errors.New("failed to read account: " + err.Error())
	}
	if data == nil {
		return nil, ErrAccountNotFound
	}

	accountRoot, err := sle.ParseAccountRoot(data)
	if err != nil {
		return nil, errors.New("failed to parse account data: " + err.Error())
	}

	return &AccountInfoResult{
		Account:     account,
		Balance:     accountRoot.Balance,
		Sequence:    accountRoot.Sequence,
		OwnerCount:  accountRoot.OwnerCount,
		Flags:       accountRoot.Flags,
		LedgerIndex: targetLedger.Sequence(),
		LedgerHash:  targetLedger.Hash(),
		Validated:   validated,
	}, nil
}

// CardInfoResult contains a card's immutable attributes and its
// current holder.
type CardInfoResult struct {
	Card        string
	Creator     string
	Holder      string
	Name        string
	Symbol      string
	URI         string
	Attack      uint8
	Defense     uint8
	Element     string
	Rarity      string
	LedgerIndex uint32
	Validated   bool
}

// GetCardInfo retrieves a card's attributes and custody from the ledger.
func (s *Service) GetCardInfo(card string, ledgerIndex string) (*CardInfoResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	targetLedger, validated, err := s.getLedgerForQuery(ledgerIndex)
	if err != nil {
		return nil, err
	}

	cardID, err := market.ParseCardID(card)
	if err != nil {
		return nil, err
	}

	statsData, err := targetLedger.Read(keylet.Stats(cardID))
	if err != nil {
		return nil, err
	}
	if statsData == nil {
		return nil, ErrCardNotFound
	}
	stats, err := sle.ParseCardStats(statsData)
	if err != nil {
		return nil, err
	}

	result := &CardInfoResult{
		Card:        card,
		Creator:     stats.Creator,
		Name:        stats.Name,
		Symbol:      stats.Symbol,
		URI:         stats.URI,
		Attack:      stats.Attack,
		Defense:     stats.Defense,
		Element:     stats.Element.String(),
		Rarity:      stats.Rarity.String(),
		LedgerIndex: targetLedger.Sequence(),
		Validated:   validated,
	}

	custodyData, err := targetLedger.Read(keylet.Custody(cardID))
	if err != nil {
		return nil, err
	}
	if custodyData != nil {
		custody, err := sle.ParseCustody(custodyData)
		if err != nil {
			return nil, err
		}
		result.Holder = custody.Holder
	}

	return result, nil
}

// ListingTradeRecord is one entry of a listing's on-ledger history.
type ListingTradeRecord struct {
	Action    string
	Price     uint64
	Timestamp int64
}

// ListingInfoResult contains a card's marketplace listing.
type ListingInfoResult struct {
	Card        string
	Status      string
	Seller      string
	Price       uint64
	CreatedAt   int64
	History     []ListingTradeRecord
	LedgerIndex uint32
	Validated   bool
}

// GetListingInfo retrieves a card's listing from the ledger.
func (s *Service) GetListingInfo(card string, ledgerIndex string) (*ListingInfoResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	targetLedger, validated, err := s.getLedgerForQuery(ledgerIndex)
	if err != nil {
		return nil, err
	}

	cardID, err := market.ParseCardID(card)
	if err != nil {
		return nil, err
	}

	data, err := targetLedger.Read(keylet.Listing(cardID))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrListingNotFound
	}

	listing, err := sle.ParseListing(data)
	if err != nil {
		return nil, err
	}

	history := make([]ListingTradeRecord, 0, len(listing.History))
	for _, rec := range listing.History {
		history = append(history, ListingTradeRecord{
			Action:    rec.Action.String(),
			Price:     rec.Price,
			Timestamp: rec.Timestamp,
		})
	}

	return &ListingInfoResult{
		Card:        card,
		Status:      listing.Status.String(),
		Seller:      listing.Seller,
		Price:       listing.Price,
		CreatedAt:   listing.CreatedAt,
		History:     history,
		LedgerIndex: targetLedger.Sequence(),
		Validated:   validated,
	}, nil
}

// LedgerInfo contains information about a ledger.
type LedgerInfo struct {
	Sequence      uint32
	Hash          [32]byte
	ParentHash    [32]byte
	StateHash     [32]byte
	CloseTime     time.Time
	TotalLamports uint64
	Closed        bool
	EntryCount    int
}

// GetLedgerInfo returns information about a specific ledger.
func (s *Service) GetLedgerInfo(seq uint32) (*LedgerInfo, error) {
	l, err := s.LedgerBySequence(seq)
	if err != nil {
		return nil, err
	}

	return &LedgerInfo{
		Sequence:      l.Sequence(),
		Hash:          l.Hash(),
		ParentHash:    l.Header.ParentHash,
		StateHash:     l.Header.StateHash,
		CloseTime:     l.Header.CloseTime,
		TotalLamports: l.TotalLamports(),
		Closed:        l.Closed(),
		EntryCount:    l.EntryCount(),
	}, nil
}
