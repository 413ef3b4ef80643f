package node

import (
	"context"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/solcards/gocardsd/internal/core/ledger/keylet"
	"github.com/solcards/gocardsd/internal/core/tx"
	"github.com/solcards/gocardsd/internal/core/tx/market"
	"github.com/solcards/gocardsd/internal/core/tx/sle"
	"github.com/solcards/gocardsd/internal/storage/relationaldb"
)

// Trade index actions. List, UpdatePrice, Purchase and Cancel match
// the on-ledger history record names; Mint is index-only.
const (
	tradeActionMint     = "Mint"
	tradeActionList     = "List"
	tradeActionUpdate   = "UpdatePrice"
	tradeActionCancel   = "Cancel"
	tradeActionPurchase = "Purchase"
)

// stageTrade records a successfully applied marketplace transaction
// against the open ledger. Rows reach the trade index only when the
// ledger closes; transactions in a discarded ledger leave no trace.
// Caller holds s.mu.
func (s *Service) stageTrade(transaction tx.Transaction, txHash [32]byte) {
	common := transaction.GetCommon()

	row := relationaldb.TradeRow{
		Actor:     common.Account,
		LedgerSeq: s.openLedger.Sequence(),
		TxnIndex:  uint32(len(s.pendingTrades)),
		TxHash:    strings.ToUpper(hex.EncodeToString(txHash[:])),
	}

	switch t := transaction.(type) {
	case *market.CardMint:
		accountID, err := sle.DecodeAccountID(common.Account)
		if err != nil {
			return
		}
		cardID := market.DeriveCardID(accountID, common.GetSequence())
		row.Card = market.FormatCardID(cardID)
		row.Action = tradeActionMint

	case *market.CardList:
		row.Card = t.Card
		row.Action = tradeActionList
		row.Price, _ = strconv.ParseUint(t.Price, 10, 64)

	case *market.CardListingUpdate:
		row.Card = t.Card
		row.Action = tradeActionUpdate
		row.Price, _ = strconv.ParseUint(t.Price, 10, 64)

	case *market.CardListingCancel:
		row.Card = t.Card
		row.Action = tradeActionCancel
		row.Price = s.listingPrice(t.Card)

	case *market.CardPurchase:
		row.Card = t.Card
		row.Action = tradeActionPurchase
		row.Price = s.listingPrice(t.Card)

	default:
		// Payments are not marketplace activity.
		return
	}

	s.pendingTrades = append(s.pendingTrades, row)
}

// listingPrice reads the current price of a card's listing from the
// open ledger. Returns 0 when the listing cannot be read.
func (s *Service) listingPrice(card string) uint64 {
	cardID, err := market.ParseCardID(card)
	if err != nil {
		return 0
	}
	data, err := s.openLedger.Read(keylet.Listing(cardID))
	if err != nil || data == nil {
		return 0
	}
	listing, err := sle.ParseListing(data)
	if err != nil {
		return 0
	}
	return listing.Price
}

// flushTrades writes staged rows to the trade index with the final
// close time of the ledger they were applied in. Rows are consumed as
// they land, so a flush that fails partway can be retried without
// inserting anything twice. Caller holds s.mu.
func (s *Service) flushTrades(closeTime time.Time) error {
	ctx := context.Background()
	for len(s.pendingTrades) > 0 {
		row := s.pendingTrades[0]
		row.CloseTime = closeTime.Unix()
		if err := s.tradeIndex.InsertTrade(ctx, row); err != nil {
			return err
		}
		s.pendingTrades = s.pendingTrades[1:]
	}
	return nil
}

// CardTrades returns the indexed trade history for a card, oldest
// first. The on-ledger history caps out; the index does not.
func (s *Service) CardTrades(ctx context.Context, card string, limit int) ([]relationaldb.TradeRow, error) {
	if s.tradeIndex == nil {
		return nil, errors.New("trade index not configured")
	}
	return s.tradeIndex.CardTrades(ctx, card, limit)
}
