package market

import (
	"github.com/solcards/gocardsd/internal/core/ledger/keylet"
	"github.com/solcards/gocardsd/internal/core/tx"
	"github.com/solcards/gocardsd/internal/core/tx/sle"
)

// readCardStats loads a card's stats entry, returning nil when absent.
func readCardStats(view tx.LedgerView, cardID [32]byte) (*sle.CardStats, error) {
	data, err := view.Read(keylet.Stats(cardID))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return sle.ParseCardStats(data)
}

// readCustody loads a card's custody entry, returning nil when absent.
func readCustody(view tx.LedgerView, cardID [32]byte) (*sle.Custody, error) {
	data, err := view.Read(keylet.Custody(cardID))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return sle.ParseCustody(data)
}

// readListing loads a card's listing entry, returning nil when absent.
func readListing(view tx.LedgerView, cardID [32]byte) (*sle.Listing, error) {
	data, err := view.Read(keylet.Listing(cardID))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return sle.ParseListing(data)
}

// writeCustody serializes and writes a custody entry, inserting or
// updating depending on insert.
func writeCustody(ctx *tx.ApplyContext, cardID [32]byte, c *sle.Custody, insert bool) tx.Result {
	c.PreviousTxnID = ctx.TxHash
	c.PreviousTxnLgrSeq = ctx.Config.LedgerSequence

	data, err := sle.SerializeCustody(c)
	if err != nil {
		return tx.TefINTERNAL
	}

	k := keylet.Custody(cardID)
	if insert {
		err = ctx.View.Insert(k, data)
	} else {
		err = ctx.View.Update(k, data)
	}
	if err != nil {
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}

// writeListing serializes and writes a listing entry, inserting or
// updating depending on insert.
func writeListing(ctx *tx.ApplyContext, cardID [32]byte, l *sle.Listing, insert bool) tx.Result {
	l.PreviousTxnID = ctx.TxHash
	l.PreviousTxnLgrSeq = ctx.Config.LedgerSequence

	data, err := sle.SerializeListing(l)
	if err != nil {
		return tx.TefINTERNAL
	}

	k := keylet.Listing(cardID)
	if insert {
		err = ctx.View.Insert(k, data)
	} else {
		err = ctx.View.Update(k, data)
	}
	if err != nil {
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}
