// Package relationaldb indexes market activity in a SQL database so
// that the full trade history of a card survives the on-ledger history
// cap and stays queryable.
package relationaldb

import (
	"context"
)

// TradeRow is one recorded market event for a card.
type TradeRow struct {
	// Card is the card ID as uppercase hex
	Card string `json:"card"`

	// Action is the recorded trade action ("Mint", "List",
	// "UpdatePrice", "Purchase", "Cancel")
	Action string `json:"action"`

	// Actor is the address that submitted the transaction
	Actor string `json:"actor"`

	// Price in lamports
	Price uint64 `json:"price"`

	// CloseTime is the close time of the ledger that applied the
	// transaction, in Unix seconds
	CloseTime int64 `json:"close_time"`

	// LedgerSeq is the sequence of that ledger
	LedgerSeq uint32 `json:"ledger_seq"`

	// TxnIndex orders trades within one ledger
	TxnIndex uint32 `json:"txn_index"`

	// TxHash is the applying transaction's hash as uppercase hex
	TxHash string `json:"tx_hash"`
}

// Database is the trade index store.
type Database interface {
	// Open opens the connection and initializes the schema.
	Open(ctx context.Context) error

	// InsertTrade records one trade row.
	InsertTrade(ctx context.Context, row TradeRow) error

	// CardTrades returns trades for a card, oldest first. A limit of 0
	// means no limit.
	CardTrades(ctx context.Context, card string, limit int) ([]TradeRow, error)

	// TradeCount returns the number of recorded trades for a card.
	TradeCount(ctx context.Context, card string) (int64, error)

	// Close closes the connection.
	Close() error
}
