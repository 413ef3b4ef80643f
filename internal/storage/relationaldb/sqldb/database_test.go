package sqldb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solcards/gocardsd/internal/storage/relationaldb"
)

func newTestDatabase(t *testing.T) *SQLDatabase {
	t.Helper()

	cfg := relationaldb.DefaultConfig(filepath.Join(t.TempDir(), "trades.db"))
	db, err := NewDatabase(cfg)
	require.NoError(t, err)
	require.NoError(t, db.Open(context.Background()))
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertAndQueryTrades(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	card := "AB00000000000000000000000000000000000000000000000000000000000001"
	rows := []relationaldb.TradeRow{
		{Card: card, Action: "List", Actor: "alice", Price: 1_000_000_000, CloseTime: 100, LedgerSeq: 3, TxnIndex: 0, TxHash: "01"},
		{Card: card, Action: "UpdatePrice", Actor: "alice", Price: 1_500_000_000, CloseTime: 100, LedgerSeq: 3, TxnIndex: 1, TxHash: "02"},
		{Card: card, Action: "Purchase", Actor: "bob", Price: 1_500_000_000, CloseTime: 120, LedgerSeq: 5, TxnIndex: 0, TxHash: "03"},
	}
	for _, row := range rows {
		require.NoError(t, db.InsertTrade(ctx, row))
	}

	got, err := db.CardTrades(ctx, card, 0)
	require.NoError(t, err)
	require.Equal(t, rows, got)

	count, err := db.TradeCount(ctx, card)
	require.NoError(t, err)
	require.Equal(t, int64(3), count)
}

func TestCardTradesLimit(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	card := "CD00000000000000000000000000000000000000000000000000000000000002"
	for i := 0; i < 5; i++ {
		require.NoError(t, db.InsertTrade(ctx, relationaldb.TradeRow{
			Card:      card,
			Action:    "UpdatePrice",
			Actor:     "alice",
			Price:     uint64(100 + i),
			CloseTime: int64(100 + i),
			LedgerSeq: uint32(3 + i),
			TxHash:    "0" + string(rune('1'+i)),
		}))
	}

	got, err := db.CardTrades(ctx, card, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, uint64(100), got[0].Price)
}

func TestUnknownCardHasNoTrades(t *testing.T) {
	db := newTestDatabase(t)

	got, err := db.CardTrades(context.Background(), "EF00", 0)
	require.NoError(t, err)
	require.Empty(t, got)

	count, err := db.TradeCount(context.Background(), "EF00")
	require.NoError(t, err)
	require.Zero(t, count)
}
