package node

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solcards/gocardsd/internal/codec/addresscodec"
	"github.com/solcards/gocardsd/internal/core/ledger/genesis"
	"github.com/solcards/gocardsd/internal/core/tx"
	"github.com/solcards/gocardsd/internal/core/tx/market"
	"github.com/solcards/gocardsd/internal/core/tx/sle"
	"github.com/solcards/gocardsd/internal/storage/keyValueDb"
	"github.com/solcards/gocardsd/internal/storage/keyValueDb/memory"
	"github.com/solcards/gocardsd/internal/storage/nodestore"
	"github.com/solcards/gocardsd/internal/storage/relationaldb"
	"github.com/solcards/gocardsd/internal/storage/relationaldb/sqldb"
)

var errBackendDown = errors.New("backend down")

// flakyBackend fails batch writes while tripped, then recovers.
type flakyBackend struct {
	*memory.DB
	failing bool
}

func (f *flakyBackend) Batch(ctx context.Context, ops []keyValueDb.BatchOperation) error {
	if f.failing {
		return errBackendDown
	}
	return f.DB.Batch(ctx, ops)
}

// flakyTradeIndex lets a fixed number of inserts through, fails the
// next one, then recovers.
type flakyTradeIndex struct {
	relationaldb.Database
	allowed int
	tripped bool
}

func (f *flakyTradeIndex) InsertTrade(ctx context.Context, row relationaldb.TradeRow) error {
	if !f.tripped {
		if f.allowed == 0 {
			f.tripped = true
			return errBackendDown
		}
		f.allowed--
	}
	return f.Database.InsertTrade(ctx, row)
}

func newTestService(t *testing.T, store *nodestore.Store, trades relationaldb.Database) *Service {
	t.Helper()

	cfg := DefaultConfig()
	cfg.NodeStore = store
	cfg.TradeIndex = trades

	s := New(cfg)
	require.NoError(t, s.Start())
	return s
}

func newTradeIndex(t *testing.T) relationaldb.Database {
	t.Helper()

	db, err := sqldb.NewDatabase(relationaldb.DefaultConfig(filepath.Join(t.TempDir(), "trades.db")))
	require.NoError(t, err)
	require.NoError(t, db.Open(context.Background()))
	t.Cleanup(func() { db.Close() })
	return db
}

func feeString() string {
	return strconv.FormatUint(genesis.DefaultConfig().BaseFee, 10)
}

func submitOK(t *testing.T, s *Service, txn tx.Transaction) *SubmitResult {
	t.Helper()

	res, err := s.Submit(txn)
	require.NoError(t, err)
	require.Equal(t, tx.TesSUCCESS, res.Result, res.Message)
	return res
}

func newPayment(from, to string, amount uint64, seq uint32) *tx.Payment {
	p := &tx.Payment{
		BaseTx:      *tx.NewBaseTx(tx.TypePayment, from),
		Amount:      strconv.FormatUint(amount, 10),
		Destination: to,
	}
	p.Fee = feeString()
	p.SetSequence(seq)
	return p
}

func TestStartAndAccept(t *testing.T) {
	s := newTestService(t, nil, nil)

	require.Equal(t, uint32(2), s.CurrentLedgerIndex())
	require.Equal(t, uint32(1), s.ClosedLedgerIndex())

	seq, err := s.AcceptLedger()
	require.NoError(t, err)
	require.Equal(t, uint32(2), seq)
	require.Equal(t, uint32(3), s.CurrentLedgerIndex())

	closed, err := s.LedgerBySequence(2)
	require.NoError(t, err)
	require.True(t, closed.Closed())
	require.Equal(t, s.ClosedLedger().Hash(), closed.Hash())
}

func TestAcceptRequiresStandalone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Standalone = false

	s := New(cfg)
	require.NoError(t, s.Start())

	_, err := s.AcceptLedger()
	require.ErrorIs(t, err, ErrNotStandalone)
}

func TestSubmitPayment(t *testing.T) {
	s := newTestService(t, nil, nil)

	master := s.MasterAccount()
	dest := addresscodec.Encode([20]byte{0x42})

	submitOK(t, s, newPayment(master, dest, 10_000_000_000, 1))

	// Visible on the open ledger before accept.
	info, err := s.GetAccountInfo(dest, "current")
	require.NoError(t, err)
	require.Equal(t, uint64(10_000_000_000), info.Balance)
	require.False(t, info.Validated)

	// Not yet on a closed ledger.
	_, err = s.GetAccountInfo(dest, "closed")
	require.ErrorIs(t, err, ErrAccountNotFound)

	_, err = s.AcceptLedger()
	require.NoError(t, err)

	info, err = s.GetAccountInfo(dest, "closed")
	require.NoError(t, err)
	require.Equal(t, uint64(10_000_000_000), info.Balance)
	require.True(t, info.Validated)
}

func TestPersistenceRoundTrip(t *testing.T) {
	store, err := nodestore.New(memory.New(), nodestore.DefaultConfig())
	require.NoError(t, err)

	s := newTestService(t, store, nil)

	master := s.MasterAccount()
	dest := addresscodec.Encode([20]byte{0x07})
	submitOK(t, s, newPayment(master, dest, 5_000_000_000, 1))

	_, err = s.AcceptLedger()
	require.NoError(t, err)
	want := s.ClosedLedger()

	// A fresh service over the same store has no in-memory copy of
	// ledger 2 and must load it back from the snapshot.
	other := newTestService(t, store, nil)
	loaded, err := other.loadLedger(2)
	require.NoError(t, err)
	require.Equal(t, want.Hash(), loaded.Hash())
	require.Equal(t, want.EntryCount(), loaded.EntryCount())

	_, err = other.loadLedger(99)
	require.ErrorIs(t, err, ErrLedgerNotFound)
}

// TestAcceptRetryAfterStorageError drives AcceptLedger into a
// persistence failure and checks that the node recovers: submissions
// report the pending accept instead of failing opaquely, and a retried
// accept picks up the sealed ledger and finishes the job.
func TestAcceptRetryAfterStorageError(t *testing.T) {
	backend := &flakyBackend{DB: memory.New()}
	store, err := nodestore.New(backend, nodestore.DefaultConfig())
	require.NoError(t, err)

	s := newTestService(t, store, nil)

	master := s.MasterAccount()
	dest := addresscodec.Encode([20]byte{0x11})
	submitOK(t, s, newPayment(master, dest, 3_000_000_000, 1))

	backend.failing = true
	_, err = s.AcceptLedger()
	require.ErrorIs(t, err, errBackendDown)

	// The ledger is sealed but the node is not wedged.
	require.Equal(t, uint32(2), s.CurrentLedgerIndex())
	_, err = s.Submit(newPayment(master, dest, 1_000_000_000, 2))
	require.ErrorIs(t, err, ErrAcceptPending)

	backend.failing = false
	seq, err := s.AcceptLedger()
	require.NoError(t, err)
	require.Equal(t, uint32(2), seq)
	require.Equal(t, uint32(3), s.CurrentLedgerIndex())

	// The retried accept persisted the snapshot.
	loaded, err := s.loadLedger(2)
	require.NoError(t, err)
	require.Equal(t, s.ClosedLedger().Hash(), loaded.Hash())

	// Normal service resumes on the new open ledger.
	submitOK(t, s, newPayment(master, dest, 1_000_000_000, 2))
}

// TestTradeFlushRetryNoDuplicates fails an accept midway through the
// trade flush and checks that the retry indexes each row exactly once.
func TestTradeFlushRetryNoDuplicates(t *testing.T) {
	trades := &flakyTradeIndex{Database: newTradeIndex(t), allowed: 1}
	s := newTestService(t, nil, trades)

	master := s.MasterAccount()
	masterID, err := addresscodec.Decode(master)
	require.NoError(t, err)
	card := market.FormatCardID(market.DeriveCardID(masterID, 1))

	mint := &market.CardMint{
		BaseTx:  *tx.NewBaseTx(tx.TypeCardMint, master),
		Name:    "Hide the Pain",
		Symbol:  "HAROLD",
		URI:     "https://cards.example/harold.json",
		Attack:  42,
		Defense: 77,
		Element: uint8(sle.ElementCursed),
		Rarity:  uint8(sle.RarityEpic),
	}
	mint.Fee = feeString()
	mint.SetSequence(1)
	submitOK(t, s, mint)

	list := &market.CardList{
		BaseTx: *tx.NewBaseTx(tx.TypeCardList, master),
		Card:   card,
		Price:  "4000000000",
	}
	list.Fee = feeString()
	list.SetSequence(2)
	submitOK(t, s, list)

	// First accept indexes the mint row, then dies on the list row.
	_, err = s.AcceptLedger()
	require.ErrorIs(t, err, errBackendDown)

	_, err = s.AcceptLedger()
	require.NoError(t, err)

	rows, err := s.CardTrades(context.Background(), card, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Mint", rows[0].Action)
	require.Equal(t, "List", rows[1].Action)
	require.Equal(t, uint64(4_000_000_000), rows[1].Price)
}

func TestTradeIndexing(t *testing.T) {
	trades := newTradeIndex(t)
	s := newTestService(t, nil, trades)

	master := s.MasterAccount()
	buyer := addresscodec.Encode([20]byte{0x09, 0x01})
	submitOK(t, s, newPayment(master, buyer, 100_000_000_000, 1))

	masterID, err := addresscodec.Decode(master)
	require.NoError(t, err)
	cardID := market.DeriveCardID(masterID, 2)
	card := market.FormatCardID(cardID)

	mint := &market.CardMint{
		BaseTx:  *tx.NewBaseTx(tx.TypeCardMint, master),
		Name:    "Grumpy Cat",
		Symbol:  "GRMP",
		URI:     "https://cards.example/grumpy.json",
		Attack:  70,
		Defense: 55,
		Element: uint8(sle.ElementDank),
		Rarity:  uint8(sle.RarityRare),
	}
	mint.Fee = feeString()
	mint.SetSequence(2)
	submitOK(t, s, mint)

	list := &market.CardList{
		BaseTx: *tx.NewBaseTx(tx.TypeCardList, master),
		Card:   card,
		Price:  "2000000000",
	}
	list.Fee = feeString()
	list.SetSequence(3)
	submitOK(t, s, list)

	purchase := &market.CardPurchase{
		BaseTx: *tx.NewBaseTx(tx.TypeCardPurchase, buyer),
		Card:   card,
	}
	purchase.Fee = feeString()
	purchase.SetSequence(1)
	submitOK(t, s, purchase)

	// Nothing indexed until the ledger closes.
	rows, err := s.CardTrades(context.Background(), card, 0)
	require.NoError(t, err)
	require.Empty(t, rows)

	_, err = s.AcceptLedger()
	require.NoError(t, err)

	rows, err = s.CardTrades(context.Background(), card, 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.Equal(t, "Mint", rows[0].Action)
	require.Equal(t, master, rows[0].Actor)

	require.Equal(t, "List", rows[1].Action)
	require.Equal(t, uint64(2_000_000_000), rows[1].Price)

	require.Equal(t, "Purchase", rows[2].Action)
	require.Equal(t, buyer, rows[2].Actor)
	require.Equal(t, uint64(2_000_000_000), rows[2].Price)

	for i, row := range rows {
		require.Equal(t, uint32(2), row.LedgerSeq)
		require.Equal(t, uint32(i), row.TxnIndex)
		require.NotEmpty(t, row.TxHash)
		require.NotZero(t, row.CloseTime)
	}
}

func TestGetCardAndListingInfo(t *testing.T) {
	s := newTestService(t, nil, nil)

	master := s.MasterAccount()
	masterID, err := addresscodec.Decode(master)
	require.NoError(t, err)
	cardID := market.DeriveCardID(masterID, 1)
	card := market.FormatCardID(cardID)

	mint := &market.CardMint{
		BaseTx:  *tx.NewBaseTx(tx.TypeCardMint, master),
		Name:    "Distracted Boyfriend",
		Symbol:  "DSTR",
		URI:     "https://cards.example/distracted.json",
		Attack:  61,
		Defense: 48,
		Element: uint8(sle.ElementWholesome),
		Rarity:  uint8(sle.RarityEpic),
	}
	mint.Fee = feeString()
	mint.SetSequence(1)
	submitOK(t, s, mint)

	info, err := s.GetCardInfo(card, "current")
	require.NoError(t, err)
	require.Equal(t, "Distracted Boyfriend", info.Name)
	require.Equal(t, master, info.Creator)
	require.Equal(t, master, info.Holder)
	require.Equal(t, uint8(61), info.Attack)

	_, err = s.GetListingInfo(card, "current")
	require.ErrorIs(t, err, ErrListingNotFound)

	list := &market.CardList{
		BaseTx: *tx.NewBaseTx(tx.TypeCardList, master),
		Card:   card,
		Price:  "1500000000",
	}
	list.Fee = feeString()
	list.SetSequence(2)
	submitOK(t, s, list)

	listing, err := s.GetListingInfo(card, "current")
	require.NoError(t, err)
	require.Equal(t, "Active", listing.Status)
	require.Equal(t, master, listing.Seller)
	require.Equal(t, uint64(1_500_000_000), listing.Price)
	require.Len(t, listing.History, 1)
	require.Equal(t, "List", listing.History[0].Action)
}

func TestServerInfo(t *testing.T) {
	s := newTestService(t, nil, nil)

	info := s.GetServerInfo()
	require.True(t, info.Standalone)
	require.Equal(t, uint32(2), info.OpenLedgerSeq)
	require.Equal(t, uint32(1), info.ClosedLedgerSeq)
	require.Equal(t, "1", info.CompleteLedgers)
	require.Equal(t, genesis.DefaultConfig().BaseFee, info.BaseFee)

	_, err := s.AcceptLedger()
	require.NoError(t, err)

	info = s.GetServerInfo()
	require.Equal(t, "1-2", info.CompleteLedgers)
}
