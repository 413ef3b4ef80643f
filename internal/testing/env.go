// Package testing provides a self-contained ledger environment for
// transaction tests: deterministic accounts, a manual clock, funding
// helpers and submission with automatic sequence fill.
package testing

import (
	"strconv"
	"testing"
	"time"

	"github.com/solcards/gocardsd/internal/core/lamport"
	"github.com/solcards/gocardsd/internal/core/ledger"
	"github.com/solcards/gocardsd/internal/core/ledger/genesis"
	"github.com/solcards/gocardsd/internal/core/ledger/keylet"
	"github.com/solcards/gocardsd/internal/core/tx"
	"github.com/solcards/gocardsd/internal/core/tx/market"
	"github.com/solcards/gocardsd/internal/core/tx/sle"
)

// TestEnv manages a test ledger environment for transaction testing.
// It provides a simplified interface for creating accounts, funding them,
// submitting transactions, and verifying results.
type TestEnv struct {
	t        *testing.T
	ledger   *ledger.Ledger
	clock    *ManualClock
	accounts map[string]*Account

	// Genesis ledger reference
	genesisLedger *ledger.Ledger

	// Closed ledger hashes by sequence
	closedHashes map[uint32][32]byte

	// Fees configuration
	baseFee          uint64
	reserveBase      uint64
	reserveIncrement uint64
}

// NewTestEnv creates a new test environment with a genesis ledger.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	return NewTestEnvWithConfig(t, genesis.DefaultConfig())
}

// NewTestEnvWithConfig creates a new test environment with custom
// genesis configuration.
func NewTestEnvWithConfig(t *testing.T, cfg genesis.Config) *TestEnv {
	t.Helper()

	// Keep fees small in tests so tight balance arithmetic stays readable
	cfg.BaseFee = 10

	genesisLedger, err := ledger.NewGenesis(cfg)
	if err != nil {
		t.Fatalf("Failed to create genesis ledger: %v", err)
	}

	openLedger, err := ledger.NewOpen(genesisLedger)
	if err != nil {
		t.Fatalf("Failed to create open ledger: %v", err)
	}

	env := &TestEnv{
		t:                t,
		ledger:           openLedger,
		clock:            NewManualClock(),
		accounts:         make(map[string]*Account),
		genesisLedger:    genesisLedger,
		closedHashes:     make(map[uint32][32]byte),
		baseFee:          cfg.BaseFee,
		reserveBase:      cfg.ReserveBase,
		reserveIncrement: cfg.ReserveIncrement,
	}

	// Register master account
	master := MasterAccount()
	env.accounts[master.Name] = master

	return env
}

// SOL converts whole SOL to lamports, for readable test amounts.
func SOL(n uint64) uint64 {
	return n * uint64(lamport.PerSOL)
}

// FormatAmount renders a lamport amount as the decimal string used in
// transaction fields.
func FormatAmount(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// Fund funds the specified accounts from the master account.
// Each account receives a default of 1000 SOL.
func (e *TestEnv) Fund(accounts ...*Account) {
	e.t.Helper()

	for _, acc := range accounts {
		e.FundAmount(acc, SOL(1000))
	}
}

// FundAmount funds an account with a specific amount via a payment from
// the master account, creating the account in the ledger.
func (e *TestEnv) FundAmount(acc *Account, amount uint64) {
	e.t.Helper()

	// Register account
	e.accounts[acc.Name] = acc

	master := e.accounts["master"]
	if master == nil {
		e.t.Fatal("Master account not found")
	}

	seq := e.Seq(master)
	payment := &tx.Payment{
		BaseTx:      *tx.NewBaseTx(tx.TypePayment, master.Address),
		Amount:      formatUint64(amount),
		Destination: acc.Address,
	}
	payment.Fee = formatUint64(e.baseFee)
	payment.Sequence = &seq

	result := e.Submit(payment)
	if !result.Success {
		e.t.Fatalf("Failed to fund account %s: %s", acc.Name, result.Code)
	}
}

// Pay sends lamports from master to an already-funded account. Useful
// for topping an account up to meet reserve requirements.
func (e *TestEnv) Pay(acc *Account, amount uint64) {
	e.t.Helper()

	master := e.accounts["master"]
	if master == nil {
		e.t.Fatal("Master account not found")
	}

	seq := e.Seq(master)
	p := &tx.Payment{
		BaseTx:      *tx.NewBaseTx(tx.TypePayment, master.Address),
		Amount:      formatUint64(amount),
		Destination: acc.Address,
	}
	p.Fee = formatUint64(e.baseFee)
	p.Sequence = &seq

	result := e.Submit(p)
	if !result.Success {
		e.t.Fatalf("Failed to pay %d lamports to %s: %s", amount, acc.Name, result.Code)
	}
}

// Close closes the current ledger and advances to a new one.
// This is equivalent to "ledger_accept" on a standalone node.
func (e *TestEnv) Close() {
	e.t.Helper()

	// Advance time
	e.clock.Advance(10 * time.Second)

	if err := e.ledger.CloseAt(e.clock.Now()); err != nil {
		e.t.Fatalf("Failed to close ledger: %v", err)
	}
	e.closedHashes[e.ledger.Sequence()] = e.ledger.Hash()

	newLedger, err := ledger.NewOpen(e.ledger)
	if err != nil {
		e.t.Fatalf("Failed to create new ledger: %v", err)
	}
	e.ledger = newLedger
}

// CloseAt closes ledgers until the open ledger reaches the target
// sequence. If already at or past target, does nothing.
func (e *TestEnv) CloseAt(targetSeq uint32) {
	e.t.Helper()
	for e.ledger.Sequence() < targetSeq {
		e.Close()
	}
}

// Submit submits a transaction to the current open ledger. If the
// transaction has no sequence number, it is auto-filled from the
// account's current sequence; an unset fee becomes the base fee.
// Signature verification is skipped.
func (e *TestEnv) Submit(transaction any) TxResult {
	e.t.Helper()

	txn, ok := transaction.(tx.Transaction)
	if !ok {
		e.t.Fatalf("Transaction does not implement tx.Transaction interface")
		return TxResult{Code: temINVALID, Success: false, Message: "Invalid transaction type"}
	}

	e.autoFill(txn)

	engine := tx.NewEngine(e.ledger, e.engineConfig(true))
	applyResult := engine.Apply(txn)

	// Success is true only for tesSUCCESS; tec codes are applied
	// (fee claimed) but the operation failed.
	return TxResult{
		Code:    applyResult.Result.String(),
		Success: applyResult.Result.IsSuccess(),
		Message: applyResult.Message,
	}
}

// SubmitSigned signs the transaction with the keys of its source
// account and submits it with full signature verification.
func (e *TestEnv) SubmitSigned(transaction any) TxResult {
	e.t.Helper()

	txn, ok := transaction.(tx.Transaction)
	if !ok {
		e.t.Fatalf("Transaction does not implement tx.Transaction interface")
		return TxResult{Code: temINVALID, Success: false, Message: "Invalid transaction type"}
	}

	signer := e.findAccountByAddress(txn.GetCommon().Account)
	if signer == nil {
		e.t.Fatalf("No registered account for address %s", txn.GetCommon().Account)
	}
	return e.SubmitSignedWith(txn, signer)
}

// SubmitSignedWith signs the transaction with the given account's keys
// and submits it with full signature verification.
func (e *TestEnv) SubmitSignedWith(transaction any, signer *Account) TxResult {
	e.t.Helper()

	txn, ok := transaction.(tx.Transaction)
	if !ok {
		e.t.Fatalf("Transaction does not implement tx.Transaction interface")
		return TxResult{Code: temINVALID, Success: false, Message: "Invalid transaction type"}
	}

	e.autoFill(txn)
	if err := tx.Sign(txn, signer.PrivateKey, signer.PublicKey); err != nil {
		e.t.Fatalf("Failed to sign transaction: %v", err)
	}

	engine := tx.NewEngine(e.ledger, e.engineConfig(false))
	applyResult := engine.Apply(txn)

	return TxResult{
		Code:    applyResult.Result.String(),
		Success: applyResult.Result.IsSuccess(),
		Message: applyResult.Message,
	}
}

// autoFill fills in Sequence and Fee when unset.
func (e *TestEnv) autoFill(txn tx.Transaction) {
	e.t.Helper()

	common := txn.GetCommon()
	if common.Fee == "" {
		common.Fee = formatUint64(e.baseFee)
	}
	if common.Sequence != nil {
		return
	}

	acc := e.findAccountByAddress(common.Account)
	if acc == nil {
		e.t.Fatalf("No registered account for address %s", common.Account)
		return
	}
	seq := e.Seq(acc)
	common.Sequence = &seq
}

func (e *TestEnv) engineConfig(skipSignatures bool) tx.EngineConfig {
	return tx.EngineConfig{
		BaseFee:                   e.baseFee,
		ReserveBase:               e.reserveBase,
		ReserveIncrement:          e.reserveIncrement,
		LedgerSequence:            e.ledger.Sequence(),
		CloseTime:                 e.clock.Now().Unix(),
		SkipSignatureVerification: skipSignatures,
		Standalone:                true,
		MaxFee:                    tx.DefaultMaxFee,
	}
}

// Balance returns the lamport balance of an account.
func (e *TestEnv) Balance(acc *Account) uint64 {
	e.t.Helper()

	root := e.accountRoot(acc)
	if root == nil {
		return 0
	}
	return root.Balance
}

// Seq returns the current sequence number for an account.
func (e *TestEnv) Seq(acc *Account) uint32 {
	e.t.Helper()

	root := e.accountRoot(acc)
	if root == nil {
		return 1 // Default sequence for new accounts
	}
	return root.Sequence
}

// OwnerCount returns the number of ledger objects owned by an account.
func (e *TestEnv) OwnerCount(acc *Account) uint32 {
	e.t.Helper()

	root := e.accountRoot(acc)
	if root == nil {
		return 0
	}
	return root.OwnerCount
}

func (e *TestEnv) accountRoot(acc *Account) *sle.AccountRoot {
	e.t.Helper()

	data, err := e.ledger.Read(keylet.Account(acc.ID))
	if err != nil {
		e.t.Fatalf("Failed to read account: %v", err)
		return nil
	}
	if data == nil {
		return nil
	}

	root, err := sle.ParseAccountRoot(data)
	if err != nil {
		e.t.Fatalf("Failed to parse account data: %v", err)
		return nil
	}
	return root
}

// Exists checks if an account exists in the ledger.
func (e *TestEnv) Exists(acc *Account) bool {
	e.t.Helper()

	exists, err := e.ledger.Exists(keylet.Account(acc.ID))
	if err != nil {
		e.t.Fatalf("Failed to check account existence: %v", err)
		return false
	}
	return exists
}

// MintCard submits a CardMint for acc and returns the derived card ID
// along with the result.
func (e *TestEnv) MintCard(acc *Account, name, symbol, uri string, attack, defense uint8, element sle.Element, rarity sle.Rarity) ([32]byte, TxResult) {
	e.t.Helper()

	seq := e.Seq(acc)
	mint := &market.CardMint{
		BaseTx:  *tx.NewBaseTx(tx.TypeCardMint, acc.Address),
		Name:    name,
		Symbol:  symbol,
		URI:     uri,
		Attack:  attack,
		Defense: defense,
		Element: uint8(element),
		Rarity:  uint8(rarity),
	}
	mint.Fee = formatUint64(e.baseFee)
	mint.Sequence = &seq

	cardID := market.DeriveCardID(acc.ID, seq)
	return cardID, e.Submit(mint)
}

// ListCard submits a CardList for acc at the given price.
func (e *TestEnv) ListCard(acc *Account, cardID [32]byte, price uint64) TxResult {
	e.t.Helper()

	list := &market.CardList{
		BaseTx: *tx.NewBaseTx(tx.TypeCardList, acc.Address),
		Card:   market.FormatCardID(cardID),
		Price:  formatUint64(price),
	}
	return e.Submit(list)
}

// UpdateListing submits a CardListingUpdate for acc with a new price.
func (e *TestEnv) UpdateListing(acc *Account, cardID [32]byte, price uint64) TxResult {
	e.t.Helper()

	update := &market.CardListingUpdate{
		BaseTx: *tx.NewBaseTx(tx.TypeCardListingUpdate, acc.Address),
		Card:   market.FormatCardID(cardID),
		Price:  formatUint64(price),
	}
	return e.Submit(update)
}

// CancelListing submits a CardListingCancel for acc.
func (e *TestEnv) CancelListing(acc *Account, cardID [32]byte) TxResult {
	e.t.Helper()

	cancel := &market.CardListingCancel{
		BaseTx: *tx.NewBaseTx(tx.TypeCardListingCancel, acc.Address),
		Card:   market.FormatCardID(cardID),
	}
	return e.Submit(cancel)
}

// PurchaseCard submits a CardPurchase for acc.
func (e *TestEnv) PurchaseCard(acc *Account, cardID [32]byte) TxResult {
	e.t.Helper()

	purchase := &market.CardPurchase{
		BaseTx: *tx.NewBaseTx(tx.TypeCardPurchase, acc.Address),
		Card:   market.FormatCardID(cardID),
	}
	return e.Submit(purchase)
}

// CardStats reads the stats entry for a card, or nil if absent.
func (e *TestEnv) CardStats(cardID [32]byte) *sle.CardStats {
	e.t.Helper()

	data, err := e.ledger.Read(keylet.Stats(cardID))
	if err != nil {
		e.t.Fatalf("Failed to read card stats: %v", err)
	}
	if data == nil {
		return nil
	}
	stats, err := sle.ParseCardStats(data)
	if err != nil {
		e.t.Fatalf("Failed to parse card stats: %v", err)
	}
	return stats
}

// Custody reads the custody entry for a card, or nil if absent.
func (e *TestEnv) Custody(cardID [32]byte) *sle.Custody {
	e.t.Helper()

	data, err := e.ledger.Read(keylet.Custody(cardID))
	if err != nil {
		e.t.Fatalf("Failed to read custody: %v", err)
	}
	if data == nil {
		return nil
	}
	custody, err := sle.ParseCustody(data)
	if err != nil {
		e.t.Fatalf("Failed to parse custody: %v", err)
	}
	return custody
}

// Listing reads the listing entry for a card, or nil if absent.
func (e *TestEnv) Listing(cardID [32]byte) *sle.Listing {
	e.t.Helper()

	data, err := e.ledger.Read(keylet.Listing(cardID))
	if err != nil {
		e.t.Fatalf("Failed to read listing: %v", err)
	}
	if data == nil {
		return nil
	}
	listing, err := sle.ParseListing(data)
	if err != nil {
		e.t.Fatalf("Failed to parse listing: %v", err)
	}
	return listing
}

// LedgerEntryExists checks whether any entry exists at the given keylet.
func (e *TestEnv) LedgerEntryExists(key keylet.Keylet) bool {
	e.t.Helper()

	exists, err := e.ledger.Exists(key)
	if err != nil {
		e.t.Fatalf("Failed to check ledger entry: %v", err)
		return false
	}
	return exists
}

// LedgerEntry reads the raw entry at the given keylet.
func (e *TestEnv) LedgerEntry(key keylet.Keylet) ([]byte, error) {
	return e.ledger.Read(key)
}

// Now returns the current test clock time.
func (e *TestEnv) Now() time.Time {
	return e.clock.Now()
}

// AdvanceTime advances the test clock by the specified duration.
func (e *TestEnv) AdvanceTime(d time.Duration) {
	e.clock.Advance(d)
}

// SetTime sets the test clock to a specific time.
func (e *TestEnv) SetTime(t time.Time) {
	e.clock.Set(t)
}

// Ledger returns the current open ledger.
func (e *TestEnv) Ledger() *ledger.Ledger {
	return e.ledger
}

// LedgerSeq returns the current ledger sequence number.
func (e *TestEnv) LedgerSeq() uint32 {
	return e.ledger.Sequence()
}

// GetAccount returns a registered account by name.
func (e *TestEnv) GetAccount(name string) *Account {
	return e.accounts[name]
}

// MasterAccount returns the master account.
func (e *TestEnv) MasterAccount() *Account {
	return e.accounts["master"]
}

// BaseFee returns the base fee in lamports.
func (e *TestEnv) BaseFee() uint64 {
	return e.baseFee
}

// ReserveBase returns the base reserve in lamports.
func (e *TestEnv) ReserveBase() uint64 {
	return e.reserveBase
}

// ReserveIncrement returns the owner reserve increment in lamports.
func (e *TestEnv) ReserveIncrement() uint64 {
	return e.reserveIncrement
}

func (e *TestEnv) findAccountByAddress(address string) *Account {
	for _, acc := range e.accounts {
		if acc.Address == address {
			return acc
		}
	}
	return nil
}

func formatUint64(v uint64) string {
	return strconv.FormatUint(v, 10)
}
