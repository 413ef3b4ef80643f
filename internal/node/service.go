// Package node manages the ledger lifecycle for a running daemon: the
// open ledger accepting transactions, the chain of closed ledgers, and
// the storage backends they are persisted to.
package node

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/solcards/gocardsd/internal/core/ledger"
	"github.com/solcards/gocardsd/internal/core/ledger/genesis"
	"github.com/solcards/gocardsd/internal/core/tx"
	"github.com/solcards/gocardsd/internal/storage/nodestore"
	"github.com/solcards/gocardsd/internal/storage/relationaldb"
)

// Common errors
var (
	ErrNotStandalone  = errors.New("operation only valid in standalone mode")
	ErrNoOpenLedger   = errors.New("no open ledger")
	ErrLedgerNotFound = errors.New("ledger not found")
	ErrAcceptPending  = errors.New("open ledger is sealed, retry ledger_accept")
)

// Config holds configuration for the node service.
type Config struct {
	// Standalone indicates whether the node advances ledgers on demand
	// via AcceptLedger rather than through consensus.
	Standalone bool

	// Genesis is the configuration for creating the genesis ledger.
	Genesis genesis.Config

	// NetworkID identifies the network this node serves.
	NetworkID uint32

	// NodeStore is the persistent storage for closed ledgers
	// (nil for in-memory only).
	NodeStore *nodestore.Store

	// TradeIndex records marketplace activity beyond the on-ledger
	// history cap (nil to disable).
	TradeIndex relationaldb.Database

	// Clock supplies the current time. Defaults to time.Now.
	Clock func() time.Time
}

// DefaultConfig returns the default service configuration.
func DefaultConfig() Config {
	return Config{
		Standalone: true,
		Genesis:    genesis.DefaultConfig(),
	}
}

// Service manages the ledger lifecycle.
type Service struct {
	mu sync.RWMutex

	config Config
	clock  func() time.Time

	nodeStore  *nodestore.Store
	tradeIndex relationaldb.Database

	// Current open ledger (accepting transactions)
	openLedger *ledger.Ledger

	// Last closed ledger
	closedLedger *ledger.Ledger

	// Genesis ledger
	genesisLedger *ledger.Ledger

	// Ledger history (sequence -> ledger), in-memory cache
	ledgerHistory map[uint32]*ledger.Ledger

	// Trade rows staged against the open ledger. Flushed to the trade
	// index when the ledger closes; discarded rows never existed.
	pendingTrades []relationaldb.TradeRow
}

// New creates a new node service.
func New(cfg Config) *Service {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		config:        cfg,
		clock:         clock,
		nodeStore:     cfg.NodeStore,
		tradeIndex:    cfg.TradeIndex,
		ledgerHistory: make(map[uint32]*ledger.Ledger),
	}
}

// Start initializes the service with a genesis ledger and opens the
// first ledger on top of it.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	genesisLedger, err := ledger.NewGenesis(s.config.Genesis)
	if err != nil {
		return fmt.Errorf("failed to create genesis ledger: %w", err)
	}

	s.genesisLedger = genesisLedger
	s.closedLedger = genesisLedger
	s.ledgerHistory[genesisLedger.Sequence()] = genesisLedger

	openLedger, err := ledger.NewOpen(genesisLedger)
	if err != nil {
		return fmt.Errorf("failed to create open ledger: %w", err)
	}
	s.openLedger = openLedger

	return nil
}

// OpenLedger returns the current open ledger.
func (s *Service) OpenLedger() *ledger.Ledger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.openLedger
}

// ClosedLedger returns the last closed ledger.
func (s *Service) ClosedLedger() *ledger.Ledger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closedLedger
}

// LedgerBySequence returns a ledger by its sequence number.
func (s *Service) LedgerBySequence(seq uint32) (*ledger.Ledger, error) {
	s.mu.RLock()
	l, ok := s.ledgerHistory[seq]
	s.mu.RUnlock()
	if ok {
		return l, nil
	}

	// Fall back to the nodestore for ledgers evicted from memory.
	if s.nodeStore != nil {
		return s.loadLedger(seq)
	}
	return nil, ErrLedgerNotFound
}

// CurrentLedgerIndex returns the open ledger sequence.
func (s *Service) CurrentLedgerIndex() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.openLedger == nil {
		return 0
	}
	return s.openLedger.Sequence()
}

// ClosedLedgerIndex returns the last closed ledger sequence.
func (s *Service) ClosedLedgerIndex() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closedLedger == nil {
		return 0
	}
	return s.closedLedger.Sequence()
}

// IsStandalone returns true if running in standalone mode.
func (s *Service) IsStandalone() bool {
	return s.config.Standalone
}

// MasterAccount returns the genesis master account address.
func (s *Service) MasterAccount() string {
	return genesis.MasterAddress()
}

// Fees returns the current fee and reserve settings.
func (s *Service) Fees() (baseFee, reserveBase, reserveIncrement uint64) {
	return s.config.Genesis.BaseFee, s.config.Genesis.ReserveBase, s.config.Genesis.ReserveIncrement
}

// AcceptLedger closes the current open ledger and creates a new one.
// This is the main mechanism for advancing ledgers in standalone mode.
// It corresponds to the "ledger_accept" RPC command.
//
// A failed accept leaves the ledger sealed but not published; a later
// call resumes from persistence instead of sealing twice, so a
// transient storage error is retryable and never wedges the node.
func (s *Service) AcceptLedger() (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.config.Standalone {
		return 0, ErrNotStandalone
	}

	if s.openLedger == nil {
		return 0, ErrNoOpenLedger
	}

	if !s.openLedger.Closed() {
		if err := s.openLedger.CloseAt(s.clock()); err != nil {
			return 0, fmt.Errorf("failed to close ledger: %w", err)
		}
	}

	if s.nodeStore != nil {
		if err := s.persistLedger(s.openLedger); err != nil {
			return 0, fmt.Errorf("failed to persist ledger: %w", err)
		}
	}

	if s.tradeIndex != nil {
		if err := s.flushTrades(s.openLedger.Header.CloseTime); err != nil {
			return 0, fmt.Errorf("failed to index trades: %w", err)
		}
	}
	s.pendingTrades = nil

	closedSeq := s.openLedger.Sequence()
	s.closedLedger = s.openLedger
	s.ledgerHistory[closedSeq] = s.openLedger

	newOpen, err := ledger.NewOpen(s.closedLedger)
	if err != nil {
		return 0, fmt.Errorf("failed to create new open ledger: %w", err)
	}
	s.openLedger = newOpen

	return closedSeq, nil
}

// SubmitResult contains the result of submitting a transaction.
type SubmitResult struct {
	// Result is the engine result code
	Result tx.Result

	// Applied indicates if the transaction was applied to the ledger
	Applied bool

	// Fee is the fee charged (in lamports)
	Fee uint64

	// TxHash is the transaction hash
	TxHash [32]byte

	// Metadata contains the changes made by the transaction
	Metadata *tx.Metadata

	// Message is a human-readable result message
	Message string

	// CurrentLedger is the current open ledger sequence
	CurrentLedger uint32
}

// Submit applies a transaction to the open ledger.
func (s *Service) Submit(transaction tx.Transaction) (*SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.openLedger == nil {
		return nil, ErrNoOpenLedger
	}
	if s.openLedger.Closed() {
		// A failed accept sealed this ledger; nothing can apply until
		// the accept is retried.
		return nil, ErrAcceptPending
	}

	engineConfig := tx.EngineConfig{
		BaseFee:          s.config.Genesis.BaseFee,
		ReserveBase:      s.config.Genesis.ReserveBase,
		ReserveIncrement: s.config.Genesis.ReserveIncrement,
		LedgerSequence:   s.openLedger.Sequence(),
		CloseTime:        s.clock().Unix(),
		// Signatures are optional in standalone mode; unsigned local
		// submissions are accepted the way a test harness submits.
		SkipSignatureVerification: s.config.Standalone,
		Standalone:                s.config.Standalone,
		NetworkID:                 s.config.NetworkID,
		MaxFee:                    tx.DefaultMaxFee,
	}

	engine := tx.NewEngine(s.openLedger, engineConfig)
	applyResult := engine.Apply(transaction)

	if applyResult.Result.IsSuccess() && s.tradeIndex != nil {
		s.stageTrade(transaction, applyResult.TxHash)
	}

	return &SubmitResult{
		Result:        applyResult.Result,
		Applied:       applyResult.Applied,
		Fee:           applyResult.Fee,
		TxHash:        applyResult.TxHash,
		Metadata:      applyResult.Metadata,
		Message:       applyResult.Message,
		CurrentLedger: s.openLedger.Sequence(),
	}, nil
}

// ServerInfo contains basic server status information.
type ServerInfo struct {
	Standalone       bool
	NetworkID        uint32
	OpenLedgerSeq    uint32
	ClosedLedgerSeq  uint32
	ClosedLedgerHash [32]byte
	CompleteLedgers  string
	BaseFee          uint64
	ReserveBase      uint64
	ReserveIncrement uint64
}

// GetServerInfo returns basic server information.
func (s *Service) GetServerInfo() ServerInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := ServerInfo{
		Standalone:       s.config.Standalone,
		NetworkID:        s.config.NetworkID,
		BaseFee:          s.config.Genesis.BaseFee,
		ReserveBase:      s.config.Genesis.ReserveBase,
		ReserveIncrement: s.config.Genesis.ReserveIncrement,
	}

	if s.openLedger != nil {
		info.OpenLedgerSeq = s.openLedger.Sequence()
	}

	if s.closedLedger != nil {
		info.ClosedLedgerSeq = s.closedLedger.Sequence()
		info.ClosedLedgerHash = s.closedLedger.Hash()
	}

	if len(s.ledgerHistory) > 0 {
		minSeq := uint32(0xFFFFFFFF)
		maxSeq := uint32(0)
		for seq := range s.ledgerHistory {
			if seq < minSeq {
				minSeq = seq
			}
			if seq > maxSeq {
				maxSeq = seq
			}
		}
		if minSeq == maxSeq {
			info.CompleteLedgers = strconv.FormatUint(uint64(minSeq), 10)
		} else {
			info.CompleteLedgers = strconv.FormatUint(uint64(minSeq), 10) + "-" +
				strconv.FormatUint(uint64(maxSeq), 10)
		}
	}

	return info
}
