// Package ledger holds versioned ledger state. An open ledger accepts
// transaction effects through the LedgerView methods; Close seals it,
// computes the state hash and produces an immutable snapshot that the
// next open ledger builds on.
package ledger

import (
	"bytes"
	"encoding/binary"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/solcards/gocardsd/internal/core/lamport"
	"github.com/solcards/gocardsd/internal/core/ledger/genesis"
	"github.com/solcards/gocardsd/internal/core/ledger/header"
	"github.com/solcards/gocardsd/internal/core/ledger/keylet"
	"github.com/solcards/gocardsd/internal/crypto"
)

var (
	// ErrEntryNotFound is returned when a requested entry does not exist.
	ErrEntryNotFound = errors.New("ledger: entry not found")
	// ErrEntryExists is returned when inserting over an existing entry.
	ErrEntryExists = errors.New("ledger: entry already exists")
	// ErrLedgerClosed is returned on writes to a closed ledger.
	ErrLedgerClosed = errors.New("ledger: ledger is closed")
	// ErrLedgerOpen is returned when a closed ledger is required.
	ErrLedgerOpen = errors.New("ledger: ledger is still open")
)

// Ledger is one ledger version. It implements tx.LedgerView.
type Ledger struct {
	mu     sync.RWMutex
	Header header.LedgerHeader

	state     map[[32]byte][]byte
	destroyed lamport.Amount
	total     uint64
	closed    bool
}

// NewGenesis builds the first (closed) ledger from a genesis config.
func NewGenesis(cfg genesis.Config) (*Ledger, error) {
	res, err := genesis.Create(cfg)
	if err != nil {
		return nil, err
	}

	l := &Ledger{
		state: res.State,
		total: cfg.TotalSupply,
	}
	l.Header.LedgerIndex = 1
	l.Header.CloseTimeResolution = 10
	if err := l.CloseAt(time.Unix(0, 0).UTC()); err != nil {
		return nil, err
	}
	return l, nil
}

// NewOpen builds an open ledger on top of a closed parent. The parent's
// state is copied, not shared.
func NewOpen(parent *Ledger) (*Ledger, error) {
	parent.mu.RLock()
	defer parent.mu.RUnlock()

	if !parent.closed {
		return nil, ErrLedgerOpen
	}

	state := make(map[[32]byte][]byte, len(parent.state))
	for k, v := range parent.state {
		cp := make([]byte, len(v))
		copy(cp, v)
		state[k] = cp
	}

	l := &Ledger{
		state: state,
		total: parent.total,
	}
	l.Header.LedgerIndex = parent.Header.LedgerIndex + 1
	l.Header.ParentHash = parent.Header.Hash
	l.Header.ParentCloseTime = parent.Header.CloseTime
	l.Header.CloseTimeResolution = parent.Header.CloseTimeResolution
	return l, nil
}

// Sequence returns the ledger index.
func (l *Ledger) Sequence() uint32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.Header.LedgerIndex
}

// Hash returns the identifying hash. Zero while the ledger is open.
func (l *Ledger) Hash() [32]byte {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.Header.Hash
}

// Closed reports whether the ledger has been sealed.
func (l *Ledger) Closed() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.closed
}

// TotalLamports returns the circulating supply as of this ledger,
// accounting for fees destroyed so far.
func (l *Ledger) TotalLamports() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.total - uint64(l.destroyed)
}

// EntryCount returns the number of state entries.
func (l *Ledger) EntryCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.state)
}

// Read returns a copy of the entry at k, or (nil, nil) when no entry
// exists there.
func (l *Ledger) Read(k keylet.Keylet) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	data, ok := l.state[k.Key]
	if !ok {
		return nil, nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// Exists reports whether an entry exists at k.
func (l *Ledger) Exists(k keylet.Keylet) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.state[k.Key]
	return ok, nil
}

// Insert adds a new entry at k.
func (l *Ledger) Insert(k keylet.Keylet, data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrLedgerClosed
	}
	if _, ok := l.state[k.Key]; ok {
		return ErrEntryExists
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	l.state[k.Key] = cp
	return nil
}

// Update replaces an existing entry at k.
func (l *Ledger) Update(k keylet.Keylet, data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrLedgerClosed
	}
	if _, ok := l.state[k.Key]; !ok {
		return ErrEntryNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	l.state[k.Key] = cp
	return nil
}

// Erase removes the entry at k.
func (l *Ledger) Erase(k keylet.Keylet) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrLedgerClosed
	}
	if _, ok := l.state[k.Key]; !ok {
		return ErrEntryNotFound
	}
	delete(l.state, k.Key)
	return nil
}

// AdjustLamportsDestroyed records lamports permanently removed from
// circulation, fees mostly.
func (l *Ledger) AdjustLamportsDestroyed(amount lamport.Amount) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.destroyed += amount
}

// ForEach iterates over all state entries in unspecified order. If fn
// returns false, iteration stops early.
func (l *Ledger) ForEach(fn func(key [32]byte, data []byte) bool) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for k, v := range l.state {
		if !fn(k, v) {
			break
		}
	}
	return nil
}

// CloseAt seals the ledger at the given close time. The state hash and
// header hash are computed and no further writes are accepted.
func (l *Ledger) CloseAt(closeTime time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrLedgerClosed
	}

	l.total -= uint64(l.destroyed)
	l.destroyed = 0
	l.closed = true

	l.Header.CloseTime = closeTime.UTC()
	l.Header.TotalLamports = l.total
	l.Header.StateHash = l.stateHashLocked()
	l.Header.Accepted = true
	l.Header.Validated = true
	l.Header.Hash = header.ComputeHash(&l.Header)
	return nil
}

// StateHash computes the hash over the full state map.
func (l *Ledger) StateHash() [32]byte {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stateHashLocked()
}

// stateHashLocked hashes entries in key order so the result is
// independent of map iteration order. Caller must hold at least a
// read lock.
func (l *Ledger) stateHashLocked() [32]byte {
	keys := make([][32]byte, 0, len(l.state))
	for k := range l.state {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})

	chunks := make([][]byte, 0, 3*len(keys))
	var lenBuf [4]byte
	for _, k := range keys {
		data := l.state[k]
		key := k
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
		chunks = append(chunks, key[:], append([]byte{}, lenBuf[:]...), data)
	}
	return crypto.Sha512Half(chunks...)
}
