package tx

import (
	"bytes"
	"fmt"

	"github.com/solcards/gocardsd/internal/core/lamport"
	"github.com/solcards/gocardsd/internal/core/ledger/keylet"
	"github.com/solcards/gocardsd/internal/core/tx/sle"
)

// Action represents the type of modification to a ledger entry
type Action int

const (
	// ActionCache means the entry was read but not modified
	ActionCache Action = iota
	// ActionInsert means a new entry was created
	ActionInsert
	// ActionModify means an existing entry was modified
	ActionModify
	// ActionErase means an entry was deleted
	ActionErase
)

// TrackedEntry represents a ledger entry being tracked for changes
type TrackedEntry struct {
	Action   Action
	Original []byte // Original state (nil for inserts)
	Current  []byte // Current state (state before deletion for erases)
}

// ApplyStateTable wraps a LedgerView and buffers all modifications so
// that a transaction's effects commit atomically, or not at all. On
// success Apply() flushes the buffered changes to the base view and
// generates metadata; a discarded table leaves the base untouched.
type ApplyStateTable struct {
	base     LedgerView
	items    map[[32]byte]*TrackedEntry
	lamports lamport.Amount
	txHash   [32]byte
	txSeq    uint32
}

// NewApplyStateTable creates a new ApplyStateTable wrapping the given base view
func NewApplyStateTable(base LedgerView, txHash [32]byte, txSeq uint32) *ApplyStateTable {
	return &ApplyStateTable{
		base:   base,
		items:  make(map[[32]byte]*TrackedEntry),
		txHash: txHash,
		txSeq:  txSeq,
	}
}

// Read reads a ledger entry, tracking it as cached
func (t *ApplyStateTable) Read(k keylet.Keylet) ([]byte, error) {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return nil, nil
		}
		return entry.Current, nil
	}

	data, err := t.base.Read(k)
	if err != nil {
		return nil, err
	}

	// Only track entries that exist in the base
	if data != nil {
		t.items[k.Key] = &TrackedEntry{
			Action:   ActionCache,
			Original: data,
			Current:  data,
		}
	}

	return data, nil
}

// Exists checks if an entry exists
func (t *ApplyStateTable) Exists(k keylet.Keylet) (bool, error) {
	if entry, exists := t.items[k.Key]; exists {
		return entry.Action != ActionErase, nil
	}
	return t.base.Exists(k)
}

// Insert adds a new entry
func (t *ApplyStateTable) Insert(k keylet.Keylet, data []byte) error {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action != ActionErase {
			return fmt.Errorf("entry already exists")
		}
		// Re-inserting a deleted entry becomes a modify
		entry.Action = ActionModify
		entry.Current = data
		return nil
	}

	exists, err := t.base.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("entry already exists")
	}

	t.items[k.Key] = &TrackedEntry{
		Action:   ActionInsert,
		Original: nil,
		Current:  data,
	}

	return nil
}

// Update modifies an existing entry
func (t *ApplyStateTable) Update(k keylet.Keylet, data []byte) error {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return fmt.Errorf("entry not found (deleted)")
		}
		if entry.Action == ActionCache {
			entry.Action = ActionModify
		}
		// For insert, keep it as insert with new data
		entry.Current = data
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}

	t.items[k.Key] = &TrackedEntry{
		Action:   ActionModify,
		Original: original,
		Current:  data,
	}

	return nil
}

// Erase removes an entry
func (t *ApplyStateTable) Erase(k keylet.Keylet) error {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return fmt.Errorf("entry already deleted")
		}
		if entry.Action == ActionInsert {
			// Inserting then deleting = no change
			delete(t.items, k.Key)
			return nil
		}
		// Keep Current as the state before deletion
		entry.Action = ActionErase
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}

	t.items[k.Key] = &TrackedEntry{
		Action:   ActionErase,
		Original: original,
		Current:  original,
	}

	return nil
}

// IsErased returns true if the entry at the given key has been erased.
func (t *ApplyStateTable) IsErased(k keylet.Keylet) bool {
	if entry, exists := t.items[k.Key]; exists {
		return entry.Action == ActionErase
	}
	return false
}

// AdjustLamportsDestroyed records destroyed lamports
func (t *ApplyStateTable) AdjustLamportsDestroyed(amount lamport.Amount) {
	t.lamports += amount
}

// ForEach iterates over all state entries. Buffered modifications are
// not reflected; this is typically only used for diagnostics.
func (t *ApplyStateTable) ForEach(fn func(key [32]byte, data []byte) bool) error {
	return t.base.ForEach(fn)
}

// Apply commits all changes to the base view and returns generated metadata.
func (t *ApplyStateTable) Apply() (*Metadata, error) {
	metadata := &Metadata{
		AffectedNodes: make([]AffectedNode, 0),
	}

	for key, entry := range t.items {
		switch entry.Action {
		case ActionCache:
			continue

		case ActionInsert:
			metadata.AffectedNodes = append(metadata.AffectedNodes, buildAffectedNode("CreatedNode", key, entry.Current))
			if err := t.base.Insert(keylet.Keylet{Key: key}, entry.Current); err != nil {
				return nil, err
			}

		case ActionModify:
			// Skip if no actual change
			if bytes.Equal(entry.Original, entry.Current) {
				continue
			}
			metadata.AffectedNodes = append(metadata.AffectedNodes, buildAffectedNode("ModifiedNode", key, entry.Current))
			if err := t.base.Update(keylet.Keylet{Key: key}, entry.Current); err != nil {
				return nil, err
			}

		case ActionErase:
			metadata.AffectedNodes = append(metadata.AffectedNodes, buildAffectedNode("DeletedNode", key, entry.Current))
			if err := t.base.Erase(keylet.Keylet{Key: key}); err != nil {
				return nil, err
			}
		}
	}

	if t.lamports.IsPositive() {
		t.base.AdjustLamportsDestroyed(t.lamports)
	}

	return metadata, nil
}

func buildAffectedNode(nodeType string, key [32]byte, data []byte) AffectedNode {
	entryType := "Unknown"
	if t, err := sle.EntryType(data); err == nil {
		entryType = t.String()
	}
	return AffectedNode{
		NodeType:        nodeType,
		LedgerEntryType: entryType,
		LedgerIndex:     fmt.Sprintf("%X", key),
	}
}
