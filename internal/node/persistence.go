package node

import (
	"context"
	"encoding/binary"
	"errors"

	"github.com/solcards/gocardsd/internal/core/ledger"
	"github.com/solcards/gocardsd/internal/crypto"
	"github.com/solcards/gocardsd/internal/storage/nodestore"
)

var seqIndexTag = []byte("ledger-seq")

// ErrCorruptIndex is returned when a sequence index entry does not hold
// a ledger hash.
var ErrCorruptIndex = errors.New("corrupt ledger sequence index")

// seqIndexKey derives the nodestore key mapping a ledger sequence to
// the hash of the ledger that closed at it.
func seqIndexKey(seq uint32) [32]byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], seq)
	return crypto.Sha512Half(seqIndexTag, buf[:])
}

// persistLedger writes a closed ledger snapshot to the nodestore,
// keyed by its header hash, plus a sequence index entry so it can be
// found again by number. Caller holds s.mu.
func (s *Service) persistLedger(l *ledger.Ledger) error {
	ctx := context.Background()

	snapshot, err := l.Serialize()
	if err != nil {
		return err
	}

	hash := l.Hash()
	items := []nodestore.Item{
		{Key: hash, Data: snapshot},
		{Key: seqIndexKey(l.Sequence()), Data: hash[:]},
	}
	return s.nodeStore.StoreBatch(ctx, items)
}

// loadLedger reads a closed ledger back from the nodestore by
// sequence number.
func (s *Service) loadLedger(seq uint32) (*ledger.Ledger, error) {
	ctx := context.Background()

	hashData, err := s.nodeStore.Fetch(ctx, seqIndexKey(seq))
	if err != nil {
		if errors.Is(err, nodestore.ErrNotFound) {
			return nil, ErrLedgerNotFound
		}
		return nil, err
	}
	if len(hashData) != 32 {
		return nil, ErrCorruptIndex
	}

	var hash [32]byte
	copy(hash[:], hashData)

	snapshot, err := s.nodeStore.Fetch(ctx, hash)
	if err != nil {
		if errors.Is(err, nodestore.ErrNotFound) {
			return nil, ErrLedgerNotFound
		}
		return nil, err
	}

	return ledger.Deserialize(snapshot)
}
