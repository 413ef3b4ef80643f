package ledger

import (
	"bytes"
	"encoding/binary"
	"errors"
	"sort"

	"github.com/solcards/gocardsd/internal/core/ledger/header"
)

// ErrShortSnapshot is returned when a serialized ledger is truncated.
var ErrShortSnapshot = errors.New("ledger: serialized snapshot too short")

// Serialize writes a closed ledger to its binary snapshot form: the
// header followed by every state entry in key order.
func (l *Ledger) Serialize() ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.closed {
		return nil, ErrLedgerOpen
	}

	keys := make([][32]byte, 0, len(l.state))
	for k := range l.state {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})

	buf := l.Header.Serialize()
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(keys)))
	for _, k := range keys {
		data := l.state[k]
		buf = append(buf, k[:]...)
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
		buf = append(buf, data...)
	}
	return buf, nil
}

// Deserialize reconstructs a closed ledger from its snapshot form.
func Deserialize(data []byte) (*Ledger, error) {
	h, err := header.Deserialize(data)
	if err != nil {
		return nil, err
	}
	rest := data[len(h.Serialize()):]

	if len(rest) < 4 {
		return nil, ErrShortSnapshot
	}
	count := binary.BigEndian.Uint32(rest[:4])
	rest = rest[4:]

	state := make(map[[32]byte][]byte, count)
	for i := uint32(0); i < count; i++ {
		if len(rest) < 36 {
			return nil, ErrShortSnapshot
		}
		var key [32]byte
		copy(key[:], rest[:32])
		size := binary.BigEndian.Uint32(rest[32:36])
		rest = rest[36:]

		if uint32(len(rest)) < size {
			return nil, ErrShortSnapshot
		}
		state[key] = append([]byte(nil), rest[:size]...)
		rest = rest[size:]
	}

	l := &Ledger{
		Header: *h,
		state:  state,
		total:  h.TotalLamports,
		closed: true,
	}
	return l, nil
}
