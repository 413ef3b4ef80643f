// Package header defines the ledger header and its binary form.
package header

import (
	"encoding/binary"
	"errors"
	"time"

	"github.com/solcards/gocardsd/internal/crypto"
)

// Ledger close flags
const LCFNoConsensusTime uint32 = 0x01

// serializedSize is the fixed wire size of a header without the hash.
const serializedSize = 4 + 32 + 32 + 32 + 8 + 8 + 8 + 4 + 4

var hashPrefix = []byte("LGR\x00")

// ErrShortHeader is returned when a serialized header is truncated.
var ErrShortHeader = errors.New("header: serialized data too short")

// LedgerHeader describes one ledger version. For open ledgers only
// LedgerIndex, ParentHash and ParentCloseTime are meaningful; the
// remaining fields are filled in when the ledger closes.
type LedgerHeader struct {
	LedgerIndex     uint32
	ParentHash      [32]byte
	StateHash       [32]byte
	TxHash          [32]byte
	TotalLamports   uint64
	ParentCloseTime time.Time
	CloseTime       time.Time

	// the resolution for this ledger close time (2-120 seconds)
	CloseTimeResolution int32

	// flags indicating how this ledger close took place
	CloseFlags uint32

	// Once Validated is true it is never set false again.
	Validated bool
	Accepted  bool

	// Hash of the closed header, zero while the ledger is open.
	Hash [32]byte
}

// GetCloseAgree returns true if there was consensus on the close time.
func (h *LedgerHeader) GetCloseAgree() bool {
	return (h.CloseFlags & LCFNoConsensusTime) == 0
}

// Serialize returns the canonical binary form of the header, without
// the hash itself.
func (h *LedgerHeader) Serialize() []byte {
	buf := make([]byte, 0, serializedSize)
	buf = binary.BigEndian.AppendUint32(buf, h.LedgerIndex)
	buf = append(buf, h.ParentHash[:]...)
	buf = append(buf, h.StateHash[:]...)
	buf = append(buf, h.TxHash[:]...)
	buf = binary.BigEndian.AppendUint64(buf, h.TotalLamports)
	buf = binary.BigEndian.AppendUint64(buf, uint64(h.ParentCloseTime.Unix()))
	buf = binary.BigEndian.AppendUint64(buf, uint64(h.CloseTime.Unix()))
	buf = binary.BigEndian.AppendUint32(buf, uint32(h.CloseTimeResolution))
	buf = binary.BigEndian.AppendUint32(buf, h.CloseFlags)
	return buf
}

// Deserialize parses a header from its canonical binary form.
func Deserialize(data []byte) (*LedgerHeader, error) {
	if len(data) < serializedSize {
		return nil, ErrShortHeader
	}

	h := &LedgerHeader{}
	h.LedgerIndex = binary.BigEndian.Uint32(data[0:4])
	copy(h.ParentHash[:], data[4:36])
	copy(h.StateHash[:], data[36:68])
	copy(h.TxHash[:], data[68:100])
	h.TotalLamports = binary.BigEndian.Uint64(data[100:108])
	h.ParentCloseTime = time.Unix(int64(binary.BigEndian.Uint64(data[108:116])), 0).UTC()
	h.CloseTime = time.Unix(int64(binary.BigEndian.Uint64(data[116:124])), 0).UTC()
	h.CloseTimeResolution = int32(binary.BigEndian.Uint32(data[124:128]))
	h.CloseFlags = binary.BigEndian.Uint32(data[128:132])
	h.Hash = ComputeHash(h)
	return h, nil
}

// ComputeHash computes the identifying hash of a header.
func ComputeHash(h *LedgerHeader) [32]byte {
	return crypto.Sha512Half(hashPrefix, h.Serialize())
}
