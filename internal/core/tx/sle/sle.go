// Package sle defines the serialized ledger entry types and their
// binary codecs. Every entry starts with a 2-byte big-endian entry
// type, followed by fixed-width fields; variable-length strings are
// length-prefixed with a uint16.
package sle

import (
	"encoding/binary"
	"errors"

	"github.com/solcards/gocardsd/internal/core/ledger/entry"
)

var (
	// ErrShortEntry is returned when an entry is truncated.
	ErrShortEntry = errors.New("ledger entry too short")
	// ErrWrongEntryType is returned when an entry has an unexpected type header.
	ErrWrongEntryType = errors.New("unexpected ledger entry type")
	// ErrStringTooLong is returned when a string field exceeds the uint16 length prefix.
	ErrStringTooLong = errors.New("string field too long")
)

// EntryType returns the entry type header of a serialized entry.
func EntryType(data []byte) (entry.Type, error) {
	if len(data) < 2 {
		return 0, ErrShortEntry
	}
	return entry.Type(binary.BigEndian.Uint16(data)), nil
}

type writer struct {
	buf []byte
}

func newWriter(t entry.Type) *writer {
	w := &writer{buf: make([]byte, 0, 128)}
	w.uint16(uint16(t))
	return w
}

func (w *writer) uint8(v uint8)   { w.buf = append(w.buf, v) }
func (w *writer) uint16(v uint16) { w.buf = binary.BigEndian.AppendUint16(w.buf, v) }
func (w *writer) uint32(v uint32) { w.buf = binary.BigEndian.AppendUint32(w.buf, v) }
func (w *writer) uint64(v uint64) { w.buf = binary.BigEndian.AppendUint64(w.buf, v) }
func (w *writer) int64(v int64)   { w.buf = binary.BigEndian.AppendUint64(w.buf, uint64(v)) }

func (w *writer) bytes(b []byte) { w.buf = append(w.buf, b...) }

func (w *writer) str(s string) error {
	if len(s) > 0xFFFF {
		return ErrStringTooLong
	}
	w.uint16(uint16(len(s)))
	w.buf = append(w.buf, s...)
	return nil
}

type reader struct {
	data []byte
	pos  int
	err  error
}

func newReader(data []byte, want entry.Type) *reader {
	r := &reader{data: data}
	if t := r.uint16(); r.err == nil && entry.Type(t) != want {
		r.err = ErrWrongEntryType
	}
	return r
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos+n > len(r.data) {
		r.err = ErrShortEntry
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *reader) uint8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) uint16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

func (r *reader) uint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func (r *reader) uint64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func (r *reader) int64() int64 {
	return int64(r.uint64())
}

func (r *reader) hash256() [32]byte {
	var h [32]byte
	copy(h[:], r.take(32))
	return h
}

func (r *reader) accountID() [20]byte {
	var id [20]byte
	copy(id[:], r.take(20))
	return id
}

func (r *reader) str() string {
	n := int(r.uint16())
	return string(r.take(n))
}
