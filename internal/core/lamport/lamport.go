// Package lamport defines the native currency unit. All balances,
// prices and fees are integer lamport counts; one SOL is one billion
// lamports.
package lamport

import (
	"errors"
	"fmt"
)

// Amount is a quantity of lamports. Amounts are never negative in
// ledger state; the signed representation exists so that balance
// adjustments can underflow detectably.
type Amount int64

const (
	// PerSOL is the number of lamports in one SOL.
	PerSOL Amount = 1_000_000_000

	// MaxAmount is the largest representable lamport quantity.
	MaxAmount Amount = 1<<63 - 1
)

// ErrAmountOverflow is returned when an arithmetic operation would
// leave the representable range.
var ErrAmountOverflow = errors.New("lamport amount overflow")

// Add returns a+b, failing on overflow.
func (a Amount) Add(b Amount) (Amount, error) {
	sum := a + b
	if b > 0 && sum < a || b < 0 && sum > a {
		return 0, ErrAmountOverflow
	}
	return sum, nil
}

// Sub returns a-b, failing on overflow.
func (a Amount) Sub(b Amount) (Amount, error) {
	diff := a - b
	if b > 0 && diff > a || b < 0 && diff < a {
		return 0, ErrAmountOverflow
	}
	return diff, nil
}

// IsPositive reports whether the amount is strictly greater than zero.
func (a Amount) IsPositive() bool { return a > 0 }

// IsNegative reports whether the amount is below zero.
func (a Amount) IsNegative() bool { return a < 0 }

// SOL returns the whole-SOL part of the amount, truncated.
func (a Amount) SOL() int64 { return int64(a / PerSOL) }

func (a Amount) String() string {
	return fmt.Sprintf("%d", int64(a))
}
