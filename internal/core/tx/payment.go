package tx

import (
	"errors"
	"strconv"

	"github.com/solcards/gocardsd/internal/core/ledger/keylet"
	"github.com/solcards/gocardsd/internal/core/tx/sle"
)

func init() {
	Register(TypePayment, func() Transaction {
		return &Payment{BaseTx: *NewBaseTx(TypePayment, "")}
	})
}

// Payment sends lamports from one account to another, creating the
// destination account when it does not yet exist.
type Payment struct {
	BaseTx

	// Amount is the number of lamports to deliver (decimal string)
	Amount string `json:"Amount"`

	// Destination is the account to receive the payment
	Destination string `json:"Destination"`
}

// Validate checks if the payment is well formed
func (p *Payment) Validate() error {
	if err := p.BaseTx.Validate(); err != nil {
		return err
	}

	if p.Destination == "" {
		return errors.New("temDST_NEEDED: Destination is required")
	}
	if p.Destination == p.Account {
		return errors.New("temDST_IS_SRC: Destination may not be source")
	}
	if _, err := sle.DecodeAccountID(p.Destination); err != nil {
		return errors.New("temINVALID_ACCOUNT_ID: invalid destination address")
	}

	amount, err := strconv.ParseInt(p.Amount, 10, 64)
	if err != nil || amount <= 0 {
		return errors.New("temBAD_AMOUNT: Amount must be a positive lamport count")
	}

	return nil
}

// Flatten returns a flat map of transaction fields
func (p *Payment) Flatten() (map[string]any, error) {
	m := p.Common.ToMap()
	m["Amount"] = p.Amount
	m["Destination"] = p.Destination
	return m, nil
}

// Apply applies the payment to the ledger
func (p *Payment) Apply(ctx *ApplyContext) Result {
	amount, err := strconv.ParseUint(p.Amount, 10, 64)
	if err != nil {
		return TemBAD_AMOUNT
	}

	// The sender must be able to send the amount and keep its reserve.
	// Fee has already been deducted from ctx.Account.
	reserve := ctx.AccountReserve(ctx.Account.OwnerCount)
	if ctx.Account.Balance < amount || ctx.Account.Balance-amount < reserve {
		return TecUNFUNDED_PAYMENT
	}

	destID, err := sle.DecodeAccountID(p.Destination)
	if err != nil {
		return TemINVALID_ACCOUNT_ID
	}
	destKey := keylet.Account(destID)

	destData, err := ctx.View.Read(destKey)
	if err != nil {
		return TefINTERNAL
	}

	ctx.Account.Balance -= amount

	if destData == nil {
		// Fund a new account
		dest := sle.NewAccountRoot(p.Destination, amount)
		dest.PreviousTxnID = ctx.TxHash
		dest.PreviousTxnLgrSeq = ctx.Config.LedgerSequence

		serialized, err := sle.SerializeAccountRoot(dest)
		if err != nil {
			return TefINTERNAL
		}
		if err := ctx.View.Insert(destKey, serialized); err != nil {
			return TefINTERNAL
		}
		return TesSUCCESS
	}

	dest, err := sle.ParseAccountRoot(destData)
	if err != nil {
		return TefINTERNAL
	}
	dest.Balance += amount
	dest.PreviousTxnID = ctx.TxHash
	dest.PreviousTxnLgrSeq = ctx.Config.LedgerSequence

	serialized, err := sle.SerializeAccountRoot(dest)
	if err != nil {
		return TefINTERNAL
	}
	if err := ctx.View.Update(destKey, serialized); err != nil {
		return TefINTERNAL
	}

	return TesSUCCESS
}
