package market

import (
	"github.com/solcards/gocardsd/internal/core/ledger/keylet"
	"github.com/solcards/gocardsd/internal/core/tx"
	"github.com/solcards/gocardsd/internal/core/tx/sle"
)

// creditAccount adds lamports to an existing account through the apply
// state table. Repeated credits to the same account within one
// transaction accumulate, since reads observe buffered writes.
func creditAccount(ctx *tx.ApplyContext, address string, amount uint64) tx.Result {
	accountID, err := sle.DecodeAccountID(address)
	if err != nil {
		return tx.TecSETTLEMENT_FAILED
	}

	key := keylet.Account(accountID)
	data, err := ctx.View.Read(key)
	if err != nil {
		return tx.TefINTERNAL
	}
	if data == nil {
		return tx.TecSETTLEMENT_FAILED
	}

	account, err := sle.ParseAccountRoot(data)
	if err != nil {
		return tx.TefINTERNAL
	}

	account.Balance += amount
	account.PreviousTxnID = ctx.TxHash
	account.PreviousTxnLgrSeq = ctx.Config.LedgerSequence

	serialized, err := sle.SerializeAccountRoot(account)
	if err != nil {
		return tx.TefINTERNAL
	}
	if err := ctx.View.Update(key, serialized); err != nil {
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}
