package market

import (
	"errors"
	"fmt"

	"github.com/solcards/gocardsd/internal/core/ledger/keylet"
	"github.com/solcards/gocardsd/internal/core/tx"
	"github.com/solcards/gocardsd/internal/core/tx/sle"
)

func init() {
	tx.Register(tx.TypeCardMint, func() tx.Transaction {
		return &CardMint{BaseTx: *tx.NewBaseTx(tx.TypeCardMint, "")}
	})
}

// CardMint creates a new card. The card ID is derived from the minter
// and the transaction sequence; the mint writes the immutable stats
// entry and a custody entry naming the minter as holder.
type CardMint struct {
	tx.BaseTx

	// Name is the card name (max 32 characters)
	Name string `json:"Name"`

	// Symbol is the card symbol (max 10 characters)
	Symbol string `json:"Symbol"`

	// URI points at the card artwork/metadata (max 200 characters)
	URI string `json:"URI"`

	// Attack is the attack stat (max 100)
	Attack uint8 `json:"Attack"`

	// Defense is the defense stat (max 100)
	Defense uint8 `json:"Defense"`

	// Element is the card element
	Element uint8 `json:"Element"`

	// Rarity is the card rarity tier
	Rarity uint8 `json:"Rarity"`
}

// Validate checks if the mint is well formed
func (m *CardMint) Validate() error {
	if err := m.BaseTx.Validate(); err != nil {
		return err
	}

	if m.Name == "" {
		return errors.New("temMALFORMED: Name is required")
	}
	if len(m.Name) > sle.MaxCardName {
		return fmt.Errorf("temMALFORMED: Name exceeds %d characters", sle.MaxCardName)
	}
	if len(m.Symbol) > sle.MaxCardSymbol {
		return fmt.Errorf("temMALFORMED: Symbol exceeds %d characters", sle.MaxCardSymbol)
	}
	if len(m.URI) > sle.MaxCardURI {
		return fmt.Errorf("temMALFORMED: URI exceeds %d characters", sle.MaxCardURI)
	}
	if m.Attack > sle.MaxCardStat || m.Defense > sle.MaxCardStat {
		return fmt.Errorf("temMALFORMED: stats exceed %d", sle.MaxCardStat)
	}
	if !sle.Element(m.Element).IsValid() {
		return errors.New("temMALFORMED: unknown element")
	}
	if !sle.Rarity(m.Rarity).IsValid() {
		return errors.New("temMALFORMED: unknown rarity")
	}

	return nil
}

// Flatten returns a flat map of transaction fields
func (m *CardMint) Flatten() (map[string]any, error) {
	flat := m.Common.ToMap()
	flat["Name"] = m.Name
	if m.Symbol != "" {
		flat["Symbol"] = m.Symbol
	}
	if m.URI != "" {
		flat["URI"] = m.URI
	}
	flat["Attack"] = m.Attack
	flat["Defense"] = m.Defense
	flat["Element"] = m.Element
	flat["Rarity"] = m.Rarity
	return flat, nil
}

// CardID returns the card ID this mint creates.
func (m *CardMint) CardID() ([32]byte, error) {
	accountID, err := sle.DecodeAccountID(m.Account)
	if err != nil {
		return [32]byte{}, err
	}
	return DeriveCardID(accountID, m.GetSequence()), nil
}

// Apply applies the mint to the ledger
func (m *CardMint) Apply(ctx *tx.ApplyContext) tx.Result {
	cardID := DeriveCardID(ctx.AccountID, m.GetSequence())

	// A card can only be minted once
	statsExists, err := ctx.View.Exists(keylet.Stats(cardID))
	if err != nil {
		return tx.TefINTERNAL
	}
	custodyExists, err := ctx.View.Exists(keylet.Custody(cardID))
	if err != nil {
		return tx.TefINTERNAL
	}
	if statsExists || custodyExists {
		return tx.TecDUPLICATE
	}

	// The stats and custody entries count against the owner reserve
	if res := ctx.CheckReserveIncrease(ctx.Account.Balance, ctx.Account.OwnerCount); !res.IsSuccess() {
		return res
	}

	stats := &sle.CardStats{
		Card:              cardID,
		Creator:           m.Account,
		Name:              m.Name,
		Symbol:            m.Symbol,
		URI:               m.URI,
		Attack:            m.Attack,
		Defense:           m.Defense,
		Element:           sle.Element(m.Element),
		Rarity:            sle.Rarity(m.Rarity),
		PreviousTxnID:     ctx.TxHash,
		PreviousTxnLgrSeq: ctx.Config.LedgerSequence,
	}
	statsData, err := sle.SerializeCardStats(stats)
	if err != nil {
		return tx.TefINTERNAL
	}
	if err := ctx.View.Insert(keylet.Stats(cardID), statsData); err != nil {
		return tx.TefINTERNAL
	}

	custody := &sle.Custody{
		Card:   cardID,
		Holder: m.Account,
	}
	if res := writeCustody(ctx, cardID, custody, true); !res.IsSuccess() {
		return res
	}

	ctx.Account.OwnerCount += 2
	return tx.TesSUCCESS
}
