package market

import (
	"errors"
	"strconv"

	"github.com/solcards/gocardsd/internal/core/tx"
	"github.com/solcards/gocardsd/internal/core/tx/sle"
)

func init() {
	tx.Register(tx.TypeCardListingUpdate, func() tx.Transaction {
		return &CardListingUpdate{BaseTx: *tx.NewBaseTx(tx.TypeCardListingUpdate, "")}
	})
}

// CardListingUpdate changes the asking price of an active listing.
type CardListingUpdate struct {
	tx.BaseTx

	// Card is the card ID (64-character hex)
	Card string `json:"Card"`

	// Price is the new asking price in lamports (decimal string)
	Price string `json:"Price"`
}

// Validate checks if the update is well formed
func (u *CardListingUpdate) Validate() error {
	if err := u.BaseTx.Validate(); err != nil {
		return err
	}
	if _, err := ParseCardID(u.Card); err != nil {
		return errors.New("temMALFORMED: invalid card id")
	}
	price, err := strconv.ParseInt(u.Price, 10, 64)
	if err != nil || price <= 0 {
		return errors.New("temBAD_AMOUNT: Price must be a positive lamport count")
	}
	return nil
}

// Flatten returns a flat map of transaction fields
func (u *CardListingUpdate) Flatten() (map[string]any, error) {
	flat := u.Common.ToMap()
	flat["Card"] = u.Card
	flat["Price"] = u.Price
	return flat, nil
}

// Apply applies the price update to the ledger
func (u *CardListingUpdate) Apply(ctx *tx.ApplyContext) tx.Result {
	cardID, err := ParseCardID(u.Card)
	if err != nil {
		return tx.TemMALFORMED
	}
	price, err := strconv.ParseUint(u.Price, 10, 64)
	if err != nil {
		return tx.TemBAD_AMOUNT
	}

	listing, err := readListing(ctx.View, cardID)
	if err != nil {
		return tx.TefINTERNAL
	}
	if listing == nil || listing.Status != sle.ListingActive {
		return tx.TecLISTING_NOT_ACTIVE
	}
	if listing.Seller != u.Account {
		return tx.TecNO_PERMISSION
	}

	// The stored seller is not ground truth; the caller must still hold
	// the card
	custody, err := readCustody(ctx.View, cardID)
	if err != nil {
		return tx.TefINTERNAL
	}
	if custody == nil || custody.Holder != u.Account {
		return tx.TecNO_PERMISSION
	}

	listing.Price = price
	if err := listing.AppendHistory(sle.TradeRecord{
		Price:     price,
		Timestamp: ctx.CloseTime(),
		Action:    sle.TradeUpdatePrice,
	}); err != nil {
		return tx.TecOVERSIZE
	}

	return writeListing(ctx, cardID, listing, false)
}
