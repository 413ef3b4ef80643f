package market

import (
	"errors"

	"github.com/solcards/gocardsd/internal/core/tx"
	"github.com/solcards/gocardsd/internal/core/tx/sle"
)

func init() {
	tx.Register(tx.TypeCardListingCancel, func() tx.Transaction {
		return &CardListingCancel{BaseTx: *tx.NewBaseTx(tx.TypeCardListingCancel, "")}
	})
}

// CardListingCancel deactivates an active listing. The listing entry
// and its trade history survive for later relisting.
type CardListingCancel struct {
	tx.BaseTx

	// Card is the card ID (64-character hex)
	Card string `json:"Card"`
}

// Validate checks if the cancel is well formed
func (c *CardListingCancel) Validate() error {
	if err := c.BaseTx.Validate(); err != nil {
		return err
	}
	if _, err := ParseCardID(c.Card); err != nil {
		return errors.New("temMALFORMED: invalid card id")
	}
	return nil
}

// Flatten returns a flat map of transaction fields
func (c *CardListingCancel) Flatten() (map[string]any, error) {
	flat := c.Common.ToMap()
	flat["Card"] = c.Card
	return flat, nil
}

// Apply applies the cancellation to the ledger
func (c *CardListingCancel) Apply(ctx *tx.ApplyContext) tx.Result {
	cardID, err := ParseCardID(c.Card)
	if err != nil {
		return tx.TemMALFORMED
	}

	listing, err := readListing(ctx.View, cardID)
	if err != nil {
		return tx.TefINTERNAL
	}
	if listing == nil || listing.Status != sle.ListingActive {
		return tx.TecLISTING_NOT_ACTIVE
	}
	if listing.Seller != c.Account {
		return tx.TecNO_PERMISSION
	}

	// The stored seller is not ground truth; the caller must still hold
	// the card
	custody, err := readCustody(ctx.View, cardID)
	if err != nil {
		return tx.TefINTERNAL
	}
	if custody == nil || custody.Holder != c.Account {
		return tx.TecNO_PERMISSION
	}

	listing.Status = sle.ListingNotActive
	if err := listing.AppendHistory(sle.TradeRecord{
		Price:     listing.Price,
		Timestamp: ctx.CloseTime(),
		Action:    sle.TradeCancel,
	}); err != nil {
		return tx.TecOVERSIZE
	}

	return writeListing(ctx, cardID, listing, false)
}
