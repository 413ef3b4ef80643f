package market

import (
	"errors"

	"github.com/solcards/gocardsd/internal/core/tx"
	"github.com/solcards/gocardsd/internal/core/tx/sle"
)

func init() {
	tx.Register(tx.TypeCardPurchase, func() tx.Transaction {
		return &CardPurchase{BaseTx: *tx.NewBaseTx(tx.TypeCardPurchase, "")}
	})
}

// CardPurchase buys a listed card at its asking price. Settlement moves
// the full price out of the buyer, splits it between the creator
// royalty and the seller proceeds, transfers custody and deactivates
// the listing. All of it commits atomically or not at all.
type CardPurchase struct {
	tx.BaseTx

	// Card is the card ID (64-character hex)
	Card string `json:"Card"`
}

// Validate checks if the purchase is well formed
func (p *CardPurchase) Validate() error {
	if err := p.BaseTx.Validate(); err != nil {
		return err
	}
	if _, err := ParseCardID(p.Card); err != nil {
		return errors.New("temMALFORMED: invalid card id")
	}
	return nil
}

// Flatten returns a flat map of transaction fields
func (p *CardPurchase) Flatten() (map[string]any, error) {
	flat := p.Common.ToMap()
	flat["Card"] = p.Card
	return flat, nil
}

// Apply applies the purchase to the ledger
func (p *CardPurchase) Apply(ctx *tx.ApplyContext) tx.Result {
	cardID, err := ParseCardID(p.Card)
	if err != nil {
		return tx.TemMALFORMED
	}

	listing, err := readListing(ctx.View, cardID)
	if err != nil {
		return tx.TefINTERNAL
	}
	// An absent listing and a deactivated one look the same to a buyer
	if listing == nil || listing.Status != sle.ListingActive {
		return tx.TecLISTING_NOT_ACTIVE
	}
	if listing.Seller == p.Account {
		return tx.TecCANT_BUY_OWN_CARD
	}

	custody, err := readCustody(ctx.View, cardID)
	if err != nil {
		return tx.TefINTERNAL
	}
	stats, err := readCardStats(ctx.View, cardID)
	if err != nil {
		return tx.TefINTERNAL
	}
	// A listing without matching custody and stats, or held by someone
	// other than the seller, cannot settle
	if custody == nil || stats == nil || custody.Holder != listing.Seller {
		return tx.TecSETTLEMENT_FAILED
	}

	// The buyer pays the full price and must keep its reserve.
	// Fee has already been deducted from ctx.Account.
	price := listing.Price
	reserve := ctx.AccountReserve(ctx.Account.OwnerCount)
	if ctx.Account.Balance < price || ctx.Account.Balance-price < reserve {
		return tx.TecINSUFFICIENT_FUNDS
	}

	royalty, proceeds := RoyaltySplit(price)

	ctx.Account.Balance -= price

	// The creator royalty comes out of the seller's proceeds. When the
	// buyer is the creator the royalty flows straight back to them.
	if royalty > 0 {
		if stats.Creator == p.Account {
			ctx.Account.Balance += royalty
		} else if res := creditAccount(ctx, stats.Creator, royalty); !res.IsSuccess() {
			return res
		}
	}
	if res := creditAccount(ctx, listing.Seller, proceeds); !res.IsSuccess() {
		return res
	}

	// Transfer custody to the buyer
	custody.Holder = p.Account
	if res := writeCustody(ctx, cardID, custody, false); !res.IsSuccess() {
		return res
	}

	// Deactivate the listing and record the sale. The seller field now
	// names the buyer, the card's new holder.
	listing.Status = sle.ListingNotActive
	listing.Seller = p.Account
	if err := listing.AppendHistory(sle.TradeRecord{
		Price:     price,
		Timestamp: ctx.CloseTime(),
		Action:    sle.TradePurchase,
	}); err != nil {
		return tx.TecOVERSIZE
	}

	return writeListing(ctx, cardID, listing, false)
}
