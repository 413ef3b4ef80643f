package market

import (
	"errors"
	"strconv"

	"github.com/solcards/gocardsd/internal/core/tx"
	"github.com/solcards/gocardsd/internal/core/tx/sle"
)

func init() {
	tx.Register(tx.TypeCardList, func() tx.Transaction {
		return &CardList{BaseTx: *tx.NewBaseTx(tx.TypeCardList, "")}
	})
}

// CardList puts a held card up for sale. Relisting a card reuses its
// listing entry and keeps accumulating trade history.
type CardList struct {
	tx.BaseTx

	// Card is the card ID (64-character hex)
	Card string `json:"Card"`

	// Price is the asking price in lamports (decimal string)
	Price string `json:"Price"`
}

// Validate checks if the listing is well formed
func (l *CardList) Validate() error {
	if err := l.BaseTx.Validate(); err != nil {
		return err
	}
	if _, err := ParseCardID(l.Card); err != nil {
		return errors.New("temMALFORMED: invalid card id")
	}
	price, err := strconv.ParseInt(l.Price, 10, 64)
	if err != nil || price <= 0 {
		return errors.New("temBAD_AMOUNT: Price must be a positive lamport count")
	}
	return nil
}

// Flatten returns a flat map of transaction fields
func (l *CardList) Flatten() (map[string]any, error) {
	flat := l.Common.ToMap()
	flat["Card"] = l.Card
	flat["Price"] = l.Price
	return flat, nil
}

// Apply applies the listing to the ledger
func (l *CardList) Apply(ctx *tx.ApplyContext) tx.Result {
	cardID, err := ParseCardID(l.Card)
	if err != nil {
		return tx.TemMALFORMED
	}
	price, err := strconv.ParseUint(l.Price, 10, 64)
	if err != nil {
		return tx.TemBAD_AMOUNT
	}

	custody, err := readCustody(ctx.View, cardID)
	if err != nil {
		return tx.TefINTERNAL
	}
	// No custody record means the seller holds nothing to sell
	if custody == nil || custody.Holder != l.Account {
		return tx.TecNO_PERMISSION
	}

	listing, err := readListing(ctx.View, cardID)
	if err != nil {
		return tx.TefINTERNAL
	}

	record := sle.TradeRecord{
		Price:     price,
		Timestamp: ctx.CloseTime(),
		Action:    sle.TradeList,
	}

	if listing == nil {
		// First listing for this card
		if res := ctx.CheckReserveIncrease(ctx.Account.Balance, ctx.Account.OwnerCount); !res.IsSuccess() {
			return res
		}

		listing = &sle.Listing{
			Status:    sle.ListingActive,
			Seller:    l.Account,
			Card:      cardID,
			Price:     price,
			CreatedAt: ctx.CloseTime(),
		}
		if err := listing.AppendHistory(record); err != nil {
			return tx.TecOVERSIZE
		}
		if res := writeListing(ctx, cardID, listing, true); !res.IsSuccess() {
			return res
		}
		ctx.Account.OwnerCount++
		return tx.TesSUCCESS
	}

	if listing.Status == sle.ListingActive {
		return tx.TecLISTING_ACTIVE
	}

	listing.Status = sle.ListingActive
	listing.Seller = l.Account
	listing.Price = price
	listing.CreatedAt = ctx.CloseTime()
	if err := listing.AppendHistory(record); err != nil {
		return tx.TecOVERSIZE
	}

	return writeListing(ctx, cardID, listing, false)
}
