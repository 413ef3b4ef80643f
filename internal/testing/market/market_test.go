package market_test

import (
	"testing"

	"github.com/solcards/gocardsd/internal/core/tx"
	"github.com/solcards/gocardsd/internal/core/tx/market"
	"github.com/solcards/gocardsd/internal/core/tx/sle"
	jtx "github.com/solcards/gocardsd/internal/testing"
)

func mintStandardCard(t *testing.T, env *jtx.TestEnv, acc *jtx.Account) [32]byte {
	t.Helper()

	cardID, result := env.MintCard(acc, "Doge of Wall Street", "DOGE", "https://cards.example/doge.json", 80, 65, sle.ElementDank, sle.RarityLegendary)
	if !result.Success {
		t.Fatalf("Failed to mint card: %s - %s", result.Code, result.Message)
	}
	return cardID
}

func TestMintCard(t *testing.T) {
	env := jtx.NewTestEnv(t)

	alice := jtx.NewAccount("alice")
	env.Fund(alice)
	env.Close()

	cardID := mintStandardCard(t, env, alice)

	stats := env.CardStats(cardID)
	if stats == nil {
		t.Fatal("Card stats entry not created")
	}
	if stats.Creator != alice.Address {
		t.Errorf("Creator: expected %s, got %s", alice.Address, stats.Creator)
	}
	if stats.Name != "Doge of Wall Street" || stats.Symbol != "DOGE" {
		t.Errorf("Unexpected name/symbol: %q %q", stats.Name, stats.Symbol)
	}
	if stats.Attack != 80 || stats.Defense != 65 {
		t.Errorf("Unexpected stats: attack=%d defense=%d", stats.Attack, stats.Defense)
	}
	if stats.Element != sle.ElementDank || stats.Rarity != sle.RarityLegendary {
		t.Errorf("Unexpected element/rarity: %s %s", stats.Element, stats.Rarity)
	}

	custody := env.Custody(cardID)
	if custody == nil {
		t.Fatal("Custody entry not created")
	}
	if custody.Holder != alice.Address {
		t.Errorf("Holder: expected %s, got %s", alice.Address, custody.Holder)
	}

	if env.Listing(cardID) != nil {
		t.Error("Fresh card should have no listing")
	}
	if got := env.OwnerCount(alice); got != 2 {
		t.Errorf("OwnerCount: expected 2, got %d", got)
	}
}

func TestMintMalformed(t *testing.T) {
	env := jtx.NewTestEnv(t)

	alice := jtx.NewAccount("alice")
	env.Fund(alice)
	env.Close()

	cases := []struct {
		name            string
		cardName        string
		symbol          string
		uri             string
		attack, defense uint8
		element         sle.Element
		rarity          sle.Rarity
	}{
		{"EmptyName", "", "SYM", "https://x", 1, 1, sle.ElementToxic, sle.RarityCommon},
		{"NameTooLong", "This card name is way longer than the thirty-two character limit", "SYM", "https://x", 1, 1, sle.ElementToxic, sle.RarityCommon},
		{"SymbolTooLong", "Card", "TOOLONGSYMBOL", "https://x", 1, 1, sle.ElementToxic, sle.RarityCommon},
		{"AttackTooHigh", "Card", "SYM", "https://x", 101, 1, sle.ElementToxic, sle.RarityCommon},
		{"DefenseTooHigh", "Card", "SYM", "https://x", 1, 101, sle.ElementToxic, sle.RarityCommon},
		{"BadElement", "Card", "SYM", "https://x", 1, 1, sle.Element(9), sle.RarityCommon},
		{"BadRarity", "Card", "SYM", "https://x", 1, 1, sle.ElementToxic, sle.Rarity(9)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, result := env.MintCard(alice, tc.cardName, tc.symbol, tc.uri, tc.attack, tc.defense, tc.element, tc.rarity)
			if result.Code != "temMALFORMED" {
				t.Errorf("expected temMALFORMED, got %s", result.Code)
			}
		})
	}
}

func TestListCard(t *testing.T) {
	env := jtx.NewTestEnv(t)

	alice := jtx.NewAccount("alice")
	bob := jtx.NewAccount("bob")
	env.Fund(alice, bob)
	env.Close()

	cardID := mintStandardCard(t, env, alice)

	t.Run("UnknownCard", func(t *testing.T) {
		var bogus [32]byte
		bogus[31] = 1
		result := env.ListCard(alice, bogus, jtx.SOL(1))
		if result.Code != "tecNO_PERMISSION" {
			t.Errorf("expected tecNO_PERMISSION, got %s", result.Code)
		}
	})

	t.Run("NotHolder", func(t *testing.T) {
		result := env.ListCard(bob, cardID, jtx.SOL(1))
		if result.Code != "tecNO_PERMISSION" {
			t.Errorf("expected tecNO_PERMISSION, got %s", result.Code)
		}
	})

	t.Run("ZeroPrice", func(t *testing.T) {
		result := env.ListCard(alice, cardID, 0)
		if result.Code != "temBAD_AMOUNT" {
			t.Errorf("expected temBAD_AMOUNT, got %s", result.Code)
		}
	})

	result := env.ListCard(alice, cardID, jtx.SOL(1))
	if !result.Success {
		t.Fatalf("Failed to list card: %s", result.Code)
	}

	listing := env.Listing(cardID)
	if listing == nil {
		t.Fatal("Listing entry not created")
	}
	if listing.Status != sle.ListingActive {
		t.Errorf("Listing should be active, got %s", listing.Status)
	}
	if listing.Seller != alice.Address {
		t.Errorf("Seller: expected %s, got %s", alice.Address, listing.Seller)
	}
	if listing.Price != jtx.SOL(1) {
		t.Errorf("Price: expected %d, got %d", jtx.SOL(1), listing.Price)
	}
	if len(listing.History) != 1 {
		t.Fatalf("History: expected 1 record, got %d", len(listing.History))
	}
	if listing.History[0].Action != sle.TradeList || listing.History[0].Price != jtx.SOL(1) {
		t.Errorf("Unexpected first record: %+v", listing.History[0])
	}
	if listing.History[0].Timestamp != env.Now().Unix() {
		t.Errorf("Record timestamp: expected %d, got %d", env.Now().Unix(), listing.History[0].Timestamp)
	}
	if got := env.OwnerCount(alice); got != 3 {
		t.Errorf("OwnerCount: expected 3, got %d", got)
	}

	t.Run("AlreadyActive", func(t *testing.T) {
		result := env.ListCard(alice, cardID, jtx.SOL(2))
		if result.Code != "tecLISTING_ACTIVE" {
			t.Errorf("expected tecLISTING_ACTIVE, got %s", result.Code)
		}
		if env.Listing(cardID).Price != jtx.SOL(1) {
			t.Error("Failed relist must not change the price")
		}
	})
}

func TestUpdateListing(t *testing.T) {
	env := jtx.NewTestEnv(t)

	alice := jtx.NewAccount("alice")
	bob := jtx.NewAccount("bob")
	env.Fund(alice, bob)
	env.Close()

	cardID := mintStandardCard(t, env, alice)

	t.Run("NoListing", func(t *testing.T) {
		// A card that was never listed fails like a cancelled one
		result := env.UpdateListing(alice, cardID, jtx.SOL(2))
		if result.Code != "tecLISTING_NOT_ACTIVE" {
			t.Errorf("expected tecLISTING_NOT_ACTIVE, got %s", result.Code)
		}
	})

	if result := env.ListCard(alice, cardID, jtx.SOL(1)); !result.Success {
		t.Fatalf("Failed to list card: %s", result.Code)
	}

	t.Run("NotSeller", func(t *testing.T) {
		result := env.UpdateListing(bob, cardID, jtx.SOL(2))
		if result.Code != "tecNO_PERMISSION" {
			t.Errorf("expected tecNO_PERMISSION, got %s", result.Code)
		}
	})

	result := env.UpdateListing(alice, cardID, jtx.SOL(3))
	if !result.Success {
		t.Fatalf("Failed to update listing: %s", result.Code)
	}

	listing := env.Listing(cardID)
	if listing.Price != jtx.SOL(3) {
		t.Errorf("Price: expected %d, got %d", jtx.SOL(3), listing.Price)
	}
	if len(listing.History) != 2 {
		t.Fatalf("History: expected 2 records, got %d", len(listing.History))
	}
	if listing.History[1].Action != sle.TradeUpdatePrice {
		t.Errorf("Second record should be UpdatePrice, got %s", listing.History[1].Action)
	}

	t.Run("AfterCancel", func(t *testing.T) {
		if result := env.CancelListing(alice, cardID); !result.Success {
			t.Fatalf("Failed to cancel listing: %s", result.Code)
		}
		result := env.UpdateListing(alice, cardID, jtx.SOL(4))
		if result.Code != "tecLISTING_NOT_ACTIVE" {
			t.Errorf("expected tecLISTING_NOT_ACTIVE, got %s", result.Code)
		}
	})
}

func TestCancelListing(t *testing.T) {
	env := jtx.NewTestEnv(t)

	alice := jtx.NewAccount("alice")
	bob := jtx.NewAccount("bob")
	env.Fund(alice, bob)
	env.Close()

	cardID := mintStandardCard(t, env, alice)
	if result := env.ListCard(alice, cardID, jtx.SOL(5)); !result.Success {
		t.Fatalf("Failed to list card: %s", result.Code)
	}

	t.Run("NotSeller", func(t *testing.T) {
		result := env.CancelListing(bob, cardID)
		if result.Code != "tecNO_PERMISSION" {
			t.Errorf("expected tecNO_PERMISSION, got %s", result.Code)
		}
	})

	result := env.CancelListing(alice, cardID)
	if !result.Success {
		t.Fatalf("Failed to cancel listing: %s", result.Code)
	}

	listing := env.Listing(cardID)
	if listing == nil {
		t.Fatal("Listing entry should survive cancellation")
	}
	if listing.Status != sle.ListingNotActive {
		t.Errorf("Listing should be inactive, got %s", listing.Status)
	}
	if len(listing.History) != 2 {
		t.Fatalf("History: expected 2 records, got %d", len(listing.History))
	}
	last := listing.History[1]
	if last.Action != sle.TradeCancel || last.Price != jtx.SOL(5) {
		t.Errorf("Cancel record should carry the listing price: %+v", last)
	}

	t.Run("AlreadyCancelled", func(t *testing.T) {
		result := env.CancelListing(alice, cardID)
		if result.Code != "tecLISTING_NOT_ACTIVE" {
			t.Errorf("expected tecLISTING_NOT_ACTIVE, got %s", result.Code)
		}
	})

	t.Run("Relist", func(t *testing.T) {
		result := env.ListCard(alice, cardID, jtx.SOL(2))
		if !result.Success {
			t.Fatalf("Failed to relist: %s", result.Code)
		}
		listing := env.Listing(cardID)
		if listing.Status != sle.ListingActive || listing.Price != jtx.SOL(2) {
			t.Errorf("Relist should reactivate at the new price: %+v", listing)
		}
		if len(listing.History) != 3 {
			t.Errorf("History should accumulate across relists, got %d records", len(listing.History))
		}
	})
}

// TestPurchaseLifecycle walks a card through two sales: the creator's
// initial sale, then a secondary sale where the 3% creator royalty is
// carved out of the seller's proceeds.
func TestPurchaseLifecycle(t *testing.T) {
	env := jtx.NewTestEnv(t)

	alice := jtx.NewAccount("alice")
	bob := jtx.NewAccount("bob")
	carol := jtx.NewAccount("carol")
	env.Fund(alice, bob, carol)
	env.Close()

	fee := env.BaseFee()
	start := jtx.SOL(1000)

	cardID := mintStandardCard(t, env, alice)
	if result := env.ListCard(alice, cardID, jtx.SOL(1)); !result.Success {
		t.Fatalf("Failed to list card: %s", result.Code)
	}

	// First sale: alice is both creator and seller, so royalty and
	// proceeds both land on her account.
	result := env.PurchaseCard(bob, cardID)
	if !result.Success {
		t.Fatalf("Failed to purchase card: %s - %s", result.Code, result.Message)
	}

	if got, want := env.Balance(bob), start-fee-jtx.SOL(1); got != want {
		t.Errorf("bob balance after first sale: expected %d, got %d", want, got)
	}
	if got, want := env.Balance(alice), start-2*fee+jtx.SOL(1); got != want {
		t.Errorf("alice balance after first sale: expected %d, got %d", want, got)
	}

	custody := env.Custody(cardID)
	if custody.Holder != bob.Address {
		t.Errorf("Custody should move to the buyer, got %s", custody.Holder)
	}
	listing := env.Listing(cardID)
	if listing.Status != sle.ListingNotActive {
		t.Error("Listing should deactivate after purchase")
	}
	if listing.Seller != bob.Address {
		t.Errorf("Seller field should name the new holder, got %s", listing.Seller)
	}
	if len(listing.History) != 2 || listing.History[1].Action != sle.TradePurchase {
		t.Errorf("Unexpected history after first sale: %+v", listing.History)
	}

	// Secondary sale: bob lists at 2 SOL, carol buys. The royalty on
	// 2 SOL is 0.06 SOL to alice; bob keeps 1.94 SOL.
	if result := env.ListCard(bob, cardID, jtx.SOL(2)); !result.Success {
		t.Fatalf("Failed to relist: %s", result.Code)
	}
	result = env.PurchaseCard(carol, cardID)
	if !result.Success {
		t.Fatalf("Failed second purchase: %s - %s", result.Code, result.Message)
	}

	royalty, proceeds := market.RoyaltySplit(jtx.SOL(2))
	if royalty != 60_000_000 || proceeds != 1_940_000_000 {
		t.Fatalf("Unexpected split for 2 SOL: royalty=%d proceeds=%d", royalty, proceeds)
	}

	if got, want := env.Balance(carol), start-fee-jtx.SOL(2); got != want {
		t.Errorf("carol balance: expected %d, got %d", want, got)
	}
	if got, want := env.Balance(bob), start-2*fee-jtx.SOL(1)+proceeds; got != want {
		t.Errorf("bob balance: expected %d, got %d", want, got)
	}
	if got, want := env.Balance(alice), start-2*fee+jtx.SOL(1)+royalty; got != want {
		t.Errorf("alice balance: expected %d, got %d", want, got)
	}

	custody = env.Custody(cardID)
	if custody.Holder != carol.Address {
		t.Errorf("Custody should move to carol, got %s", custody.Holder)
	}
	listing = env.Listing(cardID)
	if listing.Seller != carol.Address || listing.Status != sle.ListingNotActive {
		t.Errorf("Unexpected listing after second sale: %+v", listing)
	}
	if len(listing.History) != 4 {
		t.Fatalf("History: expected 4 records, got %d", len(listing.History))
	}
	lastRecord := listing.History[3]
	if lastRecord.Action != sle.TradePurchase || lastRecord.Price != jtx.SOL(2) {
		t.Errorf("Unexpected final record: %+v", lastRecord)
	}

	// Stats are immutable through every trade
	stats := env.CardStats(cardID)
	if stats.Creator != alice.Address {
		t.Errorf("Creator must never change, got %s", stats.Creator)
	}
}

func TestPurchaseErrors(t *testing.T) {
	env := jtx.NewTestEnv(t)

	alice := jtx.NewAccount("alice")
	bob := jtx.NewAccount("bob")
	env.Fund(alice, bob)
	env.Close()

	cardID := mintStandardCard(t, env, alice)

	t.Run("NoListing", func(t *testing.T) {
		result := env.PurchaseCard(bob, cardID)
		if result.Code != "tecLISTING_NOT_ACTIVE" {
			t.Errorf("expected tecLISTING_NOT_ACTIVE, got %s", result.Code)
		}
	})

	if result := env.ListCard(alice, cardID, jtx.SOL(2)); !result.Success {
		t.Fatalf("Failed to list card: %s", result.Code)
	}

	t.Run("BuyOwnCard", func(t *testing.T) {
		result := env.PurchaseCard(alice, cardID)
		if result.Code != "tecCANT_BUY_OWN_CARD" {
			t.Errorf("expected tecCANT_BUY_OWN_CARD, got %s", result.Code)
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		if result := env.CancelListing(alice, cardID); !result.Success {
			t.Fatalf("Failed to cancel: %s", result.Code)
		}
		result := env.PurchaseCard(bob, cardID)
		if result.Code != "tecLISTING_NOT_ACTIVE" {
			t.Errorf("expected tecLISTING_NOT_ACTIVE, got %s", result.Code)
		}
	})
}

// TestPurchaseInsufficientFunds checks that a failed purchase claims
// only the fee: no balances move and the market entries stay untouched.
func TestPurchaseInsufficientFunds(t *testing.T) {
	env := jtx.NewTestEnv(t)

	alice := jtx.NewAccount("alice")
	bob := jtx.NewAccount("bob")
	env.Fund(alice)
	env.FundAmount(bob, jtx.SOL(2))
	env.Close()

	fee := env.BaseFee()

	cardID := mintStandardCard(t, env, alice)
	if result := env.ListCard(alice, cardID, jtx.SOL(3)); !result.Success {
		t.Fatalf("Failed to list card: %s", result.Code)
	}
	aliceBefore := env.Balance(alice)

	result := env.PurchaseCard(bob, cardID)
	if result.Code != "tecINSUFFICIENT_FUNDS" {
		t.Fatalf("expected tecINSUFFICIENT_FUNDS, got %s", result.Code)
	}

	// Fee claimed, everything else rolled back
	if got, want := env.Balance(bob), jtx.SOL(2)-fee; got != want {
		t.Errorf("bob balance: expected %d, got %d", want, got)
	}
	if got := env.Balance(alice); got != aliceBefore {
		t.Errorf("alice balance moved on a failed purchase: %d -> %d", aliceBefore, got)
	}
	if custody := env.Custody(cardID); custody.Holder != alice.Address {
		t.Errorf("Custody moved on a failed purchase: %s", custody.Holder)
	}
	listing := env.Listing(cardID)
	if listing.Status != sle.ListingActive || len(listing.History) != 1 {
		t.Errorf("Listing changed on a failed purchase: %+v", listing)
	}

	// The failed attempt still consumed bob's sequence
	if got := env.Seq(bob); got != 2 {
		t.Errorf("bob sequence: expected 2, got %d", got)
	}
}

// TestHistoryCap fills a listing's trade history to capacity and checks
// that the next recording operation fails without partial effects.
func TestHistoryCap(t *testing.T) {
	env := jtx.NewTestEnv(t)

	alice := jtx.NewAccount("alice")
	env.Fund(alice)
	env.Close()

	cardID := mintStandardCard(t, env, alice)
	if result := env.ListCard(alice, cardID, 100); !result.Success {
		t.Fatalf("Failed to list card: %s", result.Code)
	}

	// One List record so far; 15 price updates fill the history
	for i := 1; i <= sle.MaxHistory-1; i++ {
		result := env.UpdateListing(alice, cardID, uint64(100+i))
		if !result.Success {
			t.Fatalf("Update %d failed: %s", i, result.Code)
		}
	}

	listing := env.Listing(cardID)
	if len(listing.History) != sle.MaxHistory {
		t.Fatalf("History: expected %d records, got %d", sle.MaxHistory, len(listing.History))
	}

	result := env.UpdateListing(alice, cardID, 999)
	if result.Code != "tecOVERSIZE" {
		t.Fatalf("expected tecOVERSIZE, got %s", result.Code)
	}

	// The rejected update left the listing untouched
	listing = env.Listing(cardID)
	if len(listing.History) != sle.MaxHistory {
		t.Errorf("History grew past the cap: %d records", len(listing.History))
	}
	if listing.Price != uint64(100+sle.MaxHistory-1) {
		t.Errorf("Price changed on a failed update: %d", listing.Price)
	}
}

// TestListingReserve checks the owner reserve for the listing entry: the
// first two objects (stats and custody) are free, the third needs the
// account to hold the increased reserve.
func TestListingReserve(t *testing.T) {
	env := jtx.NewTestEnv(t)

	alice := jtx.NewAccount("alice")
	env.FundAmount(alice, jtx.SOL(1))
	env.Close()

	cardID := mintStandardCard(t, env, alice)

	result := env.ListCard(alice, cardID, jtx.SOL(1))
	if result.Code != "tecINSUFFICIENT_RESERVE" {
		t.Fatalf("expected tecINSUFFICIENT_RESERVE, got %s", result.Code)
	}

	env.Pay(alice, jtx.SOL(1))
	result = env.ListCard(alice, cardID, jtx.SOL(1))
	if !result.Success {
		t.Fatalf("Failed to list after topping up: %s", result.Code)
	}
}

// TestFormerOwnerLockout sells a card and checks that the previous
// holder is locked out of every listing call, even once the new holder
// has an active listing carrying history the old owner wrote.
func TestFormerOwnerLockout(t *testing.T) {
	env := jtx.NewTestEnv(t)

	alice := jtx.NewAccount("alice")
	bob := jtx.NewAccount("bob")
	env.Fund(alice, bob)
	env.Close()

	cardID := mintStandardCard(t, env, alice)
	if result := env.ListCard(alice, cardID, jtx.SOL(1)); !result.Success {
		t.Fatalf("Failed to list card: %s", result.Code)
	}
	if result := env.PurchaseCard(bob, cardID); !result.Success {
		t.Fatalf("Failed to purchase card: %s", result.Code)
	}

	if result := env.ListCard(alice, cardID, jtx.SOL(1)); result.Code != "tecNO_PERMISSION" {
		t.Errorf("former owner list: expected tecNO_PERMISSION, got %s", result.Code)
	}

	// Bob relists; the listing is active again with bob as seller.
	if result := env.ListCard(bob, cardID, jtx.SOL(3)); !result.Success {
		t.Fatalf("Failed to relist: %s", result.Code)
	}
	historyLen := len(env.Listing(cardID).History)

	if result := env.UpdateListing(alice, cardID, jtx.SOL(9)); result.Code != "tecNO_PERMISSION" {
		t.Errorf("former owner update: expected tecNO_PERMISSION, got %s", result.Code)
	}
	if result := env.CancelListing(alice, cardID); result.Code != "tecNO_PERMISSION" {
		t.Errorf("former owner cancel: expected tecNO_PERMISSION, got %s", result.Code)
	}
	if result := env.ListCard(alice, cardID, jtx.SOL(9)); result.Code != "tecNO_PERMISSION" {
		t.Errorf("former owner relist: expected tecNO_PERMISSION, got %s", result.Code)
	}

	// Bob's listing survived every rejected call untouched
	listing := env.Listing(cardID)
	if listing.Status != sle.ListingActive || listing.Seller != bob.Address {
		t.Errorf("Listing changed under rejected calls: %+v", listing)
	}
	if listing.Price != jtx.SOL(3) {
		t.Errorf("Price changed: expected %d, got %d", jtx.SOL(3), listing.Price)
	}
	if len(listing.History) != historyLen {
		t.Errorf("History grew on rejected calls: %d -> %d", historyLen, len(listing.History))
	}
}

// TestListingScenario runs one card through the full listing state
// machine in a single sitting: list, reprice, cancel, relist, sell.
func TestListingScenario(t *testing.T) {
	env := jtx.NewTestEnv(t)

	alice := jtx.NewAccount("alice")
	bob := jtx.NewAccount("bob")
	env.Fund(alice, bob)
	env.Close()

	fee := env.BaseFee()
	start := jtx.SOL(1000)
	cardID := mintStandardCard(t, env, alice)

	steps := []struct {
		name   string
		submit func() jtx.TxResult
	}{
		{"List", func() jtx.TxResult { return env.ListCard(alice, cardID, jtx.SOL(1)) }},
		{"Update", func() jtx.TxResult { return env.UpdateListing(alice, cardID, 1_500_000_000) }},
		{"Cancel", func() jtx.TxResult { return env.CancelListing(alice, cardID) }},
		{"Relist", func() jtx.TxResult { return env.ListCard(alice, cardID, jtx.SOL(1)) }},
		{"Purchase", func() jtx.TxResult { return env.PurchaseCard(bob, cardID) }},
	}
	for _, step := range steps {
		if result := step.submit(); !result.Success {
			t.Fatalf("%s failed: %s - %s", step.name, result.Code, result.Message)
		}
	}

	royalty, proceeds := market.RoyaltySplit(jtx.SOL(1))
	if royalty != 30_000_000 || proceeds != 970_000_000 {
		t.Fatalf("Unexpected split for 1 SOL: royalty=%d proceeds=%d", royalty, proceeds)
	}

	// Alice is creator and seller, so the full price lands on her
	// account. She paid five fees: the mint plus four listing calls.
	if got, want := env.Balance(alice), start-5*fee+royalty+proceeds; got != want {
		t.Errorf("alice balance: expected %d, got %d", want, got)
	}
	if got, want := env.Balance(bob), start-fee-jtx.SOL(1); got != want {
		t.Errorf("bob balance: expected %d, got %d", want, got)
	}
	if custody := env.Custody(cardID); custody.Holder != bob.Address {
		t.Errorf("Custody should move to bob, got %s", custody.Holder)
	}

	listing := env.Listing(cardID)
	if listing.Status != sle.ListingNotActive {
		t.Errorf("Listing should be inactive after the sale, got %s", listing.Status)
	}
	want := []struct {
		action sle.TradeAction
		price  uint64
	}{
		{sle.TradeList, jtx.SOL(1)},
		{sle.TradeUpdatePrice, 1_500_000_000},
		{sle.TradeCancel, 1_500_000_000},
		{sle.TradeList, jtx.SOL(1)},
		{sle.TradePurchase, jtx.SOL(1)},
	}
	if len(listing.History) != len(want) {
		t.Fatalf("History: expected %d records, got %d", len(want), len(listing.History))
	}
	for i, w := range want {
		rec := listing.History[i]
		if rec.Action != w.action || rec.Price != w.price {
			t.Errorf("Record %d: expected %s@%d, got %s@%d", i, w.action, w.price, rec.Action, rec.Price)
		}
	}
}

func TestPurchaseSigned(t *testing.T) {
	env := jtx.NewTestEnv(t)

	alice := jtx.NewAccount("alice")
	bob := jtx.NewAccountWithKeyType("bob", jtx.KeyTypeSecp256k1)
	env.Fund(alice, bob)
	env.Close()

	cardID := mintStandardCard(t, env, alice)
	if result := env.ListCard(alice, cardID, jtx.SOL(1)); !result.Success {
		t.Fatalf("Failed to list card: %s", result.Code)
	}

	purchase := &market.CardPurchase{
		BaseTx: *tx.NewBaseTx(tx.TypeCardPurchase, bob.Address),
		Card:   market.FormatCardID(cardID),
	}
	result := env.SubmitSigned(purchase)
	if !result.Success {
		t.Fatalf("Signed purchase failed: %s - %s", result.Code, result.Message)
	}
	if custody := env.Custody(cardID); custody.Holder != bob.Address {
		t.Errorf("Custody should move to bob, got %s", custody.Holder)
	}
}
