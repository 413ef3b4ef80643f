package tx

// Type represents a transaction type.
type Type uint16

// All supported transaction types.
const (
	TypePayment Type = 0

	TypeCardMint          Type = 30
	TypeCardList          Type = 31
	TypeCardListingUpdate Type = 32
	TypeCardListingCancel Type = 33
	TypeCardPurchase      Type = 34
)

// String returns the canonical name of the transaction type.
func (t Type) String() string {
	switch t {
	case TypePayment:
		return "Payment"
	case TypeCardMint:
		return "CardMint"
	case TypeCardList:
		return "CardList"
	case TypeCardListingUpdate:
		return "CardListingUpdate"
	case TypeCardListingCancel:
		return "CardListingCancel"
	case TypeCardPurchase:
		return "CardPurchase"
	default:
		return "Unknown"
	}
}

// TypeFromName resolves a transaction type from its canonical name.
func TypeFromName(name string) (Type, bool) {
	switch name {
	case "Payment":
		return TypePayment, true
	case "CardMint":
		return TypeCardMint, true
	case "CardList":
		return TypeCardList, true
	case "CardListingUpdate":
		return TypeCardListingUpdate, true
	case "CardListingCancel":
		return TypeCardListingCancel, true
	case "CardPurchase":
		return TypeCardPurchase, true
	default:
		return 0, false
	}
}
