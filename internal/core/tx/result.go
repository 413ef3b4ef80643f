package tx

import "fmt"

// Result represents a transaction result code
type Result int

// Transaction result codes, organized by category: tes, tec, tef, tel,
// tem, ter. The numeric layout determines category membership, so new
// codes must stay inside their family's range.
const (
	// tesSUCCESS (0-99)
	TesSUCCESS Result = 0

	// tec codes (100-199): transaction failed but the fee was claimed
	// and the sequence consumed
	TecCLAIM              Result = 100
	TecUNFUNDED_PAYMENT   Result = 104
	TecFAILED_PROCESSING  Result = 105
	TecNO_DST             Result = 124
	TecNO_PERMISSION      Result = 139
	TecNO_ENTRY           Result = 140
	TecINSUFFICIENT_RESERVE Result = 141
	TecINTERNAL           Result = 144
	TecOVERSIZE           Result = 145
	TecDUPLICATE          Result = 149
	TecINSUFFICIENT_FUNDS Result = 159
	TecOBJECT_NOT_FOUND   Result = 160

	// Marketplace-specific tec codes
	TecLISTING_NOT_ACTIVE Result = 180
	TecLISTING_ACTIVE     Result = 181
	TecCANT_BUY_OWN_CARD  Result = 182
	TecSETTLEMENT_FAILED  Result = 183

	// tef codes (-199 to -100): transaction failed, not applied
	TefFAILURE       Result = -199
	TefALREADY       Result = -198
	TefBAD_AUTH      Result = -196
	TefEXCEPTION     Result = -193
	TefINTERNAL      Result = -192
	TefPAST_SEQ      Result = -190
	TefMAX_LEDGER    Result = -187
	TefBAD_SIGNATURE Result = -186

	// tel codes (-399 to -300): local error, transaction not relayed
	TelLOCAL_ERROR                       Result = -399
	TelINSUF_FEE_P                       Result = -394
	TelWRONG_NETWORK                     Result = -386
	TelREQUIRES_NETWORK_ID               Result = -385
	TelNETWORK_ID_MAKES_TX_NON_CANONICAL Result = -384

	// tem codes (-299 to -200): malformed transaction
	TemMALFORMED          Result = -299
	TemBAD_AMOUNT         Result = -298
	TemBAD_FEE            Result = -295
	TemBAD_SEQUENCE       Result = -283
	TemBAD_SIGNATURE      Result = -282
	TemBAD_SRC_ACCOUNT    Result = -281
	TemDST_IS_SRC         Result = -279
	TemDST_NEEDED         Result = -278
	TemINVALID            Result = -277
	TemINVALID_FLAG       Result = -276
	TemREDUNDANT          Result = -275
	TemINVALID_ACCOUNT_ID Result = -268

	// ter codes (-99 to -1): retry later
	TerRETRY       Result = -99
	TerINSUF_FEE_B Result = -97
	TerNO_ACCOUNT  Result = -96
	TerPRE_SEQ     Result = -92
)

// String returns the string representation of the result code
func (r Result) String() string {
	switch r {
	case TesSUCCESS:
		return "tesSUCCESS"
	case TecCLAIM:
		return "tecCLAIM"
	case TecUNFUNDED_PAYMENT:
		return "tecUNFUNDED_PAYMENT"
	case TecFAILED_PROCESSING:
		return "tecFAILED_PROCESSING"
	case TecNO_DST:
		return "tecNO_DST"
	case TecNO_PERMISSION:
		return "tecNO_PERMISSION"
	case TecNO_ENTRY:
		return "tecNO_ENTRY"
	case TecINSUFFICIENT_RESERVE:
		return "tecINSUFFICIENT_RESERVE"
	case TecINTERNAL:
		return "tecINTERNAL"
	case TecOVERSIZE:
		return "tecOVERSIZE"
	case TecDUPLICATE:
		return "tecDUPLICATE"
	case TecINSUFFICIENT_FUNDS:
		return "tecINSUFFICIENT_FUNDS"
	case TecOBJECT_NOT_FOUND:
		return "tecOBJECT_NOT_FOUND"
	case TecLISTING_NOT_ACTIVE:
		return "tecLISTING_NOT_ACTIVE"
	case TecLISTING_ACTIVE:
		return "tecLISTING_ACTIVE"
	case TecCANT_BUY_OWN_CARD:
		return "tecCANT_BUY_OWN_CARD"
	case TecSETTLEMENT_FAILED:
		return "tecSETTLEMENT_FAILED"
	case TefFAILURE:
		return "tefFAILURE"
	case TefALREADY:
		return "tefALREADY"
	case TefBAD_AUTH:
		return "tefBAD_AUTH"
	case TefEXCEPTION:
		return "tefEXCEPTION"
	case TefINTERNAL:
		return "tefINTERNAL"
	case TefPAST_SEQ:
		return "tefPAST_SEQ"
	case TefMAX_LEDGER:
		return "tefMAX_LEDGER"
	case TefBAD_SIGNATURE:
		return "tefBAD_SIGNATURE"
	case TelLOCAL_ERROR:
		return "telLOCAL_ERROR"
	case TelINSUF_FEE_P:
		return "telINSUF_FEE_P"
	case TelWRONG_NETWORK:
		return "telWRONG_NETWORK"
	case TelREQUIRES_NETWORK_ID:
		return "telREQUIRES_NETWORK_ID"
	case TelNETWORK_ID_MAKES_TX_NON_CANONICAL:
		return "telNETWORK_ID_MAKES_TX_NON_CANONICAL"
	case TemMALFORMED:
		return "temMALFORMED"
	case TemBAD_AMOUNT:
		return "temBAD_AMOUNT"
	case TemBAD_FEE:
		return "temBAD_FEE"
	case TemBAD_SEQUENCE:
		return "temBAD_SEQUENCE"
	case TemBAD_SIGNATURE:
		return "temBAD_SIGNATURE"
	case TemBAD_SRC_ACCOUNT:
		return "temBAD_SRC_ACCOUNT"
	case TemDST_IS_SRC:
		return "temDST_IS_SRC"
	case TemDST_NEEDED:
		return "temDST_NEEDED"
	case TemINVALID:
		return "temINVALID"
	case TemINVALID_FLAG:
		return "temINVALID_FLAG"
	case TemREDUNDANT:
		return "temREDUNDANT"
	case TemINVALID_ACCOUNT_ID:
		return "temINVALID_ACCOUNT_ID"
	case TerRETRY:
		return "terRETRY"
	case TerINSUF_FEE_B:
		return "terINSUF_FEE_B"
	case TerNO_ACCOUNT:
		return "terNO_ACCOUNT"
	case TerPRE_SEQ:
		return "terPRE_SEQ"
	default:
		return fmt.Sprintf("Unknown(%d)", int(r))
	}
}

// IsSuccess returns true if the result indicates success
func (r Result) IsSuccess() bool {
	return r == TesSUCCESS
}

// IsTec returns true if this is a tec (claimed cost) code
func (r Result) IsTec() bool {
	return r >= 100 && r < 200
}

// IsTef returns true if this is a tef (failure) code
func (r Result) IsTef() bool {
	return r >= -199 && r <= -100
}

// IsTel returns true if this is a tel (local error) code
func (r Result) IsTel() bool {
	return r >= -399 && r <= -300
}

// IsTem returns true if this is a tem (malformed) code
func (r Result) IsTem() bool {
	return r >= -299 && r <= -200
}

// IsTer returns true if this is a ter (retry) code
func (r Result) IsTer() bool {
	return r >= -99 && r <= -1
}

// IsApplied returns true if the transaction was applied to the ledger.
// This is true for tesSUCCESS and all tec codes.
func (r Result) IsApplied() bool {
	return r.IsSuccess() || r.IsTec()
}

// ShouldRetry returns true if the transaction should be retried later
func (r Result) ShouldRetry() bool {
	return r.IsTer()
}

// Message returns a human-readable message for the result
func (r Result) Message() string {
	switch r {
	case TesSUCCESS:
		return "The transaction was applied."
	case TecCLAIM:
		return "Fee claimed. No action taken."
	case TecUNFUNDED_PAYMENT:
		return "Insufficient balance to send."
	case TecNO_DST:
		return "Destination account does not exist."
	case TecNO_PERMISSION:
		return "The account is not authorized to perform this operation."
	case TecNO_ENTRY:
		return "No matching ledger entry found."
	case TecINSUFFICIENT_RESERVE:
		return "Insufficient reserve to complete requested operation."
	case TecOVERSIZE:
		return "The object is too big."
	case TecDUPLICATE:
		return "An object with this identity already exists."
	case TecINSUFFICIENT_FUNDS:
		return "The buyer cannot cover the purchase price and fee."
	case TecOBJECT_NOT_FOUND:
		return "A requested object could not be located."
	case TecLISTING_NOT_ACTIVE:
		return "The listing is not active."
	case TecLISTING_ACTIVE:
		return "The card already has an active listing."
	case TecCANT_BUY_OWN_CARD:
		return "An account cannot purchase its own listing."
	case TecSETTLEMENT_FAILED:
		return "Settlement could not be completed; no balances were moved."
	case TemBAD_AMOUNT:
		return "Can only use positive amounts."
	case TemBAD_FEE:
		return "Invalid fee."
	case TemBAD_SEQUENCE:
		return "Sequence is not valid for this transaction."
	case TemDST_IS_SRC:
		return "Destination may not be source."
	case TemDST_NEEDED:
		return "Destination is required."
	case TemINVALID:
		return "The transaction is ill-formed."
	case TemINVALID_FLAG:
		return "Invalid flags."
	case TerNO_ACCOUNT:
		return "The source account does not exist."
	case TerPRE_SEQ:
		return "Missing/inapplicable prior transaction."
	case TerINSUF_FEE_B:
		return "Account balance can't pay fee."
	case TefBAD_SIGNATURE:
		return "Invalid signature."
	case TefBAD_AUTH:
		return "Transaction is not signed by the account's key."
	case TefPAST_SEQ:
		return "Sequence number has already passed."
	case TefMAX_LEDGER:
		return "Ledger sequence too high."
	default:
		return r.String()
	}
}
