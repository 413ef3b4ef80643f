package testing

// TxResult represents the result of applying a transaction.
type TxResult struct {
	// Code is the transaction engine result code (e.g., "tesSUCCESS").
	Code string

	// Success indicates whether the transaction was successfully applied.
	Success bool

	// Message provides additional details about the result.
	Message string

	// Metadata contains the serialized transaction metadata, if available.
	Metadata []byte
}

// Common transaction result codes.
const (
	// Success codes (applied to ledger)
	tesSUCCESS = "tesSUCCESS"

	// Claim codes (claimed cost only, effects discarded)
	tecCLAIM                = "tecCLAIM"
	tecUNFUNDED_PAYMENT     = "tecUNFUNDED_PAYMENT"
	tecFAILED_PROCESSING    = "tecFAILED_PROCESSING"
	tecNO_DST               = "tecNO_DST"
	tecNO_PERMISSION        = "tecNO_PERMISSION"
	tecNO_ENTRY             = "tecNO_ENTRY"
	tecINSUFFICIENT_RESERVE = "tecINSUFFICIENT_RESERVE"
	tecINTERNAL             = "tecINTERNAL"
	tecOVERSIZE             = "tecOVERSIZE"
	tecDUPLICATE            = "tecDUPLICATE"
	tecINSUFFICIENT_FUNDS   = "tecINSUFFICIENT_FUNDS"
	tecOBJECT_NOT_FOUND     = "tecOBJECT_NOT_FOUND"
	tecLISTING_NOT_ACTIVE   = "tecLISTING_NOT_ACTIVE"
	tecLISTING_ACTIVE       = "tecLISTING_ACTIVE"
	tecCANT_BUY_OWN_CARD    = "tecCANT_BUY_OWN_CARD"
	tecSETTLEMENT_FAILED    = "tecSETTLEMENT_FAILED"

	// Failure codes (not applied)
	tefFAILURE       = "tefFAILURE"
	tefALREADY       = "tefALREADY"
	tefBAD_AUTH      = "tefBAD_AUTH"
	tefINTERNAL      = "tefINTERNAL"
	tefPAST_SEQ      = "tefPAST_SEQ"
	tefMAX_LEDGER    = "tefMAX_LEDGER"
	tefBAD_SIGNATURE = "tefBAD_SIGNATURE"

	// Retry codes (not applied, retry later)
	terRETRY       = "terRETRY"
	terINSUF_FEE_B = "terINSUF_FEE_B"
	terNO_ACCOUNT  = "terNO_ACCOUNT"
	terPRE_SEQ     = "terPRE_SEQ"

	// Malformed transaction codes (invalid transaction format)
	temMALFORMED          = "temMALFORMED"
	temBAD_AMOUNT         = "temBAD_AMOUNT"
	temBAD_FEE            = "temBAD_FEE"
	temBAD_SEQUENCE       = "temBAD_SEQUENCE"
	temBAD_SIGNATURE      = "temBAD_SIGNATURE"
	temDST_IS_SRC         = "temDST_IS_SRC"
	temDST_NEEDED         = "temDST_NEEDED"
	temINVALID            = "temINVALID"
	temREDUNDANT          = "temREDUNDANT"
	temINVALID_ACCOUNT_ID = "temINVALID_ACCOUNT_ID"
)

// ResultSuccess returns a successful transaction result.
func ResultSuccess() TxResult {
	return TxResult{
		Code:    tesSUCCESS,
		Success: true,
		Message: "The transaction was applied.",
	}
}

// ResultWithCode creates a TxResult with the specified code.
func ResultWithCode(code string, success bool, message string) TxResult {
	return TxResult{
		Code:    code,
		Success: success,
		Message: message,
	}
}

// IsSuccess returns true if the result code indicates success.
func (r TxResult) IsSuccess() bool {
	return r.Code == tesSUCCESS
}

// IsClaimed returns true if the result code indicates the fee was claimed
// but the transaction effects were discarded (tec codes).
func (r TxResult) IsClaimed() bool {
	if len(r.Code) < 3 {
		return false
	}
	return r.Code[:3] == "tec"
}

// IsRetry returns true if the result code indicates a retry is possible.
func (r TxResult) IsRetry() bool {
	if len(r.Code) < 3 {
		return false
	}
	return r.Code[:3] == "ter"
}

// IsMalformed returns true if the result code indicates the transaction is malformed.
func (r TxResult) IsMalformed() bool {
	if len(r.Code) < 3 {
		return false
	}
	return r.Code[:3] == "tem"
}

// IsFailed returns true if the result code indicates a failure.
func (r TxResult) IsFailed() bool {
	if len(r.Code) < 3 {
		return false
	}
	return r.Code[:3] == "tef"
}
