package tx

import (
	"encoding/json"
	"strconv"

	"github.com/solcards/gocardsd/internal/core/lamport"
	"github.com/solcards/gocardsd/internal/core/ledger/keylet"
	"github.com/solcards/gocardsd/internal/core/tx/sle"
	"github.com/solcards/gocardsd/internal/crypto"
)

// Validation constants
const (
	// LegacyNetworkIDThreshold is the threshold for legacy network IDs.
	// Networks with ID <= this value must not carry NetworkID in transactions.
	LegacyNetworkIDThreshold = 1024

	// DefaultMaxFee is the default maximum fee (0.1 SOL)
	DefaultMaxFee = 100_000_000
)

// Engine processes transactions against a ledger
type Engine struct {
	// view provides access to ledger state
	view LedgerView

	// config holds engine configuration
	config EngineConfig
}

// EngineConfig holds configuration for the transaction engine
type EngineConfig struct {
	// BaseFee is the current base fee in lamports
	BaseFee uint64

	// ReserveBase is the base reserve in lamports
	ReserveBase uint64

	// ReserveIncrement is the owner reserve increment in lamports
	ReserveIncrement uint64

	// LedgerSequence is the current ledger sequence
	LedgerSequence uint32

	// CloseTime is the close time the applying ledger will carry,
	// in Unix seconds
	CloseTime int64

	// SkipSignatureVerification skips signature checks (for testing/standalone)
	SkipSignatureVerification bool

	// Standalone indicates if running in standalone mode
	Standalone bool

	// NetworkID is the network identifier for this node.
	// Networks with ID > 1024 require NetworkID in transactions;
	// legacy networks must not carry one.
	NetworkID uint32

	// MaxFee is the maximum allowed fee in lamports.
	// Transactions with fees exceeding this are rejected in preflight.
	MaxFee uint64
}

// LedgerView provides read/write access to ledger state
type LedgerView interface {
	// Read reads a ledger entry
	Read(k keylet.Keylet) ([]byte, error)

	// Exists checks if an entry exists
	Exists(k keylet.Keylet) (bool, error)

	// Insert adds a new entry
	Insert(k keylet.Keylet, data []byte) error

	// Update modifies an existing entry
	Update(k keylet.Keylet, data []byte) error

	// Erase removes an entry
	Erase(k keylet.Keylet) error

	// AdjustLamportsDestroyed records destroyed lamports
	AdjustLamportsDestroyed(amount lamport.Amount)

	// ForEach iterates over all state entries.
	// If fn returns false, iteration stops early.
	ForEach(fn func(key [32]byte, data []byte) bool) error
}

// ApplyResult contains the result of applying a transaction
type ApplyResult struct {
	// Result is the transaction result code
	Result Result

	// Applied indicates if the transaction was applied to the ledger
	Applied bool

	// Fee is the fee charged (in lamports)
	Fee uint64

	// TxHash is the hash of the transaction
	TxHash [32]byte

	// Metadata contains the changes made by the transaction
	Metadata *Metadata

	// Message is a human-readable result message
	Message string
}

// Metadata tracks changes made by a transaction
type Metadata struct {
	// AffectedNodes lists all nodes that were created, modified, or deleted
	AffectedNodes []AffectedNode `json:"AffectedNodes"`

	// TransactionIndex is the index in the ledger
	TransactionIndex uint32 `json:"TransactionIndex"`

	// TransactionResult is the result code
	TransactionResult Result `json:"-"`
}

// AffectedNode describes one ledger entry touched by a transaction
type AffectedNode struct {
	NodeType        string `json:"NodeType"`
	LedgerEntryType string `json:"LedgerEntryType"`
	LedgerIndex     string `json:"LedgerIndex"`
}

// MarshalJSON renders the metadata with the result code as its name.
func (m Metadata) MarshalJSON() ([]byte, error) {
	type alias Metadata
	return json.Marshal(struct {
		alias
		TransactionResult string `json:"TransactionResult"`
	}{
		alias:             alias(m),
		TransactionResult: m.TransactionResult.String(),
	})
}

// NewEngine creates a new transaction engine
func NewEngine(view LedgerView, config EngineConfig) *Engine {
	return &Engine{
		view:   view,
		config: config,
	}
}

// txHashPrefix namespaces transaction hashes.
var txHashPrefix = []byte("TXN\x00")

// ComputeTransactionHash computes the hash of a transaction: the
// half-hash over the hash prefix and the serialized transaction.
func ComputeTransactionHash(tx Transaction) ([32]byte, error) {
	var txBytes []byte

	// Use raw bytes if available (from parsing), otherwise re-serialize
	if rawBytes := tx.GetRawBytes(); len(rawBytes) > 0 {
		txBytes = rawBytes
	} else {
		serialized, err := ToJSON(tx)
		if err != nil {
			return [32]byte{}, err
		}
		txBytes = serialized
	}

	return crypto.Sha512Half(txHashPrefix, txBytes), nil
}

// Apply processes a transaction and applies it to the ledger
func (e *Engine) Apply(tx Transaction) ApplyResult {
	// Step 1: Preflight checks (syntax validation)
	result := e.preflight(tx)
	if !result.IsSuccess() {
		return ApplyResult{
			Result:  result,
			Applied: false,
			Message: result.Message(),
		}
	}

	// Step 2: Preclaim checks (validate against ledger state)
	result = e.preclaim(tx)
	if !result.IsSuccess() && !result.IsTec() {
		return ApplyResult{
			Result:  result,
			Applied: false,
			Message: result.Message(),
		}
	}

	// Step 3: Calculate the fee
	fee := e.calculateFee(tx)

	// Step 4: Compute transaction hash
	txHash, err := ComputeTransactionHash(tx)
	if err != nil {
		return ApplyResult{
			Result:  TefINTERNAL,
			Applied: false,
			Fee:     fee,
			Message: "failed to compute transaction hash: " + err.Error(),
		}
	}

	// Step 5: Apply the transaction
	metadata := &Metadata{
		AffectedNodes:     make([]AffectedNode, 0),
		TransactionResult: TesSUCCESS,
	}

	if result.IsSuccess() {
		result = e.doApply(tx, metadata, txHash)
	}

	metadata.TransactionResult = result

	// Record fee as destroyed
	if result.IsApplied() {
		e.view.AdjustLamportsDestroyed(lamport.Amount(fee))
	}

	return ApplyResult{
		Result:   result,
		Applied:  result.IsApplied(),
		Fee:      fee,
		TxHash:   txHash,
		Metadata: metadata,
		Message:  result.Message(),
	}
}

// preflight performs initial validation on the transaction
func (e *Engine) preflight(tx Transaction) Result {
	common := tx.GetCommon()

	if common.Account == "" {
		return TemBAD_SRC_ACCOUNT
	}
	if common.TransactionType == "" {
		return TemINVALID
	}

	if result := e.validateNetworkID(common); result != TesSUCCESS {
		return result
	}

	if result := e.validateFee(common); result != TesSUCCESS {
		return result
	}

	// Sequence must be present
	if common.Sequence == nil {
		return TemBAD_SEQUENCE
	}

	// Verify signature (unless skipped for testing/standalone)
	if !e.config.SkipSignatureVerification {
		if err := VerifySignature(tx); err != nil {
			return TemBAD_SIGNATURE
		}
	}

	// Transaction-specific validation
	if err := tx.Validate(); err != nil {
		return parseValidationError(err)
	}

	return TesSUCCESS
}

// parseValidationError extracts a result code from a validation error
// message. Validate() implementations include the code as a prefix
// (e.g. "temBAD_AMOUNT: message"); unrecognized messages map to
// temINVALID.
func parseValidationError(err error) Result {
	msg := err.Error()

	codes := map[string]Result{
		"temMALFORMED":          TemMALFORMED,
		"temBAD_AMOUNT":         TemBAD_AMOUNT,
		"temBAD_FEE":            TemBAD_FEE,
		"temBAD_SEQUENCE":       TemBAD_SEQUENCE,
		"temBAD_SIGNATURE":      TemBAD_SIGNATURE,
		"temBAD_SRC_ACCOUNT":    TemBAD_SRC_ACCOUNT,
		"temDST_IS_SRC":         TemDST_IS_SRC,
		"temDST_NEEDED":         TemDST_NEEDED,
		"temINVALID":            TemINVALID,
		"temINVALID_FLAG":       TemINVALID_FLAG,
		"temREDUNDANT":          TemREDUNDANT,
		"temINVALID_ACCOUNT_ID": TemINVALID_ACCOUNT_ID,
	}

	for code, result := range codes {
		if len(msg) >= len(code) && msg[:len(code)] == code {
			if len(msg) == len(code) || msg[len(code)] == ':' || msg[len(code)] == ' ' {
				return result
			}
		}
	}

	return TemINVALID
}

// validateNetworkID validates the NetworkID field.
// Legacy networks (ID <= 1024) cannot carry NetworkID in transactions;
// newer networks require it and it must match.
func (e *Engine) validateNetworkID(common *Common) Result {
	nodeNetworkID := e.config.NetworkID
	txNetworkID := common.NetworkID

	if nodeNetworkID <= LegacyNetworkIDThreshold {
		if txNetworkID != nil {
			return TelNETWORK_ID_MAKES_TX_NON_CANONICAL
		}
	} else {
		if txNetworkID == nil {
			return TelREQUIRES_NETWORK_ID
		}
		if *txNetworkID != nodeNetworkID {
			return TelWRONG_NETWORK
		}
	}

	return TesSUCCESS
}

// validateFee validates the Fee field
func (e *Engine) validateFee(common *Common) Result {
	if common.Fee == "" {
		return TesSUCCESS // base fee will be charged
	}

	// Parse fee as signed int first to detect negative values
	feeInt, err := strconv.ParseInt(common.Fee, 10, 64)
	if err != nil {
		return TemBAD_FEE
	}
	if feeInt <= 0 {
		return TemBAD_FEE
	}

	maxFee := e.config.MaxFee
	if maxFee == 0 {
		maxFee = DefaultMaxFee
	}
	if uint64(feeInt) > maxFee {
		return TemBAD_FEE
	}

	return TesSUCCESS
}

// preclaim validates the transaction against the current ledger state
func (e *Engine) preclaim(tx Transaction) Result {
	common := tx.GetCommon()

	// Check that the source account exists
	accountID, err := sle.DecodeAccountID(common.Account)
	if err != nil {
		return TemBAD_SRC_ACCOUNT
	}

	accountKey := keylet.Account(accountID)
	exists, err := e.view.Exists(accountKey)
	if err != nil {
		return TefINTERNAL
	}
	if !exists {
		return TerNO_ACCOUNT
	}

	accountData, err := e.view.Read(accountKey)
	if err != nil {
		return TefINTERNAL
	}

	account, err := sle.ParseAccountRoot(accountData)
	if err != nil {
		return TefINTERNAL
	}

	// Check that the signing key is authorized for the account
	if !e.config.SkipSignatureVerification {
		if err := VerifySigningKeyAuthorization(tx); err != nil {
			return TefBAD_AUTH
		}
	}

	// Check sequence number
	if common.Sequence != nil {
		if *common.Sequence < account.Sequence {
			return TefPAST_SEQ
		}
		if *common.Sequence > account.Sequence {
			return TerPRE_SEQ
		}
	}

	// Check that account can pay the fee
	fee := e.calculateFee(tx)
	if account.Balance < fee {
		return TerINSUF_FEE_B
	}

	// LastLedgerSequence check
	if common.LastLedgerSequence != nil {
		if e.config.LedgerSequence > *common.LastLedgerSequence {
			return TefMAX_LEDGER
		}
	}

	return TesSUCCESS
}

// doApply applies the transaction to the ledger.
// For tec results, only fee/sequence changes are applied; transaction
// effects are discarded.
func (e *Engine) doApply(tx Transaction, metadata *Metadata, txHash [32]byte) Result {
	common := tx.GetCommon()
	accountID, _ := sle.DecodeAccountID(common.Account)
	accountKey := keylet.Account(accountID)

	accountData, err := e.view.Read(accountKey)
	if err != nil {
		return TefINTERNAL
	}

	account, err := sle.ParseAccountRoot(accountData)
	if err != nil {
		return TefINTERNAL
	}

	fee := e.calculateFee(tx)

	// Store original account state for fee-only application
	originalBalance := account.Balance

	// Deduct fee and consume the sequence
	account.Balance -= fee
	if common.Sequence != nil {
		account.Sequence = *common.Sequence + 1
	}

	// Thread the account
	account.PreviousTxnID = txHash
	account.PreviousTxnLgrSeq = e.config.LedgerSequence

	// Create ApplyStateTable for transaction-specific changes
	table := NewApplyStateTable(e.view, txHash, e.config.LedgerSequence)

	ctx := &ApplyContext{
		View:      table,
		Account:   account,
		AccountID: accountID,
		Config:    e.config,
		TxHash:    txHash,
		Metadata:  metadata,
		Engine:    e,
	}

	var result Result
	if appliable, ok := tx.(Appliable); ok {
		result = appliable.Apply(ctx)
	} else {
		result = TesSUCCESS
	}

	// For tec results, only apply fee/sequence changes; the table and
	// any account mutations the transactor made are discarded.
	if result.IsTec() {
		account, err = sle.ParseAccountRoot(accountData)
		if err != nil {
			return TefINTERNAL
		}
		account.Balance = originalBalance - fee
		if common.Sequence != nil {
			account.Sequence = *common.Sequence + 1
		}
		account.PreviousTxnID = txHash
		account.PreviousTxnLgrSeq = e.config.LedgerSequence

		updatedData, err := sle.SerializeAccountRoot(account)
		if err != nil {
			return TefINTERNAL
		}
		if err := e.view.Update(accountKey, updatedData); err != nil {
			return TefINTERNAL
		}

		metadata.AffectedNodes = []AffectedNode{
			buildAffectedNode("ModifiedNode", accountKey.Key, updatedData),
		}

		return result
	}

	if !result.IsSuccess() {
		return result
	}

	// For success, apply all changes through the table.
	// Write back the source account unless the transactor erased it.
	if !table.IsErased(accountKey) {
		updatedData, err := sle.SerializeAccountRoot(account)
		if err != nil {
			return TefINTERNAL
		}
		if err := table.Update(accountKey, updatedData); err != nil {
			return TefINTERNAL
		}
	}

	generatedMeta, err := table.Apply()
	if err != nil {
		return TefINTERNAL
	}
	metadata.AffectedNodes = generatedMeta.AffectedNodes

	return result
}

// calculateFee calculates the fee for a transaction
func (e *Engine) calculateFee(tx Transaction) uint64 {
	common := tx.GetCommon()
	if common.Fee != "" {
		fee, err := strconv.ParseUint(common.Fee, 10, 64)
		if err == nil {
			return fee
		}
	}
	return e.config.BaseFee
}

// AccountReserve calculates the total reserve required for an account
// with the given owner count.
// Reserve = ReserveBase + (ownerCount * ReserveIncrement)
func (e *Engine) AccountReserve(ownerCount uint32) uint64 {
	return e.config.ReserveBase + (uint64(ownerCount) * e.config.ReserveIncrement)
}
