package rpc

// RpcError represents an RPC error with code and message.
type RpcError struct {
	Code        int    `json:"error_code"`
	ErrorString string `json:"error"`
	Message     string `json:"error_message,omitempty"`
}

func (e *RpcError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.ErrorString
}

// RPC error codes.
const (
	RpcUNKNOWN          = -1
	RpcMETHOD_NOT_FOUND = -32601
	RpcINVALID_PARAMS   = -32602
	RpcINTERNAL         = -32603
	RpcPARSE_ERROR      = -32700

	RpcGENERAL         = 1
	RpcMISSING_COMMAND = 2
	RpcNO_CURRENT      = 4

	RpcNOT_STANDALONE = 10

	RpcLGR_NOT_FOUND = 15

	RpcACT_NOT_FOUND = 19
	RpcACT_MALFORMED = 50

	RpcTXN_NOT_FOUND = 24

	RpcCARD_NOT_FOUND    = 60
	RpcCARD_MALFORMED    = 61
	RpcLISTING_NOT_FOUND = 62

	RpcOBJECT_NOT_FOUND = 92
)

// NewRpcError creates an RPC error.
func NewRpcError(code int, errorString, message string) *RpcError {
	return &RpcError{
		Code:        code,
		ErrorString: errorString,
		Message:     message,
	}
}

func RpcErrorMethodNotFound(method string) *RpcError {
	return NewRpcError(RpcMETHOD_NOT_FOUND, "unknownCmd", "Unknown method: "+method)
}

func RpcErrorInvalidParams(message string) *RpcError {
	return NewRpcError(RpcINVALID_PARAMS, "invalidParams", message)
}

func RpcErrorInternal(message string) *RpcError {
	return NewRpcError(RpcINTERNAL, "internal", message)
}

func RpcErrorNotStandalone() *RpcError {
	return NewRpcError(RpcNOT_STANDALONE, "notStandalone", "Operation only valid in standalone mode")
}

func RpcErrorLedgerNotFound() *RpcError {
	return NewRpcError(RpcLGR_NOT_FOUND, "lgrNotFound", "Ledger not found")
}

func RpcErrorAccountNotFound() *RpcError {
	return NewRpcError(RpcACT_NOT_FOUND, "actNotFound", "Account not found")
}

func RpcErrorAccountMalformed() *RpcError {
	return NewRpcError(RpcACT_MALFORMED, "actMalformed", "Account malformed")
}

func RpcErrorCardNotFound() *RpcError {
	return NewRpcError(RpcCARD_NOT_FOUND, "cardNotFound", "Card not found")
}

func RpcErrorCardMalformed() *RpcError {
	return NewRpcError(RpcCARD_MALFORMED, "cardMalformed", "Card ID malformed")
}

func RpcErrorListingNotFound() *RpcError {
	return NewRpcError(RpcLISTING_NOT_FOUND, "listingNotFound", "Listing not found")
}
