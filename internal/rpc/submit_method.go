package rpc

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/solcards/gocardsd/internal/core/tx"
	"github.com/solcards/gocardsd/internal/node"
)

// SubmitMethod handles the "submit" RPC method. The transaction is
// given as a JSON object under "tx_json".
type SubmitMethod struct {
	svc *node.Service
}

type submitParams struct {
	TxJSON json.RawMessage `json:"tx_json"`
}

func (m *SubmitMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	if params == nil {
		return nil, RpcErrorInvalidParams("Missing parameters")
	}

	var p submitParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, RpcErrorInvalidParams("Invalid parameters: " + err.Error())
	}
	if len(p.TxJSON) == 0 {
		return nil, RpcErrorInvalidParams("Missing tx_json field")
	}

	transaction, err := tx.FromJSON(p.TxJSON)
	if err != nil {
		return nil, RpcErrorInvalidParams("Invalid transaction: " + err.Error())
	}

	result, err := m.svc.Submit(transaction)
	if err != nil {
		return nil, RpcErrorInternal(err.Error())
	}

	response := map[string]interface{}{
		"engine_result":         result.Result.String(),
		"engine_result_code":    int(result.Result),
		"engine_result_message": result.Message,
		"applied":               result.Applied,
		"fee":                   result.Fee,
		"tx_hash":               strings.ToUpper(hex.EncodeToString(result.TxHash[:])),
		"ledger_current_index":  result.CurrentLedger,
	}

	if result.Metadata != nil {
		response["meta"] = result.Metadata
	}

	return response, nil
}

func (m *SubmitMethod) RequiresAdmin() bool { return false }
