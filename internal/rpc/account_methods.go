package rpc

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/solcards/gocardsd/internal/node"
)

// AccountInfoMethod handles the "account_info" RPC method.
type AccountInfoMethod struct {
	svc *node.Service
}

type accountInfoParams struct {
	Account     string `json:"account"`
	LedgerIndex string `json:"ledger_index,omitempty"`
}

func (m *AccountInfoMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	if params == nil {
		return nil, RpcErrorInvalidParams("Missing parameters")
	}

	var p accountInfoParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, RpcErrorInvalidParams("Invalid parameters: " + err.Error())
	}
	if p.Account == "" {
		return nil, RpcErrorInvalidParams("Missing account field")
	}

	info, err := m.svc.GetAccountInfo(p.Account, p.LedgerIndex)
	if err != nil {
		switch {
		case errors.Is(err, node.ErrAccountNotFound):
			return nil, RpcErrorAccountNotFound()
		case errors.Is(err, node.ErrLedgerNotFound):
			return nil, RpcErrorLedgerNotFound()
		default:
			return nil, RpcErrorAccountMalformed()
		}
	}

	return map[string]interface{}{
		"account_data": map[string]interface{}{
			"Account":    info.Account,
			"Balance":    strconv.FormatUint(info.Balance, 10),
			"Sequence":   info.Sequence,
			"OwnerCount": info.OwnerCount,
			"Flags":      info.Flags,
		},
		"ledger_index": info.LedgerIndex,
		"ledger_hash":  strings.ToUpper(hex.EncodeToString(info.LedgerHash[:])),
		"validated":    info.Validated,
	}, nil
}

func (m *AccountInfoMethod) RequiresAdmin() bool { return false }
