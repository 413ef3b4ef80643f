package rpc

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/solcards/gocardsd/internal/node"
)

// LedgerCurrentMethod handles the "ledger_current" RPC method.
type LedgerCurrentMethod struct {
	svc *node.Service
}

func (m *LedgerCurrentMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	return map[string]interface{}{
		"ledger_current_index": m.svc.CurrentLedgerIndex(),
	}, nil
}

func (m *LedgerCurrentMethod) RequiresAdmin() bool { return false }

// LedgerClosedMethod handles the "ledger_closed" RPC method.
type LedgerClosedMethod struct {
	svc *node.Service
}

func (m *LedgerClosedMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	closed := m.svc.ClosedLedger()
	if closed == nil {
		return nil, RpcErrorLedgerNotFound()
	}

	hash := closed.Hash()
	return map[string]interface{}{
		"ledger_index": closed.Sequence(),
		"ledger_hash":  strings.ToUpper(hex.EncodeToString(hash[:])),
	}, nil
}

func (m *LedgerClosedMethod) RequiresAdmin() bool { return false }

// LedgerAcceptMethod handles the "ledger_accept" RPC method. Admin
// only; closes the open ledger in standalone mode.
type LedgerAcceptMethod struct {
	svc *node.Service
}

func (m *LedgerAcceptMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	seq, err := m.svc.AcceptLedger()
	if err != nil {
		if errors.Is(err, node.ErrNotStandalone) {
			return nil, RpcErrorNotStandalone()
		}
		return nil, RpcErrorInternal(err.Error())
	}

	return map[string]interface{}{
		"ledger_current_index": seq + 1,
		"ledger_closed_index":  seq,
	}, nil
}

func (m *LedgerAcceptMethod) RequiresAdmin() bool { return true }

// LedgerMethod handles the "ledger" RPC method, returning header
// information for a ledger by sequence.
type LedgerMethod struct {
	svc *node.Service
}

type ledgerParams struct {
	LedgerIndex json.Number `json:"ledger_index"`
}

func (m *LedgerMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	seq := uint64(0)
	if params != nil {
		var p ledgerParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, RpcErrorInvalidParams("Invalid parameters: " + err.Error())
		}
		if p.LedgerIndex != "" {
			var err error
			seq, err = strconv.ParseUint(p.LedgerIndex.String(), 10, 32)
			if err != nil {
				return nil, RpcErrorInvalidParams("Invalid ledger_index")
			}
		}
	}
	if seq == 0 {
		seq = uint64(m.svc.ClosedLedgerIndex())
	}

	info, err := m.svc.GetLedgerInfo(uint32(seq))
	if err != nil {
		if errors.Is(err, node.ErrLedgerNotFound) {
			return nil, RpcErrorLedgerNotFound()
		}
		return nil, RpcErrorInternal(err.Error())
	}

	ledgerObj := map[string]interface{}{
		"ledger_index":   info.Sequence,
		"ledger_hash":    strings.ToUpper(hex.EncodeToString(info.Hash[:])),
		"parent_hash":    strings.ToUpper(hex.EncodeToString(info.ParentHash[:])),
		"state_hash":     strings.ToUpper(hex.EncodeToString(info.StateHash[:])),
		"total_lamports": strconv.FormatUint(info.TotalLamports, 10),
		"closed":         info.Closed,
		"entry_count":    info.EntryCount,
	}
	if info.Closed {
		ledgerObj["close_time"] = info.CloseTime.Unix()
	}

	return map[string]interface{}{
		"ledger":       ledgerObj,
		"ledger_index": info.Sequence,
		"validated":    info.Closed,
	}, nil
}

func (m *LedgerMethod) RequiresAdmin() bool { return false }
