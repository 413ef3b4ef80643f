package rpc

import (
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/solcards/gocardsd/internal/core/lamport"
	"github.com/solcards/gocardsd/internal/node"
)

// serverStartTime tracks when the server started for uptime calculation.
var serverStartTime = time.Now()

// PingMethod handles the "ping" RPC method.
type PingMethod struct{}

func (m *PingMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	return map[string]interface{}{}, nil
}

func (m *PingMethod) RequiresAdmin() bool { return false }

// ServerInfoMethod handles the "server_info" RPC method.
type ServerInfoMethod struct {
	svc *node.Service
}

func (m *ServerInfoMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	info := m.svc.GetServerInfo()

	serverState := "full"
	if info.Standalone {
		serverState = "standalone"
	}

	completeLedgers := info.CompleteLedgers
	if completeLedgers == "" {
		completeLedgers = "empty"
	}

	uptime := int64(time.Since(serverStartTime).Seconds())

	return map[string]interface{}{
		"info": map[string]interface{}{
			"build_version":    "0.1.0-gocardsd",
			"hostid":           "gocardsd",
			"server_state":     serverState,
			"network_id":       info.NetworkID,
			"complete_ledgers": completeLedgers,
			"uptime":           uptime,
			"peers":            0,
			"closed_ledger": map[string]interface{}{
				"seq":  info.ClosedLedgerSeq,
				"hash": strings.ToUpper(hex.EncodeToString(info.ClosedLedgerHash[:])),
			},
			"open_ledger_seq": info.OpenLedgerSeq,
			"validated_ledger": map[string]interface{}{
				"seq":              info.ClosedLedgerSeq,
				"hash":             strings.ToUpper(hex.EncodeToString(info.ClosedLedgerHash[:])),
				"base_fee_sol":     float64(info.BaseFee) / float64(lamport.PerSOL),
				"reserve_base_sol": float64(info.ReserveBase) / float64(lamport.PerSOL),
				"reserve_inc_sol":  float64(info.ReserveIncrement) / float64(lamport.PerSOL),
			},
		},
	}, nil
}

func (m *ServerInfoMethod) RequiresAdmin() bool { return false }

// FeeMethod handles the "fee" RPC method.
type FeeMethod struct {
	svc *node.Service
}

func (m *FeeMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	baseFee, reserveBase, reserveIncrement := m.svc.Fees()

	return map[string]interface{}{
		"current_ledger_size": "0",
		"lamports": map[string]interface{}{
			"base_fee":          strconv.FormatUint(baseFee, 10),
			"reserve_base":      strconv.FormatUint(reserveBase, 10),
			"reserve_increment": strconv.FormatUint(reserveIncrement, 10),
		},
		"ledger_current_index": m.svc.CurrentLedgerIndex(),
	}, nil
}

func (m *FeeMethod) RequiresAdmin() bool { return false }
