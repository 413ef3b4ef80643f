package rpc

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/solcards/gocardsd/internal/core/tx/market"
	"github.com/solcards/gocardsd/internal/node"
)

type cardParams struct {
	Card        string `json:"card"`
	LedgerIndex string `json:"ledger_index,omitempty"`
	Limit       int    `json:"limit,omitempty"`
}

func parseCardParams(params json.RawMessage) (*cardParams, *RpcError) {
	if params == nil {
		return nil, RpcErrorInvalidParams("Missing parameters")
	}

	var p cardParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, RpcErrorInvalidParams("Invalid parameters: " + err.Error())
	}
	if p.Card == "" {
		return nil, RpcErrorInvalidParams("Missing card field")
	}
	if _, err := market.ParseCardID(p.Card); err != nil {
		return nil, RpcErrorCardMalformed()
	}
	return &p, nil
}

// CardInfoMethod handles the "card_info" RPC method, returning a
// card's immutable attributes and its current holder.
type CardInfoMethod struct {
	svc *node.Service
}

func (m *CardInfoMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	p, rpcErr := parseCardParams(params)
	if rpcErr != nil {
		return nil, rpcErr
	}

	info, err := m.svc.GetCardInfo(p.Card, p.LedgerIndex)
	if err != nil {
		switch {
		case errors.Is(err, node.ErrCardNotFound):
			return nil, RpcErrorCardNotFound()
		case errors.Is(err, node.ErrLedgerNotFound):
			return nil, RpcErrorLedgerNotFound()
		default:
			return nil, RpcErrorInternal(err.Error())
		}
	}

	return map[string]interface{}{
		"card": map[string]interface{}{
			"card_id": info.Card,
			"creator": info.Creator,
			"holder":  info.Holder,
			"name":    info.Name,
			"symbol":  info.Symbol,
			"uri":     info.URI,
			"attack":  info.Attack,
			"defense": info.Defense,
			"element": info.Element,
			"rarity":  info.Rarity,
		},
		"ledger_index": info.LedgerIndex,
		"validated":    info.Validated,
	}, nil
}

func (m *CardInfoMethod) RequiresAdmin() bool { return false }

// ListingInfoMethod handles the "listing_info" RPC method, returning
// a card's marketplace listing and its on-ledger trade history.
type ListingInfoMethod struct {
	svc *node.Service
}

func (m *ListingInfoMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	p, rpcErr := parseCardParams(params)
	if rpcErr != nil {
		return nil, rpcErr
	}

	info, err := m.svc.GetListingInfo(p.Card, p.LedgerIndex)
	if err != nil {
		switch {
		case errors.Is(err, node.ErrListingNotFound):
			return nil, RpcErrorListingNotFound()
		case errors.Is(err, node.ErrLedgerNotFound):
			return nil, RpcErrorLedgerNotFound()
		default:
			return nil, RpcErrorInternal(err.Error())
		}
	}

	history := make([]map[string]interface{}, 0, len(info.History))
	for _, rec := range info.History {
		history = append(history, map[string]interface{}{
			"action":    rec.Action,
			"price":     strconv.FormatUint(rec.Price, 10),
			"timestamp": rec.Timestamp,
		})
	}

	return map[string]interface{}{
		"listing": map[string]interface{}{
			"card_id":    info.Card,
			"state":      info.Status,
			"seller":     info.Seller,
			"price":      strconv.FormatUint(info.Price, 10),
			"created_at": info.CreatedAt,
			"history":    history,
		},
		"ledger_index": info.LedgerIndex,
		"validated":    info.Validated,
	}, nil
}

func (m *ListingInfoMethod) RequiresAdmin() bool { return false }

// CardTradesMethod handles the "card_trades" RPC method, returning
// the full indexed trade history for a card. Unlike listing_info this
// is not subject to the on-ledger history cap.
type CardTradesMethod struct {
	svc *node.Service
}

func (m *CardTradesMethod) Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	p, rpcErr := parseCardParams(params)
	if rpcErr != nil {
		return nil, rpcErr
	}

	rows, err := m.svc.CardTrades(ctx.Context, p.Card, p.Limit)
	if err != nil {
		return nil, RpcErrorInternal(err.Error())
	}

	trades := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		trades = append(trades, map[string]interface{}{
			"action":     row.Action,
			"actor":      row.Actor,
			"price":      strconv.FormatUint(row.Price, 10),
			"close_time": row.CloseTime,
			"ledger_seq": row.LedgerSeq,
			"tx_hash":    row.TxHash,
		})
	}

	return map[string]interface{}{
		"card":   p.Card,
		"trades": trades,
	}, nil
}

func (m *CardTradesMethod) RequiresAdmin() bool { return false }
