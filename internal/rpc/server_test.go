package rpc

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/solcards/gocardsd/internal/codec/addresscodec"
	"github.com/solcards/gocardsd/internal/core/tx/market"
	"github.com/solcards/gocardsd/internal/node"
)

func newTestServer(t *testing.T) (*httptest.Server, *node.Service) {
	t.Helper()

	svc := node.New(node.DefaultConfig())
	require.NoError(t, svc.Start())

	ts := httptest.NewServer(NewServer(svc, 30*time.Second))
	t.Cleanup(ts.Close)
	return ts, svc
}

// call posts a JSON-RPC request and returns the result object.
func call(t *testing.T, ts *httptest.Server, method string, params map[string]interface{}) map[string]interface{} {
	t.Helper()

	request := map[string]interface{}{"method": method}
	if params != nil {
		request["params"] = []interface{}{params}
	}

	body, err := json.Marshal(request)
	require.NoError(t, err)

	resp, err := http.Post(ts.URL, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Result map[string]interface{} `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.NotNil(t, envelope.Result)
	return envelope.Result
}

func callOK(t *testing.T, ts *httptest.Server, method string, params map[string]interface{}) map[string]interface{} {
	t.Helper()

	result := call(t, ts, method, params)
	require.Equal(t, "success", result["status"], result["error_message"])
	return result
}

func TestPing(t *testing.T) {
	ts, _ := newTestServer(t)

	result := callOK(t, ts, "ping", nil)
	require.Equal(t, "success", result["status"])
}

func TestUnknownMethod(t *testing.T) {
	ts, _ := newTestServer(t)

	result := call(t, ts, "no_such_method", nil)
	require.Equal(t, "error", result["status"])
	require.Equal(t, "unknownCmd", result["error"])
}

func TestServerInfo(t *testing.T) {
	ts, _ := newTestServer(t)

	result := callOK(t, ts, "server_info", nil)
	info, ok := result["info"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "standalone", info["server_state"])
	require.Equal(t, float64(2), info["open_ledger_seq"])
}

func TestServerInfoViaGet(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "?command=server_info")
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope struct {
		Result map[string]interface{} `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.Equal(t, "success", envelope.Result["status"])
}

func TestSubmitAndQueryAccount(t *testing.T) {
	ts, svc := newTestServer(t)

	master := svc.MasterAccount()
	dest := addresscodec.Encode([20]byte{0x11})
	baseFee, _, _ := svc.Fees()

	result := callOK(t, ts, "submit", map[string]interface{}{
		"tx_json": map[string]interface{}{
			"TransactionType": "Payment",
			"Account":         master,
			"Destination":     dest,
			"Amount":          "25000000000",
			"Fee":             strconv.FormatUint(baseFee, 10),
			"Sequence":        1,
		},
	})
	require.Equal(t, "tesSUCCESS", result["engine_result"])
	require.Equal(t, true, result["applied"])

	// Advance the ledger so the payment lands on a closed ledger.
	accept := callOK(t, ts, "ledger_accept", nil)
	require.Equal(t, float64(2), accept["ledger_closed_index"])

	account := callOK(t, ts, "account_info", map[string]interface{}{
		"account":      dest,
		"ledger_index": "closed",
	})
	data, ok := account["account_data"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "25000000000", data["Balance"])
	require.Equal(t, true, account["validated"])
}

func TestSubmitMalformed(t *testing.T) {
	ts, svc := newTestServer(t)

	result := call(t, ts, "submit", map[string]interface{}{
		"tx_json": map[string]interface{}{
			"TransactionType": "Payment",
			"Account":         svc.MasterAccount(),
			"Amount":          "1000",
			"Sequence":        1,
		},
	})
	require.Equal(t, "success", result["status"])
	require.Equal(t, "temDST_NEEDED", result["engine_result"])
	require.Equal(t, false, result["applied"])
}

func TestAccountInfoErrors(t *testing.T) {
	ts, _ := newTestServer(t)

	result := call(t, ts, "account_info", map[string]interface{}{
		"account": addresscodec.Encode([20]byte{0xEE}),
	})
	require.Equal(t, "error", result["status"])
	require.Equal(t, "actNotFound", result["error"])

	result = call(t, ts, "account_info", nil)
	require.Equal(t, "error", result["status"])
	require.Equal(t, "invalidParams", result["error"])
}

func TestCardLifecycleOverRPC(t *testing.T) {
	ts, svc := newTestServer(t)

	master := svc.MasterAccount()
	baseFee, _, _ := svc.Fees()
	fee := strconv.FormatUint(baseFee, 10)

	mint := callOK(t, ts, "submit", map[string]interface{}{
		"tx_json": map[string]interface{}{
			"TransactionType": "CardMint",
			"Account":         master,
			"Name":            "Stonks Guy",
			"Symbol":          "STNK",
			"URI":             "https://cards.example/stonks.json",
			"Attack":          88,
			"Defense":         31,
			"Element":         2,
			"Rarity":          3,
			"Fee":             fee,
			"Sequence":        1,
		},
	})
	require.Equal(t, "tesSUCCESS", mint["engine_result"])

	cardID := mintedCardID(t, master, 1)

	info := callOK(t, ts, "card_info", map[string]interface{}{
		"card": cardID,
	})
	card, ok := info["card"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "Stonks Guy", card["name"])
	require.Equal(t, master, card["creator"])
	require.Equal(t, master, card["holder"])
	require.Equal(t, "Dank", card["element"])
	require.Equal(t, "Legendary", card["rarity"])

	list := callOK(t, ts, "submit", map[string]interface{}{
		"tx_json": map[string]interface{}{
			"TransactionType": "CardList",
			"Account":         master,
			"Card":            cardID,
			"Price":           "3000000000",
			"Fee":             fee,
			"Sequence":        2,
		},
	})
	require.Equal(t, "tesSUCCESS", list["engine_result"])

	listing := callOK(t, ts, "listing_info", map[string]interface{}{
		"card": cardID,
	})
	listingObj, ok := listing["listing"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "Active", listingObj["state"])
	require.Equal(t, "3000000000", listingObj["price"])
	history, ok := listingObj["history"].([]interface{})
	require.True(t, ok)
	require.Len(t, history, 1)

	missing := call(t, ts, "listing_info", map[string]interface{}{
		"card": "00112233445566778899AABBCCDDEEFF00112233445566778899AABBCCDDEEFF",
	})
	require.Equal(t, "error", missing["status"])
	require.Equal(t, "listingNotFound", missing["error"])

	malformed := call(t, ts, "card_info", map[string]interface{}{
		"card": "not-a-card",
	})
	require.Equal(t, "error", malformed["status"])
	require.Equal(t, "cardMalformed", malformed["error"])
}

// mintedCardID derives the card ID minted by account at sequence.
func mintedCardID(t *testing.T, account string, seq uint32) string {
	t.Helper()

	accountID, err := addresscodec.Decode(account)
	require.NoError(t, err)
	return market.FormatCardID(market.DeriveCardID(accountID, seq))
}
