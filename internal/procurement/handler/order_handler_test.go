package handler

import (
	"net/http"
	"testing"

	"github.com/nirmaan-app/procurement/internal/procurement/testutil"
)

// approveSeededBatch runs the full approve flow and returns the generated
// order ids.
func approveSeededBatch(t *testing.T, env *testutil.TestEnv, token string) []string {
	t.Helper()
	batchID := seedReviewBatch(t, env, token)
	base := "/api/v1/procurement/sent-back-batches/" + batchID

	for _, category := range []string{"electrical", "plumbing"} {
		w := testutil.DoRequest(env.Router, http.MethodPut, base+"/selection/category",
			map[string]interface{}{"category": category}, token)
		if w.Code != http.StatusOK {
			t.Fatalf("select %s failed: %d %s", category, w.Code, w.Body.String())
		}
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, base+"/approve", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("approve failed: %d %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	orders := resp["data"].(map[string]interface{})["orders"].([]interface{})
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.(map[string]interface{})["id"].(string))
	}
	return ids
}

// TestOrderGetAndItems verifies a generated order carries its line items
func TestOrderGetAndItems(t *testing.T) {
	env := setupBatchTest(t)
	token := testutil.DefaultTestToken()

	orderIDs := approveSeededBatch(t, env, token)
	if len(orderIDs) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orderIDs))
	}

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/procurement/orders/"+orderIDs[0], nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["status"] != "approved" {
		t.Fatalf("expected fresh order in approved, got %v", data["status"])
	}
	items := data["order_list"].([]interface{})
	if len(items) != 2 {
		t.Fatalf("expected 2 line items on first order, got %d", len(items))
	}
	first := items[0].(map[string]interface{})
	if first["item_id"] != "itm-wire" {
		t.Fatalf("expected itm-wire first, got %v", first["item_id"])
	}
	// 10 * 1850
	if first["amount"].(float64) != 18500 {
		t.Fatalf("expected amount 18500, got %v", first["amount"])
	}
}

// TestOrderStatusTransitions walks approved → dispatched → delivered and
// rejects the shortcuts
func TestOrderStatusTransitions(t *testing.T) {
	env := setupBatchTest(t)
	token := testutil.DefaultTestToken()

	orderIDs := approveSeededBatch(t, env, token)
	orderID := orderIDs[0]
	statusPath := "/api/v1/procurement/orders/" + orderID + "/status"

	// approved → delivered is not allowed
	w := testutil.DoRequest(env.Router, http.MethodPut, statusPath,
		map[string]interface{}{"status": "delivered"}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for approved→delivered, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(env.Router, http.MethodPut, statusPath,
		map[string]interface{}{"status": "dispatched"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("dispatch failed: %d %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["data"].(map[string]interface{})["status"] != "dispatched" {
		t.Fatalf("expected dispatched, got %v", resp["data"])
	}

	w = testutil.DoRequest(env.Router, http.MethodPut, statusPath,
		map[string]interface{}{"status": "delivered"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("deliver failed: %d %s", w.Code, w.Body.String())
	}

	// delivered is terminal
	w = testutil.DoRequest(env.Router, http.MethodPut, statusPath,
		map[string]interface{}{"status": "cancelled"}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 cancelling delivered order, got %d: %s", w.Code, w.Body.String())
	}
}

// TestOrderStatusNotFound verifies the 404 mapping on status updates
func TestOrderStatusNotFound(t *testing.T) {
	env := setupBatchTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/procurement/orders/no-such-order/status",
		map[string]interface{}{"status": "dispatched"}, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}
