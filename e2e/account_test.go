package e2e

import (
	"net/http"
	"strings"
	"testing"
)

func TestDashboard_Empty(t *testing.T) {
	ta := setupApp(t)

	resp := mustAuthRequest(t, ta.app, http.MethodGet, "/api/dashboard", "")
	assertStatus(t, resp, http.StatusOK)

	dash := parseJSON(t, resp)
	if dash["credits"] != float64(0) || dash["songsCount"] != float64(0) {
		t.Errorf("unexpected dashboard %v", dash)
	}
	if dash["canCreate"] != false {
		t.Error("expected canCreate false without credits")
	}
	if songs, ok := dash["songs"].([]interface{}); !ok || len(songs) != 0 {
		t.Errorf("expected empty songs list, got %v", dash["songs"])
	}
}

func TestOrders_Purchase(t *testing.T) {
	ta := setupApp(t)

	resp := mustAuthRequest(t, ta.app, http.MethodPost, "/api/orders", `{"plan":"multi"}`)
	assertStatus(t, resp, http.StatusCreated)

	body := parseJSON(t, resp)
	if body["credits"] != float64(5) {
		t.Errorf("expected 5 credits, got %v", body["credits"])
	}
	order := body["order"].(map[string]interface{})
	if order["package"] != "Multi Pack" || order["amount"] != "$299.00" || order["status"] != "Paid" {
		t.Errorf("unexpected order %v", order)
	}
	if id, _ := order["id"].(string); !strings.HasPrefix(id, "ORD-") || len(id) != 12 {
		t.Errorf("unexpected order id %q", id)
	}

	buyCredits(t, ta.app, "single")

	dash := parseJSON(t, mustAuthRequest(t, ta.app, http.MethodGet, "/api/dashboard", ""))
	if dash["credits"] != float64(6) || dash["canCreate"] != true {
		t.Errorf("expected 6 credits, got %v", dash["credits"])
	}
	orders := dash["orders"].([]interface{})
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if first := orders[0].(map[string]interface{}); first["package"] != "Single Pack" {
		t.Errorf("expected newest order first, got %v", first["package"])
	}
}

func TestOrders_UnknownPlan(t *testing.T) {
	ta := setupApp(t)

	resp := mustAuthRequest(t, ta.app, http.MethodPost, "/api/orders", `{"plan":"platinum"}`)
	assertStatus(t, resp, http.StatusBadRequest)
	body := parseJSON(t, resp)
	if body["code"] != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %v", body["code"])
	}
}

func TestReset(t *testing.T) {
	ta := setupApp(t)
	buyCredits(t, ta.app, "multi")

	resp := mustAuthRequest(t, ta.app, http.MethodPost, "/api/create-prompt", promptFormBody)
	assertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	song := finalizeSong(t, ta, "")["song"].(map[string]interface{})
	waitForStatus(t, ta.app, song["id"].(string))

	resp = mustAuthRequest(t, ta.app, http.MethodPost, "/api/reset", "")
	assertStatus(t, resp, http.StatusOK)
	dash := parseJSON(t, resp)
	if dash["credits"] != float64(0) || dash["songsCount"] != float64(0) {
		t.Errorf("expected cleared dashboard, got %v", dash)
	}
	if orders := dash["orders"].([]interface{}); len(orders) != 0 {
		t.Errorf("expected no orders, got %d", len(orders))
	}

	draft := parseJSON(t, mustAuthRequest(t, ta.app, http.MethodGet, "/api/draft", ""))
	if draft["prompt"] != "" {
		t.Errorf("expected draft cleared, got %v", draft["prompt"])
	}
}
