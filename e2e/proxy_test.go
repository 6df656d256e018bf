package e2e

import (
	"net/http"
	"testing"
)

func TestCreatePrompt_SavesDraft(t *testing.T) {
	ta := setupApp(t)
	buyCredits(t, ta.app, "single")

	resp := mustAuthRequest(t, ta.app, http.MethodPost, "/api/create-prompt", promptFormBody)
	assertStatus(t, resp, http.StatusOK)
	body := parseJSON(t, resp)
	if body["success"] != true {
		t.Errorf("expected success, got %v", body)
	}

	draft := parseJSON(t, mustAuthRequest(t, ta.app, http.MethodGet, "/api/draft", ""))
	if draft["prompt"] != body["prompt"] {
		t.Errorf("draft prompt %v does not match %v", draft["prompt"], body["prompt"])
	}
	form := draft["form"].(map[string]interface{})
	if form["recipientName"] != "Mia" || form["style"] != "Acoustic Pop" {
		t.Errorf("unexpected draft form %v", form)
	}
}

func TestCreatePrompt_NoCredits(t *testing.T) {
	ta := setupApp(t)

	resp := mustAuthRequest(t, ta.app, http.MethodPost, "/api/create-prompt", promptFormBody)
	assertStatus(t, resp, http.StatusPaymentRequired)
	body := parseJSON(t, resp)
	if body["code"] != "INSUFFICIENT_CREDITS" {
		t.Errorf("expected INSUFFICIENT_CREDITS, got %v", body["code"])
	}
}

func TestCreatePrompt_MissingRecipient(t *testing.T) {
	ta := setupApp(t)
	buyCredits(t, ta.app, "single")

	resp := mustAuthRequest(t, ta.app, http.MethodPost, "/api/create-prompt", `{"vibe":"Joyful"}`)
	assertStatus(t, resp, http.StatusBadRequest)
	body := parseJSON(t, resp)
	if body["code"] != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %v", body["code"])
	}
}

func TestCreatePrompt_NotConfigured(t *testing.T) {
	ta := setupAppWith(t, newMusicStub(t), false)
	buyCredits(t, ta.app, "single")

	resp := mustAuthRequest(t, ta.app, http.MethodPost, "/api/create-prompt", promptFormBody)
	assertStatus(t, resp, http.StatusInternalServerError)
	body := parseJSON(t, resp)
	if body["message"] != "Groq API is not configured on the server." {
		t.Errorf("unexpected message %v", body["message"])
	}
}

func TestGenerate_Relay(t *testing.T) {
	ta := setupApp(t)

	resp := mustAuthRequest(t, ta.app, http.MethodPost, "/api/generate", `{"prompt":"Lo-fi beats","music_style":"Lo-fi"}`)
	assertStatus(t, resp, http.StatusOK)
	body := parseJSON(t, resp)
	if body["task_id"] != "task-1" || body["conversion_id_1"] != "conv-1" {
		t.Errorf("expected relayed upstream body, got %v", body)
	}
}

func TestGenerate_MissingPrompt(t *testing.T) {
	ta := setupApp(t)

	resp := mustAuthRequest(t, ta.app, http.MethodPost, "/api/generate", `{"music_style":"Lo-fi"}`)
	assertStatus(t, resp, http.StatusBadRequest)
	if ta.music.submits.Load() != 0 {
		t.Error("invalid request must not reach MusicGPT")
	}
}

func TestGenerate_UpstreamError(t *testing.T) {
	ta := setupApp(t)

	resp := mustAuthRequest(t, ta.app, http.MethodPost, "/api/generate", `{"prompt":"reject-me"}`)
	assertStatus(t, resp, http.StatusBadRequest)
	body := parseJSON(t, resp)
	if body["message"] != "Prompt violates content policy" {
		t.Errorf("unexpected message %v", body["message"])
	}
	details, ok := body["details"].(map[string]interface{})
	if !ok || details["success"] != false {
		t.Errorf("expected upstream body in details, got %v", body["details"])
	}
}

func TestStatus_Relay(t *testing.T) {
	ta := setupApp(t)

	resp := mustAuthRequest(t, ta.app, http.MethodGet, "/api/status/conv-9?idType=conversion_id", "")
	assertStatus(t, resp, http.StatusOK)
	body := parseJSON(t, resp)
	conv := body["conversion"].(map[string]interface{})
	if conv["status"] != "PROCESSING" {
		t.Errorf("unexpected conversion %v", conv)
	}

	q := ta.music.query()
	if got := q["conversion_id"]; len(got) != 1 || got[0] != "conv-9" {
		t.Errorf("unexpected upstream query %v", q)
	}
	if got := q["conversionType"]; len(got) != 1 || got[0] != "MUSIC_AI" {
		t.Errorf("unexpected conversionType %v", q["conversionType"])
	}
}

func TestStatus_BadIDType(t *testing.T) {
	ta := setupApp(t)

	resp := mustAuthRequest(t, ta.app, http.MethodGet, "/api/status/x?idType=job", "")
	assertStatus(t, resp, http.StatusBadRequest)
}
