package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"
)

var baseURL string

// TestMain gates the suite on a running API. Set API_URL to run these
// against a live stack (Postgres, Redis, Mailhog, the api binary).
func TestMain(m *testing.M) {
	baseURL = os.Getenv("API_URL")
	if baseURL == "" {
		fmt.Println("API_URL not set, skipping integration tests")
		os.Exit(0)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil || resp.StatusCode != http.StatusOK {
		fmt.Println("API server not reachable, skipping integration tests")
		os.Exit(0)
	}
	resp.Body.Close()

	os.Exit(m.Run())
}

type response struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (r response) isSuccess() bool {
	return r.Status == "success"
}

func (r response) dataMap(t *testing.T) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(r.Data, &m); err != nil {
		t.Fatalf("failed to decode data object: %v", err)
	}
	return m
}

func (r response) getString(t *testing.T, key string) string {
	t.Helper()
	if v, ok := r.dataMap(t)[key].(string); ok {
		return v
	}
	return ""
}

func makeRequest(t *testing.T, method, path string, body interface{}, token string) (int, response) {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(payload)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, baseURL+"/api/v1"+path, reqBody)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.StatusCode, decoded
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@example.com", prefix, time.Now().UnixNano())
}
