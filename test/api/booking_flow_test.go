package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"
)

// registerUser registers a fresh account and returns its token.
func registerUser(t *testing.T, role string) string {
	t.Helper()

	status, resp := makeRequest(t, "POST", "/auth/register", map[string]interface{}{
		"email":      uniqueEmail(role),
		"password":   "s3cure-password",
		"first_name": "Test",
		"last_name":  "User",
		"role":       role,
	}, "")
	if status != http.StatusCreated || !resp.isSuccess() {
		t.Fatalf("failed to register %s: %s", role, resp.Message)
	}

	token := resp.getString(t, "access_token")
	if token == "" {
		t.Fatal("registration returned no access token")
	}
	return token
}

// firstPractitionerWithSlots walks the public directory until it finds
// a practitioner with at least one free slot, and returns the
// practitioner ID with the first free date and start time.
func firstPractitionerWithSlots(t *testing.T) (string, string, string) {
	t.Helper()

	status, resp := makeRequest(t, "GET", "/practitioners?limit=50", nil, "")
	if status != http.StatusOK {
		t.Fatalf("practitioner search failed: %s", resp.Message)
	}

	var page struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Data, &page); err != nil {
		t.Fatalf("failed to decode practitioner page: %v", err)
	}
	if len(page.Data) == 0 {
		t.Skip("no practitioners seeded")
	}

	for _, p := range page.Data {
		status, resp := makeRequest(t, "GET", "/practitioners/"+p.ID+"/slots", nil, "")
		if status != http.StatusOK {
			continue
		}

		var slots struct {
			Slots map[string][]struct {
				StartTime string `json:"start_time"`
			} `json:"slots"`
		}
		if err := json.Unmarshal(resp.Data, &slots); err != nil {
			continue
		}

		for date, daySlots := range slots.Slots {
			if len(daySlots) > 0 {
				return p.ID, date, daySlots[0].StartTime
			}
		}
	}

	t.Skip("no free slots in the default range")
	return "", "", ""
}

func TestSpecialtiesArePublic(t *testing.T) {
	status, resp := makeRequest(t, "GET", "/specialties", nil, "")
	if status != http.StatusOK || !resp.isSuccess() {
		t.Fatalf("expected public specialties listing, got %d: %s", status, resp.Message)
	}
}

func TestBookingRequiresAuth(t *testing.T) {
	status, _ := makeRequest(t, "POST", "/appointments", map[string]interface{}{}, "")
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthenticated booking, got %d", status)
	}
}

func TestBookingFlow(t *testing.T) {
	token := registerUser(t, "patient")
	practitionerID, date, startTime := firstPractitionerWithSlots(t)

	body := map[string]interface{}{
		"practitioner_id": practitionerID,
		"date":            date,
		"start_time":      startTime,
		"reason":          "integration test booking",
	}

	status, resp := makeRequest(t, "POST", "/appointments", body, token)
	if status != http.StatusCreated || !resp.isSuccess() {
		t.Fatalf("booking failed with %d: %s", status, resp.Message)
	}
	appointmentID := resp.getString(t, "id")
	if appointmentID == "" {
		t.Fatal("booking returned no appointment id")
	}

	// The same slot cannot be booked twice.
	otherToken := registerUser(t, "patient")
	status, _ = makeRequest(t, "POST", "/appointments", body, otherToken)
	if status != http.StatusConflict {
		t.Fatalf("expected 409 on double booking, got %d", status)
	}

	// The booked slot disappears from the listing.
	status, slotsResp := makeRequest(t, "GET",
		fmt.Sprintf("/practitioners/%s/slots?from=%s&to=%s", practitionerID, date, date), nil, "")
	if status != http.StatusOK {
		t.Fatalf("slot listing failed: %s", slotsResp.Message)
	}
	var slots struct {
		Slots map[string][]struct {
			StartTime string `json:"start_time"`
		} `json:"slots"`
	}
	if err := json.Unmarshal(slotsResp.Data, &slots); err != nil {
		t.Fatalf("failed to decode slots: %v", err)
	}
	for _, s := range slots.Slots[date] {
		if s.StartTime == startTime {
			t.Fatalf("booked slot %s still listed as free", startTime)
		}
	}

	// Cancel releases the slot.
	status, resp = makeRequest(t, "PUT", "/appointments/"+appointmentID+"/cancel",
		map[string]interface{}{"reason": "changed plans"}, token)
	if status != http.StatusOK || !resp.isSuccess() {
		t.Fatalf("cancellation failed with %d: %s", status, resp.Message)
	}

	// Cancelling again reports the terminal-ish state distinctly.
	status, _ = makeRequest(t, "PUT", "/appointments/"+appointmentID+"/cancel",
		map[string]interface{}{"reason": "again"}, token)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 on double cancel, got %d", status)
	}

	// After cancellation another patient can book the slot.
	status, _ = makeRequest(t, "POST", "/appointments", body, otherToken)
	if status != http.StatusCreated {
		t.Fatalf("expected rebooking after cancel to succeed, got %d", status)
	}
}

func TestConcurrentBookingOneWinner(t *testing.T) {
	tokenA := registerUser(t, "patient")
	tokenB := registerUser(t, "patient")
	practitionerID, date, startTime := firstPractitionerWithSlots(t)

	body := map[string]interface{}{
		"practitioner_id": practitionerID,
		"date":            date,
		"start_time":      startTime,
		"reason":          "race for the same slot",
	}

	type result struct {
		status int
		err    error
	}

	// makeRequest fails the test on transport errors, which is not
	// allowed off the test goroutine; issue the raced requests by hand.
	results := make(chan result, 2)
	var wg sync.WaitGroup
	for _, token := range []string{tokenA, tokenB} {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			payload, err := json.Marshal(body)
			if err != nil {
				results <- result{err: err}
				return
			}
			req, err := http.NewRequest("POST", baseURL+"/api/v1/appointments", bytes.NewBuffer(payload))
			if err != nil {
				results <- result{err: err}
				return
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				results <- result{err: err}
				return
			}
			resp.Body.Close()
			results <- result{status: resp.StatusCode}
		}(token)
	}
	wg.Wait()
	close(results)

	var got []int
	for r := range results {
		if r.err != nil {
			t.Fatalf("concurrent booking request failed: %v", r.err)
		}
		got = append(got, r.status)
	}
	sort.Ints(got)
	if len(got) != 2 || got[0] != http.StatusCreated || got[1] != http.StatusConflict {
		t.Fatalf("expected exactly one 201 and one 409, got %v", got)
	}
}

func TestBookingMissingStartTimeRejected(t *testing.T) {
	token := registerUser(t, "patient")
	practitionerID, date, _ := firstPractitionerWithSlots(t)

	status, _ := makeRequest(t, "POST", "/appointments", map[string]interface{}{
		"practitioner_id": practitionerID,
		"date":            date,
	}, token)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 when start_time is omitted, got %d", status)
	}
}

func TestBookingPastDateRejected(t *testing.T) {
	token := registerUser(t, "patient")
	practitionerID, _, _ := firstPractitionerWithSlots(t)

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	status, _ := makeRequest(t, "POST", "/appointments", map[string]interface{}{
		"practitioner_id": practitionerID,
		"date":            yesterday,
		"start_time":      "10:00",
	}, token)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for past-date booking, got %d", status)
	}
}

func TestAppointmentListing(t *testing.T) {
	token := registerUser(t, "patient")

	status, resp := makeRequest(t, "GET", "/appointments", nil, token)
	if status != http.StatusOK || !resp.isSuccess() {
		t.Fatalf("listing failed with %d: %s", status, resp.Message)
	}
}
