package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorPurple = "\033[35m"
	colorCyan   = "\033[36m"
)

type TestClient struct {
	baseURL string
	client  *http.Client
}

func NewTestClient(baseURL string) *TestClient {
	return &TestClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the server")
	testType := flag.String("test", "all", "Test type: all, health, agent-card, agencies, contact, concierge, custom")
	message := flag.String("message", "", "Message for the concierge (for custom test)")
	sessionName := flag.String("session", "", "Concierge session name (defaults to a timestamped one)")
	flag.Parse()

	client := NewTestClient(*baseURL)
	if *sessionName == "" {
		*sessionName = fmt.Sprintf("smoke-%d", time.Now().Unix())
	}

	printHeader("GTM Quest - Smoke Tests")
	fmt.Printf("%sBase URL: %s%s\n\n", colorCyan, *baseURL, colorReset)

	switch *testType {
	case "all":
		client.runAllTests(*sessionName)
	case "health":
		client.testHealthCheck()
	case "agent-card":
		client.testAgentCard()
	case "agencies":
		client.testAgencies()
	case "contact":
		client.testContact()
	case "concierge":
		client.testConcierge(*sessionName, "We're Acme, a seed-stage fintech selling expense software to mid-market CFOs in the UK")
	case "custom":
		if *message == "" {
			printError("Message is required for custom test. Use -message flag")
			os.Exit(1)
		}
		client.testConcierge(*sessionName, *message)
	default:
		printError(fmt.Sprintf("Unknown test type: %s", *testType))
		fmt.Println("\nAvailable tests: all, health, agent-card, agencies, contact, concierge, custom")
		os.Exit(1)
	}
}

func (tc *TestClient) runAllTests(sessionName string) {
	tests := []struct {
		name string
		fn   func() bool
	}{
		{"Health Check", tc.testHealthCheck},
		{"Agent Card", tc.testAgentCard},
		{"Agencies API", tc.testAgencies},
		{"Concierge", func() bool {
			return tc.testConcierge(sessionName, "We're Acme, a seed-stage fintech selling to mid-market CFOs in the UK")
		}},
	}

	passed := 0
	failed := 0

	for _, test := range tests {
		if test.fn() {
			passed++
		} else {
			failed++
		}
		fmt.Println()
	}

	printHeader("Test Summary")
	fmt.Printf("%sPassed: %d%s\n", colorGreen, passed, colorReset)
	fmt.Printf("%sFailed: %d%s\n", colorRed, failed, colorReset)
	fmt.Printf("Total: %d\n", passed+failed)

	if failed > 0 {
		os.Exit(1)
	}
}

// getJSON fetches path and decodes the body into out, reporting failures.
func (tc *TestClient) getJSON(path string, out any) bool {
	target := tc.baseURL + path
	fmt.Printf("GET %s\n", target)

	resp, err := tc.client.Get(target)
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		printError(fmt.Sprintf("Expected status 200, got %d", resp.StatusCode))
		if body, err := io.ReadAll(io.LimitReader(resp.Body, 4096)); err != nil {
			fmt.Printf("Response unreadable: %v\n", err)
		} else {
			fmt.Printf("Response: %s\n", string(body))
		}
		return false
	}
	if err := decodeBody(resp, out); err != nil {
		printError(err.Error())
		return false
	}
	return true
}

// decodeBody reads the whole response and decodes it as JSON into out.
// A body cut short is reported as a read error, not as invalid JSON.
func decodeBody(resp *http.Response, out any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response (status %d): %w", resp.StatusCode, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("invalid JSON response (status %d): %w", resp.StatusCode, err)
	}
	return nil
}

// postJSON sends payload to path and decodes the response into out.
func (tc *TestClient) postJSON(path string, payload any, out any) (int, bool) {
	target := tc.baseURL + path
	fmt.Printf("POST %s\n", target)

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		printError(fmt.Sprintf("Encode request: %v", err))
		return 0, false
	}
	fmt.Printf("%sRequest:%s\n%s\n\n", colorYellow, colorReset, string(data))

	resp, err := tc.client.Post(target, "application/json", bytes.NewBuffer(data))
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return 0, false
	}
	defer resp.Body.Close()

	if err := decodeBody(resp, out); err != nil {
		printError(err.Error())
		return resp.StatusCode, false
	}
	return resp.StatusCode, true
}

func (tc *TestClient) testHealthCheck() bool {
	printTestHeader("Testing Health Check Endpoint")

	var health struct {
		Status    string `json:"status"`
		Concierge bool   `json:"concierge"`
	}
	if !tc.getJSON("/health", &health) {
		return false
	}
	if health.Status != "ok" {
		printError(fmt.Sprintf("Expected status 'ok', got '%s'", health.Status))
		return false
	}

	printSuccess(fmt.Sprintf("Health check passed (concierge enabled: %t)", health.Concierge))
	return true
}

func (tc *TestClient) testAgentCard() bool {
	printTestHeader("Testing Agent Card Endpoint")

	var card map[string]any
	if !tc.getJSON("/.well-known/agent.json", &card) {
		return false
	}

	for _, field := range []string{"name", "description", "url", "version", "capabilities", "skills"} {
		if _, ok := card[field]; !ok {
			printError(fmt.Sprintf("Missing required field: %s", field))
			return false
		}
	}

	printSuccess("Agent card is valid")
	data, _ := json.Marshal(card)
	printJSON(data)
	return true
}

func (tc *TestClient) testAgencies() bool {
	printTestHeader("Testing Agencies API")

	var list struct {
		Agencies []struct {
			Slug string `json:"slug"`
			Name string `json:"name"`
		} `json:"agencies"`
		Count int `json:"count"`
	}
	if !tc.getJSON("/api/agencies?limit=5", &list) {
		return false
	}
	if list.Count == 0 || list.Count != len(list.Agencies) {
		printError(fmt.Sprintf("Expected a non-empty list, got count=%d len=%d", list.Count, len(list.Agencies)))
		return false
	}
	for _, a := range list.Agencies {
		fmt.Printf("  - %s (%s)\n", a.Name, a.Slug)
	}

	var agency map[string]any
	if !tc.getJSON("/api/agencies/"+list.Agencies[0].Slug, &agency) {
		return false
	}

	printSuccess(fmt.Sprintf("Listed %d agencies and fetched %s", list.Count, list.Agencies[0].Slug))
	return true
}

// testContact stores a real submission, so it is not part of "all".
func (tc *TestClient) testContact() bool {
	printTestHeader("Testing Contact API")

	var out map[string]any
	status, ok := tc.postJSON("/api/contact", map[string]any{
		"fullName":    "Smoke Test",
		"email":       "smoke-test@example.com",
		"companyName": "GTM Quest",
		"message":     "Automated smoke test, please ignore.",
	}, &out)
	if !ok {
		return false
	}
	if status != http.StatusOK || out["success"] != true {
		printError(fmt.Sprintf("Expected success, got status %d: %v", status, out))
		return false
	}

	printSuccess(fmt.Sprintf("Contact submission stored with id %v", out["id"]))
	return true
}

func (tc *TestClient) testConcierge(sessionName, message string) bool {
	printTestHeader("Testing A2A Concierge")
	fmt.Printf("%sSession:%s %s\n%sMessage:%s %s\n\n", colorCyan, colorReset, sessionName, colorCyan, colorReset, message)

	request := map[string]any{
		"jsonrpc": "2.0",
		"id":      fmt.Sprintf("test-%d", time.Now().Unix()),
		"method":  "message/send",
		"params": map[string]any{
			"message": map[string]any{
				"kind":      "message",
				"role":      "user",
				"contextId": sessionName,
				"parts": []map[string]any{
					{"kind": "text", "text": message},
				},
			},
			"configuration": map[string]any{
				"blocking":            true,
				"acceptedOutputModes": []string{"text", "data"},
			},
		},
	}

	var response struct {
		Result *struct {
			Status struct {
				State   string `json:"state"`
				Message struct {
					Parts []struct {
						Text string `json:"text"`
					} `json:"parts"`
				} `json:"message"`
			} `json:"status"`
			Artifacts []json.RawMessage `json:"artifacts"`
		} `json:"result"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if _, ok := tc.postJSON("/a2a/concierge", request, &response); !ok {
		return false
	}
	if response.Error != nil {
		printError(fmt.Sprintf("Request returned error %d: %s", response.Error.Code, response.Error.Message))
		return false
	}
	if response.Result == nil {
		printError("Missing result")
		return false
	}

	status := response.Result.Status
	fmt.Printf("\n%sConcierge:%s\n", colorGreen, colorReset)
	fmt.Println(strings.Repeat("=", 80))
	for _, p := range status.Message.Parts {
		fmt.Println(p.Text)
	}
	fmt.Println(strings.Repeat("=", 80))

	if status.State != "completed" {
		printError(fmt.Sprintf("Expected state 'completed', got '%s'", status.State))
		return false
	}
	fmt.Printf("%sArtifacts:%s %d\n", colorPurple, colorReset, len(response.Result.Artifacts))

	var report struct {
		Version uint64 `json:"version"`
		Percent int    `json:"percent"`
		Panels  []struct {
			Kind string `json:"kind"`
		} `json:"panels"`
	}
	if !tc.getJSON("/api/sessions/"+url.PathEscape(sessionName)+"/report", &report) {
		return false
	}
	kinds := make([]string, len(report.Panels))
	for i, p := range report.Panels {
		kinds[i] = p.Kind
	}

	printSuccess(fmt.Sprintf("Report at version %d, %d%% complete, panels: %s",
		report.Version, report.Percent, strings.Join(kinds, ", ")))
	return true
}

func printHeader(text string) {
	fmt.Printf("\n%s%s%s\n", colorBlue, strings.Repeat("=", len(text)+4), colorReset)
	fmt.Printf("%s= %s =%s\n", colorBlue, text, colorReset)
	fmt.Printf("%s%s%s\n\n", colorBlue, strings.Repeat("=", len(text)+4), colorReset)
}

func printTestHeader(text string) {
	fmt.Printf("%s[TEST] %s%s\n", colorCyan, text, colorReset)
	fmt.Println(strings.Repeat("-", 80))
}

func printSuccess(text string) {
	fmt.Printf("%s✓ %s%s\n", colorGreen, text, colorReset)
}

func printError(text string) {
	fmt.Printf("%s✗ %s%s\n", colorRed, text, colorReset)
}

func printJSON(data []byte) {
	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, data, "", "  "); err == nil {
		fmt.Printf("\n%sResponse:%s\n%s\n", colorYellow, colorReset, prettyJSON.String())
	}
}
