package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// =============================================================================
// Response Types - Match the actual API response structure
// =============================================================================

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// HealthResponse is the response for /health
type HealthResponse struct {
	Status           string `json:"status"`
	StrokeDictionary int    `json:"stroke_dictionary"`
	Symbols          int    `json:"symbols"`
	Elements         int    `json:"elements"`
}

type Symbol struct {
	Name    string `json:"name"`
	Element string `json:"element"`
}

type Transmission struct {
	Initial Symbol `json:"initial"`
	Middle  Symbol `json:"middle"`
	Final   Symbol `json:"final"`
}

type RelationStep struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Relation string `json:"relation"`
	Label    string `json:"label"`
}

// CastResult is the result body of a cast.
type CastResult struct {
	Method       string          `json:"method"`
	Inputs       [3]int          `json:"inputs"`
	Transmission Transmission    `json:"transmission"`
	Relations    [2]RelationStep `json:"relations"`
	Summary      string          `json:"summary"`
}

// DivinationResponse is the response for POST and GET /api/v1/divinations/{id}
type DivinationResponse struct {
	ID       string     `json:"id"`
	Question string     `json:"question,omitempty"`
	Result   CastResult `json:"result"`
}

type StatsResponse struct {
	Total    int            `json:"total"`
	ByMethod map[string]int `json:"by_method"`
}

// ChartResponse is the response for /api/v1/bazi
type ChartResponse struct {
	Solar  string `json:"solar"`
	Report struct {
		Pillars      string `json:"pillars"`
		ChineseYear  string `json:"chinese_year"`
		DayMaster    string `json:"day_master"`
		ElementPairs string `json:"element_pairs"`
		Counts       string `json:"counts"`
	} `json:"report"`
}

type LunarResponse struct {
	Solar string `json:"solar"`
	Lunar struct {
		Year  int  `json:"year"`
		Month int  `json:"month"`
		Day   int  `json:"day"`
		Leap  bool `json:"leap"`
	} `json:"lunar"`
	Text string `json:"text"`
}

// =============================================================================
// Test Runner
// =============================================================================

type TestRunner struct {
	baseURL      string
	apiKey       string
	client       *http.Client
	verbose      bool
	successCount int
	errorCount   int
	errors       []string
}

func NewTestRunner(baseURL, apiKey string, verbose bool) *TestRunner {
	return &TestRunner{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		verbose: verbose,
	}
}

func (tr *TestRunner) Run() {
	fmt.Println("==============================================")
	fmt.Println("Liu Ren API Test Suite")
	fmt.Println("==============================================")
	fmt.Printf("Base URL: %s\n", tr.baseURL)
	fmt.Println()

	// Run test groups
	tr.testHealth()
	tr.testTables()
	tr.testNumberCasts()
	tr.testBazi()
	tr.testEdgeCases()
	tr.testDivinationRoundTrip()
	tr.testLunarMonth()

	// Print summary
	tr.printSummary()
}

// =============================================================================
// Test Groups
// =============================================================================

func (tr *TestRunner) testHealth() {
	tr.printSection("Health Check")

	resp, err := tr.get("/health")
	if err != nil {
		tr.recordError("Health", err.Error())
		return
	}

	var health HealthResponse
	if err := tr.parseDataAs(resp, &health); err != nil {
		tr.recordError("Health", err.Error())
		return
	}

	if health.Status != "healthy" {
		tr.recordError("Health", fmt.Sprintf("Unexpected status: %s", health.Status))
		return
	}
	tr.recordSuccess(fmt.Sprintf("Health check passed (%d symbols, %d elements, %d dictionary entries)",
		health.Symbols, health.Elements, health.StrokeDictionary))
	if health.StrokeDictionary == 0 {
		fmt.Println("    Note: stroke dictionary is empty, run cmd/import first")
	}
}

func (tr *TestRunner) testTables() {
	tr.printSection("Static Tables")

	resp, err := tr.get("/api/v1/elements")
	if err != nil {
		tr.recordError("Elements", err.Error())
	} else if items, ok := resp.Data.([]interface{}); !ok || len(items) != 5 {
		tr.recordError("Elements", "expected 5 elements")
	} else {
		tr.recordSuccess("5 elements listed")
	}

	resp, err = tr.get("/api/v1/symbols")
	if err != nil {
		tr.recordError("Symbols", err.Error())
	} else if items, ok := resp.Data.([]interface{}); !ok || len(items) != 9 {
		tr.recordError("Symbols", "expected 9 symbols")
	} else {
		tr.recordSuccess("9 symbols listed")
	}

	if _, err := tr.get("/api/v1/elements/" + "%E6%B0%B4"); err != nil {
		tr.recordError("Element 水", err.Error())
	} else {
		tr.recordSuccess("Element detail for 水")
	}
}

func (tr *TestRunner) testNumberCasts() {
	tr.printSection("Number Casts")

	testCases := []struct {
		numbers [3]int
		want    [3]string
	}{
		{[3]int{6, 6, 2}, [3]string{"空亡", "留连", "速喜"}},
		{[3]int{1, 2, 3}, [3]string{"大安", "留连", "赤口"}},
		{[3]int{9, 9, 9}, [3]string{"天德", "桃花", "病符"}},
		{[3]int{10, 10, 10}, [3]string{"大安", "大安", "大安"}},
	}

	for _, tc := range testCases {
		name := fmt.Sprintf("%v", tc.numbers)
		data, err := tr.createDivination(map[string]interface{}{
			"method":  "numbers",
			"numbers": tc.numbers[:],
		})
		if err != nil {
			tr.recordError(name, err.Error())
			continue
		}

		tx := data.Result.Transmission
		got := [3]string{tx.Initial.Name, tx.Middle.Name, tx.Final.Name}
		if got != tc.want {
			tr.recordError(name, fmt.Sprintf("got %v, want %v", got, tc.want))
			continue
		}
		tr.recordSuccess(fmt.Sprintf("%s → %s %s %s", name, got[0], got[1], got[2]))
		if tr.verbose {
			tr.printCastDetail(data.Result)
		}
	}
}

func (tr *TestRunner) testBazi() {
	tr.printSection("Ba Zi")

	resp, err := tr.get("/api/v1/bazi?date=1990-05-01&time=08:30&gender=M")
	if err != nil {
		tr.recordError("Bazi", err.Error())
		return
	}

	var chart ChartResponse
	if err := tr.parseDataAs(resp, &chart); err != nil {
		tr.recordError("Bazi", err.Error())
		return
	}

	if chart.Report.Pillars == "庚午年 辛午月 乙酉日 庚辰时" {
		tr.recordSuccess(fmt.Sprintf("1990-05-01 08:30 → %s", chart.Report.Pillars))
	} else {
		tr.recordError("Bazi", fmt.Sprintf("unexpected pillars %s", chart.Report.Pillars))
	}
	if tr.verbose {
		fmt.Printf("    Year: %s\n", chart.Report.ChineseYear)
		fmt.Printf("    Day master: %s\n", chart.Report.DayMaster)
		fmt.Printf("    Elements: %s\n", chart.Report.ElementPairs)
		fmt.Printf("    Counts: %s\n", chart.Report.Counts)
		fmt.Println()
	}

	if _, err := tr.get("/api/v1/bazi?date=2024-02-10&time=12:00&method=exact"); err != nil {
		tr.recordError("Bazi (exact)", err.Error())
	} else {
		tr.recordSuccess("Exact chart computed")
	}
}

func (tr *TestRunner) testEdgeCases() {
	tr.printSection("Edge Cases")

	// Invalid date format
	resp, _ := tr.getRaw("/api/v1/daymaster/invalid")
	if resp != nil && resp.StatusCode == 400 {
		tr.recordSuccess("Invalid date format rejected")
	} else {
		tr.recordError("Invalid date", "Should return 400")
	}

	// Missing date for bazi
	resp2, _ := tr.getRaw("/api/v1/bazi")
	if resp2 != nil && resp2.StatusCode == 400 {
		tr.recordSuccess("Missing date parameter rejected")
	} else {
		tr.recordError("Missing param", "Should reject missing date")
	}

	// Non-positive cast input
	resp3, _ := tr.postRaw("/api/v1/divinations", map[string]interface{}{
		"method":  "numbers",
		"numbers": []int{0, 1, 2},
	})
	if resp3 != nil && resp3.StatusCode == 400 {
		tr.recordSuccess("Zero cast input rejected")
	} else {
		tr.recordError("Zero input", "Should return 400")
	}

	// Latin text is not a stroke lookup
	resp4, _ := tr.getRaw("/api/v1/strokes/abc")
	if resp4 != nil && resp4.StatusCode == 400 {
		tr.recordSuccess("Non-Chinese characters rejected")
	} else {
		tr.recordError("Non-Chinese characters", "Should return 400")
	}

	// Leap lunar month
	resp5, err := tr.get("/api/v1/calendar/lunar/2020-05-23")
	if err != nil {
		tr.recordError("Leap month", err.Error())
	} else {
		var lunar LunarResponse
		if err := tr.parseDataAs(resp5, &lunar); err == nil && lunar.Lunar.Leap {
			tr.recordSuccess(fmt.Sprintf("Leap month handled (%s)", lunar.Text))
		} else {
			tr.recordError("Leap month", "2020-05-23 should be in a leap month")
		}
	}

	for _, r := range []*http.Response{resp, resp2, resp3, resp4} {
		if r != nil {
			r.Body.Close()
		}
	}
}

func (tr *TestRunner) testDivinationRoundTrip() {
	tr.printSection("Stored Divinations")

	created, err := tr.createDivination(map[string]interface{}{
		"method":   "date",
		"date":     "2024-02-10",
		"time":     "12:00",
		"question": "apitest",
	})
	if err != nil {
		tr.recordError("Create", err.Error())
		return
	}
	tr.recordSuccess(fmt.Sprintf("Created %s (inputs %v)", created.ID, created.Result.Inputs))

	resp, err := tr.get("/api/v1/divinations/" + created.ID)
	if err != nil {
		tr.recordError("Get", err.Error())
	} else {
		var got DivinationResponse
		if err := tr.parseDataAs(resp, &got); err != nil || got.ID != created.ID {
			tr.recordError("Get", "fetched divination does not match")
		} else {
			tr.recordSuccess("Fetched by ID")
		}
	}

	if _, err := tr.get("/api/v1/divinations?limit=5"); err != nil {
		tr.recordError("List", err.Error())
	} else {
		tr.recordSuccess("Listed recent divinations")
	}

	resp, err = tr.get("/api/v1/divinations/stats")
	if err != nil {
		tr.recordError("Stats", err.Error())
		return
	}
	var stats StatsResponse
	if err := tr.parseDataAs(resp, &stats); err != nil || stats.Total == 0 {
		tr.recordError("Stats", "expected at least one stored divination")
		return
	}
	tr.recordSuccess(fmt.Sprintf("Stats: %d total %v", stats.Total, stats.ByMethod))
}

func (tr *TestRunner) testLunarMonth() {
	tr.printSection("Lunar New Year 2024 (30 days)")

	start := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)
	var prev *LunarResponse
	for i := 0; i < 30; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		resp, err := tr.get(fmt.Sprintf("/api/v1/calendar/lunar/%s", date))
		if err != nil {
			tr.recordError(date, err.Error())
			prev = nil
			continue
		}

		var data LunarResponse
		if err := tr.parseDataAs(resp, &data); err != nil {
			tr.recordError(date, err.Error())
			prev = nil
			continue
		}

		if prev != nil && data.Lunar.Day != prev.Lunar.Day+1 && data.Lunar.Day != 1 {
			tr.recordError(date, fmt.Sprintf("lunar day jumped from %d to %d", prev.Lunar.Day, data.Lunar.Day))
		} else if tr.verbose {
			tr.recordSuccess(fmt.Sprintf("%s: %s", date, data.Text))
		} else {
			tr.successCount++
		}
		prev = &data
	}
	if !tr.verbose {
		fmt.Println("  (use -v to list each day)")
	}
}

// =============================================================================
// Helper Methods
// =============================================================================

func (tr *TestRunner) get(path string) (*APIResponse, error) {
	resp, err := tr.getRaw(path)
	if err != nil {
		return nil, err
	}
	return tr.decode(resp)
}

func (tr *TestRunner) decode(resp *http.Response) (*APIResponse, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read error: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	if !apiResp.Success {
		errMsg := "unknown error"
		if apiResp.Error != nil {
			errMsg = apiResp.Error.Message
		}
		return nil, fmt.Errorf("API error: %s", errMsg)
	}

	return &apiResp, nil
}

func (tr *TestRunner) getRaw(path string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, tr.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if tr.apiKey != "" {
		req.Header.Set("X-API-Key", tr.apiKey)
	}
	return tr.client.Do(req)
}

func (tr *TestRunner) postRaw(path string, body interface{}) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, tr.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if tr.apiKey != "" {
		req.Header.Set("X-API-Key", tr.apiKey)
	}
	return tr.client.Do(req)
}

func (tr *TestRunner) createDivination(body interface{}) (*DivinationResponse, error) {
	resp, err := tr.postRaw("/api/v1/divinations", body)
	if err != nil {
		return nil, err
	}
	apiResp, err := tr.decode(resp)
	if err != nil {
		return nil, err
	}
	var data DivinationResponse
	if err := tr.parseDataAs(apiResp, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (tr *TestRunner) parseDataAs(resp *APIResponse, target interface{}) error {
	// Re-marshal and unmarshal to convert map to struct
	dataBytes, err := json.Marshal(resp.Data)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}
	return json.Unmarshal(dataBytes, target)
}

func (tr *TestRunner) printSection(name string) {
	fmt.Println()
	fmt.Printf("--- %s ---\n", name)
	fmt.Println()
}

func (tr *TestRunner) printCastDetail(r CastResult) {
	for _, rel := range r.Relations {
		fmt.Printf("    %s → %s: %s\n", rel.From, rel.To, rel.Label)
	}
	fmt.Println()
}

func (tr *TestRunner) recordSuccess(msg string) {
	tr.successCount++
	fmt.Printf("  ✓ %s\n", msg)
}

func (tr *TestRunner) recordError(context, msg string) {
	tr.errorCount++
	errStr := fmt.Sprintf("%s: %s", context, msg)
	tr.errors = append(tr.errors, errStr)
	fmt.Printf("  ✗ %s\n", errStr)
}

func (tr *TestRunner) printSummary() {
	fmt.Println()
	fmt.Println("==============================================")
	fmt.Println("Summary")
	fmt.Println("==============================================")
	fmt.Printf("  Passed: %d\n", tr.successCount)
	fmt.Printf("  Failed: %d\n", tr.errorCount)
	fmt.Println()

	if tr.errorCount > 0 {
		fmt.Println("Failures:")
		for _, err := range tr.errors {
			fmt.Printf("  • %s\n", err)
		}
		fmt.Println()
	}

	if tr.errorCount == 0 {
		fmt.Println("All tests passed! ✓")
	} else {
		fmt.Printf("Tests completed with %d failure(s)\n", tr.errorCount)
	}
}

// =============================================================================
// Main
// =============================================================================

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	apiKey := flag.String("key", os.Getenv("API_KEY"), "API key for /divinations")
	verbose := flag.Bool("v", false, "Verbose output (show cast details)")
	flag.Parse()

	// Check if server is reachable
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("Error: Cannot connect to %s\n", *baseURL)
		fmt.Println("Make sure the API server is running.")
		os.Exit(1)
	}
	resp.Body.Close()

	runner := NewTestRunner(*baseURL, *apiKey, *verbose)
	runner.Run()

	// Exit with error code if tests failed
	if runner.errorCount > 0 {
		os.Exit(1)
	}
}
