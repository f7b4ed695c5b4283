package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// APIResponse matches the API response structure
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type LunarDate struct {
	Year  int  `json:"year"`
	Month int  `json:"month"`
	Day   int  `json:"day"`
	Leap  bool `json:"leap"`
}

type DayMasterResponse struct {
	Date    string    `json:"date"`
	Lunar   LunarDate `json:"lunar"`
	Element struct {
		Name string `json:"name"`
	} `json:"element"`
}

// elementOrder is the canonical element order the day master cycles through.
var elementOrder = []string{"木", "火", "土", "金", "水"}

// TestResult holds the result for a single date
type TestResult struct {
	Date    string
	Success bool
	Element string
	Lunar   LunarDate
	Error   string
}

// ElementStats tracks statistics for each day-master element
type ElementStats struct {
	Element     string
	TotalDays   int
	SuccessDays int
	FailedDays  int
	FailedDates []string
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	startYear := flag.Int("start", 2024, "Start year")
	years := flag.Int("years", 4, "Number of years to test")
	parallel := flag.Int("p", 8, "Concurrent requests")
	verbose := flag.Bool("v", false, "Verbose output (show each date)")
	outputFile := flag.String("o", "", "Output results to JSON file")
	flag.Parse()

	endYear := *startYear + *years - 1

	fmt.Println("================================================================")
	fmt.Println("Liu Ren API - Calendar Coverage Test")
	fmt.Println("================================================================")
	fmt.Printf("Base URL:    %s\n", *baseURL)
	fmt.Printf("Date Range:  %d-01-01 to %d-12-31\n", *startYear, endYear)
	fmt.Printf("Total Years: %d\n", *years)
	fmt.Println()

	// Check if server is reachable
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("Error: Cannot connect to %s\n", *baseURL)
		fmt.Println("Make sure the API server is running.")
		os.Exit(1)
	}
	resp.Body.Close()

	// Test all dates
	results := testAllDates(context.Background(), client, *baseURL, *startYear, endYear, *parallel)
	checkContinuity(results)

	if *verbose {
		for _, r := range results {
			status := "✓"
			if !r.Success {
				status = "✗"
			}
			fmt.Printf("  %s %s  %d/%d/%d leap=%v  %s %s\n",
				status, r.Date, r.Lunar.Year, r.Lunar.Month, r.Lunar.Day, r.Lunar.Leap, r.Element, r.Error)
		}
		fmt.Println()
	}

	// Analyze results
	analysis := analyzeResults(results)

	printSummary(analysis, *startYear, endYear)
	printFailuresByElement(analysis)
	printAllFailures(analysis)

	// Output to file if requested
	if *outputFile != "" {
		saveResults(*outputFile, analysis)
	}

	// Exit with error code if there were failures
	if analysis.TotalFailed > 0 {
		os.Exit(1)
	}
}

func testAllDates(ctx context.Context, client *http.Client, baseURL string, startYear, endYear, parallel int) []TestResult {
	start := time.Date(startYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(endYear, time.December, 31, 0, 0, 0, 0, time.UTC)

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format("2006-01-02"))
	}

	results := make([]TestResult, len(dates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, date := range dates {
		i, date := i, date
		g.Go(func() error {
			results[i] = testDate(gctx, client, baseURL, date)
			return nil
		})
	}
	_ = g.Wait() // errors captured in TestResult

	return results
}

func testDate(ctx context.Context, client *http.Client, baseURL, dateStr string) TestResult {
	result := TestResult{Date: dateStr}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/v1/daymaster/%s", baseURL, dateStr), nil)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	resp, err := client.Do(req)
	if err != nil {
		result.Error = fmt.Sprintf("Connection error: %v", err)
		return result
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		result.Error = fmt.Sprintf("Read error: %v", err)
		return result
	}

	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		result.Error = fmt.Sprintf("Parse error: %v", err)
		return result
	}

	if !apiResp.Success {
		errMsg := "Unknown error"
		if apiResp.Error != nil {
			errMsg = apiResp.Error.Message
		}
		result.Error = errMsg
		return result
	}

	// Parse the successful response
	dataBytes, _ := json.Marshal(apiResp.Data)
	var data DayMasterResponse
	if err := json.Unmarshal(dataBytes, &data); err != nil {
		result.Error = fmt.Sprintf("Data parse error: %v", err)
		return result
	}

	result.Element = data.Element.Name
	result.Lunar = data.Lunar

	if data.Lunar.Month < 1 || data.Lunar.Month > 12 || data.Lunar.Day < 1 || data.Lunar.Day > 30 {
		result.Error = "Lunar date out of range"
		return result
	}
	if want := elementOrder[(data.Lunar.Month-1)%len(elementOrder)]; data.Element.Name != want {
		result.Error = fmt.Sprintf("Element %s does not follow lunar month %d (want %s)",
			data.Element.Name, data.Lunar.Month, want)
		return result
	}

	result.Success = true
	return result
}

// checkContinuity flags dates whose lunar day neither follows the previous
// day nor starts a new month.
func checkContinuity(results []TestResult) {
	for i := 1; i < len(results); i++ {
		prev, cur := results[i-1], &results[i]
		if !prev.Success || !cur.Success {
			continue
		}
		if cur.Lunar.Day != prev.Lunar.Day+1 && cur.Lunar.Day != 1 {
			cur.Success = false
			cur.Error = fmt.Sprintf("Lunar day jumped from %d to %d", prev.Lunar.Day, cur.Lunar.Day)
		}
	}
}

// Analysis holds the analyzed results
type Analysis struct {
	TotalDays    int
	TotalSuccess int
	TotalFailed  int
	LeapDays     int
	ByElement    map[string]*ElementStats
	ByYear       map[int]*YearStats
	AllFailures  []TestResult
}

type YearStats struct {
	Year        int
	TotalDays   int
	SuccessDays int
	FailedDays  int
}

func analyzeResults(results []TestResult) *Analysis {
	analysis := &Analysis{
		ByElement: make(map[string]*ElementStats),
		ByYear:    make(map[int]*YearStats),
	}

	for _, r := range results {
		analysis.TotalDays++

		date, _ := time.Parse("2006-01-02", r.Date)
		year := date.Year()

		if _, ok := analysis.ByYear[year]; !ok {
			analysis.ByYear[year] = &YearStats{Year: year}
		}
		analysis.ByYear[year].TotalDays++

		element := r.Element
		if element == "" {
			element = "(no element)"
		}
		if _, ok := analysis.ByElement[element]; !ok {
			analysis.ByElement[element] = &ElementStats{Element: element}
		}
		analysis.ByElement[element].TotalDays++

		if r.Lunar.Leap {
			analysis.LeapDays++
		}

		if r.Success {
			analysis.TotalSuccess++
			analysis.ByYear[year].SuccessDays++
			analysis.ByElement[element].SuccessDays++
		} else {
			analysis.TotalFailed++
			analysis.ByYear[year].FailedDays++
			analysis.ByElement[element].FailedDays++
			analysis.ByElement[element].FailedDates = append(analysis.ByElement[element].FailedDates, r.Date)
			analysis.AllFailures = append(analysis.AllFailures, r)
		}
	}

	return analysis
}

func printSummary(analysis *Analysis, startYear, endYear int) {
	fmt.Println("================================================================")
	fmt.Println("SUMMARY")
	fmt.Println("================================================================")
	fmt.Printf("Total Days Tested: %d\n", analysis.TotalDays)
	fmt.Printf("Successful:        %d (%.1f%%)\n", analysis.TotalSuccess,
		float64(analysis.TotalSuccess)/float64(analysis.TotalDays)*100)
	fmt.Printf("Failed:            %d (%.1f%%)\n", analysis.TotalFailed,
		float64(analysis.TotalFailed)/float64(analysis.TotalDays)*100)
	fmt.Printf("Leap-month days:   %d\n", analysis.LeapDays)
	fmt.Println()

	// By year
	fmt.Println("By Year:")
	for year := startYear; year <= endYear; year++ {
		if stats, ok := analysis.ByYear[year]; ok {
			status := "✓"
			if stats.FailedDays > 0 {
				status = "✗"
			}
			fmt.Printf("  %s %d: %d/%d days (%.1f%% success)\n",
				status, year, stats.SuccessDays, stats.TotalDays,
				float64(stats.SuccessDays)/float64(stats.TotalDays)*100)
		}
	}
	fmt.Println()

	fmt.Println("By Day Master:")
	for _, el := range elementOrder {
		if stats, ok := analysis.ByElement[el]; ok {
			fmt.Printf("  %s: %d days\n", el, stats.TotalDays)
		}
	}
	fmt.Println()
}

func printFailuresByElement(analysis *Analysis) {
	if analysis.TotalFailed == 0 {
		fmt.Println("No failures! 🎉")
		return
	}

	fmt.Println("================================================================")
	fmt.Println("FAILURES BY DAY MASTER")
	fmt.Println("================================================================")

	// Sort elements by failure count
	var elements []*ElementStats
	for _, stats := range analysis.ByElement {
		if stats.FailedDays > 0 {
			elements = append(elements, stats)
		}
	}
	sort.Slice(elements, func(i, j int) bool {
		return elements[i].FailedDays > elements[j].FailedDays
	})

	for _, stats := range elements {
		fmt.Printf("\n%s: %d failures\n", stats.Element, stats.FailedDays)
		// Show up to 5 example dates
		for i, date := range stats.FailedDates {
			if i >= 5 {
				fmt.Printf("  ... and %d more\n", len(stats.FailedDates)-5)
				break
			}
			fmt.Printf("  - %s\n", date)
		}
	}
	fmt.Println()
}

func printAllFailures(analysis *Analysis) {
	if analysis.TotalFailed == 0 {
		return
	}

	if analysis.TotalFailed > 50 {
		fmt.Printf("(Showing first 50 of %d failures)\n\n", analysis.TotalFailed)
	}

	fmt.Println("================================================================")
	fmt.Println("ALL FAILURES (Date | Lunar | Error)")
	fmt.Println("================================================================")

	// Group by error type
	errorGroups := make(map[string][]TestResult)
	for _, f := range analysis.AllFailures {
		errorGroups[f.Error] = append(errorGroups[f.Error], f)
	}

	shown := 0
	for errorType, failures := range errorGroups {
		fmt.Printf("\nError: %s (%d occurrences)\n", errorType, len(failures))
		for _, f := range failures {
			if shown >= 50 {
				break
			}
			fmt.Printf("  %s | %d/%d/%d\n", f.Date, f.Lunar.Year, f.Lunar.Month, f.Lunar.Day)
			shown++
		}
		if shown >= 50 {
			break
		}
	}
	fmt.Println()
}

func saveResults(filename string, analysis *Analysis) {
	output := struct {
		GeneratedAt string                   `json:"generated_at"`
		Summary     map[string]interface{}   `json:"summary"`
		ByElement   map[string]*ElementStats `json:"by_element"`
		Failures    []TestResult             `json:"failures"`
	}{
		GeneratedAt: time.Now().Format(time.RFC3339),
		Summary: map[string]interface{}{
			"total_days":    analysis.TotalDays,
			"total_success": analysis.TotalSuccess,
			"total_failed":  analysis.TotalFailed,
			"leap_days":     analysis.LeapDays,
			"success_rate":  fmt.Sprintf("%.2f%%", float64(analysis.TotalSuccess)/float64(analysis.TotalDays)*100),
		},
		ByElement: analysis.ByElement,
		Failures:  analysis.AllFailures,
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		fmt.Printf("Error marshaling results: %v\n", err)
		return
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		fmt.Printf("Error writing file: %v\n", err)
		return
	}

	fmt.Printf("Results saved to: %s\n", filename)
}
