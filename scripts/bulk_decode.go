package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// CSVRow is one input line: a VIN and an optional model year.
type CSVRow struct {
	VIN  string
	Year string
}

// DecodedCar mirrors the decode endpoint's car object.
type DecodedCar struct {
	VIN         string `json:"vin"`
	Year        string `json:"year"`
	Make        string `json:"make"`
	Model       string `json:"model"`
	BodyStyle   string `json:"body_style"`
	Engine      string `json:"engine"`
	Assembly    string `json:"assembly"`
	Description string `json:"description"`
}

const (
	defaultServiceURL = "http://localhost:8080"

	// Pause between requests so a long CSV does not hammer the
	// upstream decoder through our service.
	requestDelay = 200 * time.Millisecond
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run bulk_decode.go <path-to-csv> [service-url]")
		fmt.Println("Example: go run bulk_decode.go fleet-vins.csv http://localhost:8080")
		fmt.Println("CSV columns: vin[,model_year], first line is a header")
		os.Exit(1)
	}

	csvPath := os.Args[1]
	serviceURL := defaultServiceURL
	if len(os.Args) > 2 {
		serviceURL = strings.TrimRight(os.Args[2], "/")
	}

	fmt.Println("Step 1: Reading CSV file...")
	rows, err := readCSV(csvPath)
	if err != nil {
		fmt.Printf("Error reading CSV: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Read %d rows from CSV\n", len(rows))

	fmt.Printf("\nStep 2: Decoding against %s...\n", serviceURL)

	type result struct {
		row CSVRow
		car *DecodedCar
		err error
	}

	results := make([]result, 0, len(rows))
	successCount := 0
	failCount := 0

	for i, row := range rows {
		car, err := decodeVIN(serviceURL, row)
		if err != nil {
			fmt.Printf("  ✗ %d/%d %s: %v\n", i+1, len(rows), row.VIN, err)
			failCount++
		} else {
			fmt.Printf("  ✓ %d/%d %s -> %s %s %s\n", i+1, len(rows), row.VIN, car.Year, car.Make, car.Model)
			successCount++
		}
		results = append(results, result{row: row, car: car, err: err})
		time.Sleep(requestDelay)
	}

	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SUMMARY")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("  Total rows in CSV:    %d\n", len(rows))
	fmt.Printf("  Successfully decoded: %d\n", successCount)
	fmt.Printf("  Failed:               %d\n", failCount)
	fmt.Println(strings.Repeat("=", 80))

	outPath := strings.TrimSuffix(csvPath, ".csv") + "-decoded.csv"
	fmt.Printf("\nStep 3: Writing results to %s...\n", outPath)

	outFile, err := os.Create(outPath)
	if err != nil {
		fmt.Printf("Error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer outFile.Close()

	writer := csv.NewWriter(outFile)
	writer.Write([]string{"vin", "year", "make", "model", "body_style", "engine", "status"})
	for _, r := range results {
		record := []string{r.row.VIN, "", "", "", "", "", ""}
		if r.err != nil {
			record[6] = "error: " + r.err.Error()
		} else {
			record[1] = r.car.Year
			record[2] = r.car.Make
			record[3] = r.car.Model
			record[4] = r.car.BodyStyle
			record[5] = r.car.Engine
			record[6] = "ok"
		}
		writer.Write(record)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		fmt.Printf("Error writing output file: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✓ Done")
}

// readCSV reads the input file and returns the VIN rows.
func readCSV(path string) ([]CSVRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	// Skip header
	_, err = reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var rows []CSVRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		// Skip empty rows
		if len(record) < 1 || strings.TrimSpace(record[0]) == "" {
			continue
		}

		row := CSVRow{VIN: strings.TrimSpace(record[0])}
		if len(record) > 1 {
			row.Year = strings.TrimSpace(record[1])
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// decodeVIN posts one VIN to the decode endpoint.
func decodeVIN(serviceURL string, row CSVRow) (*DecodedCar, error) {
	form := url.Values{}
	form.Set("vin", row.VIN)
	if row.Year != "" {
		form.Set("year", row.Year)
	}

	endpoint := fmt.Sprintf("%s/api/v1/decode", serviceURL)
	req, err := http.NewRequest("POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errBody struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &errBody) == nil && errBody.Error != "" {
			return nil, fmt.Errorf("status %d: %s", resp.StatusCode, errBody.Error)
		}
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	var decoded struct {
		Car *DecodedCar `json:"car"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if decoded.Car == nil {
		return nil, fmt.Errorf("response has no car object: %s", string(body))
	}

	return decoded.Car, nil
}
