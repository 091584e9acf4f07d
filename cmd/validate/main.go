// Command validate reads a raw closures payload from disk, runs the
// extractor against it, and prints a summary: situation and record counts,
// closures by cause, lane availability, and malformed entries. Useful for
// eyeballing a cached payload before pointing the server at it.
//
// Usage:
//
//	go run ./cmd/validate -payload closures.json
//	go run ./cmd/validate -payload closures.json -at 2025-06-15T12:00:00Z -skip-filtered
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/couchcryptid/road-closures-service/internal/domain"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	payloadPath := flag.String("payload", "closures.json", "path to a raw closures payload")
	at := flag.String("at", "", "extraction instant, RFC 3339 (default: now in Europe/London)")
	skipFiltered := flag.Bool("skip-filtered", false, "examine records after a filtered one")
	timezone := flag.String("timezone", "Europe/London", "reference timezone")
	flag.Parse()

	loc, err := time.LoadLocation(*timezone)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	now := time.Now().In(loc)
	if *at != "" {
		now, err = time.Parse(time.RFC3339, *at)
		if err != nil {
			return fmt.Errorf("parse -at: %w", err)
		}
		now = now.In(loc)
	}

	raw, err := os.ReadFile(*payloadPath)
	if err != nil {
		return err
	}
	var payload domain.ClosurePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("payload is not valid JSON: %w", err)
	}

	totalRecords := 0
	for _, s := range payload.D2Payload.Situations {
		totalRecords += len(s.Records)
	}

	records, malformed := domain.ExtractClosures(&payload, now, domain.Options{
		SkipFiltered: *skipFiltered,
	})

	fmt.Printf("payload: %d situations, %d situation records\n",
		len(payload.D2Payload.Situations), totalRecords)
	fmt.Printf("extracted at %s: %d closures, %d malformed entries skipped\n",
		now.Format(time.RFC3339), len(records), malformed)

	byCause := map[string]int{}
	unknownLanes := 0
	fullClosures := 0
	for _, r := range records {
		byCause[r.Cause]++
		if !r.OpenLanes.Known {
			unknownLanes++
		}
		if r.Opacity == domain.OpacityFullClosure {
			fullClosures++
		}
	}

	causes := make([]string, 0, len(byCause))
	for c := range byCause {
		causes = append(causes, c)
	}
	sort.Strings(causes)

	fmt.Println("by cause:")
	for _, c := range causes {
		fmt.Printf("  %-22s %4d  (%s)\n", c, byCause[c], domain.CauseDisplayName(c))
	}
	fmt.Printf("full closures (no open lanes): %d\n", fullClosures)
	fmt.Printf("closures without lane data:    %d\n", unknownLanes)

	return nil
}
