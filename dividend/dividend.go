// Package dividend extracts the i3investor dividend announcement table
package dividend

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"klsescraper/scrape"

	"github.com/kaptinlin/jsonrepair"
	"github.com/shopspring/decimal"
)

// ListingURL is the dividend announcement listing page
const ListingURL = "https://klse.i3investor.com/web/entitlement/dividend/latest"

// BaseURL is prepended to the relative detail links found in the payload
const BaseURL = "https://klse.i3investor.com/"

// DateFormat is the day-month-year format used by the source
const DateFormat = "02-Jan-2006"

const codePrefix = "/web/stock/entitlement/"

// columnCount is the fixed shape of a payload row:
// [announcement date, stock name, opening price, current price, dividend,
// ex date, stock code path, blank, relative detail URL]
const columnCount = 9

// The payload is a JSON array literal assigned to a script variable; the
// match stops before the final closing bracket, which Extract restores.
var payloadPattern = regexp.MustCompile(`(?s)var dtdata = (\[.*?\])\];`)

// Record is one normalized dividend announcement
type Record struct {
	No               int             `json:"no"`
	AnnouncementDate time.Time       `json:"announcement_date"`
	StockName        string          `json:"stock_name"`
	OpeningPrice     decimal.Decimal `json:"opening_price"`
	CurrentPrice     decimal.Decimal `json:"current_price"`
	Dividend         decimal.Decimal `json:"dividend"`
	ExDate           time.Time       `json:"ex_date"`
	StockCode        string          `json:"stock_code"`
	DetailURL        string          `json:"detail_url"`
}

// Table holds the announcements in source order, numbered from 1
type Table []Record

// Fetch retrieves and extracts the latest dividend announcements
func Fetch(ctx context.Context) (Table, error) {
	return FetchURL(ctx, scrape.NewClient(scrape.DefaultTimeout), ListingURL)
}

// FetchURL is Fetch against an explicit client and listing URL
func FetchURL(ctx context.Context, client *scrape.Client, url string) (Table, error) {
	body, err := client.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	return Extract(body)
}

// Extract locates the embedded payload in the listing page and normalizes it.
// A missing payload, malformed JSON, a row that does not have exactly 9
// columns, or any unparseable date or price fails the whole batch.
func Extract(body string) (Table, error) {
	m := payloadPattern.FindStringSubmatch(body)
	if m == nil {
		return nil, &scrape.ExtractError{Reason: "payload not found"}
	}

	rows, err := decodeRows(m[1] + "]")
	if err != nil {
		return nil, err
	}

	table := make(Table, 0, len(rows))
	for i, row := range rows {
		if len(row) != columnCount {
			return nil, &scrape.ExtractError{
				Reason: fmt.Sprintf("row %d has %d columns, want %d", i+1, len(row), columnCount),
			}
		}

		rec, err := normalize(row)
		if err != nil {
			return nil, &scrape.ExtractError{
				Reason: fmt.Sprintf("row %d", i+1),
				Err:    err,
			}
		}
		rec.No = i + 1
		table = append(table, rec)
	}

	return table, nil
}

func decodeRows(raw string) ([][]string, error) {
	var rows [][]string
	err := json.Unmarshal([]byte(raw), &rows)
	if err == nil {
		return rows, nil
	}

	// The source occasionally drifts on delimiter conventions; give the
	// literal one repair pass before giving up.
	repaired, repairErr := jsonrepair.JSONRepair(raw)
	if repairErr != nil {
		return nil, &scrape.ExtractError{Reason: "invalid payload JSON", Err: err}
	}
	if err := json.Unmarshal([]byte(repaired), &rows); err != nil {
		return nil, &scrape.ExtractError{Reason: "invalid payload JSON", Err: err}
	}
	return rows, nil
}

func normalize(row []string) (Record, error) {
	announced, err := time.Parse(DateFormat, row[0])
	if err != nil {
		return Record{}, fmt.Errorf("bad announcement date %q: %w", row[0], err)
	}

	exDate, err := time.Parse(DateFormat, row[5])
	if err != nil {
		return Record{}, fmt.Errorf("bad ex date %q: %w", row[5], err)
	}

	opening, err := decimal.NewFromString(strings.TrimSpace(row[2]))
	if err != nil {
		return Record{}, fmt.Errorf("bad opening price %q: %w", row[2], err)
	}

	current, err := decimal.NewFromString(strings.TrimSpace(row[3]))
	if err != nil {
		return Record{}, fmt.Errorf("bad current price %q: %w", row[3], err)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(row[4]))
	if err != nil {
		return Record{}, fmt.Errorf("bad dividend %q: %w", row[4], err)
	}

	// row[7] is a blank placeholder column and is dropped
	return Record{
		AnnouncementDate: announced,
		StockName:        scrape.CleanText(row[1]),
		OpeningPrice:     opening,
		CurrentPrice:     current,
		Dividend:         amount,
		ExDate:           exDate,
		StockCode:        strings.ReplaceAll(row[6], codePrefix, ""),
		DetailURL:        BaseURL + row[8],
	}, nil
}
