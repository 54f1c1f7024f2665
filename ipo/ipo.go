// Package ipo extracts the Bursa Malaysia IPO summary table
package ipo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"klsescraper/scrape"

	"github.com/PuerkitoBio/goquery"
)

// SummaryURL is the IPO summary listing page
const SummaryURL = "https://www.bursamalaysia.com/listing/listing_resources/ipo/ipo_summary"

// DateFormat is the day-month-year format used by the source
const DateFormat = "02 Jan 2006"

// columnCount is the fixed shape of a summary table row
const columnCount = 10

// absentPlaceholder marks a closing date that does not apply
const absentPlaceholder = "-"

// closedLayouts are tried in order for the lenient closing-date parse
var closedLayouts = []string{
	DateFormat,
	"2 Jan 2006",
	"02-Jan-2006",
	"2006-01-02",
	"02/01/2006",
}

// Record is one normalized IPO listing. ApplicationClosed is nil when the
// source marks the column as not applicable or its text is unparseable.
type Record struct {
	No                int        `json:"no"`
	CompanyName       string     `json:"company_name"`
	ApplicationOpened time.Time  `json:"application_opened"`
	ApplicationClosed *time.Time `json:"application_closed"`
	IssuePrice        string     `json:"issue_price"`
	PublicIssue       string     `json:"public_issue"`
	OfferForSale      string     `json:"offer_for_sale"`
	PrivatePlacement  string     `json:"private_placement"`
	IssueHouse        string     `json:"issue_house"`
	ListingMarket     string     `json:"listing_market"`
	DateOfListing     time.Time  `json:"date_of_listing"`
}

// Table holds the listings in source order, numbered from 1
type Table []Record

// Fetch retrieves and extracts the current IPO summary
func Fetch(ctx context.Context) (Table, error) {
	return FetchURL(ctx, scrape.NewClient(scrape.DefaultTimeout), SummaryURL)
}

// FetchURL is Fetch against an explicit client and summary URL
func FetchURL(ctx context.Context, client *scrape.Client, url string) (Table, error) {
	body, err := client.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	return Extract(body)
}

// Extract parses the first table in the document and normalizes its body
// rows. A document without a table, or any row that does not have exactly
// 10 cells, fails the whole batch.
func Extract(body string) (Table, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, &scrape.ExtractError{Reason: "invalid HTML document", Err: err}
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, &scrape.ExtractError{Reason: "no table found"}
	}

	// The column schema is fixed and positional; the header row is only
	// checked for shape, its names are not consumed downstream.
	var headers []string
	table.Find("th").Each(func(i int, s *goquery.Selection) {
		headers = append(headers, scrape.CleanText(s.Text()))
	})
	if len(headers) > 0 && len(headers) != columnCount {
		return nil, &scrape.ExtractError{
			Reason: fmt.Sprintf("header has %d columns, want %d", len(headers), columnCount),
		}
	}

	var result Table
	var rowErr error
	table.Find("tbody tr").EachWithBreak(func(i int, tr *goquery.Selection) bool {
		var cells []string
		tr.Find("td").Each(func(j int, td *goquery.Selection) {
			cells = append(cells, scrape.CleanText(td.Text()))
		})

		if len(cells) != columnCount {
			rowErr = &scrape.ExtractError{
				Reason: fmt.Sprintf("row %d has %d cells, want %d", i+1, len(cells), columnCount),
			}
			return false
		}

		rec, err := normalize(cells)
		if err != nil {
			rowErr = &scrape.ExtractError{
				Reason: fmt.Sprintf("row %d", i+1),
				Err:    err,
			}
			return false
		}
		rec.No = i + 1
		result = append(result, rec)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	return result, nil
}

func normalize(cells []string) (Record, error) {
	opened, err := time.Parse(DateFormat, cells[1])
	if err != nil {
		return Record{}, fmt.Errorf("bad application opened date %q: %w", cells[1], err)
	}

	listing, err := time.Parse(DateFormat, cells[9])
	if err != nil {
		return Record{}, fmt.Errorf("bad date of listing %q: %w", cells[9], err)
	}

	return Record{
		CompanyName:       cells[0],
		ApplicationOpened: opened,
		ApplicationClosed: parseClosed(cells[2]),
		IssuePrice:        cells[3],
		PublicIssue:       cells[4],
		OfferForSale:      cells[5],
		PrivatePlacement:  cells[6],
		IssueHouse:        cells[7],
		ListingMarket:     cells[8],
		DateOfListing:     listing,
	}, nil
}

// parseClosed maps the "-" placeholder, and any text no layout accepts,
// to absent rather than failing the batch. A closing date legitimately may
// not apply to a listing.
func parseClosed(text string) *time.Time {
	text = strings.TrimSpace(text)
	if text == "" || text == absentPlaceholder {
		return nil
	}
	for _, layout := range closedLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return &t
		}
	}
	return nil
}
