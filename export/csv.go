// Package export serializes the extraction tables as CSV
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"klsescraper/dividend"
	"klsescraper/history"
	"klsescraper/ipo"
)

// Download filenames for the three tables
const (
	DividendFilename = "dividend.csv"
	IpoFilename      = "ipo.csv"
)

// HistoryFilename is the download filename for a ticker's price history
func HistoryFilename(ticker string) string {
	return ticker + "_historical_data.csv"
}

const dateFormat = "2006-01-02"

var dividendHeader = []string{
	"no", "announcement_date", "stock_name", "opening_price", "current_price",
	"dividend", "ex_date", "stock_code", "detail_url",
}

var ipoHeader = []string{
	"no", "company_name", "application_opened", "application_closed", "issue_price",
	"public_issue", "offer_for_sale", "private_placement", "issue_house",
	"listing_market", "date_of_listing",
}

var historyHeader = []string{"date", "open", "high", "low", "close", "volume"}

// Dividends writes table as UTF-8 CSV with a header row
func Dividends(w io.Writer, table dividend.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(dividendHeader); err != nil {
		return err
	}
	for _, r := range table {
		row := []string{
			strconv.Itoa(r.No),
			r.AnnouncementDate.Format(dateFormat),
			r.StockName,
			r.OpeningPrice.String(),
			r.CurrentPrice.String(),
			r.Dividend.String(),
			r.ExDate.Format(dateFormat),
			r.StockCode,
			r.DetailURL,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// IPOs writes table as UTF-8 CSV with a header row. An absent closing date
// becomes an empty cell.
func IPOs(w io.Writer, table ipo.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ipoHeader); err != nil {
		return err
	}
	for _, r := range table {
		closed := ""
		if r.ApplicationClosed != nil {
			closed = r.ApplicationClosed.Format(dateFormat)
		}
		row := []string{
			strconv.Itoa(r.No),
			r.CompanyName,
			r.ApplicationOpened.Format(dateFormat),
			closed,
			r.IssuePrice,
			r.PublicIssue,
			r.OfferForSale,
			r.PrivatePlacement,
			r.IssueHouse,
			r.ListingMarket,
			r.DateOfListing.Format(dateFormat),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// History writes the candles as UTF-8 CSV with a header row
func History(w io.Writer, candles []history.Candle) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(historyHeader); err != nil {
		return err
	}
	for _, c := range candles {
		row := []string{
			c.Date.Format(dateFormat),
			c.Open.String(),
			c.High.String(),
			c.Low.String(),
			c.Close.String(),
			strconv.FormatInt(c.Volume, 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
