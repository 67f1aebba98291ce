package scraper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sukhantharot/dividend-stocks/helpers"
	"github.com/sukhantharot/dividend-stocks/internal/dividend"
)

// DefaultTotalPattern matches the status line some sources print above their
// result list, e.g. "1 - 45 of 102 out of 3,511".
var DefaultTotalPattern = regexp.MustCompile(`of ([\d,]+) out of ([\d,]+)`)

// Source describes one scrape target: where its pages live, which structural
// variants its data container takes, and how to turn the container markup
// into raw rows.
type Source struct {
	// Name identifies the source in logs and errors
	Name string

	// PageURL builds the URL for a 1-based page index
	PageURL func(pageIndex int) string

	// Variants is the ordered list of container descriptors to try
	Variants []Variant

	// NoDataMarkers are text fragments whose presence turns a structural
	// miss into a confirmed empty result
	NoDataMarkers []string

	// TotalPattern extracts the source's own record count, nil when the
	// source reports none
	TotalPattern *regexp.Regexp

	// Paginated is false for sources that put everything on one page
	Paginated bool

	// PageSizeHint is the expected rows per full page; a shorter page
	// signals the last one
	PageSizeHint int

	// ExtractRows parses the resolved container markup into raw rows
	ExtractRows func(containerHTML string) ([]dividend.RawRow, error)

	// RowID returns the intra-crawl dedup identity of a row
	RowID func(row *dividend.RawRow) string
}

// NewSettradeSource builds the source for a symbol's rights-benefits table on
// settrade. The site wants the symbol lowercased in the URL; rows carry it
// uppercased for storage.
func NewSettradeSource(urlTemplate, symbol string, pageSizeHint int) *Source {
	urlSymbol := strings.ToLower(symbol)
	storeSymbol := strings.ToUpper(symbol)
	url := fmt.Sprintf(urlTemplate, urlSymbol)

	return &Source{
		Name: "settrade",
		PageURL: func(pageIndex int) string {
			return url
		},
		Variants: []Variant{
			{Name: "info-table", Selector: "table.table-info"},
			{Name: "responsive-wrapper", Selector: "div.table-responsive table"},
			{Name: "any-table", Selector: "table[class*='table']"},
		},
		NoDataMarkers: []string{"ไม่พบข้อมูล", "ไม่มีข้อมูล"},
		TotalPattern:  DefaultTotalPattern,
		Paginated:     false,
		PageSizeHint:  pageSizeHint,
		ExtractRows: func(containerHTML string) ([]dividend.RawRow, error) {
			return extractTableRows(containerHTML, func(cells []string) *dividend.RawRow {
				if len(cells) < 4 {
					return nil
				}
				return &dividend.RawRow{
					Symbol:    storeSymbol,
					ExDate:    cells[0],
					EventType: cells[1],
					Amount:    cells[2],
					PayDate:   cells[3],
				}
			})
		},
		RowID: func(row *dividend.RawRow) string {
			return row.Symbol + "|" + row.ExDate + "|" + row.Amount + "|" + row.EventType
		},
	}
}

// Calendar dropdown field labels
const (
	labelExDate  = "วันขึ้นเครื่องหมาย"
	labelPayDate = "วันจ่ายปันผล"
	labelAmount  = "เงินปันผล (บาท/หุ้น)"
	labelType    = "ประเภท"
	labelPeriod  = "รอบผลประกอบการ"
)

// NewCalendarSource builds the source for the SET XD calendar of one month
func NewCalendarSource(baseURL string, year, month int) *Source {
	url := fmt.Sprintf("%s?year=%d&month=%d", baseURL, year, month)

	return &Source{
		Name: "set-calendar",
		PageURL: func(pageIndex int) string {
			return url
		},
		Variants: []Variant{
			{Name: "calendar-pane", Selector: "div.x-calendar-tab-pane"},
			{Name: "tab-content", Selector: "div.tab-content"},
			{Name: "any-calendar", Selector: "div[class*='x-calendar']"},
		},
		NoDataMarkers: []string{"ไม่พบข้อมูล", "ไม่มีข้อมูล"},
		Paginated:     false,
		PageSizeHint:  1,
		ExtractRows:   extractCalendarRows,
		RowID: func(row *dividend.RawRow) string {
			// The calendar repeats a symbol's badge across layouts
			return row.Symbol
		},
	}
}

// extractTableRows parses an HTML table, skipping the header row, and hands
// each row's cell texts to parse
func extractTableRows(containerHTML string, parse func(cells []string) *dividend.RawRow) ([]dividend.RawRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(containerHTML))
	if err != nil {
		return nil, fmt.Errorf("parse container: %w", err)
	}

	var rows []dividend.RawRow
	doc.Find("tr").Each(func(i int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() == 0 {
			// header row
			return
		}
		values := make([]string, 0, cells.Length())
		cells.Each(func(_ int, td *goquery.Selection) {
			values = append(values, helpers.CleanCell(td.Text()))
		})
		if row := parse(values); row != nil {
			rows = append(rows, *row)
		}
	})

	return rows, nil
}

// extractCalendarRows parses the XD-calendar symbol entries. Each .x-symbol
// node carries an event-type badge, a symbol badge and a dropdown of labeled
// field pairs.
func extractCalendarRows(containerHTML string) ([]dividend.RawRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(containerHTML))
	if err != nil {
		return nil, fmt.Errorf("parse container: %w", err)
	}

	var rows []dividend.RawRow
	doc.Find(".x-symbol").Each(func(i int, s *goquery.Selection) {
		badge := strings.ToUpper(helpers.CleanCell(s.Find(".x-type.xd-font-color").First().Text()))
		if badge != "XD" {
			return
		}

		symbol := helpers.CleanCell(s.Find(".badge-x-calendar").First().Text())
		dropdown := s.Find(".dropdown-menu").First()
		if symbol == "" || dropdown.Length() == 0 {
			return
		}

		fields := map[string]string{}
		pairs := dropdown.Find("div.col-12.text-start")
		for i := 0; i+1 < pairs.Length(); i += 2 {
			label := helpers.CleanCell(pairs.Eq(i).Text())
			value := helpers.CleanCell(pairs.Eq(i + 1).Text())
			fields[label] = value
		}

		exDate := fields[labelExDate]
		payDate := fields[labelPayDate]
		if exDate == "" || payDate == "" {
			return
		}

		eventType := fields[labelType]
		if eventType == "" {
			eventType = "เงินปันผล"
		}

		rows = append(rows, dividend.RawRow{
			Symbol:     strings.ToUpper(symbol),
			FiscalYear: yearToken(exDate),
			Period:     fields[labelPeriod],
			Amount:     strings.TrimSpace(strings.ReplaceAll(fields[labelAmount], "บาท", "")),
			ExDate:     exDate,
			PayDate:    payDate,
			EventType:  eventType,
		})
	})

	return rows, nil
}

// yearToken pulls the trailing year out of a "<day> <month> <year>" string
func yearToken(dateStr string) string {
	fields := strings.Fields(dateStr)
	if len(fields) != 3 {
		return ""
	}
	return fields[2]
}
