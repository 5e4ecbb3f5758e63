package earnings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/zanisimone/tapeboard/internal/infra"
	"github.com/zanisimone/tapeboard/pkg/models"
	"github.com/zanisimone/tapeboard/pkg/utils"
)

const (
	defaultQuoteSummaryURL = "https://query1.finance.yahoo.com/v10/finance/quoteSummary/%s?modules=calendarEvents"
	defaultCalendarURL     = "https://finance.yahoo.com/calendar/earnings?symbol=%s"
)

// YahooSource looks up earnings dates on Yahoo Finance. The quoteSummary
// API is the primary path; when it fails, the public earnings calendar page
// is scraped as a fallback. Calendar-page dates are always reported as
// estimated because the page does not distinguish confirmed dates.
type YahooSource struct {
	limiter         *infra.RateLimiter
	userAgent       string
	quoteSummaryURL string
	calendarURL     string
}

// NewYahooSource creates a Yahoo Finance earnings source. requestsPerSec
// bounds outbound calls; userAgent overrides the default client string when
// non-empty.
func NewYahooSource(requestsPerSec int, userAgent string) *YahooSource {
	if requestsPerSec <= 0 {
		requestsPerSec = 5
	}
	return &YahooSource{
		limiter:         infra.NewRateLimiter(requestsPerSec, time.Second),
		userAgent:       userAgent,
		quoteSummaryURL: defaultQuoteSummaryURL,
		calendarURL:     defaultCalendarURL,
	}
}

// Name returns the data source name.
func (y *YahooSource) Name() string { return "Yahoo Finance" }

// --- Yahoo Finance quoteSummary types ---

type yahooSummaryResponse struct {
	QuoteSummary struct {
		Result []yahooSummaryResult `json:"result"`
		Error  *yahooError          `json:"error"`
	} `json:"quoteSummary"`
}

type yahooSummaryResult struct {
	CalendarEvents struct {
		Earnings struct {
			EarningsDate []yahooValue `json:"earningsDate"`
		} `json:"earnings"`
	} `json:"calendarEvents"`
}

type yahooValue struct {
	Raw int64  `json:"raw"`
	Fmt string `json:"fmt"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// LookupNextEarnings returns the next earnings event for a symbol. A single
// provider date is reported as confirmed; a multi-date window is reported as
// estimated with the earliest date. ErrNoData means Yahoo has no upcoming
// date for the symbol.
func (y *YahooSource) LookupNextEarnings(ctx context.Context, symbol string) (models.EarningsEvent, error) {
	event, err := y.fromQuoteSummary(ctx, symbol)
	if err == nil {
		return event, nil
	}
	if errors.Is(err, ErrNoData) {
		return models.EarningsEvent{}, err
	}

	// Primary endpoint unavailable; fall back to scraping the calendar page.
	fallback, ferr := y.scrapeCalendar(ctx, symbol)
	if ferr != nil {
		return models.EarningsEvent{}, err
	}
	return fallback, nil
}

func (y *YahooSource) fromQuoteSummary(ctx context.Context, symbol string) (models.EarningsEvent, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return models.EarningsEvent{}, err
	}

	reqURL := fmt.Sprintf(y.quoteSummaryURL, url.PathEscape(symbol))
	body, _, err := infra.DoGet(ctx, reqURL, y.headers("application/json"))
	if err != nil {
		return models.EarningsEvent{}, fmt.Errorf("yahoo earnings %s: %w", symbol, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return models.EarningsEvent{}, fmt.Errorf("read response: %w", err)
	}

	var resp yahooSummaryResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return models.EarningsEvent{}, fmt.Errorf("parse yahoo earnings %s: %w", symbol, err)
	}

	if resp.QuoteSummary.Error != nil {
		return models.EarningsEvent{}, fmt.Errorf("yahoo API error: %s", resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return models.EarningsEvent{}, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	dates := parseEarningsDates(resp.QuoteSummary.Result[0].CalendarEvents.Earnings.EarningsDate)
	if len(dates) == 0 {
		return models.EarningsEvent{}, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	// One date means the company has announced it. Two or more mean Yahoo
	// is reporting an estimate window; take the earliest.
	status := models.StatusConfirmed
	if len(dates) > 1 {
		status = models.StatusEstimated
	}

	return models.EarningsEvent{
		Symbol: symbol,
		Date:   dates[0],
		Status: status,
	}, nil
}

// parseEarningsDates converts provider values into sorted calendar dates.
// Entries with neither a usable epoch nor a parseable formatted date are
// skipped.
func parseEarningsDates(values []yahooValue) []time.Time {
	dates := make([]time.Time, 0, len(values))
	for _, v := range values {
		switch {
		case v.Raw != 0:
			dates = append(dates, utils.DateOnly(time.Unix(v.Raw, 0).UTC()))
		case v.Fmt != "":
			if t, err := utils.ParseDate(v.Fmt); err == nil {
				dates = append(dates, t)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// scrapeCalendar extracts the next earnings date from the public calendar
// page. Rows list past and future events, so the earliest date on or after
// today wins.
func (y *YahooSource) scrapeCalendar(ctx context.Context, symbol string) (models.EarningsEvent, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return models.EarningsEvent{}, err
	}

	reqURL := fmt.Sprintf(y.calendarURL, url.QueryEscape(symbol))
	body, _, err := infra.DoGet(ctx, reqURL, y.headers("text/html"))
	if err != nil {
		return models.EarningsEvent{}, fmt.Errorf("yahoo calendar %s: %w", symbol, err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return models.EarningsEvent{}, fmt.Errorf("parse yahoo calendar %s: %w", symbol, err)
	}

	today := utils.DateOnly(time.Now().UTC())
	var next time.Time

	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		row.Find("td").Each(func(_ int, cell *goquery.Selection) {
			date, ok := parseCalendarDate(cell.Text())
			if !ok || date.Before(today) {
				return
			}
			if next.IsZero() || date.Before(next) {
				next = date
			}
		})
	})

	if next.IsZero() {
		return models.EarningsEvent{}, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	return models.EarningsEvent{
		Symbol: symbol,
		Date:   next,
		Status: models.StatusEstimated,
	}, nil
}

// parseCalendarDate extracts a date from calendar-page cell text such as
// "Apr 30, 2026, 4 PM EDT" or a bare "Apr 30, 2026".
func parseCalendarDate(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	parts := strings.Split(text, ", ")
	if len(parts) >= 2 {
		candidate := parts[0] + ", " + parts[1]
		if t, err := time.Parse("Jan 2, 2006", candidate); err == nil {
			return utils.DateOnly(t), true
		}
	}
	if t, err := time.Parse("Jan 2, 2006", text); err == nil {
		return utils.DateOnly(t), true
	}
	return time.Time{}, false
}

// headers builds the request headers, applying the configured user agent
// when set.
func (y *YahooSource) headers(accept string) map[string]string {
	h := map[string]string{"Accept": accept}
	if y.userAgent != "" {
		h["User-Agent"] = y.userAgent
	}
	return h
}
