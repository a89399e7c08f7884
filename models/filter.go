package models

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/foaademad/event-test/internal/status"
)

type DateBucket string

const (
	DateAny         DateBucket = ""
	DateToday       DateBucket = "today"
	DateTomorrow    DateBucket = "tomorrow"
	DateThisWeek    DateBucket = "this-week"
	DateThisWeekend DateBucket = "this-weekend"
	DateNextWeek    DateBucket = "next-week"
	DateThisMonth   DateBucket = "this-month"
)

var DateBuckets = []DateBucket{DateToday, DateTomorrow, DateThisWeek, DateThisWeekend, DateNextWeek, DateThisMonth}

func (b DateBucket) Valid() bool {
	if b == DateAny {
		return true
	}
	for _, known := range DateBuckets {
		if b == known {
			return true
		}
	}
	return false
}

type PriceBucket string

const (
	PriceAny     PriceBucket = ""
	PriceFree    PriceBucket = "free"
	PricePaid    PriceBucket = "paid"
	PriceUnder25 PriceBucket = "under-25"
	Price25To50  PriceBucket = "25-50"
	Price50To100 PriceBucket = "50-100"
	PriceOver100 PriceBucket = "over-100"
)

var PriceBuckets = []PriceBucket{PriceFree, PricePaid, PriceUnder25, Price25To50, Price50To100, PriceOver100}

func (b PriceBucket) Valid() bool {
	if b == PriceAny {
		return true
	}
	for _, known := range PriceBuckets {
		if b == known {
			return true
		}
	}
	return false
}

// Filter selects events by category, date bucket and price bucket. Empty
// fields are inactive.
type Filter struct {
	Category string      `json:"category"`
	Date     DateBucket  `json:"date"`
	Price    PriceBucket `json:"price"`
}

func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Query-string keys used by the event list.
const (
	QueryCategory = "category"
	QueryDate     = "date"
	QueryPrice    = "price"
	QuerySearch   = "search"
)

// ParseFilter reads a filter and search term from query values. Unknown
// bucket names are rejected.
func ParseFilter(q url.Values) (Filter, string, error) {
	f := Filter{
		Category: strings.TrimSpace(q.Get(QueryCategory)),
		Date:     DateBucket(strings.ToLower(strings.TrimSpace(q.Get(QueryDate)))),
		Price:    PriceBucket(strings.ToLower(strings.TrimSpace(q.Get(QueryPrice)))),
	}
	if !f.Date.Valid() {
		return Filter{}, "", fmt.Errorf("%w: unknown date bucket %q", status.ErrInvalidFilter, f.Date)
	}
	if !f.Price.Valid() {
		return Filter{}, "", fmt.Errorf("%w: unknown price bucket %q", status.ErrInvalidFilter, f.Price)
	}
	return f, q.Get(QuerySearch), nil
}

// Encode writes the active criteria back as a query string, omitting
// inactive keys.
func (f Filter) Encode(search string) string {
	q := url.Values{}
	if f.Category != "" {
		q.Set(QueryCategory, f.Category)
	}
	if f.Date != DateAny {
		q.Set(QueryDate, string(f.Date))
	}
	if f.Price != PriceAny {
		q.Set(QueryPrice, string(f.Price))
	}
	if search != "" {
		q.Set(QuerySearch, search)
	}
	return q.Encode()
}
