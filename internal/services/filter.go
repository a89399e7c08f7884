package services

import (
	"strings"
	"time"

	"github.com/foaademad/event-test/models"
	"github.com/shopspring/decimal"
)

var (
	price25  = decimal.NewFromInt(25)
	price50  = decimal.NewFromInt(50)
	price100 = decimal.NewFromInt(100)
)

type eventPredicate func(models.Event) bool

// FilterEvents returns the events matching every active criterion of f and
// the search term, in catalog order. Date buckets are evaluated
// against now, in now's location, with weeks beginning on weekStart.
func FilterEvents(events []models.Event, f models.Filter, search string, now time.Time, weekStart time.Weekday) []models.Event {
	predicates := make([]eventPredicate, 0, 4)

	if category := strings.TrimSpace(f.Category); category != "" {
		predicates = append(predicates, func(e models.Event) bool {
			return strings.EqualFold(string(e.Category), category)
		})
	}
	if f.Date != models.DateAny {
		if p := datePredicate(f.Date, now, weekStart); p != nil {
			predicates = append(predicates, p)
		}
	}
	if f.Price != models.PriceAny {
		if p := pricePredicate(f.Price); p != nil {
			predicates = append(predicates, p)
		}
	}
	if term := strings.ToLower(strings.TrimSpace(search)); term != "" {
		predicates = append(predicates, searchPredicate(term))
	}

	filtered := make([]models.Event, 0, len(events))
	for _, e := range events {
		if matchesAll(e, predicates) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func matchesAll(e models.Event, predicates []eventPredicate) bool {
	for _, p := range predicates {
		if !p(e) {
			return false
		}
	}
	return true
}

// calendar holds the day boundaries a date bucket is resolved against.
type calendar struct {
	today     time.Time
	tomorrow  time.Time
	weekStart time.Time
	weekEnd   time.Time
	nextStart time.Time
	nextEnd   time.Time
	monthEnd  time.Time
}

func newCalendar(now time.Time, firstWeekday time.Weekday) calendar {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	offset := (int(today.Weekday()) - int(firstWeekday) + 7) % 7
	weekStart := today.AddDate(0, 0, -offset)

	return calendar{
		today:     today,
		tomorrow:  today.AddDate(0, 0, 1),
		weekStart: weekStart,
		weekEnd:   weekStart.AddDate(0, 0, 6),
		nextStart: weekStart.AddDate(0, 0, 7),
		nextEnd:   weekStart.AddDate(0, 0, 13),
		monthEnd:  time.Date(today.Year(), today.Month()+1, 0, 0, 0, 0, 0, loc),
	}
}

func within(day, from, to time.Time) bool {
	return !day.Before(from) && !day.After(to)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func datePredicate(bucket models.DateBucket, now time.Time, firstWeekday time.Weekday) eventPredicate {
	cal := newCalendar(now, firstWeekday)

	var match func(day time.Time) bool
	switch bucket {
	case models.DateToday:
		match = func(day time.Time) bool { return sameDay(day, cal.today) }
	case models.DateTomorrow:
		match = func(day time.Time) bool { return sameDay(day, cal.tomorrow) }
	case models.DateThisWeek:
		match = func(day time.Time) bool { return within(day, cal.weekStart, cal.weekEnd) }
	case models.DateThisWeekend:
		match = func(day time.Time) bool {
			wd := day.Weekday()
			return (wd == time.Saturday || wd == time.Sunday) && within(day, cal.today, cal.weekEnd)
		}
	case models.DateNextWeek:
		match = func(day time.Time) bool { return within(day, cal.nextStart, cal.nextEnd) }
	case models.DateThisMonth:
		match = func(day time.Time) bool { return within(day, cal.today, cal.monthEnd) }
	default:
		return nil
	}

	loc := now.Location()
	return func(e models.Event) bool {
		day, err := e.Day(loc)
		if err != nil {
			return false
		}
		return match(day)
	}
}

func pricePredicate(bucket models.PriceBucket) eventPredicate {
	switch bucket {
	case models.PriceFree:
		return func(e models.Event) bool { return e.Price.IsZero() }
	case models.PricePaid:
		return func(e models.Event) bool { return e.Price.IsPositive() }
	case models.PriceUnder25:
		return func(e models.Event) bool {
			return e.Price.IsPositive() && e.Price.LessThan(price25)
		}
	case models.Price25To50:
		return func(e models.Event) bool {
			return e.Price.GreaterThanOrEqual(price25) && e.Price.LessThanOrEqual(price50)
		}
	case models.Price50To100:
		return func(e models.Event) bool {
			return e.Price.GreaterThan(price50) && e.Price.LessThanOrEqual(price100)
		}
	case models.PriceOver100:
		return func(e models.Event) bool { return e.Price.GreaterThan(price100) }
	default:
		return nil
	}
}

// searchPredicate expects a lowercased term.
func searchPredicate(term string) eventPredicate {
	return func(e models.Event) bool {
		return containsFold(e.Title, term) ||
			containsFold(e.Description, term) ||
			containsFold(e.Location, term) ||
			containsFold(e.Organizer, term) ||
			containsFold(string(e.Category), term)
	}
}

func containsFold(field, lowerTerm string) bool {
	return strings.Contains(strings.ToLower(field), lowerTerm)
}

// AdminSearch is the narrower search of the admin event table: title,
// location and category only.
func AdminSearch(events []models.Event, search string) []models.Event {
	term := strings.ToLower(strings.TrimSpace(search))
	out := make([]models.Event, 0, len(events))
	for _, e := range events {
		if term == "" ||
			containsFold(e.Title, term) ||
			containsFold(e.Location, term) ||
			containsFold(string(e.Category), term) {
			out = append(out, e)
		}
	}
	return out
}

type Page struct {
	Events      []models.Event `json:"events"`
	CurrentPage int            `json:"currentPage"`
	TotalPages  int            `json:"totalPages"`
	Total       int            `json:"total"`
	PageSize    int            `json:"pageSize"`
}

// Paginate slices out the 1-based page. Out of range pages are clamped.
func Paginate(events []models.Event, page, size int) Page {
	if size <= 0 {
		size = 10
	}
	total := len(events)
	totalPages := (total + size - 1) / size
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Events:      append([]models.Event{}, events[start:end]...),
		CurrentPage: page,
		TotalPages:  totalPages,
		Total:       total,
		PageSize:    size,
	}
}
