package models

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	DefaultCapacity = 100
)

type Category string

const (
	CategoryMusic      Category = "music"
	CategoryTechnology Category = "technology"
	CategoryBusiness   Category = "business"
	CategoryFood       Category = "food"
	CategoryArts       Category = "arts"
	CategorySports     Category = "sports"
	CategoryHealth     Category = "health"
)

// Categories lists the supported categories in display order.
var Categories = []Category{
	CategoryMusic,
	CategoryTechnology,
	CategoryBusiness,
	CategoryFood,
	CategoryArts,
	CategorySports,
	CategoryHealth,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func categoryValues() []any {
	values := make([]any, len(Categories))
	for i, c := range Categories {
		values[i] = c
	}
	return values
}

type Event struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Date        string          `json:"date"` // YYYY-MM-DD
	Time        string          `json:"time"` // HH:MM, local to the venue
	Location    string          `json:"location"`
	Organizer   string          `json:"organizer"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category"`
	ImageURL    string          `json:"imageUrl"`
	Attendees   int             `json:"attendees"`
	Capacity    int             `json:"capacity"`
}

// Day parses Date as a calendar day in loc.
func (e Event) Day(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(e.Date), loc)
}

// StartsAt combines Date and Time in loc. A missing or malformed time falls
// back to midnight.
func (e Event) StartsAt(loc *time.Location) (time.Time, error) {
	day, err := e.Day(loc)
	if err != nil {
		return time.Time{}, err
	}
	clock, err := time.Parse(TimeLayout, strings.TrimSpace(e.Time))
	if err != nil {
		return day, nil
	}
	return day.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute), nil
}

func (e Event) SoldOut() bool {
	return e.Attendees >= e.Capacity
}

// CapacityPercent is the rounded share of seats taken.
func (e Event) CapacityPercent() int {
	if e.Capacity <= 0 {
		return 0
	}
	return int(decimal.NewFromInt(int64(e.Attendees)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(e.Capacity))).
		Round(0).IntPart())
}

// EventInput is the admin creation payload.
type EventInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	Time        string          `json:"time"`
	Location    string          `json:"location"`
	Organizer   string          `json:"organizer"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category"`
	ImageURL    string          `json:"imageUrl"`
	Capacity    int             `json:"capacity"`
}

func (in EventInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required.Error("Title is required")),
		validation.Field(&in.Description, validation.Required.Error("Description is required")),
		validation.Field(&in.Date,
			validation.Required.Error("Date is required"),
			validation.Date(DateLayout).Error("Date must be formatted as YYYY-MM-DD"),
		),
		validation.Field(&in.Time,
			validation.Required.Error("Time is required"),
			validation.Date(TimeLayout).Error("Time must be formatted as HH:MM"),
		),
		validation.Field(&in.Location, validation.Required.Error("Location is required")),
		validation.Field(&in.Category,
			validation.Required.Error("Category is required"),
			validation.In(categoryValues()...).Error("Category is not supported"),
		),
		validation.Field(&in.ImageURL, validation.Required.Error("Image URL is required")),
		validation.Field(&in.Capacity, validation.Min(1).Error("Capacity must be greater than 0")),
		validation.Field(&in.Price, validation.By(nonNegativePrice)),
	)
}

// ToEvent builds an event without identity or attendance; the backend
// assigns both.
func (in EventInput) ToEvent() Event {
	capacity := in.Capacity
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	return Event{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Date:        strings.TrimSpace(in.Date),
		Time:        strings.TrimSpace(in.Time),
		Location:    strings.TrimSpace(in.Location),
		Organizer:   strings.TrimSpace(in.Organizer),
		Price:       in.Price,
		Category:    Category(strings.ToLower(string(in.Category))),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Capacity:    capacity,
	}
}

// EventPatch is a partial update. A nil field is left untouched; a non-nil
// field is written even when it points at a zero value.
type EventPatch struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Date        *string          `json:"date,omitempty"`
	Time        *string          `json:"time,omitempty"`
	Location    *string          `json:"location,omitempty"`
	Organizer   *string          `json:"organizer,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Category    *Category        `json:"category,omitempty"`
	ImageURL    *string          `json:"imageUrl,omitempty"`
	Attendees   *int             `json:"attendees,omitempty"`
	Capacity    *int             `json:"capacity,omitempty"`
}

func (p EventPatch) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.NilOrNotEmpty.Error("Title is required")),
		validation.Field(&p.Description, validation.NilOrNotEmpty.Error("Description is required")),
		validation.Field(&p.Date,
			validation.NilOrNotEmpty.Error("Date is required"),
			validation.Date(DateLayout).Error("Date must be formatted as YYYY-MM-DD"),
		),
		validation.Field(&p.Time,
			validation.NilOrNotEmpty.Error("Time is required"),
			validation.Date(TimeLayout).Error("Time must be formatted as HH:MM"),
		),
		validation.Field(&p.Location, validation.NilOrNotEmpty.Error("Location is required")),
		validation.Field(&p.Category,
			validation.NilOrNotEmpty.Error("Category is required"),
			validation.In(categoryValues()...).Error("Category is not supported"),
		),
		validation.Field(&p.ImageURL, validation.NilOrNotEmpty.Error("Image URL is required")),
		validation.Field(&p.Attendees, validation.Min(0).Error("Attendees cannot be negative")),
		validation.Field(&p.Capacity, validation.By(positiveCapacity)),
		validation.Field(&p.Price, validation.By(nonNegativePrice)),
	)
}

// IsEmpty reports whether the patch carries no field at all.
func (p EventPatch) IsEmpty() bool {
	return p == EventPatch{}
}

// Apply merges the present fields into e.
func (p EventPatch) Apply(e *Event) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Time != nil {
		e.Time = *p.Time
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Organizer != nil {
		e.Organizer = *p.Organizer
	}
	if p.Price != nil {
		e.Price = *p.Price
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.ImageURL != nil {
		e.ImageURL = *p.ImageURL
	}
	if p.Attendees != nil {
		e.Attendees = *p.Attendees
	}
	if p.Capacity != nil {
		e.Capacity = *p.Capacity
	}
}

func nonNegativePrice(value any) error {
	var price decimal.Decimal
	switch v := value.(type) {
	case decimal.Decimal:
		price = v
	case *decimal.Decimal:
		if v == nil {
			return nil
		}
		price = *v
	default:
		return nil
	}
	if price.IsNegative() {
		return errors.New("Price cannot be negative")
	}
	return nil
}

func positiveCapacity(value any) error {
	capacity, ok := value.(*int)
	if !ok || capacity == nil {
		return nil
	}
	if *capacity <= 0 {
		return errors.New("Capacity must be greater than 0")
	}
	return nil
}

// EventsState is the event store snapshot handed to callers.
type EventsState struct {
	Events         []Event `json:"events"`
	FilteredEvents []Event `json:"filteredEvents"`
	SelectedEvent  *Event  `json:"selectedEvent"`
	IsLoading      bool    `json:"isLoading"`
	Error          *string `json:"error"`
}
