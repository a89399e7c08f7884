// Package data holds the mock catalog the server starts with and the static
// page content.
package data

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/foaademad/event-test/models"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

//go:embed pages.yaml
var defaultPages []byte

type FeaturedCategory struct {
	Name models.Category `yaml:"name" json:"name"`
	Icon string          `yaml:"icon" json:"icon"`
}

type Seed struct {
	Users              []models.User
	Events             []models.Event
	FeaturedCategories []FeaturedCategory
}

type seedUser struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Email   string `yaml:"email"`
	IsAdmin bool   `yaml:"isAdmin"`
}

type seedEvent struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Date        string `yaml:"date"`
	Time        string `yaml:"time"`
	Location    string `yaml:"location"`
	Organizer   string `yaml:"organizer"`
	Price       string `yaml:"price"`
	Category    string `yaml:"category"`
	ImageURL    string `yaml:"imageUrl"`
	Attendees   int    `yaml:"attendees"`
	Capacity    int    `yaml:"capacity"`
}

type seedFile struct {
	Users              []seedUser         `yaml:"users"`
	Events             []seedEvent        `yaml:"events"`
	FeaturedCategories []FeaturedCategory `yaml:"featuredCategories"`
}

// LoadSeed reads the catalog at path, or the embedded one when path is empty.
func LoadSeed(path string) (*Seed, error) {
	raw := defaultSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed %s: %w", path, err)
		}
		raw = b
	}
	return ParseSeed(raw)
}

func ParseSeed(raw []byte) (*Seed, error) {
	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	seed := &Seed{
		Users:              make([]models.User, 0, len(file.Users)),
		Events:             make([]models.Event, 0, len(file.Events)),
		FeaturedCategories: file.FeaturedCategories,
	}

	for _, u := range file.Users {
		seed.Users = append(seed.Users, models.User{
			ID:      u.ID,
			Name:    u.Name,
			Email:   models.NormalizeEmail(u.Email),
			IsAdmin: u.IsAdmin,
		})
	}

	for _, e := range file.Events {
		price, err := decimal.NewFromString(e.Price)
		if err != nil {
			return nil, fmt.Errorf("parse seed event %s price %q: %w", e.ID, e.Price, err)
		}
		capacity := e.Capacity
		if capacity <= 0 {
			capacity = models.DefaultCapacity
		}
		seed.Events = append(seed.Events, models.Event{
			ID:          e.ID,
			Title:       e.Title,
			Description: e.Description,
			Date:        e.Date,
			Time:        e.Time,
			Location:    e.Location,
			Organizer:   e.Organizer,
			Price:       price,
			Category:    models.Category(e.Category),
			ImageURL:    e.ImageURL,
			Attendees:   e.Attendees,
			Capacity:    capacity,
		})
	}

	return seed, nil
}

type Section struct {
	Heading string   `yaml:"heading" json:"heading"`
	Body    string   `yaml:"body,omitempty" json:"body,omitempty"`
	Items   []string `yaml:"items,omitempty" json:"items,omitempty"`
}

type Page struct {
	Slug     string    `yaml:"-" json:"slug"`
	Title    string    `yaml:"title" json:"title"`
	Summary  string    `yaml:"summary,omitempty" json:"summary,omitempty"`
	Sections []Section `yaml:"sections" json:"sections"`
}

// LoadPages returns the about, services and contact pages keyed by slug.
func LoadPages() (map[string]Page, error) {
	pages := make(map[string]Page)
	if err := yaml.Unmarshal(defaultPages, &pages); err != nil {
		return nil, fmt.Errorf("parse pages: %w", err)
	}
	for slug, p := range pages {
		p.Slug = slug
		pages[slug] = p
	}
	return pages, nil
}
