package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventStatus lifecycle: active -> past (daily sweep) and
// active|past -> deleted (admin soft delete). Deleted is terminal; the row
// keeps its event_hash so the same source occurrence cannot re-insert.
type EventStatus string

const (
	EventActive  EventStatus = "active"
	EventPast    EventStatus = "past"
	EventDeleted EventStatus = "deleted"
)

func (s EventStatus) CanTransition(next EventStatus) bool {
	switch s {
	case EventActive:
		return next == EventPast || next == EventDeleted
	case EventPast:
		return next == EventDeleted
	default:
		return false
	}
}

// Venue is deduplicated by (source_name, source_id) first, then by
// name+postcode, and identified publicly by its unique slug.
type Venue struct {
	ID           uint             `json:"id" gorm:"primaryKey"`
	Name         string           `json:"name" gorm:"size:300;not null"`
	Slug         string           `json:"slug" gorm:"size:200;uniqueIndex;not null"`
	AddressLine1 string           `json:"address_line1" gorm:"size:200"`
	AddressLine2 string           `json:"address_line2" gorm:"size:200"`
	Town         string           `json:"town" gorm:"size:100"`
	Postcode     string           `json:"postcode" gorm:"size:10;index"`
	Latitude     *decimal.Decimal `json:"latitude" gorm:"type:decimal(10,8)"`
	Longitude    *decimal.Decimal `json:"longitude" gorm:"type:decimal(11,8)"`
	Description  string           `json:"description"`
	VenueType    string           `json:"venue_type" gorm:"size:50"`
	Capacity     *int             `json:"capacity"`
	WebsiteURL   string           `json:"website_url"`
	Phone        string           `json:"phone" gorm:"size:20"`
	ImageURL     string           `json:"image_url"`
	SourceName   string           `json:"source_name" gorm:"size:100;index:idx_venues_source"`
	SourceID     string           `json:"source_id" gorm:"size:200;index:idx_venues_source"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func (Venue) TableName() string { return "venues" }

// Event identity is EventHash: sha256 over venue id, day-granularity start
// date and the normalized title. Upserts are insert-if-absent; a re-fetch
// with a different price or description does not touch the stored row.
type Event struct {
	ID               uint             `json:"id" gorm:"primaryKey"`
	Title            string           `json:"title" gorm:"size:500;not null"`
	Slug             string           `json:"slug" gorm:"size:200;not null;index"`
	Description      string           `json:"description"`
	ShortDescription string           `json:"short_description" gorm:"size:500"`
	StartDatetime    time.Time        `json:"start_datetime" gorm:"not null;index"`
	EndDatetime      *time.Time       `json:"end_datetime"`
	DoorsTime        string           `json:"doors_time" gorm:"size:10"` // "19:00", empty when unknown
	VenueID          uint             `json:"venue_id" gorm:"index"`
	Venue            *Venue           `json:"venue,omitempty" gorm:"foreignKey:VenueID"`
	EventType        string           `json:"event_type" gorm:"size:50;not null;index"`
	ImageURL         string           `json:"image_url"`
	TicketURL        string           `json:"ticket_url"`
	PriceMin         *decimal.Decimal `json:"price_min" gorm:"type:decimal(10,2)"`
	PriceMax         *decimal.Decimal `json:"price_max" gorm:"type:decimal(10,2)"`
	IsFree           bool             `json:"is_free" gorm:"default:false"`
	SourceName       string           `json:"source_name" gorm:"size:100;not null;index:idx_events_source"`
	SourceType       string           `json:"source_type" gorm:"size:50;not null"`
	SourceID         string           `json:"source_id" gorm:"size:200;index:idx_events_source"`
	SourceURL        string           `json:"source_url"`
	EventHash        string           `json:"-" gorm:"size:64;uniqueIndex"`
	Status           EventStatus      `json:"status" gorm:"size:20;default:active;index"`
	IsFeatured       bool             `json:"is_featured" gorm:"default:false"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func (Event) TableName() string { return "events" }

// EventInput is a parsed event handed to the aggregation driver by an
// event source, venue still unresolved.
type EventInput struct {
	Title            string
	Description      string
	ShortDescription string
	StartDatetime    time.Time
	EndDatetime      *time.Time
	DoorsTime        string
	EventType        string
	ImageURL         string
	TicketURL        string
	PriceMin         *float64
	PriceMax         *float64
	IsFree           bool
	SourceName       string
	SourceType       string
	SourceID         string
	SourceURL        string
	Venue            VenueInput
}

// VenueInput carries the venue fields a source knows about.
type VenueInput struct {
	Name         string
	AddressLine1 string
	AddressLine2 string
	Town         string
	Postcode     string
	Latitude     *float64
	Longitude    *float64
	Description  string
	VenueType    string
	Capacity     *int
	WebsiteURL   string
	Phone        string
	ImageURL     string
	SourceName   string
	SourceID     string
}
