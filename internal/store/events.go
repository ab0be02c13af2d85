package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dalebar/viaductecho-backend/internal/identity"
	"github.com/dalebar/viaductecho-backend/internal/logger"
	"github.com/dalebar/viaductecho-backend/internal/model"
)

// ==========================================
// VENUE OPERATIONS
// ==========================================

// GetOrCreateVenue deduplicates venues in priority order: the
// (source_name, source_id) pair, then name+postcode (backfilling missing
// source fields on the existing row), and only then creates a new venue
// with a uniqueness-checked slug.
func (s *Store) GetOrCreateVenue(in model.VenueInput) (*model.Venue, error) {
	var venue model.Venue

	err := s.run(func(db *gorm.DB) error {
		if in.SourceName != "" && in.SourceID != "" {
			err := db.Where("source_name = ? AND source_id = ?", in.SourceName, in.SourceID).First(&venue).Error
			if err == nil {
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		if in.Name != "" && in.Postcode != "" {
			err := db.Where("name = ? AND postcode = ?", in.Name, in.Postcode).First(&venue).Error
			if err == nil {
				// Backfill source info if we have it and the row does not.
				if in.SourceName != "" && venue.SourceName == "" {
					venue.SourceName = in.SourceName
					venue.SourceID = in.SourceID
					return db.Model(&venue).Updates(map[string]interface{}{
						"source_name": venue.SourceName,
						"source_id":   venue.SourceID,
					}).Error
				}
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		slug, err := s.uniqueVenueSlug(db, in.Name)
		if err != nil {
			return err
		}

		town := in.Town
		if town == "" {
			town = "Stockport"
		}

		venue = model.Venue{
			Name:         in.Name,
			Slug:         slug,
			AddressLine1: in.AddressLine1,
			AddressLine2: in.AddressLine2,
			Town:         town,
			Postcode:     in.Postcode,
			Latitude:     decimalPtr(in.Latitude),
			Longitude:    decimalPtr(in.Longitude),
			Description:  in.Description,
			VenueType:    in.VenueType,
			Capacity:     in.Capacity,
			WebsiteURL:   in.WebsiteURL,
			Phone:        in.Phone,
			ImageURL:     in.ImageURL,
			SourceName:   in.SourceName,
			SourceID:     in.SourceID,
		}
		if err := db.Create(&venue).Error; err != nil {
			return err
		}
		s.log.Info("created venue", logger.String("name", venue.Name), logger.String("slug", venue.Slug))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &venue, nil
}

// uniqueVenueSlug appends -1, -2, ... until the slug is free.
func (s *Store) uniqueVenueSlug(db *gorm.DB, name string) (string, error) {
	base := identity.Slugify(name, identity.SlugMaxLen)
	slug := base
	for counter := 1; ; counter++ {
		var count int64
		if err := db.Model(&model.Venue{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}

// VenueByID fetches one venue.
func (s *Store) VenueByID(id uint) (*model.Venue, error) {
	var venue model.Venue
	err := s.run(func(db *gorm.DB) error {
		return db.First(&venue, id).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &venue, nil
}

// VenueBySlug fetches one venue by its public slug.
func (s *Store) VenueBySlug(slug string) (*model.Venue, error) {
	var venue model.Venue
	err := s.run(func(db *gorm.DB) error {
		return db.Where("slug = ?", slug).First(&venue).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &venue, nil
}

// AllVenues returns every venue ordered by name, optionally filtered by type.
func (s *Store) AllVenues(venueType string) ([]model.Venue, error) {
	var venues []model.Venue
	err := s.run(func(db *gorm.DB) error {
		q := db.Order("name")
		if venueType != "" {
			q = q.Where("venue_type = ?", venueType)
		}
		return q.Find(&venues).Error
	})
	return venues, err
}

// VenuesPaginated returns venues ordered by name.
func (s *Store) VenuesPaginated(page, perPage int, venueType string) ([]model.Venue, int64, error) {
	page = clampPage(page)
	perPage = clampPerPage(perPage)
	offset := (page - 1) * perPage

	var venues []model.Venue
	var total int64
	err := s.run(func(db *gorm.DB) error {
		q := db.Model(&model.Venue{})
		if venueType != "" {
			q = q.Where("venue_type = ?", venueType)
		}
		if err := q.Count(&total).Error; err != nil {
			return err
		}
		return q.Order("name").Offset(offset).Limit(perPage).Find(&venues).Error
	})
	return venues, total, err
}

// UpdateVenue applies the provided column updates and returns the fresh row.
func (s *Store) UpdateVenue(id uint, updates map[string]interface{}) (*model.Venue, error) {
	var venue model.Venue
	err := s.run(func(db *gorm.DB) error {
		if err := db.First(&venue, id).Error; err != nil {
			return translate(err)
		}
		if len(updates) == 0 {
			return nil
		}
		if err := db.Model(&venue).Updates(updates).Error; err != nil {
			return err
		}
		return db.First(&venue, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &venue, nil
}

// DeleteVenue removes a venue. Venues carry no status column; deletion is
// physical and refused while any event still references the row.
func (s *Store) DeleteVenue(id uint) error {
	return s.run(func(db *gorm.DB) error {
		var venue model.Venue
		if err := db.First(&venue, id).Error; err != nil {
			return translate(err)
		}
		var eventCount int64
		if err := db.Model(&model.Event{}).Where("venue_id = ?", id).Count(&eventCount).Error; err != nil {
			return err
		}
		if eventCount > 0 {
			return fmt.Errorf("%w: %d events", ErrVenueInUse, eventCount)
		}
		return db.Delete(&venue).Error
	})
}

// ==========================================
// EVENT OPERATIONS
// ==========================================

// InsertOutcome disambiguates "row created" from "hash already present".
// Failures travel in the error return, never in the outcome.
type InsertOutcome int

const (
	Inserted InsertOutcome = iota
	Duplicate
)

func (o InsertOutcome) String() string {
	if o == Inserted {
		return "inserted"
	}
	return "duplicate"
}

// EventExists checks for the dedup hash.
func (s *Store) EventExists(venueID uint, start time.Time, title string) (bool, error) {
	hash := identity.EventHash(venueID, start, title)
	var count int64
	err := s.run(func(db *gorm.DB) error {
		return db.Model(&model.Event{}).Where("event_hash = ?", hash).Count(&count).Error
	})
	return count > 0, err
}

// InsertEvent is insert-if-absent keyed by the event hash. An existing row
// is never modified, even when the incoming fields differ. Two processes
// racing on the same hash rely on the unique constraint: the loser gets
// Duplicate, not an error.
func (s *Store) InsertEvent(in model.EventInput, venue *model.Venue) (InsertOutcome, *model.Event, error) {
	hash := identity.EventHash(venue.ID, in.StartDatetime, in.Title)

	var event model.Event
	outcome := Inserted
	err := s.run(func(db *gorm.DB) error {
		var count int64
		if err := db.Model(&model.Event{}).Where("event_hash = ?", hash).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			outcome = Duplicate
			return nil
		}

		eventType := in.EventType
		if eventType == "" {
			eventType = "other"
		}

		event = model.Event{
			Title:            in.Title,
			Slug:             identity.EventSlug(in.Title, in.StartDatetime),
			Description:      in.Description,
			ShortDescription: in.ShortDescription,
			StartDatetime:    in.StartDatetime,
			EndDatetime:      in.EndDatetime,
			DoorsTime:        in.DoorsTime,
			VenueID:          venue.ID,
			EventType:        eventType,
			ImageURL:         in.ImageURL,
			TicketURL:        in.TicketURL,
			PriceMin:         decimalPtr(in.PriceMin),
			PriceMax:         decimalPtr(in.PriceMax),
			IsFree:           in.IsFree,
			SourceName:       in.SourceName,
			SourceType:       in.SourceType,
			SourceID:         in.SourceID,
			SourceURL:        in.SourceURL,
			EventHash:        hash,
			Status:           model.EventActive,
		}
		return db.Create(&event).Error
	})
	if err != nil {
		if errors.Is(translate(err), ErrDuplicate) {
			return Duplicate, nil, nil
		}
		return Inserted, nil, err
	}
	if outcome == Duplicate {
		return Duplicate, nil, nil
	}
	s.log.Info("inserted event", logger.String("title", event.Title), logger.Time("start", event.StartDatetime))
	return Inserted, &event, nil
}

// InsertEventFull inserts an admin-supplied event with explicit source and
// status fields, still guarded by the dedup hash.
func (s *Store) InsertEventFull(event *model.Event) error {
	if event.EventHash == "" {
		event.EventHash = identity.EventHash(event.VenueID, event.StartDatetime, event.Title)
	}
	if event.Slug == "" {
		event.Slug = identity.EventSlug(event.Title, event.StartDatetime)
	}
	if event.Status == "" {
		event.Status = model.EventActive
	}
	err := s.run(func(db *gorm.DB) error {
		return db.Create(event).Error
	})
	return translate(err)
}

// EventByID fetches one active event with its venue.
func (s *Store) EventByID(id uint) (*model.Event, error) {
	var event model.Event
	err := s.run(func(db *gorm.DB) error {
		return db.Preload("Venue").Where("id = ? AND status = ?", id, model.EventActive).First(&event).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &event, nil
}

// EventBySlug fetches one active event by slug.
func (s *Store) EventBySlug(slug string) (*model.Event, error) {
	var event model.Event
	err := s.run(func(db *gorm.DB) error {
		return db.Preload("Venue").Where("slug = ? AND status = ?", slug, model.EventActive).First(&event).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &event, nil
}

// EventFilters narrows EventsPaginated. Nil/zero fields are skipped. When
// both date bounds are nil the query defaults to "from now": past events
// are hidden unless explicitly requested.
type EventFilters struct {
	FromDate     *time.Time
	ToDate       *time.Time
	EventType    string
	VenueID      uint
	IsFree       *bool
	FeaturedOnly bool
}

// EventsPaginated returns active events soonest-first.
func (s *Store) EventsPaginated(page, perPage int, f EventFilters) ([]model.Event, int64, error) {
	page = clampPage(page)
	perPage = clampPerPage(perPage)
	offset := (page - 1) * perPage

	if f.FromDate == nil && f.ToDate == nil {
		now := time.Now()
		f.FromDate = &now
	}

	var events []model.Event
	var total int64
	err := s.run(func(db *gorm.DB) error {
		q := db.Model(&model.Event{}).Where("status = ?", model.EventActive)
		if f.FromDate != nil {
			q = q.Where("start_datetime >= ?", *f.FromDate)
		}
		if f.ToDate != nil {
			q = q.Where("start_datetime <= ?", *f.ToDate)
		}
		if f.EventType != "" {
			q = q.Where("event_type = ?", f.EventType)
		}
		if f.VenueID != 0 {
			q = q.Where("venue_id = ?", f.VenueID)
		}
		if f.IsFree != nil {
			q = q.Where("is_free = ?", *f.IsFree)
		}
		if f.FeaturedOnly {
			q = q.Where("is_featured = ?", true)
		}
		if err := q.Count(&total).Error; err != nil {
			return err
		}
		return q.Preload("Venue").Order("start_datetime").Offset(offset).Limit(perPage).Find(&events).Error
	})
	return events, total, err
}

// EventsForDate returns the active events of one calendar day.
func (s *Store) EventsForDate(date time.Time) ([]model.Event, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var events []model.Event
	err := s.run(func(db *gorm.DB) error {
		return db.Preload("Venue").
			Where("status = ? AND start_datetime >= ? AND start_datetime < ?",
				model.EventActive, dayStart, dayEnd).
			Order("start_datetime").
			Find(&events).Error
	})
	return events, err
}

// EventsByVenue returns upcoming active events at one venue.
func (s *Store) EventsByVenue(venueID uint, fromDate *time.Time, limit int) ([]model.Event, error) {
	if limit < 1 {
		limit = 20
	}
	from := time.Now()
	if fromDate != nil {
		from = *fromDate
	}

	var events []model.Event
	err := s.run(func(db *gorm.DB) error {
		return db.Where("venue_id = ? AND status = ? AND start_datetime >= ?",
			venueID, model.EventActive, from).
			Order("start_datetime").
			Limit(limit).
			Find(&events).Error
	})
	return events, err
}

// CalendarData counts active events per day of the given month, keyed by
// ISO date string. Bucketing happens here rather than in SQL so SQLite and
// Postgres agree on the key format.
func (s *Store) CalendarData(year, month int) (map[string]int, error) {
	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	var starts []time.Time
	err := s.run(func(db *gorm.DB) error {
		return db.Model(&model.Event{}).
			Where("status = ? AND start_datetime >= ? AND start_datetime < ?",
				model.EventActive, monthStart, monthEnd).
			Pluck("start_datetime", &starts).Error
	})
	if err != nil {
		return nil, err
	}

	calendar := make(map[string]int, len(starts))
	for _, start := range starts {
		calendar[start.Format("2006-01-02")]++
	}
	return calendar, nil
}

// UpcomingEvents returns the next active events for static JSON generation.
func (s *Store) UpcomingEvents(limit int) ([]model.Event, error) {
	var events []model.Event
	err := s.run(func(db *gorm.DB) error {
		return db.Preload("Venue").
			Where("status = ? AND start_datetime >= ?", model.EventActive, time.Now()).
			Order("start_datetime").
			Limit(limit).
			Find(&events).Error
	})
	return events, err
}

// MarkPastEvents bulk-transitions every active event whose start has
// elapsed to "past" and returns the count. Intended to run once daily.
func (s *Store) MarkPastEvents() (int64, error) {
	var count int64
	err := s.run(func(db *gorm.DB) error {
		res := db.Model(&model.Event{}).
			Where("status = ? AND start_datetime < ?", model.EventActive, time.Now()).
			Update("status", model.EventPast)
		count = res.RowsAffected
		return res.Error
	})
	if err == nil {
		s.log.Info("marked past events", logger.Int64("count", count))
	}
	return count, err
}

// EventCount returns the number of active (optionally future-only) events.
func (s *Store) EventCount(futureOnly bool) (int64, error) {
	var count int64
	err := s.run(func(db *gorm.DB) error {
		q := db.Model(&model.Event{}).Where("status = ?", model.EventActive)
		if futureOnly {
			q = q.Where("start_datetime >= ?", time.Now())
		}
		return q.Count(&count).Error
	})
	return count, err
}

// EventTypes lists the distinct types among active events.
func (s *Store) EventTypes() ([]string, error) {
	var types []string
	err := s.run(func(db *gorm.DB) error {
		return db.Model(&model.Event{}).
			Where("status = ? AND event_type <> ''", model.EventActive).
			Distinct().
			Order("event_type").
			Pluck("event_type", &types).Error
	})
	return types, err
}

// UpdateEvent applies admin column updates and returns the fresh row.
func (s *Store) UpdateEvent(id uint, updates map[string]interface{}) (*model.Event, error) {
	var event model.Event
	err := s.run(func(db *gorm.DB) error {
		if err := db.First(&event, id).Error; err != nil {
			return translate(err)
		}
		if len(updates) == 0 {
			return nil
		}
		if err := db.Model(&event).Updates(updates).Error; err != nil {
			return err
		}
		return db.Preload("Venue").First(&event, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// SoftDeleteEvent flips status to deleted, keeping the row and its hash so
// the same source occurrence cannot re-insert.
func (s *Store) SoftDeleteEvent(id uint) error {
	return s.run(func(db *gorm.DB) error {
		var event model.Event
		if err := db.First(&event, id).Error; err != nil {
			return translate(err)
		}
		if !event.Status.CanTransition(model.EventDeleted) {
			return fmt.Errorf("%w: %s -> deleted", ErrBadTransition, event.Status)
		}
		return db.Model(&event).Update("status", model.EventDeleted).Error
	})
}

// SetEventFeatured toggles the featured flag.
func (s *Store) SetEventFeatured(id uint, featured bool) (*model.Event, error) {
	return s.UpdateEvent(id, map[string]interface{}{"is_featured": featured})
}

func decimalPtr(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}
