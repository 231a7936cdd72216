package repository

import (
	"context"
	"errors"
	"time"

	"gatescan-service/internal/domain/entity"
	"gatescan-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormFlightRepository implements the FlightRepository interface
type GormFlightRepository struct {
	db *gorm.DB
}

// NewGormFlightRepository creates a new GORM flight repository
func NewGormFlightRepository(db *gorm.DB) repository.FlightRepository {
	return &GormFlightRepository{
		db: db,
	}
}

// Flights GORM model for database mapping
type Flights struct {
	ID            int64     `gorm:"primaryKey"`
	FlightNumber  string    `gorm:"column:flight_number"`
	Airline       string    `gorm:"column:airline"`
	Destination   string    `gorm:"column:destination"`
	Gate          string    `gorm:"column:gate"`
	DepartureTime time.Time `gorm:"column:departure_time"`
	IsActive      bool      `gorm:"column:is_active"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName overrides the default table name
func (Flights) TableName() string {
	return "m_flights"
}

func (m *Flights) toEntity() *entity.Flight {
	flight := &entity.Flight{
		ID:            m.ID,
		FlightNumber:  m.FlightNumber,
		Airline:       m.Airline,
		Destination:   m.Destination,
		Gate:          m.Gate,
		DepartureTime: m.DepartureTime,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
	}
	if !m.UpdatedAt.IsZero() {
		updatedAt := m.UpdatedAt
		flight.UpdatedAt = &updatedAt
	}
	return flight
}

// GetByID finds a flight by its identifier
func (r *GormFlightRepository) GetByID(ctx context.Context, id int64) (*entity.Flight, error) {
	var flight Flights
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&flight)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return flight.toEntity(), nil
}

// FindActive returns flights still open for boarding, soonest departure first
func (r *GormFlightRepository) FindActive(ctx context.Context) ([]*entity.Flight, error) {
	var flights []Flights
	result := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("departure_time asc").
		Find(&flights)

	if result.Error != nil {
		return nil, result.Error
	}

	entities := make([]*entity.Flight, 0, len(flights))
	for i := range flights {
		entities = append(entities, flights[i].toEntity())
	}
	return entities, nil
}

// FindChangedSince returns flights created or modified at or after the given
// timestamp. The comparison is inclusive so a device replaying the same
// watermark gets the same set rather than a gap.
func (r *GormFlightRepository) FindChangedSince(ctx context.Context, since *time.Time) ([]*entity.Flight, error) {
	query := r.db.WithContext(ctx)
	if since != nil {
		query = query.Where("updated_at >= ? OR created_at >= ?", *since, *since)
	}

	var flights []Flights
	result := query.Order("departure_time asc").Find(&flights)

	if result.Error != nil {
		return nil, result.Error
	}

	entities := make([]*entity.Flight, 0, len(flights))
	for i := range flights {
		entities = append(entities, flights[i].toEntity())
	}
	return entities, nil
}
