package repository

import (
	"context"

	"gatescan-service/internal/domain/entity"
	"gatescan-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormReferenceCodeRepository implements the ReferenceCodeRepository interface
type GormReferenceCodeRepository struct {
	db *gorm.DB
}

// NewGormReferenceCodeRepository creates a new GORM reference code repository
func NewGormReferenceCodeRepository(db *gorm.DB) repository.ReferenceCodeRepository {
	return &GormReferenceCodeRepository{
		db: db,
	}
}

// Airports GORM model for database mapping
type Airports struct {
	ID   uint   `gorm:"primaryKey"`
	Code string `gorm:"column:code;unique"`
	Name string `gorm:"column:name"`
	City string `gorm:"column:city"`
}

// TableName overrides the default table name
func (Airports) TableName() string {
	return "m_airports"
}

// Airlines GORM model for database mapping
type Airlines struct {
	ID   uint   `gorm:"primaryKey"`
	Code string `gorm:"column:code;unique"`
	Name string `gorm:"column:name"`
}

// TableName overrides the default table name
func (Airlines) TableName() string {
	return "m_airlines"
}

// CabinClasses GORM model for database mapping
type CabinClasses struct {
	ID          uint   `gorm:"primaryKey"`
	Code        string `gorm:"column:code;unique"`
	Description string `gorm:"column:description"`
}

// TableName overrides the default table name
func (CabinClasses) TableName() string {
	return "m_cabin_classes"
}

// Airports returns every airport code, alphabetical
func (r *GormReferenceCodeRepository) Airports(ctx context.Context) ([]*entity.AirportCode, error) {
	var rows []Airports
	result := r.db.WithContext(ctx).Order("code asc").Find(&rows)

	if result.Error != nil {
		return nil, result.Error
	}

	codes := make([]*entity.AirportCode, 0, len(rows))
	for _, row := range rows {
		codes = append(codes, &entity.AirportCode{
			Code: row.Code,
			Name: row.Name,
			City: row.City,
		})
	}
	return codes, nil
}

// Airlines returns every airline designator, alphabetical
func (r *GormReferenceCodeRepository) Airlines(ctx context.Context) ([]*entity.AirlineCode, error) {
	var rows []Airlines
	result := r.db.WithContext(ctx).Order("code asc").Find(&rows)

	if result.Error != nil {
		return nil, result.Error
	}

	codes := make([]*entity.AirlineCode, 0, len(rows))
	for _, row := range rows {
		codes = append(codes, &entity.AirlineCode{
			Code: row.Code,
			Name: row.Name,
		})
	}
	return codes, nil
}

// CabinClasses returns every cabin class code, alphabetical
func (r *GormReferenceCodeRepository) CabinClasses(ctx context.Context) ([]*entity.CabinClassCode, error) {
	var rows []CabinClasses
	result := r.db.WithContext(ctx).Order("code asc").Find(&rows)

	if result.Error != nil {
		return nil, result.Error
	}

	codes := make([]*entity.CabinClassCode, 0, len(rows))
	for _, row := range rows {
		codes = append(codes, &entity.CabinClassCode{
			Code:        row.Code,
			Description: row.Description,
		})
	}
	return codes, nil
}
