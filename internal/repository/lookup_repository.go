package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"vehicle-decoder/internal/domain/vehicle"
)

type LookupRepository struct {
	db *gorm.DB
}

func NewLookupRepository(db *gorm.DB) *LookupRepository {
	return &LookupRepository{db: db}
}

func (Lookup) TableName() string {
	return "decode_lookups"
}

// Lookup is one decode attempt as stored in history. History is an
// append-only audit of what was asked and answered; the decode path
// never reads it back.
type Lookup struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Kind       string    `gorm:"not null"`
	Query      string    `gorm:"not null"`
	Normalized string    `gorm:"not null;index"`
	Region     *string
	Status     string `gorm:"not null"`
	Error      *string
	Year       *string
	Make       *string
	Model      *string
	RawResult  datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time      `gorm:"index"`
}

// NewLookup builds a history row from a resolved decode attempt. Empty
// optional values stay NULL; the raw provider body is stored as JSONB
// when present.
func NewLookup(kind, query, normalized, region, status, errText string, car *vehicle.Vehicle, raw any) (*Lookup, error) {
	row := &Lookup{
		ID:         uuid.New(),
		Kind:       kind,
		Query:      query,
		Normalized: normalized,
		Status:     status,
		CreatedAt:  time.Now(),
	}

	if region != "" {
		row.Region = &region
	}
	if errText != "" {
		row.Error = &errText
	}
	if car != nil {
		if car.Year != "" {
			row.Year = &car.Year
		}
		if car.Make != "" {
			row.Make = &car.Make
		}
		if car.Model != "" {
			row.Model = &car.Model
		}
	}
	if raw != nil {
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("marshal raw result: %w", err)
		}
		row.RawResult = datatypes.JSON(data)
	}
	return row, nil
}

func (r *LookupRepository) CreateLookup(ctx context.Context, row *Lookup) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to create decode lookup in database: %w", err)
	}
	return nil
}

// FindLookups lists rows newest first. normalized holds the candidate
// index forms of one identifier; a row matches when its key equals any
// of them.
func (r *LookupRepository) FindLookups(ctx context.Context, normalized []string, kind *string, limit, offset int) ([]Lookup, error) {
	query := r.db.WithContext(ctx).Model(&Lookup{})

	if len(normalized) > 0 {
		query = query.Where("normalized IN ?", normalized)
	}
	if kind != nil {
		query = query.Where("kind = ?", *kind)
	}

	query = query.Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []Lookup
	err := query.Find(&rows).Error
	return rows, err
}

// DeleteOldLookups removes history rows older than the given number of days.
func (r *LookupRepository) DeleteOldLookups(ctx context.Context, days int) (int64, error) {
	cutoffTime := time.Now().AddDate(0, 0, -days)
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoffTime).
		Delete(&Lookup{})

	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
