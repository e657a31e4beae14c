package images

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostgresRepository implements Repository on a PostgreSQL table via gorm
type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(db *gorm.DB) (*PostgresRepository, error) {
	if err := db.AutoMigrate(&ImageRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate image_files: %w", err)
	}
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) orderClause(q ListQuery) string {
	column := "name"
	if q.SortBy == SortByDate {
		column = "updated_at"
	}
	dir := "ASC"
	if q.Order == OrderDesc {
		dir = "DESC"
	}
	// id breaks ties so pages are stable across requests
	return fmt.Sprintf("%s %s, id %s", column, dir, dir)
}

func applySearch(tx *gorm.DB, search string) *gorm.DB {
	if search == "" {
		return tx
	}
	pattern := "%" + escapeLike(search) + "%"
	return tx.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}

func (r *PostgresRepository) List(ctx context.Context, q ListQuery) ([]ImageRecord, error) {
	var recs []ImageRecord
	tx := applySearch(r.db.WithContext(ctx).Model(&ImageRecord{}), q.Search)
	err := tx.Order(r.orderClause(q)).Offset(q.Skip).Limit(q.Limit).Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list image records: %w", err)
	}
	return recs, nil
}

func (r *PostgresRepository) Count(ctx context.Context, search string) (int, error) {
	var n int64
	tx := applySearch(r.db.WithContext(ctx).Model(&ImageRecord{}), search)
	if err := tx.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count image records: %w", err)
	}
	return int(n), nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*ImageRecord, error) {
	var rec ImageRecord
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get image record %s: %w", id, err)
	}
	return &rec, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, rec *ImageRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to insert image record: %w", err)
	}
	return nil
}

func (r *PostgresRepository) BulkInsert(ctx context.Context, recs []ImageRecord) error {
	if len(recs) == 0 {
		return nil
	}
	for i := range recs {
		if recs[i].ID == "" {
			recs[i].ID = uuid.NewString()
		}
	}
	if err := r.db.WithContext(ctx).Create(&recs).Error; err != nil {
		return fmt.Errorf("failed to bulk insert image records: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateDescription(ctx context.Context, id, description string) error {
	res := r.db.WithContext(ctx).Model(&ImageRecord{}).Where("id = ?", id).Updates(map[string]any{
		"description": description,
		"updated_at":  time.Now().UTC(),
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update image record %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&ImageRecord{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete image record %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
