package scrapelogs

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"cardgrader/internal/model"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (that *Repository) Create(ctx context.Context, log *model.ScrapeLog) error {
	if err := that.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("create scrape log in database: %w", err)
	}

	return nil
}

func (that *Repository) Save(ctx context.Context, log *model.ScrapeLog) error {
	if err := that.db.WithContext(ctx).Save(log).Error; err != nil {
		return fmt.Errorf("save scrape log in database: %w", err)
	}

	return nil
}

// Recent returns the latest runs, newest first.
func (that *Repository) Recent(ctx context.Context, limit int) ([]*model.ScrapeLog, error) {
	if limit <= 0 {
		limit = 20
	}

	var logs []*model.ScrapeLog

	query := that.db.WithContext(ctx).Model(&model.ScrapeLog{}).Order("started_at DESC").Limit(limit)
	if err := query.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("fetch scrape logs from database: %w", err)
	}

	return logs, nil
}
