package catalog

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	ListServices(ctx context.Context) ([]Service, error)
	ServiceExists(ctx context.Context, ids []int64) (map[int64]bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *repository) ListServices(ctx context.Context) ([]Service, error) {
	var out []Service
	err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *repository) ServiceExists(ctx context.Context, ids []int64) (map[int64]bool, error) {
	found := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	var existing []int64
	if err := r.db.WithContext(ctx).Model(&Service{}).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
		return nil, err
	}
	for _, id := range existing {
		found[id] = true
	}
	return found, nil
}
