package provider

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// providerTagMatch matches "provider" as a whole tag in users.role.
const providerTagMatch = "(',' || u.role || ',') LIKE '%,provider,%'"

type Repository interface {
	AddOfferingsForUser(ctx context.Context, userID int64, offerings []Offering) error
	ListByUser(ctx context.Context, userID int64) ([]Offering, error)
	UpdateForUser(ctx context.Context, id, userID int64, patch OfferingPatch) (*Offering, error)
	DeleteForUser(ctx context.Context, id, userID int64) error
	SearchByServiceName(ctx context.Context, serviceName string) ([]Listing, error)
	SearchByCategory(ctx context.Context, category string) ([]CategoryListing, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// AddOfferingsForUser upserts the offerings and adds the provider tag to the
// user's role inside one transaction.
func (r *repository) AddOfferingsForUser(ctx context.Context, userID int64, offerings []Offering) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(`
			UPDATE users
			   SET role = CASE
			         WHEN (',' || role || ',') LIKE '%,provider,%' THEN role
			         WHEN role = '' THEN 'provider'
			         ELSE role || ',provider'
			       END
			 WHERE id = ?`, userID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		for i := range offerings {
			offerings[i].UserID = userID
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "service_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"price", "experience", "availability", "updated_at"}),
		}).Create(&offerings).Error
	})
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]Offering, error) {
	var out []Offering
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&out).Error
	return out, err
}

func (r *repository) UpdateForUser(ctx context.Context, id, userID int64, patch OfferingPatch) (*Offering, error) {
	updates := map[string]any{}
	if patch.Price != nil {
		updates["price"] = *patch.Price
	}
	if patch.Experience != nil {
		updates["experience"] = *patch.Experience
	}
	if patch.Availability != nil {
		updates["availability"] = *patch.Availability
	}
	if len(updates) == 0 {
		return nil, ErrEmptyPatch
	}

	res := r.db.WithContext(ctx).Model(&Offering{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var o Offering
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) DeleteForUser(ctx context.Context, id, userID int64) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&Offering{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SearchByServiceName(ctx context.Context, serviceName string) ([]Listing, error) {
	var out []Listing
	err := r.db.WithContext(ctx).
		Table("provider_services ps").
		Select(`u.id, u.name, u.email, u.phone_number, u.rating, u.latitude, u.longitude,
			s.name AS service_name, ps.price`).
		Joins("JOIN users u ON ps.user_id = u.id").
		Joins("JOIN services s ON ps.service_id = s.id").
		Where("LOWER(s.name) = ?", strings.ToLower(serviceName)).
		Where(providerTagMatch).
		Order("u.rating DESC, ps.price ASC").
		Scan(&out).Error
	return out, err
}

func (r *repository) SearchByCategory(ctx context.Context, category string) ([]CategoryListing, error) {
	var out []CategoryListing
	err := r.db.WithContext(ctx).
		Table("provider_services ps").
		Select(`ps.id AS ps_id, u.id AS user_id, u.name, u.email, u.phone_number, u.rating,
			u.latitude, u.longitude, s.name AS service_name, ps.price`).
		Joins("JOIN users u ON ps.user_id = u.id").
		Joins("JOIN services s ON ps.service_id = s.id").
		Joins("JOIN service_categories sc ON s.category_id = sc.id").
		Where("LOWER(sc.name) = ?", strings.ToLower(category)).
		Where(providerTagMatch).
		Order("u.rating DESC, ps.price ASC").
		Scan(&out).Error
	return out, err
}
