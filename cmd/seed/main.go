package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"servicehub/internal/config"
	"servicehub/internal/database"
	"servicehub/internal/domain/auth"
	"servicehub/internal/domain/catalog"
	"servicehub/internal/domain/provider"
	"servicehub/internal/domain/user"
	"servicehub/internal/logging"
	"servicehub/internal/pkg/roles"
	"servicehub/internal/server"
)

var categories = []struct {
	name     string
	icon     string
	services []string
}{
	{"Home Repair", "hammer", []string{"Plumbing", "Electrical", "Carpentry", "Painting"}},
	{"Cleaning", "broom", []string{"House Cleaning", "Carpet Cleaning", "Window Cleaning"}},
	{"Tutoring", "book", []string{"Maths", "English", "Music Lessons"}},
	{"Beauty", "scissors", []string{"Haircut", "Manicure", "Makeup"}},
	{"Outdoors", "leaf", []string{"Gardening", "Lawn Mowing"}},
}

type demoUser struct {
	name     string
	email    string
	phone    string
	provider bool
	offers   map[string]float64
}

var demoUsers = []demoUser{
	{name: "Alice Client", email: "alice@example.com", phone: "+44 7700 900001"},
	{name: "Ben Client", email: "ben@example.com", phone: "+44 7700 900002"},
	{
		name: "Carla Plumber", email: "carla@example.com", phone: "+44 7700 900003", provider: true,
		offers: map[string]float64{"Plumbing": 45, "Carpentry": 40},
	},
	{
		name: "Dev Tutor", email: "dev@example.com", phone: "+44 7700 900004", provider: true,
		offers: map[string]float64{"Maths": 30, "Music Lessons": 35},
	},
	{
		name: "Eve Cleaner", email: "eve@example.com", phone: "+44 7700 900005", provider: true,
		offers: map[string]float64{"House Cleaning": 20, "Window Cleaning": 15},
	},
}

const demoPassword = "password123"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.IsProdLike())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	dsn := cfg.DatabaseURL
	if dsn == "" {
		dsn = "servicehub.db"
	}
	db, err := database.Connect(dsn)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}

	if err := database.Migrate(db, server.Models()...); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		services, err := seedCatalog(tx)
		if err != nil {
			return err
		}
		return seedUsers(tx, services, logger)
	})
	if err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}
	logger.Info("seed completed", zap.String("password", demoPassword))
}

// seedCatalog inserts missing categories and services and returns service
// ids by name.
func seedCatalog(tx *gorm.DB) (map[string]int64, error) {
	ids := make(map[string]int64)
	for _, c := range categories {
		cat := catalog.Category{Name: c.name, Icon: c.icon}
		if err := tx.Where(catalog.Category{Name: c.name}).FirstOrCreate(&cat).Error; err != nil {
			return nil, fmt.Errorf("category %q: %w", c.name, err)
		}
		for _, name := range c.services {
			svc := catalog.Service{CategoryID: cat.ID, Name: name}
			if err := tx.Where(catalog.Service{CategoryID: cat.ID, Name: name}).FirstOrCreate(&svc).Error; err != nil {
				return nil, fmt.Errorf("service %q: %w", name, err)
			}
			ids[name] = svc.ID
		}
	}
	return ids, nil
}

func seedUsers(tx *gorm.DB, services map[string]int64, logger *zap.Logger) error {
	hash, err := auth.HashPassword(demoPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	weekdays := provider.Availability{
		{Day: "Mon", Ranges: []provider.TimeRange{{Start: "09:00", End: "17:00"}}},
		{Day: "Wed", Ranges: []provider.TimeRange{{Start: "09:00", End: "17:00"}}},
		{Day: "Fri", Ranges: []provider.TimeRange{{Start: "09:00", End: "13:00"}}},
	}

	for _, d := range demoUsers {
		role := roles.User
		if d.provider {
			role = roles.Add(role, roles.Provider)
		}
		u := user.User{
			Name:         d.name,
			Email:        d.email,
			PhoneNumber:  d.phone,
			PasswordHash: hash,
			Role:         role,
		}
		if err := tx.Where(user.User{Email: d.email}).FirstOrCreate(&u).Error; err != nil {
			return fmt.Errorf("user %q: %w", d.email, err)
		}

		for name, price := range d.offers {
			serviceID, ok := services[name]
			if !ok {
				return fmt.Errorf("unknown service %q", name)
			}
			o := provider.Offering{
				UserID:       u.ID,
				ServiceID:    serviceID,
				Experience:   3,
				Price:        price,
				Availability: weekdays,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "service_id"}},
				DoNothing: true,
			}).Create(&o).Error
			if err != nil {
				return fmt.Errorf("offering %q for %q: %w", name, d.email, err)
			}
		}
		logger.Info("seeded user", zap.String("email", d.email), zap.String("role", u.Role))
	}
	return nil
}
