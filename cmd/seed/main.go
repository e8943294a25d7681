package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/davidrenteria/storefront-backend/pkg/config"
	"github.com/davidrenteria/storefront-backend/pkg/db"
	"github.com/davidrenteria/storefront-backend/pkg/db/models"
	"github.com/davidrenteria/storefront-backend/pkg/enums"
	"github.com/davidrenteria/storefront-backend/pkg/logger"
	"github.com/davidrenteria/storefront-backend/pkg/migrate"
	"github.com/davidrenteria/storefront-backend/pkg/security"
)

// Demo credentials printed after a successful run. Dev convenience only.
const (
	adminEmail       = "admin@electrotech.com"
	adminPassword    = "Admin123!"
	customerEmail    = "customer@example.com"
	customerPassword = "Customer123!"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}
	if cfg.App.IsProd() {
		logg.Error(ctx, "refusing to seed a production database", nil)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, logg, dbClient.DB()); err != nil {
		logg.Error(ctx, "seed failed", err)
		os.Exit(1)
	}

	logg.Info(ctx, "seed completed")
	fmt.Println("login credentials:")
	fmt.Printf("  admin:    %s / %s\n", adminEmail, adminPassword)
	fmt.Printf("  customer: %s / %s\n", customerEmail, customerPassword)
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger, gdb *gorm.DB) error {
	if err := seedUsers(ctx, cfg, gdb); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	logg.Info(ctx, "demo users ready")

	categories, err := seedCategories(ctx, gdb)
	if err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	logg.Info(ctx, "demo categories ready")

	if err := seedProducts(ctx, gdb, categories); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	logg.Info(ctx, "demo products ready")
	return nil
}

func seedUsers(ctx context.Context, cfg *config.Config, gdb *gorm.DB) error {
	users := []struct {
		name     string
		email    string
		password string
		role     enums.Role
	}{
		{name: "Admin User", email: adminEmail, password: adminPassword, role: enums.RoleAdmin},
		{name: "John Doe", email: customerEmail, password: customerPassword, role: enums.RoleCustomer},
	}

	for _, u := range users {
		hash, err := security.HashPassword(u.password, cfg.Password)
		if err != nil {
			return err
		}
		user := models.User{
			ID:           uuid.New(),
			Email:        u.email,
			PasswordHash: hash,
			Name:         u.name,
			Role:         u.role,
			IsActive:     true,
		}
		err = gdb.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
			Create(&user).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func seedCategories(ctx context.Context, gdb *gorm.DB) (map[string]uuid.UUID, error) {
	categories := []models.Category{
		{Name: "Smartphones", Description: "Latest smartphones and mobile devices"},
		{Name: "Laptops", Description: "High-performance laptops for work and gaming"},
		{Name: "Tablets", Description: "Portable tablets for entertainment and productivity"},
		{Name: "Accessories", Description: "Essential accessories for your devices"},
		{Name: "Audio", Description: "Premium headphones and speakers"},
		{Name: "Gaming", Description: "Gaming consoles and accessories"},
	}

	byName := make(map[string]uuid.UUID, len(categories))
	for i := range categories {
		categories[i].ID = uuid.New()
		err := gdb.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
			Create(&categories[i]).Error
		if err != nil {
			return nil, err
		}

		// The insert may have been skipped, so read back the persisted row.
		var persisted models.Category
		if err := gdb.WithContext(ctx).Where("name = ?", categories[i].Name).First(&persisted).Error; err != nil {
			return nil, err
		}
		byName[persisted.Name] = persisted.ID
	}
	return byName, nil
}

func seedProducts(ctx context.Context, gdb *gorm.DB, categories map[string]uuid.UUID) error {
	products := []struct {
		name        string
		description string
		price       string
		stock       int
		category    string
		imageURL    string
		isNew       bool
	}{
		{
			name:        "iPhone 15 Pro",
			description: "6.7-inch Super Retina XDR display, A17 Pro chip, Titanium design",
			price:       "1099.99",
			stock:       25,
			category:    "Smartphones",
			imageURL:    "https://store.storeimages.cdn-apple.com/4982/as-images.apple.com/is/iphone-15-pro-finish-select-202309-6-7inch",
			isNew:       true,
		},
		{
			name:        "MacBook Pro 16\"",
			description: "M3 Max chip, 48GB RAM, 1TB SSD, Space Black",
			price:       "2499.99",
			stock:       10,
			category:    "Laptops",
			imageURL:    "https://store.storeimages.cdn-apple.com/4982/as-images.apple.com/is/mbp16-spaceblack-select-202310",
			isNew:       true,
		},
		{
			name:        "iPad Pro 12.9\"",
			description: "M2 chip, Liquid Retina XDR display, 5G capable",
			price:       "1099.99",
			stock:       15,
			category:    "Tablets",
			imageURL:    "https://store.storeimages.cdn-apple.com/4982/as-images.apple.com/is/ipad-pro-12-select-wifi-spacegray-202210",
		},
		{
			name:        "AirPods Pro",
			description: "Active Noise Cancellation, Adaptive Audio, USB-C charging",
			price:       "249.99",
			stock:       50,
			category:    "Audio",
			imageURL:    "https://store.storeimages.cdn-apple.com/4982/as-images.apple.com/is/airpods-pro-2-hero-select-202309",
			isNew:       true,
		},
	}

	for _, p := range products {
		categoryID, ok := categories[p.category]
		if !ok {
			return fmt.Errorf("unknown category %q for product %q", p.category, p.name)
		}

		var existing int64
		if err := gdb.WithContext(ctx).Model(&models.Product{}).Where("name = ?", p.name).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			continue
		}

		imageURL := p.imageURL
		product := models.Product{
			ID:            uuid.New(),
			Name:          p.name,
			Description:   p.description,
			Price:         decimal.RequireFromString(p.price),
			StockQuantity: p.stock,
			CategoryID:    categoryID,
			ImageURL:      &imageURL,
			IsNew:         p.isNew,
		}
		if err := gdb.WithContext(ctx).Create(&product).Error; err != nil {
			return err
		}
	}
	return nil
}
