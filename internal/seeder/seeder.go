package seeder

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/atelier-hq/atelier/internal/database"
	"github.com/atelier-hq/atelier/internal/entity"
)

// Seeder performs database seeding for local/dev setups. All monetary
// values are in kobo.
type Seeder struct {
	db     *bun.DB
	logger *zap.Logger
}

// Module provides the Seeder to the Fx graph.
var Module = fx.Provide(New)

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, logger: logger}
}

// Catalog seeds tailors, designs, and a demo customer. Inserts are keyed on
// email or id so reruns are no-ops.
func (s *Seeder) Catalog(ctx context.Context) error {
	if err := s.tailors(ctx); err != nil {
		return err
	}
	if err := s.designs(ctx); err != nil {
		return err
	}
	return s.users(ctx)
}

func (s *Seeder) tailors(ctx context.Context) error {
	now := time.Now().UTC()
	samples := []entity.Tailor{
		{
			ID:           1,
			Name:         "Adebayo Tailoring",
			Email:        "adebayo@tailoring.com",
			Phone:        "+234 803 555 0101",
			Address:      "123 Fashion Street, Lagos, Nigeria",
			Description:  "Master tailor specializing in traditional Nigerian wear with over 20 years of experience.",
			ProfileImage: "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=100",
			Rating:       4.9,
			TotalReviews: 127,
			TotalOrders:  23,
			Revenue:      120_000_000,
			IsVerified:   true,
			CreatedAt:    now,
		},
		{
			ID:           2,
			Name:         "Kemi's Couture",
			Email:        "kemi@couture.com",
			Phone:        "+234 805 555 0102",
			Address:      "456 Craft Avenue, Abuja, Nigeria",
			Description:  "Contemporary African fashion designer known for innovative Ankara styles.",
			ProfileImage: "https://images.unsplash.com/photo-1494790108755-2616b612b407?w=100",
			Rating:       4.7,
			TotalReviews: 89,
			TotalOrders:  15,
			Revenue:      85_000_000,
			IsVerified:   true,
			CreatedAt:    now,
		},
		{
			ID:           3,
			Name:         "Emeka Designs",
			Email:        "emeka@designs.com",
			Phone:        "+234 807 555 0103",
			Address:      "789 Heritage Road, Kano, Nigeria",
			Description:  "Specializes in classic Dashiki and traditional ceremonial wear.",
			ProfileImage: "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?w=100",
			Rating:       5.0,
			TotalReviews: 203,
			TotalOrders:  31,
			Revenue:      150_000_000,
			IsVerified:   true,
			CreatedAt:    now,
		},
	}

	for _, sample := range samples {
		tailor := sample
		_, err := s.db.NewInsert().Model(&tailor).
			On("CONFLICT (email) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	s.logger.Info("seeded tailors", zap.Int("count", len(samples)))
	return nil
}

func (s *Seeder) designs(ctx context.Context) error {
	now := time.Now().UTC()
	samples := []entity.Design{
		{
			ID:          1,
			TailorID:    1,
			Name:        "Premium Agbada Collection",
			Description: "Handcrafted traditional Agbada with modern cuts. Available in various colors and patterns.",
			Category:    "agbada",
			Price:       4_500_000,
			Images:      []string{"https://images.unsplash.com/photo-1583394838336-acd977736f90?w=400"},
			Tags:        []string{"traditional", "formal", "wedding"},
			IsActive:    true,
			IsTrending:  true,
			CreatedAt:   now,
		},
		{
			ID:          2,
			TailorID:    2,
			Name:        "Modern Ankara Styles",
			Description: "Contemporary Ankara designs perfect for any occasion. Custom fitting guaranteed.",
			Category:    "ankara",
			Price:       3_200_000,
			Images:      []string{"https://images.unsplash.com/photo-1578662996442-48f60103fc96?w=400"},
			Tags:        []string{"contemporary", "colorful", "everyday"},
			IsActive:    true,
			CreatedAt:   now,
		},
		{
			ID:          3,
			TailorID:    3,
			Name:        "Classic Dashiki Collection",
			Description: "Authentic Dashiki designs with traditional embroidery. Perfect for cultural events.",
			Category:    "dashiki",
			Price:       2_800_000,
			Images:      []string{"https://images.unsplash.com/photo-1578662996442-48f60103fc96?w=400"},
			Tags:        []string{"authentic", "embroidered", "cultural"},
			IsActive:    true,
			CreatedAt:   now,
		},
	}

	for _, sample := range samples {
		design := sample
		_, err := s.db.NewInsert().Model(&design).
			On("CONFLICT (id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	s.logger.Info("seeded designs", zap.Int("count", len(samples)))
	return nil
}

func (s *Seeder) users(ctx context.Context) error {
	demo := entity.User{
		ID:        1,
		Name:      "Demo Customer",
		Email:     "demo@atelier.dev",
		Phone:     "+234 801 555 0100",
		Address:   "14 Marina Road, Lagos, Nigeria",
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.NewInsert().Model(&demo).
		On("CONFLICT (email) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return err
	}

	s.logger.Info("seeded users", zap.Int("count", 1))
	return nil
}
