// Package catalog persists the marketplace directory: users, tailors and
// designs.
package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/atelier-hq/atelier/internal/database"
	"github.com/atelier-hq/atelier/internal/entity"
)

var repoTracer = otel.Tracer("github.com/atelier-hq/atelier/repository/catalog")

// Missing-row sentinels, one per entity.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrTailorNotFound = errors.New("tailor not found")
	ErrDesignNotFound = errors.New("design not found")
)

// Repository encapsulates read/write access for catalog entities.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// CreateUser persists a new customer account.
func (r *Repository) CreateUser(ctx context.Context, user *entity.User) error {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.CreateUser")
	defer span.End()

	_, err := r.writer.NewInsert().Model(user).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetUser fetches a user by id.
func (r *Repository) GetUser(ctx context.Context, id int64) (*entity.User, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.GetUser", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()

	user := new(entity.User)
	err := r.reader.NewSelect().Model(user).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return user, nil
}

// UpdateUser applies a partial update and returns the stored row.
func (r *Repository) UpdateUser(ctx context.Context, user *entity.User) error {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.UpdateUser", trace.WithAttributes(attribute.Int64("user.id", user.ID)))
	defer span.End()

	res, err := r.writer.NewUpdate().Model(user).
		Column("name", "email", "phone", "address").
		WherePK().
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CreateTailor persists a new tailor profile.
func (r *Repository) CreateTailor(ctx context.Context, tailor *entity.Tailor) error {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.CreateTailor")
	defer span.End()

	_, err := r.writer.NewInsert().Model(tailor).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetTailor fetches a tailor by id.
func (r *Repository) GetTailor(ctx context.Context, id int64) (*entity.Tailor, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.GetTailor", trace.WithAttributes(attribute.Int64("tailor.id", id)))
	defer span.End()

	tailor := new(entity.Tailor)
	err := r.reader.NewSelect().Model(tailor).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTailorNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return tailor, nil
}

// ListTailors returns all tailor profiles.
func (r *Repository) ListTailors(ctx context.Context) ([]entity.Tailor, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.ListTailors")
	defer span.End()

	var tailors []entity.Tailor
	err := r.reader.NewSelect().Model(&tailors).Order("created_at DESC").Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return tailors, nil
}

// UpdateTailorRollup writes the recomputed order/revenue counters.
func (r *Repository) UpdateTailorRollup(ctx context.Context, tailorID, totalOrders, revenue int64) error {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.UpdateTailorRollup", trace.WithAttributes(attribute.Int64("tailor.id", tailorID)))
	defer span.End()

	_, err := r.writer.NewUpdate().Model((*entity.Tailor)(nil)).
		Set("total_orders = ?", totalOrders).
		Set("revenue = ?", revenue).
		Where("id = ?", tailorID).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
	}
	return err
}

// UpdateTailorRating writes the recomputed review rollup.
func (r *Repository) UpdateTailorRating(ctx context.Context, tailorID int64, rating float64, totalReviews int64) error {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.UpdateTailorRating", trace.WithAttributes(attribute.Int64("tailor.id", tailorID)))
	defer span.End()

	_, err := r.writer.NewUpdate().Model((*entity.Tailor)(nil)).
		Set("rating = ?", rating).
		Set("total_reviews = ?", totalReviews).
		Where("id = ?", tailorID).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
	}
	return err
}

// CreateDesign persists a new design listing.
func (r *Repository) CreateDesign(ctx context.Context, design *entity.Design) error {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.CreateDesign", trace.WithAttributes(attribute.Int64("tailor.id", design.TailorID)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(design).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetDesignWithTailor fetches a design joined with its tailor profile.
func (r *Repository) GetDesignWithTailor(ctx context.Context, id int64) (*entity.Design, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.GetDesignWithTailor", trace.WithAttributes(attribute.Int64("design.id", id)))
	defer span.End()

	design := new(entity.Design)
	err := r.reader.NewSelect().Model(design).
		Relation("Tailor").
		Where("design.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDesignNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return design, nil
}

// SearchDesigns filters active designs by free text and category.
func (r *Repository) SearchDesigns(ctx context.Context, search, category string) ([]entity.Design, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.SearchDesigns", trace.WithAttributes(
		attribute.String("search", search),
		attribute.String("category", category),
	))
	defer span.End()

	var designs []entity.Design
	q := r.reader.NewSelect().Model(&designs).
		Where("is_active = TRUE")
	if search != "" {
		pattern := "%" + search + "%"
		q = q.Where("(name ILIKE ? OR description ILIKE ?)", pattern, pattern)
	}
	if category != "" {
		q = q.Where("category = ?", category)
	}

	err := q.Order("created_at DESC").Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return designs, nil
}

// TrendingDesigns returns active designs flagged as trending.
func (r *Repository) TrendingDesigns(ctx context.Context) ([]entity.Design, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.TrendingDesigns")
	defer span.End()

	var designs []entity.Design
	err := r.reader.NewSelect().Model(&designs).
		Where("is_active = TRUE").
		Where("is_trending = TRUE").
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return designs, nil
}

// DesignsByTailor returns a tailor's listings for the stats view.
func (r *Repository) DesignsByTailor(ctx context.Context, tailorID int64) ([]entity.Design, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.DesignsByTailor", trace.WithAttributes(attribute.Int64("tailor.id", tailorID)))
	defer span.End()

	var designs []entity.Design
	err := r.reader.NewSelect().Model(&designs).
		Where("tailor_id = ?", tailorID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return designs, nil
}
