// Package profile persists customer measurement records, style preferences
// and reviews.
package profile

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

var repoTracer = otel.Tracer("github.com/atelier-hq/atelier/repository/profile")

// Missing-row sentinels.
var (
	ErrMeasurementNotFound = errors.New("measurement not found")
	ErrPreferenceNotFound  = errors.New("style preference not found")
)

// Repository encapsulates read/write access for profile entities.
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

// CreateMeasurement persists a new measurement record.
func (r *Repository) CreateMeasurement(ctx context.Context, m *entity.Measurement) error {
	ctx, span := repoTracer.Start(ctx, "ProfileRepository.CreateMeasurement", trace.WithAttributes(attribute.Int64("user.id", m.UserID)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(m).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// MeasurementByUser returns the user's most recent measurement record.
func (r *Repository) MeasurementByUser(ctx context.Context, userID int64) (*entity.Measurement, error) {
	ctx, span := repoTracer.Start(ctx, "ProfileRepository.MeasurementByUser", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	m := new(entity.Measurement)
	err := r.reader.NewSelect().Model(m).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMeasurementNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return m, nil
}

// UpdateMeasurement rewrites the numeric fields of a measurement record.
func (r *Repository) UpdateMeasurement(ctx context.Context, m *entity.Measurement) error {
	ctx, span := repoTracer.Start(ctx, "ProfileRepository.UpdateMeasurement", trace.WithAttributes(attribute.Int64("measurement.id", m.ID)))
	defer span.End()

	res, err := r.writer.NewUpdate().Model(m).
		Column("chest", "waist", "hip", "shoulder_width", "arm_length", "height", "weight", "units").
		WherePK().
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrMeasurementNotFound
	}
	return nil
}

// CreateStylePreference persists a style quiz result.
func (r *Repository) CreateStylePreference(ctx context.Context, p *entity.StylePreference) error {
	ctx, span := repoTracer.Start(ctx, "ProfileRepository.CreateStylePreference", trace.WithAttributes(attribute.Int64("user.id", p.UserID)))
	defer span.End()

	_, err := r.writer.NewInsert().Model(p).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// StylePreferenceByUser returns the user's latest quiz result.
func (r *Repository) StylePreferenceByUser(ctx context.Context, userID int64) (*entity.StylePreference, error) {
	ctx, span := repoTracer.Start(ctx, "ProfileRepository.StylePreferenceByUser", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	p := new(entity.StylePreference)
	err := r.reader.NewSelect().Model(p).
		Where("user_id = ?", userID).
		Order("completed_at DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPreferenceNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return p, nil
}

// CreateReview persists a review.
func (r *Repository) CreateReview(ctx context.Context, review *entity.Review) error {
	ctx, span := repoTracer.Start(ctx, "ProfileRepository.CreateReview", trace.WithAttributes(
		attribute.Int64("tailor.id", review.TailorID),
		attribute.Int64("order.id", review.OrderID),
	))
	defer span.End()

	_, err := r.writer.NewInsert().Model(review).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// ReviewsByTailor returns a tailor's reviews, newest first.
func (r *Repository) ReviewsByTailor(ctx context.Context, tailorID int64) ([]entity.Review, error) {
	ctx, span := repoTracer.Start(ctx, "ProfileRepository.ReviewsByTailor", trace.WithAttributes(attribute.Int64("tailor.id", tailorID)))
	defer span.End()

	var reviews []entity.Review
	err := r.reader.NewSelect().Model(&reviews).
		Where("tailor_id = ?", tailorID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return reviews, nil
}

// ReviewStatsByTailor aggregates the rating rollup inputs.
func (r *Repository) ReviewStatsByTailor(ctx context.Context, tailorID int64) (avg float64, count int64, err error) {
	ctx, span := repoTracer.Start(ctx, "ProfileRepository.ReviewStatsByTailor", trace.WithAttributes(attribute.Int64("tailor.id", tailorID)))
	defer span.End()

	var row struct {
		Avg   float64 `bun:"avg_rating"`
		Count int64   `bun:"cnt"`
	}
	err = r.reader.NewSelect().Model((*entity.Review)(nil)).
		ColumnExpr("coalesce(avg(rating), 0) AS avg_rating").
		ColumnExpr("count(*) AS cnt").
		Where("tailor_id = ?", tailorID).
		Scan(ctx, &row)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "aggregate failed")
		return 0, 0, err
	}
	return row.Avg, row.Count, nil
}
