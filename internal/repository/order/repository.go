package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/atelier-hq/atelier/internal/database"
	"github.com/atelier-hq/atelier/internal/entity"
)

var repoTracer = otel.Tracer("github.com/atelier-hq/atelier/repository/order")

// ErrNotFound is returned when an order is missing.
var ErrNotFound = errors.New("order not found")

// ErrVersionConflict is returned when a status update lost a concurrent race
// on the order's version column.
var ErrVersionConflict = errors.New("order version conflict")

// Repository encapsulates read/write access for orders.
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

// Create persists a new order using the write connection.
func (r *Repository) Create(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Create", trace.WithAttributes(
		attribute.Int64("order.tailor_id", order.TailorID),
		attribute.Int64("order.design_id", order.DesignID),
	))
	defer span.End()

	_, err := r.writer.NewInsert().Model(order).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches an order by primary key using the read replica when
// available. The result has no associations loaded.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order := new(entity.Order)
	err := r.reader.NewSelect().Model(order).Where("o.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return order, nil
}

// GetWithDetails fetches an order joined with its design, tailor and user.
func (r *Repository) GetWithDetails(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetWithDetails", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order := new(entity.Order)
	err := r.reader.NewSelect().Model(order).
		Relation("User").
		Relation("Tailor").
		Relation("Design").
		Where("o.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return order, nil
}

// ListByUser returns the customer's orders, newest first, with details.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]entity.Order, error) {
	return r.list(ctx, "OrderRepository.ListByUser", "o.user_id = ?", userID)
}

// ListByTailor returns the tailor's assigned orders, newest first, with details.
func (r *Repository) ListByTailor(ctx context.Context, tailorID int64) ([]entity.Order, error) {
	return r.list(ctx, "OrderRepository.ListByTailor", "o.tailor_id = ?", tailorID)
}

func (r *Repository) list(ctx context.Context, spanName, where string, arg int64) ([]entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, spanName, trace.WithAttributes(attribute.Int64("party.id", arg)))
	defer span.End()

	var orders []entity.Order
	err := r.reader.NewSelect().Model(&orders).
		Relation("User").
		Relation("Tailor").
		Relation("Design").
		Where(where, arg).
		Order("o.created_at DESC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return orders, nil
}

// UpdateStatus applies a status change guarded by the order's version
// column. The write only lands if the version still matches the one the
// caller loaded; a lost race surfaces as ErrVersionConflict so the caller
// can reload and revalidate the transition.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status entity.OrderStatus, fromVersion int64, updatedAt time.Time) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.UpdateStatus", trace.WithAttributes(
		attribute.Int64("order.id", id),
		attribute.String("order.status", string(status)),
	))
	defer span.End()

	res, err := r.writer.NewUpdate().Model((*entity.Order)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", updatedAt).
		Set("version = version + 1").
		Where("id = ?", id).
		Where("version = ?", fromVersion).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		span.SetStatus(codes.Error, "version conflict")
		return ErrVersionConflict
	}
	return nil
}

// CompletedStatsByTailor aggregates completed orders for rollup recompute.
func (r *Repository) CompletedStatsByTailor(ctx context.Context, tailorID int64) (count int64, totalAmount int64, err error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.CompletedStatsByTailor", trace.WithAttributes(attribute.Int64("tailor.id", tailorID)))
	defer span.End()

	var row struct {
		Count int64 `bun:"cnt"`
		Total int64 `bun:"total"`
	}
	err = r.reader.NewSelect().Model((*entity.Order)(nil)).
		ColumnExpr("count(*) AS cnt").
		ColumnExpr("coalesce(sum(total_amount), 0) AS total").
		Where("tailor_id = ?", tailorID).
		Where("status = ?", entity.StatusCompleted).
		Scan(ctx, &row)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "aggregate failed")
		return 0, 0, err
	}
	return row.Count, row.Total, nil
}
