package order

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/atelier-hq/atelier/internal/commission"
	"github.com/atelier-hq/atelier/internal/entity"
	"github.com/atelier-hq/atelier/internal/realtime"
	catalogrepo "github.com/atelier-hq/atelier/internal/repository/catalog"
	repo "github.com/atelier-hq/atelier/internal/repository/order"
	"github.com/atelier-hq/atelier/pkg/errorbank"
)

type fakeStore struct {
	orders map[int64]*entity.Order
	nextID int64

	// conflictsLeft forces UpdateStatus to report a version conflict the
	// given number of times before succeeding.
	conflictsLeft int
	updateCalls   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{orders: make(map[int64]*entity.Order), nextID: 1}
}

func (f *fakeStore) Create(_ context.Context, order *entity.Order) error {
	order.ID = f.nextID
	f.nextID++
	clone := *order
	f.orders[order.ID] = &clone
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*entity.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	clone := *order
	return &clone, nil
}

func (f *fakeStore) GetWithDetails(ctx context.Context, id int64) (*entity.Order, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeStore) ListByUser(_ context.Context, userID int64) ([]entity.Order, error) {
	var out []entity.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByTailor(_ context.Context, tailorID int64) ([]entity.Order, error) {
	var out []entity.Order
	for _, o := range f.orders {
		if o.TailorID == tailorID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id int64, status entity.OrderStatus, fromVersion int64, updatedAt time.Time) error {
	f.updateCalls++
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		// Simulate the concurrent writer bumping the stored version.
		if order, ok := f.orders[id]; ok {
			order.Version++
		}
		return repo.ErrVersionConflict
	}
	order, ok := f.orders[id]
	if !ok {
		return repo.ErrNotFound
	}
	if order.Version != fromVersion {
		return repo.ErrVersionConflict
	}
	order.Status = status
	order.Version++
	order.UpdatedAt = updatedAt
	return nil
}

type fakeRefs struct {
	missingUser   bool
	missingTailor bool
	missingDesign bool
}

func (f *fakeRefs) GetUser(context.Context, int64) (*entity.User, error) {
	if f.missingUser {
		return nil, catalogrepo.ErrUserNotFound
	}
	return &entity.User{ID: 1}, nil
}

func (f *fakeRefs) GetTailor(context.Context, int64) (*entity.Tailor, error) {
	if f.missingTailor {
		return nil, catalogrepo.ErrTailorNotFound
	}
	return &entity.Tailor{ID: 2}, nil
}

func (f *fakeRefs) GetDesignWithTailor(context.Context, int64) (*entity.Design, error) {
	if f.missingDesign {
		return nil, catalogrepo.ErrDesignNotFound
	}
	return &entity.Design{ID: 3, TailorID: 2}, nil
}

type publishedEnvelope struct {
	channel string
	event   string
	payload any
}

type fakeNotifier struct {
	published []publishedEnvelope
}

func (f *fakeNotifier) Publish(channel, event string, payload any) {
	f.published = append(f.published, publishedEnvelope{channel: channel, event: event, payload: payload})
}

func newTestService(store *fakeStore, refs *fakeRefs, hub *fakeNotifier) *Service {
	return &Service{
		store:      store,
		refs:       refs,
		hub:        hub,
		calculator: commission.NewCalculator(0.05),
	}
}

func validInput() CreateInput {
	return CreateInput{
		UserID:           1,
		TailorID:         2,
		DesignID:         3,
		Measurements:     map[string]string{"chest": "40", "waist": "32"},
		DeliveryAddress:  "14 Marina Road, Lagos",
		Phone:            "+234 801 555 0100",
		DesignPrice:      4_500_000,
		CustomizationFee: 500_000,
		DeliveryFee:      200_000,
		TotalAmount:      5_200_000,
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("persists pending order with settlement preview", func(t *testing.T) {
		store := newFakeStore()
		hub := &fakeNotifier{}
		svc := newTestService(store, &fakeRefs{}, hub)

		result, err := svc.Create(ctx, validInput())
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if result.Order.Status != entity.StatusPending {
			t.Errorf("status = %s, want %s", result.Order.Status, entity.StatusPending)
		}
		if result.Order.ID == 0 {
			t.Error("order was not assigned an id")
		}
		if result.Settlement.Commission != 260_000 {
			t.Errorf("commission = %d, want 260000", result.Settlement.Commission)
		}
		if result.Settlement.TailorEarnings != 4_940_000 {
			t.Errorf("earnings = %d, want 4940000", result.Settlement.TailorEarnings)
		}

		if len(hub.published) != 1 {
			t.Fatalf("published %d envelopes, want 1", len(hub.published))
		}
		if hub.published[0].channel != realtime.TailorChannel(2) {
			t.Errorf("channel = %s, want %s", hub.published[0].channel, realtime.TailorChannel(2))
		}
		if hub.published[0].event != "new-order" {
			t.Errorf("event = %s, want new-order", hub.published[0].event)
		}
	})

	t.Run("rejects mismatched total", func(t *testing.T) {
		svc := newTestService(newFakeStore(), &fakeRefs{}, &fakeNotifier{})

		in := validInput()
		in.TotalAmount = 5_000_000
		_, err := svc.Create(ctx, in)
		if err == nil {
			t.Fatal("expected error for mismatched total")
		}
		assertKind(t, err, errorbank.KindBadRequest)
	})

	t.Run("rejects missing required fields", func(t *testing.T) {
		svc := newTestService(newFakeStore(), &fakeRefs{}, &fakeNotifier{})

		cases := []struct {
			name   string
			mutate func(*CreateInput)
		}{
			{name: "no address", mutate: func(in *CreateInput) { in.DeliveryAddress = "" }},
			{name: "no phone", mutate: func(in *CreateInput) { in.Phone = "" }},
			{name: "no measurements", mutate: func(in *CreateInput) { in.Measurements = nil }},
			{name: "negative fee", mutate: func(in *CreateInput) { in.DeliveryFee = -1 }},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				in := validInput()
				tc.mutate(&in)
				if _, err := svc.Create(ctx, in); err == nil {
					t.Fatal("expected validation error")
				}
			})
		}
	})

	t.Run("rejects unknown references", func(t *testing.T) {
		cases := []struct {
			name string
			refs *fakeRefs
		}{
			{name: "missing user", refs: &fakeRefs{missingUser: true}},
			{name: "missing tailor", refs: &fakeRefs{missingTailor: true}},
			{name: "missing design", refs: &fakeRefs{missingDesign: true}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				svc := newTestService(newFakeStore(), tc.refs, &fakeNotifier{})
				_, err := svc.Create(ctx, validInput())
				if err == nil {
					t.Fatal("expected error for dangling reference")
				}
				assertKind(t, err, errorbank.KindBadRequest)
			})
		}
	})
}

func TestService_TransitionStatus(t *testing.T) {
	ctx := context.Background()

	seed := func(store *fakeStore, status entity.OrderStatus) int64 {
		order := &entity.Order{UserID: 1, TailorID: 2, Status: status, TotalAmount: 5_200_000}
		_ = store.Create(ctx, order)
		return order.ID
	}

	t.Run("advances one phase and notifies order channel", func(t *testing.T) {
		store := newFakeStore()
		hub := &fakeNotifier{}
		svc := newTestService(store, &fakeRefs{}, hub)
		id := seed(store, entity.StatusPending)

		order, err := svc.TransitionStatus(ctx, id, "measurements_verified")
		if err != nil {
			t.Fatalf("TransitionStatus failed: %v", err)
		}
		if order.Status != entity.StatusMeasurementsVerified {
			t.Errorf("status = %s, want measurements_verified", order.Status)
		}
		if order.UpdatedAt.IsZero() {
			t.Error("updatedAt was not refreshed")
		}

		if len(hub.published) != 1 {
			t.Fatalf("published %d envelopes, want 1", len(hub.published))
		}
		if hub.published[0].channel != realtime.OrderChannel(id) {
			t.Errorf("channel = %s, want %s", hub.published[0].channel, realtime.OrderChannel(id))
		}
		change, ok := hub.published[0].payload.(StatusChange)
		if !ok {
			t.Fatalf("payload is %T, want StatusChange", hub.published[0].payload)
		}
		if change.Status != "measurements_verified" {
			t.Errorf("payload status = %s, want measurements_verified", change.Status)
		}
	})

	t.Run("accepts legacy alias", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestService(store, &fakeRefs{}, &fakeNotifier{})
		id := seed(store, entity.StatusPending)

		order, err := svc.TransitionStatus(ctx, id, "confirmed")
		if err != nil {
			t.Fatalf("TransitionStatus failed: %v", err)
		}
		if order.Status != entity.StatusMeasurementsVerified {
			t.Errorf("status = %s, want measurements_verified", order.Status)
		}
	})

	t.Run("rejects phase skip", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestService(store, &fakeRefs{}, &fakeNotifier{})
		id := seed(store, entity.StatusPending)

		_, err := svc.TransitionStatus(ctx, id, "shipped")
		if err == nil {
			t.Fatal("expected error for phase skip")
		}
		assertKind(t, err, errorbank.KindUnprocessableEntity)
	})

	t.Run("rejects transition out of terminal state", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestService(store, &fakeRefs{}, &fakeNotifier{})
		id := seed(store, entity.StatusCompleted)

		_, err := svc.TransitionStatus(ctx, id, "cancelled")
		if err == nil {
			t.Fatal("expected error for terminal order")
		}
		assertKind(t, err, errorbank.KindUnprocessableEntity)
	})

	t.Run("cancels from any active phase", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestService(store, &fakeRefs{}, &fakeNotifier{})
		id := seed(store, entity.StatusQualityCheck)

		order, err := svc.TransitionStatus(ctx, id, "cancelled")
		if err != nil {
			t.Fatalf("TransitionStatus failed: %v", err)
		}
		if order.Status != entity.StatusCancelled {
			t.Errorf("status = %s, want cancelled", order.Status)
		}
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestService(store, &fakeRefs{}, &fakeNotifier{})
		id := seed(store, entity.StatusPending)

		_, err := svc.TransitionStatus(ctx, id, "teleported")
		if err == nil {
			t.Fatal("expected error for unknown status")
		}
		assertKind(t, err, errorbank.KindBadRequest)
	})

	t.Run("not found", func(t *testing.T) {
		svc := newTestService(newFakeStore(), &fakeRefs{}, &fakeNotifier{})

		_, err := svc.TransitionStatus(ctx, 999, "measurements_verified")
		if err == nil {
			t.Fatal("expected error for missing order")
		}
		assertKind(t, err, errorbank.KindNotFound)
	})

	t.Run("retries through a version conflict", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestService(store, &fakeRefs{}, &fakeNotifier{})
		id := seed(store, entity.StatusPending)
		store.conflictsLeft = 1

		order, err := svc.TransitionStatus(ctx, id, "measurements_verified")
		if err != nil {
			t.Fatalf("TransitionStatus failed: %v", err)
		}
		if order.Status != entity.StatusMeasurementsVerified {
			t.Errorf("status = %s, want measurements_verified", order.Status)
		}
		if store.updateCalls != 2 {
			t.Errorf("update calls = %d, want 2", store.updateCalls)
		}
	})

	t.Run("gives up after repeated conflicts", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestService(store, &fakeRefs{}, &fakeNotifier{})
		id := seed(store, entity.StatusPending)
		store.conflictsLeft = casRetries

		_, err := svc.TransitionStatus(ctx, id, "measurements_verified")
		if err == nil {
			t.Fatal("expected conflict error")
		}
		assertKind(t, err, errorbank.KindConflict)
	})
}

func TestService_ActiveByUser(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestService(store, &fakeRefs{}, &fakeNotifier{})

	for _, status := range []entity.OrderStatus{
		entity.StatusPending,
		entity.StatusInProgress,
		entity.StatusCompleted,
		entity.StatusCancelled,
	} {
		_ = store.Create(ctx, &entity.Order{UserID: 1, TailorID: 2, Status: status})
	}

	active, err := svc.ActiveByUser(ctx, 1)
	if err != nil {
		t.Fatalf("ActiveByUser failed: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("active orders = %d, want 2", len(active))
	}
	for _, o := range active {
		if o.Status.Terminal() {
			t.Errorf("terminal order %d leaked into active list", o.ID)
		}
	}
}

func TestService_EventPayload(t *testing.T) {
	event := Event{
		Type:        EventOrderStatusChanged,
		OrderID:     7,
		TailorID:    2,
		Status:      entity.StatusCompleted,
		TotalAmount: 5_200_000,
		OccurredAt:  time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC),
	}
	raw, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}

	var decoded Event
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if decoded.Type != EventOrderStatusChanged || decoded.OrderID != 7 || decoded.Status != entity.StatusCompleted {
		t.Errorf("round-tripped event = %+v", decoded)
	}
}

func assertKind(t *testing.T, err error, want errorbank.Kind) {
	t.Helper()
	var appErr *errorbank.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error %v is not an errorbank.AppError", err)
	}
	if appErr.Kind() != want {
		t.Errorf("error kind = %s, want %s", appErr.Kind(), want)
	}
}
