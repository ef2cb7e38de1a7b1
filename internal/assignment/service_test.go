package assignment

import (
	"context"
	"testing"

	"github.com/RouteFleet/RouteFleet/internal/common/apperr"
	"github.com/RouteFleet/RouteFleet/internal/route"
)

type stubVehicles map[string]bool

func (s stubVehicles) VehicleExists(ctx context.Context, id string) (bool, error) {
	return s[id], nil
}

type stubDrivers map[string]bool

func (s stubDrivers) DriverExists(ctx context.Context, id string) (bool, error) {
	return s[id], nil
}

type fixture struct {
	svc       *Service
	store     *MemoryStore
	routeSvc  *route.Service
	routeID   string
	combined  string
	vehicleID string
	driverID  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	routeStore := route.NewMemoryStore()
	store := NewMemoryStore()
	routeSvc := route.NewService(routeStore, store)

	r, err := routeSvc.CreateRoute(ctx, route.RouteInput{Name: "Depot - Harbor"})
	if err != nil {
		t.Fatalf("CreateRoute: %v", err)
	}
	c, err := routeSvc.CreateCombined(ctx, route.CombinedInput{
		Name:  "Harbor Loop",
		Items: []route.CombinedItemInput{{RouteID: r.ID, Position: 1}},
	})
	if err != nil {
		t.Fatalf("CreateCombined: %v", err)
	}

	svc := NewService(store, routeSvc,
		stubVehicles{"V1": true},
		stubDrivers{"D1": true},
	)
	return &fixture{
		svc:       svc,
		store:     store,
		routeSvc:  routeSvc,
		routeID:   r.ID,
		combined:  c.ID,
		vehicleID: "V1",
		driverID:  "D1",
	}
}

func (f *fixture) input() Input {
	return Input{
		RouteID:   f.routeID,
		VehicleID: f.vehicleID,
		DriverID:  f.driverID,
		StartDate: "2025-08-01",
	}
}

func TestCreateStartsScheduled(t *testing.T) {
	f := newFixture(t)
	a, err := f.svc.Create(context.Background(), f.input())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.Status != StatusScheduled {
		t.Fatalf("expected scheduled, got %s", a.Status)
	}
	kind, id := a.RouteRef()
	if kind != route.KindRegular || id != f.routeID {
		t.Fatalf("unexpected route ref: %s %s", kind, id)
	}
}

func TestCreateWithCombinedRoute(t *testing.T) {
	f := newFixture(t)
	in := f.input()
	in.RouteID = ""
	in.CombinedRouteID = f.combined

	a, err := f.svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	kind, id := a.RouteRef()
	if kind != route.KindCombined || id != f.combined {
		t.Fatalf("unexpected route ref: %s %s", kind, id)
	}
}

func TestCreateRejectsBothRouteRefs(t *testing.T) {
	f := newFixture(t)
	in := f.input()
	in.CombinedRouteID = f.combined

	_, err := f.svc.Create(context.Background(), in)
	if !apperr.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	ve := err.(*apperr.ValidationError)
	fields := map[string]bool{}
	for _, fe := range ve.Fields {
		fields[fe.Field] = true
	}
	if !fields["routeId"] || !fields["combinedRouteId"] {
		t.Fatalf("expected both route fields flagged, got %v", ve.Fields)
	}
}

func TestCreateRejectsMissingRouteRef(t *testing.T) {
	f := newFixture(t)
	in := f.input()
	in.RouteID = ""

	_, err := f.svc.Create(context.Background(), in)
	if !apperr.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCreateRejectsUnresolvableReferences(t *testing.T) {
	f := newFixture(t)
	in := Input{
		RouteID:   "no-such-route",
		VehicleID: "no-such-vehicle",
		DriverID:  "no-such-driver",
		StartDate: "2025-08-01",
	}

	_, err := f.svc.Create(context.Background(), in)
	if !apperr.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	ve := err.(*apperr.ValidationError)
	if len(ve.Fields) != 3 {
		t.Fatalf("expected 3 field errors, got %v", ve.Fields)
	}
}

func TestCreateRejectsEndBeforeStart(t *testing.T) {
	f := newFixture(t)
	in := f.input()
	end := "2025-07-01"
	in.EndDate = &end

	_, err := f.svc.Create(context.Background(), in)
	if !apperr.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestExecutionLifecycleCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Create(ctx, f.input())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	l, err := f.svc.StartExecution(ctx, a.ID, StartInput{Date: "2025-08-10", StartTime: "06:30"})
	if err != nil {
		t.Fatalf("StartExecution: %v", err)
	}
	if l.Status != LogStarted {
		t.Fatalf("expected started log, got %s", l.Status)
	}

	a, err = f.svc.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if a.Status != StatusInProgress {
		t.Fatalf("expected in_progress, got %s", a.Status)
	}
	if a.StartedAt == nil {
		t.Fatal("StartedAt not set")
	}

	end := "07:45"
	l, err = f.svc.CompleteExecution(ctx, l.ID, CompleteInput{Status: LogCompleted, EndTime: &end})
	if err != nil {
		t.Fatalf("CompleteExecution: %v", err)
	}
	if l.Status != LogCompleted || l.EndTime == nil || *l.EndTime != "07:45" {
		t.Fatalf("unexpected log after completion: %+v", l)
	}

	a, err = f.svc.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if a.Status != StatusCompleted || a.CompletedAt == nil {
		t.Fatalf("expected completed assignment, got %s", a.Status)
	}
}

func TestStartExecutionOnCancelledAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Create(ctx, f.input())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	a, err = f.svc.Cancel(ctx, a.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if a.Status != StatusCancelled || a.CancelledAt == nil {
		t.Fatalf("expected cancelled, got %s", a.Status)
	}

	_, err = f.svc.StartExecution(ctx, a.ID, StartInput{Date: "2025-08-10", StartTime: "06:30"})
	if !apperr.IsInvalidTransition(err) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
}

func TestCompleteExecutionTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, _ := f.svc.Create(ctx, f.input())
	l, err := f.svc.StartExecution(ctx, a.ID, StartInput{Date: "2025-08-10", StartTime: "06:30"})
	if err != nil {
		t.Fatalf("StartExecution: %v", err)
	}

	if _, err := f.svc.CompleteExecution(ctx, l.ID, CompleteInput{Status: LogCompleted}); err != nil {
		t.Fatalf("CompleteExecution: %v", err)
	}
	_, err = f.svc.CompleteExecution(ctx, l.ID, CompleteInput{Status: LogCompleted})
	if !apperr.IsInvalidTransition(err) {
		t.Fatalf("expected InvalidTransitionError on second completion, got %v", err)
	}
}

func TestDelayedKeepsAssignmentInProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, _ := f.svc.Create(ctx, f.input())
	l, err := f.svc.StartExecution(ctx, a.ID, StartInput{Date: "2025-08-10", StartTime: "06:30"})
	if err != nil {
		t.Fatalf("StartExecution: %v", err)
	}

	// delayReason 缺失时拒绝
	_, err = f.svc.CompleteExecution(ctx, l.ID, CompleteInput{Status: LogDelayed})
	if !apperr.IsValidation(err) {
		t.Fatalf("expected ValidationError without delayReason, got %v", err)
	}

	reason := "road closed near harbor"
	l, err = f.svc.CompleteExecution(ctx, l.ID, CompleteInput{Status: LogDelayed, DelayReason: &reason})
	if err != nil {
		t.Fatalf("CompleteExecution: %v", err)
	}
	if l.Status != LogDelayed || l.DelayReason == nil {
		t.Fatalf("unexpected log: %+v", l)
	}

	a, _ = f.svc.Get(ctx, a.ID)
	if a.Status != StatusInProgress {
		t.Fatalf("delayed execution must not finalize the assignment, got %s", a.Status)
	}

	// 延误后第二天可以再开一条执行记录
	if _, err := f.svc.StartExecution(ctx, a.ID, StartInput{Date: "2025-08-11", StartTime: "06:30"}); err != nil {
		t.Fatalf("StartExecution after delay: %v", err)
	}
	logs, err := f.svc.ListExecutions(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListExecutions: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}
}

func TestCancelledExecutionCancelsAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, _ := f.svc.Create(ctx, f.input())
	l, err := f.svc.StartExecution(ctx, a.ID, StartInput{Date: "2025-08-10", StartTime: "06:30"})
	if err != nil {
		t.Fatalf("StartExecution: %v", err)
	}
	if _, err := f.svc.CompleteExecution(ctx, l.ID, CompleteInput{Status: LogCancelled}); err != nil {
		t.Fatalf("CompleteExecution: %v", err)
	}

	a, _ = f.svc.Get(ctx, a.ID)
	if a.Status != StatusCancelled || a.CancelledAt == nil {
		t.Fatalf("expected cancelled assignment, got %s", a.Status)
	}
}

func TestDeleteCascadesExecutionLogs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, _ := f.svc.Create(ctx, f.input())
	if _, err := f.svc.StartExecution(ctx, a.ID, StartInput{Date: "2025-08-10", StartTime: "06:30"}); err != nil {
		t.Fatalf("StartExecution: %v", err)
	}

	if err := f.svc.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.svc.Get(ctx, a.ID); !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	logs, err := f.store.ListLogs(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}
	if len(logs) != 0 {
		t.Fatalf("expected logs deleted with assignment, got %d", len(logs))
	}
}

func TestAssignmentBlocksRouteDeletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, f.input()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	// 组合线路引用了该常规线路，先验证目录侧同样拒绝
	if err := f.routeSvc.DeleteRoute(ctx, f.routeID); !apperr.IsConflict(err) {
		t.Fatalf("expected Conflict deleting referenced route, got %v", err)
	}
}

func TestListFiltersByDriverAndStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a1, err := f.svc.Create(ctx, f.input())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.svc.Create(ctx, f.input()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.svc.StartExecution(ctx, a1.ID, StartInput{Date: "2025-08-10", StartTime: "06:30"}); err != nil {
		t.Fatalf("StartExecution: %v", err)
	}

	got, total, err := f.svc.List(ctx, ListFilter{DriverID: "D1", Status: StatusInProgress})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(got) != 1 || got[0].ID != a1.ID {
		t.Fatalf("unexpected filter result: total=%d got=%+v", total, got)
	}

	_, _, err = f.svc.List(ctx, ListFilter{Status: "bogus"})
	if !apperr.IsValidation(err) {
		t.Fatalf("expected ValidationError for bogus status, got %v", err)
	}
}
