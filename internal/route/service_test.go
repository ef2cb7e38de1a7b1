package route

import (
	"context"
	"testing"

	"github.com/RouteFleet/RouteFleet/internal/common/apperr"
)

// stubRefChecker 固定返回值的调度引用检查器。
type stubRefChecker struct {
	referenced bool
}

func (s *stubRefChecker) RouteReferenced(ctx context.Context, kind Kind, id string) (bool, error) {
	return s.referenced, nil
}

func newTestService(referenced bool) (*Service, *MemoryStore) {
	store := NewMemoryStore()
	return NewService(store, &stubRefChecker{referenced: referenced}), store
}

func TestCreateRouteCollectsAllFieldErrors(t *testing.T) {
	svc, _ := newTestService(false)

	_, err := svc.CreateRoute(context.Background(), RouteInput{
		Name: "",
		Schedules: []ScheduleInput{
			{Day: "Funday", StartTime: "08:00", EndTime: "07:00"},
			{Day: "Monday", StartTime: "8am", EndTime: "10:00"},
		},
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	var ve *apperr.ValidationError
	if !apperr.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	ve = err.(*apperr.ValidationError)
	// name 缺失 + day 非法 + end<=start + startTime 格式
	if len(ve.Fields) != 4 {
		t.Fatalf("expected 4 field errors, got %d: %v", len(ve.Fields), ve.Fields)
	}
}

func TestCreateRouteAndGetEntry(t *testing.T) {
	svc, _ := newTestService(false)
	ctx := context.Background()

	r, err := svc.CreateRoute(ctx, RouteInput{
		Name:        "Depot - Harbor",
		Description: "morning shuttle",
		Schedules: []ScheduleInput{
			{Day: "Monday", StartTime: "06:30", EndTime: "09:00"},
		},
	})
	if err != nil {
		t.Fatalf("CreateRoute: %v", err)
	}

	e, err := svc.GetEntry(ctx, KindRegular, r.ID)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if e.Kind != KindRegular {
		t.Fatalf("expected regular kind, got %s", e.Kind)
	}
	if len(e.Schedules) != 1 || e.Schedules[0].Day != "Monday" {
		t.Fatalf("unexpected schedules: %+v", e.Schedules)
	}
}

func TestCatalogTagsBothKinds(t *testing.T) {
	svc, _ := newTestService(false)
	ctx := context.Background()

	r1, err := svc.CreateRoute(ctx, RouteInput{Name: "A Line"})
	if err != nil {
		t.Fatalf("CreateRoute: %v", err)
	}
	r2, err := svc.CreateRoute(ctx, RouteInput{Name: "B Line"})
	if err != nil {
		t.Fatalf("CreateRoute: %v", err)
	}

	c, err := svc.CreateCombined(ctx, CombinedInput{
		Name: "A+B Loop",
		Items: []CombinedItemInput{
			{RouteID: r2.ID, Position: 7},
			{RouteID: r1.ID, Position: 2},
		},
	})
	if err != nil {
		t.Fatalf("CreateCombined: %v", err)
	}
	if c.Status != CombinedActive {
		t.Fatalf("expected default active status, got %s", c.Status)
	}

	entries, err := svc.ListCatalog(ctx)
	if err != nil {
		t.Fatalf("ListCatalog: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 catalog entries, got %d", len(entries))
	}

	kinds := map[Kind]int{}
	for _, e := range entries {
		kinds[e.Kind]++
	}
	if kinds[KindRegular] != 2 || kinds[KindCombined] != 1 {
		t.Fatalf("unexpected kind split: %v", kinds)
	}

	for _, e := range entries {
		if e.Kind != KindCombined {
			continue
		}
		// 组成段按 Position 归一化为 1..n 并带上线路名称
		if len(e.Items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(e.Items))
		}
		if e.Items[0].RouteID != r1.ID || e.Items[0].Position != 1 {
			t.Fatalf("unexpected first item: %+v", e.Items[0])
		}
		if e.Items[1].RouteID != r2.ID || e.Items[1].Position != 2 {
			t.Fatalf("unexpected second item: %+v", e.Items[1])
		}
		if e.Items[0].RouteName != "A Line" || e.Items[1].RouteName != "B Line" {
			t.Fatalf("route names not resolved: %+v", e.Items)
		}
	}
}

func TestCombinedRequiresExistingRoutes(t *testing.T) {
	svc, _ := newTestService(false)

	_, err := svc.CreateCombined(context.Background(), CombinedInput{
		Name:  "Ghost Loop",
		Items: []CombinedItemInput{{RouteID: "missing-route", Position: 1}},
	})
	if !apperr.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestDeleteRouteBlockedByCombinedUse(t *testing.T) {
	svc, _ := newTestService(false)
	ctx := context.Background()

	r, err := svc.CreateRoute(ctx, RouteInput{Name: "Leg 1"})
	if err != nil {
		t.Fatalf("CreateRoute: %v", err)
	}
	if _, err := svc.CreateCombined(ctx, CombinedInput{
		Name:  "Loop",
		Items: []CombinedItemInput{{RouteID: r.ID, Position: 1}},
	}); err != nil {
		t.Fatalf("CreateCombined: %v", err)
	}

	if err := svc.DeleteRoute(ctx, r.ID); !apperr.IsConflict(err) {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestDeleteRouteBlockedByAssignmentReference(t *testing.T) {
	svc, _ := newTestService(true)
	ctx := context.Background()

	r, err := svc.CreateRoute(ctx, RouteInput{Name: "Leg 1"})
	if err != nil {
		t.Fatalf("CreateRoute: %v", err)
	}
	if err := svc.DeleteRoute(ctx, r.ID); !apperr.IsConflict(err) {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestDeleteUnreferencedRoute(t *testing.T) {
	svc, _ := newTestService(false)
	ctx := context.Background()

	r, err := svc.CreateRoute(ctx, RouteInput{Name: "Short Hop"})
	if err != nil {
		t.Fatalf("CreateRoute: %v", err)
	}
	if err := svc.DeleteRoute(ctx, r.ID); err != nil {
		t.Fatalf("DeleteRoute: %v", err)
	}
	if _, err := svc.GetEntry(ctx, KindRegular, r.ID); !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFound after delete, got %v", err)
	}
}

func TestUpdateRouteReplacesSchedules(t *testing.T) {
	svc, _ := newTestService(false)
	ctx := context.Background()

	r, err := svc.CreateRoute(ctx, RouteInput{
		Name:      "Depot - Mall",
		Schedules: []ScheduleInput{{Day: "Monday", StartTime: "06:00", EndTime: "08:00"}},
	})
	if err != nil {
		t.Fatalf("CreateRoute: %v", err)
	}

	updated, err := svc.UpdateRoute(ctx, r.ID, RouteInput{
		Name: "Depot - Mall Express",
		Schedules: []ScheduleInput{
			{Day: "Tuesday", StartTime: "07:00", EndTime: "09:00"},
			{Day: "Thursday", StartTime: "07:00", EndTime: "09:00"},
		},
	})
	if err != nil {
		t.Fatalf("UpdateRoute: %v", err)
	}
	if updated.Name != "Depot - Mall Express" {
		t.Fatalf("name not updated: %s", updated.Name)
	}
	if len(updated.Schedules) != 2 || updated.Schedules[0].Day != "Tuesday" {
		t.Fatalf("schedules not replaced: %+v", updated.Schedules)
	}
}
