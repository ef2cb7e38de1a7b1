package route

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/RouteFleet/RouteFleet/internal/common/apperr"
	"github.com/google/uuid"
)

// AssignmentRefChecker 查询线路是否仍被调度引用。
// 由 assignment 存储实现，避免目录包反向依赖调度包。
type AssignmentRefChecker interface {
	RouteReferenced(ctx context.Context, kind Kind, id string) (bool, error)
}

// Service 线路目录用例：统一视图查询 + 两种线路的校验写入。
// 删除被调度引用的线路会被拒绝（Conflict），不做级联。
type Service struct {
	store Store
	refs  AssignmentRefChecker
}

func NewService(store Store, refs AssignmentRefChecker) *Service {
	return &Service{store: store, refs: refs}
}

// ScheduleInput 班表条目入参。
type ScheduleInput struct {
	Day       string `json:"day"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// RouteInput 常规线路创建/更新入参。
type RouteInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Schedules   []ScheduleInput `json:"schedules"`
}

// CombinedItemInput 组合线路组成段入参。
type CombinedItemInput struct {
	RouteID  string `json:"routeId"`
	Position int    `json:"position"`
}

// CombinedInput 组合线路创建/更新入参。
type CombinedInput struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	CreatedBy   string              `json:"createdBy"`
	Status      CombinedStatus      `json:"status"`
	Items       []CombinedItemInput `json:"items"`
}

// ListCatalog 返回常规 ∪ 组合线路的统一目录视图（带 Kind 判别标签）。
func (s *Service) ListCatalog(ctx context.Context) ([]CatalogEntry, error) {
	routes, err := s.store.ListRoutes(ctx)
	if err != nil {
		return nil, err
	}
	combined, err := s.store.ListCombined(ctx)
	if err != nil {
		return nil, err
	}

	nameByID := make(map[string]string, len(routes))
	for _, r := range routes {
		nameByID[r.ID] = r.Name
	}

	out := make([]CatalogEntry, 0, len(routes)+len(combined))
	for i := range routes {
		out = append(out, regularEntry(&routes[i]))
	}
	for i := range combined {
		out = append(out, combinedEntry(&combined[i], nameByID))
	}
	return out, nil
}

// GetEntry 按种类取单条目录视图。
func (s *Service) GetEntry(ctx context.Context, kind Kind, id string) (*CatalogEntry, error) {
	switch kind {
	case KindRegular:
		r, err := s.store.GetRoute(ctx, id)
		if err != nil {
			return nil, err
		}
		e := regularEntry(r)
		return &e, nil
	case KindCombined:
		c, err := s.store.GetCombined(ctx, id)
		if err != nil {
			return nil, err
		}
		e := combinedEntry(c, nil)
		return &e, nil
	default:
		ve := &apperr.ValidationError{}
		ve.Add("kind", fmt.Sprintf("unknown route kind %q", kind))
		return nil, ve
	}
}

func (s *Service) CreateRoute(ctx context.Context, in RouteInput) (*Route, error) {
	if err := validateRouteInput(in); err != nil {
		return nil, err
	}

	r := &Route{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
	}
	for _, sc := range in.Schedules {
		r.Schedules = append(r.Schedules, RouteSchedule{
			ID:        uuid.NewString(),
			RouteID:   r.ID,
			Day:       sc.Day,
			StartTime: sc.StartTime,
			EndTime:   sc.EndTime,
		})
	}

	if err := s.store.CreateRoute(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) UpdateRoute(ctx context.Context, id string, in RouteInput) (*Route, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperr.NewNotFound("route", id)
	}
	if err := validateRouteInput(in); err != nil {
		return nil, err
	}

	r, err := s.store.GetRoute(ctx, id)
	if err != nil {
		return nil, err
	}

	r.Name = strings.TrimSpace(in.Name)
	r.Description = strings.TrimSpace(in.Description)
	r.Schedules = nil
	for _, sc := range in.Schedules {
		r.Schedules = append(r.Schedules, RouteSchedule{
			ID:        uuid.NewString(),
			RouteID:   r.ID,
			Day:       sc.Day,
			StartTime: sc.StartTime,
			EndTime:   sc.EndTime,
		})
	}

	if err := s.store.UpdateRoute(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// DeleteRoute 删除常规线路。
// 仍被调度或组合线路引用时拒绝删除，保证引用完整性。
func (s *Service) DeleteRoute(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if _, err := s.store.GetRoute(ctx, id); err != nil {
		return err
	}

	if s.refs != nil {
		referenced, err := s.refs.RouteReferenced(ctx, KindRegular, id)
		if err != nil {
			return err
		}
		if referenced {
			return &apperr.ConflictError{Resource: "route", ID: id, Reason: "still referenced by a route assignment"}
		}
	}
	inUse, err := s.store.RouteInCombinedUse(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return &apperr.ConflictError{Resource: "route", ID: id, Reason: "still part of a combined route"}
	}

	return s.store.DeleteRoute(ctx, id)
}

func (s *Service) CreateCombined(ctx context.Context, in CombinedInput) (*CombinedRoute, error) {
	if err := s.validateCombinedInput(ctx, in); err != nil {
		return nil, err
	}

	c := &CombinedRoute{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		CreatedBy:   strings.TrimSpace(in.CreatedBy),
		Status:      defaultCombinedStatus(in.Status),
	}
	c.Items = buildItems(c.ID, in.Items)

	if err := s.store.CreateCombined(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) UpdateCombined(ctx context.Context, id string, in CombinedInput) (*CombinedRoute, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperr.NewNotFound("combined route", id)
	}
	if err := s.validateCombinedInput(ctx, in); err != nil {
		return nil, err
	}

	c, err := s.store.GetCombined(ctx, id)
	if err != nil {
		return nil, err
	}

	c.Name = strings.TrimSpace(in.Name)
	c.Description = strings.TrimSpace(in.Description)
	c.Status = defaultCombinedStatus(in.Status)
	c.Items = buildItems(c.ID, in.Items)

	if err := s.store.UpdateCombined(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCombined 删除组合线路；仍被调度引用时拒绝。
func (s *Service) DeleteCombined(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if _, err := s.store.GetCombined(ctx, id); err != nil {
		return err
	}

	if s.refs != nil {
		referenced, err := s.refs.RouteReferenced(ctx, KindCombined, id)
		if err != nil {
			return err
		}
		if referenced {
			return &apperr.ConflictError{Resource: "combined route", ID: id, Reason: "still referenced by a route assignment"}
		}
	}

	return s.store.DeleteCombined(ctx, id)
}

// Exists 线路引用是否可解析（供调度创建/更新校验）。
func (s *Service) Exists(ctx context.Context, kind Kind, id string) (bool, error) {
	_, err := s.GetEntry(ctx, kind, id)
	if err != nil {
		if apperr.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func regularEntry(r *Route) CatalogEntry {
	return CatalogEntry{
		ID:          r.ID,
		Kind:        KindRegular,
		Name:        r.Name,
		Description: r.Description,
		Schedules:   r.Schedules,
	}
}

func combinedEntry(c *CombinedRoute, nameByID map[string]string) CatalogEntry {
	items := append([]CombinedRouteItem(nil), c.Items...)
	sort.Slice(items, func(i, j int) bool { return items[i].Position < items[j].Position })
	for i := range items {
		if nameByID != nil {
			items[i].RouteName = nameByID[items[i].RouteID]
		}
	}
	return CatalogEntry{
		ID:          c.ID,
		Kind:        KindCombined,
		Name:        c.Name,
		Description: c.Description,
		Status:      c.Status,
		Items:       items,
	}
}

// validateRouteInput 逐项累积字段错误，一次性全部返回。
func validateRouteInput(in RouteInput) error {
	ve := &apperr.ValidationError{}
	if strings.TrimSpace(in.Name) == "" {
		ve.Add("name", "required")
	}
	for i, sc := range in.Schedules {
		prefix := fmt.Sprintf("schedules[%d]", i)
		if !ValidDay(sc.Day) {
			ve.Add(prefix+".day", fmt.Sprintf("invalid day %q", sc.Day))
		}
		start, startErr := parseClock(sc.StartTime)
		if startErr != nil {
			ve.Add(prefix+".startTime", "must be HH:MM")
		}
		end, endErr := parseClock(sc.EndTime)
		if endErr != nil {
			ve.Add(prefix+".endTime", "must be HH:MM")
		}
		if startErr == nil && endErr == nil && !end.After(start) {
			ve.Add(prefix+".endTime", "must be after startTime")
		}
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func (s *Service) validateCombinedInput(ctx context.Context, in CombinedInput) error {
	ve := &apperr.ValidationError{}
	if strings.TrimSpace(in.Name) == "" {
		ve.Add("name", "required")
	}
	if in.Status != "" && in.Status != CombinedActive && in.Status != CombinedInactive {
		ve.Add("status", fmt.Sprintf("invalid status %q", in.Status))
	}
	if len(in.Items) == 0 {
		ve.Add("items", "at least one constituent route required")
	}
	for i, item := range in.Items {
		prefix := fmt.Sprintf("items[%d]", i)
		id := strings.TrimSpace(item.RouteID)
		if id == "" {
			ve.Add(prefix+".routeId", "required")
			continue
		}
		if _, err := s.store.GetRoute(ctx, id); err != nil {
			if apperr.IsNotFound(err) {
				ve.Add(prefix+".routeId", fmt.Sprintf("route %s does not exist", id))
				continue
			}
			return err
		}
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// buildItems 规范化组成段顺序为 1..n。
func buildItems(combinedID string, items []CombinedItemInput) []CombinedRouteItem {
	sorted := append([]CombinedItemInput(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	out := make([]CombinedRouteItem, 0, len(sorted))
	for i, item := range sorted {
		out = append(out, CombinedRouteItem{
			ID:              uuid.NewString(),
			CombinedRouteID: combinedID,
			RouteID:         strings.TrimSpace(item.RouteID),
			Position:        i + 1,
		})
	}
	return out
}

func defaultCombinedStatus(st CombinedStatus) CombinedStatus {
	if st == "" {
		return CombinedActive
	}
	return st
}

// parseClock 解析 HH:MM。
func parseClock(v string) (time.Time, error) {
	return time.Parse("15:04", strings.TrimSpace(v))
}
