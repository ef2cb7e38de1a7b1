package route

import (
	"context"
	"sort"
	"sync"

	"github.com/RouteFleet/RouteFleet/internal/common/apperr"
)

// MemoryStore Store 的内存实现，用于测试和本地联调。
// 刻意不做成包级单例：调用方显式构造并注入。
type MemoryStore struct {
	mu       sync.RWMutex
	routes   map[string]*Route
	combined map[string]*CombinedRoute
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		routes:   make(map[string]*Route),
		combined: make(map[string]*CombinedRoute),
	}
}

func cloneRoute(r *Route) *Route {
	cp := *r
	cp.Schedules = append([]RouteSchedule(nil), r.Schedules...)
	return &cp
}

func cloneCombined(c *CombinedRoute) *CombinedRoute {
	cp := *c
	cp.Items = append([]CombinedRouteItem(nil), c.Items...)
	return &cp
}

func (s *MemoryStore) CreateRoute(ctx context.Context, r *Route) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[r.ID] = cloneRoute(r)
	return nil
}

func (s *MemoryStore) UpdateRoute(ctx context.Context, r *Route) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.routes[r.ID]; !ok {
		return apperr.NewNotFound("route", r.ID)
	}
	s.routes[r.ID] = cloneRoute(r)
	return nil
}

func (s *MemoryStore) DeleteRoute(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.routes, id)
	return nil
}

func (s *MemoryStore) GetRoute(ctx context.Context, id string) (*Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.routes[id]
	if !ok {
		return nil, apperr.NewNotFound("route", id)
	}
	return cloneRoute(r), nil
}

func (s *MemoryStore) ListRoutes(ctx context.Context) ([]Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Route, 0, len(s.routes))
	for _, r := range s.routes {
		out = append(out, *cloneRoute(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) CreateCombined(ctx context.Context, c *CombinedRoute) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.combined[c.ID] = cloneCombined(c)
	return nil
}

func (s *MemoryStore) UpdateCombined(ctx context.Context, c *CombinedRoute) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.combined[c.ID]; !ok {
		return apperr.NewNotFound("combined route", c.ID)
	}
	s.combined[c.ID] = cloneCombined(c)
	return nil
}

func (s *MemoryStore) DeleteCombined(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.combined, id)
	return nil
}

func (s *MemoryStore) GetCombined(ctx context.Context, id string) (*CombinedRoute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.combined[id]
	if !ok {
		return nil, apperr.NewNotFound("combined route", id)
	}
	return cloneCombined(c), nil
}

func (s *MemoryStore) ListCombined(ctx context.Context) ([]CombinedRoute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CombinedRoute, 0, len(s.combined))
	for _, c := range s.combined {
		out = append(out, *cloneCombined(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) RouteInCombinedUse(ctx context.Context, routeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.combined {
		for _, item := range c.Items {
			if item.RouteID == routeID {
				return true, nil
			}
		}
	}
	return false, nil
}
