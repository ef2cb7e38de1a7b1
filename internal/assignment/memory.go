package assignment

import (
	"context"
	"sort"
	"sync"

	"github.com/RouteFleet/RouteFleet/internal/common/apperr"
	"github.com/RouteFleet/RouteFleet/internal/route"
)

// MemoryStore Store 的内存实现，用于测试和本地联调。
type MemoryStore struct {
	mu          sync.RWMutex
	assignments map[string]*Assignment
	logs        map[string]*ExecutionLog
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		assignments: make(map[string]*Assignment),
		logs:        make(map[string]*ExecutionLog),
	}
}

func cloneAssignment(a *Assignment) *Assignment {
	cp := *a
	return &cp
}

func cloneLog(l *ExecutionLog) *ExecutionLog {
	cp := *l
	return &cp
}

func (s *MemoryStore) CreateAssignment(ctx context.Context, a *Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[a.ID] = cloneAssignment(a)
	return nil
}

func (s *MemoryStore) UpdateAssignment(ctx context.Context, a *Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assignments[a.ID]; !ok {
		return apperr.NewNotFound("assignment", a.ID)
	}
	s.assignments[a.ID] = cloneAssignment(a)
	return nil
}

func (s *MemoryStore) DeleteAssignmentCascade(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.assignments, id)
	for logID, l := range s.logs {
		if l.AssignmentID == id {
			delete(s.logs, logID)
		}
	}
	return nil
}

func (s *MemoryStore) GetAssignment(ctx context.Context, id string) (*Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[id]
	if !ok {
		return nil, apperr.NewNotFound("assignment", id)
	}
	return cloneAssignment(a), nil
}

func (s *MemoryStore) ListAssignments(ctx context.Context, f ListFilter) ([]Assignment, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]Assignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		if f.DriverID != "" && a.DriverID != f.DriverID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		matched = append(matched, *cloneAssignment(a))
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].StartDate != matched[j].StartDate {
			return matched[i].StartDate > matched[j].StartDate
		}
		return matched[i].ID < matched[j].ID
	})

	total := int64(len(matched))
	if f.Limit > 0 {
		if f.Offset >= len(matched) {
			return []Assignment{}, total, nil
		}
		end := min(f.Offset+f.Limit, len(matched))
		matched = matched[f.Offset:end]
	}
	return matched, total, nil
}

func (s *MemoryStore) GetLog(ctx context.Context, id string) (*ExecutionLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.logs[id]
	if !ok {
		return nil, apperr.NewNotFound("execution log", id)
	}
	return cloneLog(l), nil
}

func (s *MemoryStore) ListLogs(ctx context.Context, assignmentID string) ([]ExecutionLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ExecutionLog, 0)
	for _, l := range s.logs {
		if l.AssignmentID == assignmentID {
			out = append(out, *cloneLog(l))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (s *MemoryStore) CreateLogAndUpdateAssignment(ctx context.Context, l *ExecutionLog, a *Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assignments[a.ID]; !ok {
		return apperr.NewNotFound("assignment", a.ID)
	}
	s.logs[l.ID] = cloneLog(l)
	s.assignments[a.ID] = cloneAssignment(a)
	return nil
}

func (s *MemoryStore) UpdateLogAndAssignment(ctx context.Context, l *ExecutionLog, a *Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.logs[l.ID]; !ok {
		return apperr.NewNotFound("execution log", l.ID)
	}
	if _, ok := s.assignments[a.ID]; !ok {
		return apperr.NewNotFound("assignment", a.ID)
	}
	s.logs[l.ID] = cloneLog(l)
	s.assignments[a.ID] = cloneAssignment(a)
	return nil
}

func (s *MemoryStore) RouteReferenced(ctx context.Context, kind route.Kind, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.assignments {
		k, refID := a.RouteRef()
		if k == kind && refID == id {
			return true, nil
		}
	}
	return false, nil
}
