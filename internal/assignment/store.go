package assignment

import (
	"context"
	"errors"
	"fmt"

	"github.com/RouteFleet/RouteFleet/internal/common/apperr"
	"github.com/RouteFleet/RouteFleet/internal/route"
	"gorm.io/gorm"
)

// ListFilter 调度列表查询条件。
type ListFilter struct {
	DriverID string
	Status   Status
	Offset   int
	Limit    int
}

// Store 调度与执行记录的存储抽象。
// 开始/收尾执行需要同时写记录和调度状态，由实现保证原子性。
type Store interface {
	CreateAssignment(ctx context.Context, a *Assignment) error
	UpdateAssignment(ctx context.Context, a *Assignment) error
	// DeleteAssignmentCascade 删除调度并连带其全部执行记录。
	DeleteAssignmentCascade(ctx context.Context, id string) error
	GetAssignment(ctx context.Context, id string) (*Assignment, error)
	ListAssignments(ctx context.Context, f ListFilter) ([]Assignment, int64, error)

	GetLog(ctx context.Context, id string) (*ExecutionLog, error)
	ListLogs(ctx context.Context, assignmentID string) ([]ExecutionLog, error)
	// CreateLogAndUpdateAssignment 在同一事务中插入执行记录并保存调度。
	CreateLogAndUpdateAssignment(ctx context.Context, l *ExecutionLog, a *Assignment) error
	// UpdateLogAndAssignment 在同一事务中改写执行记录并保存调度。
	UpdateLogAndAssignment(ctx context.Context, l *ExecutionLog, a *Assignment) error

	// RouteReferenced 某线路是否被任一调度引用（线路目录删除前检查）。
	RouteReferenced(ctx context.Context, kind route.Kind, id string) (bool, error)
}

// Repo Store 的 GORM 实现。
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

func (r *Repo) CreateAssignment(ctx context.Context, a *Assignment) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(a).Error
}

func (r *Repo) UpdateAssignment(ctx context.Context, a *Assignment) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(a).Error
}

func (r *Repo) DeleteAssignmentCascade(ctx context.Context, id string) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assignment_id = ?", id).Delete(&ExecutionLog{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&Assignment{}).Error
	})
}

func (r *Repo) GetAssignment(ctx context.Context, id string) (*Assignment, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var a Assignment
	if err := db.Where("id = ?", id).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("assignment", id)
		}
		return nil, err
	}
	return &a, nil
}

func (r *Repo) ListAssignments(ctx context.Context, f ListFilter) ([]Assignment, int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}

	q := db.Model(&Assignment{})
	if f.DriverID != "" {
		q = q.Where("driver_id = ?", f.DriverID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []Assignment
	q = q.Order("start_date desc, created_at desc")
	if f.Limit > 0 {
		q = q.Offset(f.Offset).Limit(f.Limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *Repo) GetLog(ctx context.Context, id string) (*ExecutionLog, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var l ExecutionLog
	if err := db.Where("id = ?", id).First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("execution log", id)
		}
		return nil, err
	}
	return &l, nil
}

func (r *Repo) ListLogs(ctx context.Context, assignmentID string) ([]ExecutionLog, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var logs []ExecutionLog
	if err := db.Where("assignment_id = ?", assignmentID).
		Order("date asc, start_time asc").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *Repo) CreateLogAndUpdateAssignment(ctx context.Context, l *ExecutionLog, a *Assignment) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(l).Error; err != nil {
			return err
		}
		return tx.Save(a).Error
	})
}

func (r *Repo) UpdateLogAndAssignment(ctx context.Context, l *ExecutionLog, a *Assignment) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(l).Error; err != nil {
			return err
		}
		return tx.Save(a).Error
	})
}

func (r *Repo) RouteReferenced(ctx context.Context, kind route.Kind, id string) (bool, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return false, fmt.Errorf("repo db is nil")
	}
	q := db.Model(&Assignment{})
	if kind == route.KindCombined {
		q = q.Where("combined_route_id = ?", id)
	} else {
		q = q.Where("route_id = ?", id)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
