package route

import (
	"context"
	"errors"
	"fmt"

	"github.com/RouteFleet/RouteFleet/internal/common/apperr"
	"gorm.io/gorm"
)

// Store 线路目录存储抽象。业务逻辑只依赖接口，
// 生产实现为 GORM，测试使用内存实现。
type Store interface {
	CreateRoute(ctx context.Context, r *Route) error
	UpdateRoute(ctx context.Context, r *Route) error
	DeleteRoute(ctx context.Context, id string) error
	GetRoute(ctx context.Context, id string) (*Route, error)
	ListRoutes(ctx context.Context) ([]Route, error)

	CreateCombined(ctx context.Context, c *CombinedRoute) error
	UpdateCombined(ctx context.Context, c *CombinedRoute) error
	DeleteCombined(ctx context.Context, id string) error
	GetCombined(ctx context.Context, id string) (*CombinedRoute, error)
	ListCombined(ctx context.Context) ([]CombinedRoute, error)

	// RouteInCombinedUse 常规线路是否仍被组合线路引用。
	RouteInCombinedUse(ctx context.Context, routeID string) (bool, error)
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

func (r *Repo) CreateRoute(ctx context.Context, rt *Route) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(rt).Error
}

// UpdateRoute 整体替换班表（与上游“先删后插”的更新语义一致）。
func (r *Repo) UpdateRoute(ctx context.Context, rt *Route) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("route_id = ?", rt.ID).Delete(&RouteSchedule{}).Error; err != nil {
			return err
		}
		return tx.Save(rt).Error
	})
}

func (r *Repo) DeleteRoute(ctx context.Context, id string) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("route_id = ?", id).Delete(&RouteSchedule{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&Route{}).Error
	})
}

func (r *Repo) GetRoute(ctx context.Context, id string) (*Route, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var rt Route
	if err := db.Preload("Schedules").Where("id = ?", id).First(&rt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("route", id)
		}
		return nil, err
	}
	return &rt, nil
}

func (r *Repo) ListRoutes(ctx context.Context) ([]Route, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var routes []Route
	if err := db.Preload("Schedules").Order("name asc").Find(&routes).Error; err != nil {
		return nil, err
	}
	return routes, nil
}

func (r *Repo) CreateCombined(ctx context.Context, c *CombinedRoute) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(c).Error
}

// UpdateCombined 整体替换组成段。
func (r *Repo) UpdateCombined(ctx context.Context, c *CombinedRoute) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("combined_route_id = ?", c.ID).Delete(&CombinedRouteItem{}).Error; err != nil {
			return err
		}
		return tx.Save(c).Error
	})
}

func (r *Repo) DeleteCombined(ctx context.Context, id string) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("combined_route_id = ?", id).Delete(&CombinedRouteItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&CombinedRoute{}).Error
	})
}

func (r *Repo) GetCombined(ctx context.Context, id string) (*CombinedRoute, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var c CombinedRoute
	if err := db.Preload("Items").Where("id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("combined route", id)
		}
		return nil, err
	}
	return &c, nil
}

func (r *Repo) ListCombined(ctx context.Context) ([]CombinedRoute, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var combined []CombinedRoute
	if err := db.Preload("Items").Order("name asc").Find(&combined).Error; err != nil {
		return nil, err
	}
	return combined, nil
}

func (r *Repo) RouteInCombinedUse(ctx context.Context, routeID string) (bool, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return false, fmt.Errorf("repo db is nil")
	}
	var count int64
	if err := db.Model(&CombinedRouteItem{}).Where("route_id = ?", routeID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
