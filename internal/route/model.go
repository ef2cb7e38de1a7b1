package route

import (
	"time"
)

// Kind 线路种类判别标签：常规线路 / 组合线路。
// 一次调度只会引用其中一种。
type Kind string

const (
	KindRegular  Kind = "regular"
	KindCombined Kind = "combined"
)

// Valid 是否为已知线路种类。
func (k Kind) Valid() bool {
	return k == KindRegular || k == KindCombined
}

// CombinedStatus 组合线路状态。
type CombinedStatus string

const (
	CombinedActive   CombinedStatus = "active"
	CombinedInactive CombinedStatus = "inactive"
)

// Route 是 routes 表的 GORM 模型（常规点对点线路）。
type Route struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	Name        string          `gorm:"size:128;not null" json:"name"`
	Description string          `gorm:"size:512" json:"description"`
	Schedules   []RouteSchedule `gorm:"foreignKey:RouteID" json:"schedules"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"-"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"-"`
}

// RouteSchedule 每周班表条目（day + HH:MM 起止时间）。
type RouteSchedule struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	RouteID   string    `gorm:"index;size:36;not null" json:"routeId"`
	Day       string    `gorm:"size:16;not null" json:"day"` // Sunday..Saturday
	StartTime string    `gorm:"size:5;not null" json:"startTime"`
	EndTime   string    `gorm:"size:5;not null" json:"endTime"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

// CombinedRoute 是 combined_routes 表的 GORM 模型（多段组合线路）。
// 调度时与 Route 可互换使用。
type CombinedRoute struct {
	ID          string              `gorm:"primaryKey;size:36" json:"id"`
	Name        string              `gorm:"size:128;not null" json:"name"`
	Description string              `gorm:"size:512" json:"description"`
	CreatedBy   string              `gorm:"size:36" json:"createdBy"`
	Status      CombinedStatus      `gorm:"type:varchar(16);not null;default:'active'" json:"status"`
	Items       []CombinedRouteItem `gorm:"foreignKey:CombinedRouteID" json:"items"`
	CreatedAt   time.Time           `gorm:"autoCreateTime" json:"-"`
	UpdatedAt   time.Time           `gorm:"autoUpdateTime" json:"-"`
}

// CombinedRouteItem 组合线路的组成段，按 Position 排序。
type CombinedRouteItem struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	CombinedRouteID string    `gorm:"index;size:36;not null" json:"combinedRouteId"`
	RouteID         string    `gorm:"index;size:36;not null" json:"routeId"`
	RouteName       string    `gorm:"-" json:"routeName,omitempty"`
	Position        int       `gorm:"not null" json:"position"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"-"`
}

// CatalogEntry 目录的统一视图：调用方通过 Kind 区分两种线路，
// 不需要探测字段形状。
type CatalogEntry struct {
	ID          string              `json:"id"`
	Kind        Kind                `json:"kind"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Status      CombinedStatus      `json:"status,omitempty"`    // 仅组合线路
	Schedules   []RouteSchedule     `json:"schedules,omitempty"` // 仅常规线路
	Items       []CombinedRouteItem `json:"items,omitempty"`     // 仅组合线路
}

// weekDays 合法的班表 day 取值。
var weekDays = map[string]struct{}{
	"Sunday": {}, "Monday": {}, "Tuesday": {}, "Wednesday": {},
	"Thursday": {}, "Friday": {}, "Saturday": {},
}

// ValidDay 班表 day 是否合法。
func ValidDay(day string) bool {
	_, ok := weekDays[day]
	return ok
}
