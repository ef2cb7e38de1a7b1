package assignment

import (
	"time"

	"github.com/RouteFleet/RouteFleet/internal/route"
)

// Status 调度生命周期状态。
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Valid 是否为已知调度状态。
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal 是否为终态。终态调度不再接受执行记录。
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// LogStatus 单次执行记录的状态。
type LogStatus string

const (
	LogStarted   LogStatus = "started"
	LogCompleted LogStatus = "completed"
	LogDelayed   LogStatus = "delayed"
	LogCancelled LogStatus = "cancelled"
)

// Valid 是否为已知执行状态。
func (s LogStatus) Valid() bool {
	switch s {
	case LogStarted, LogCompleted, LogDelayed, LogCancelled:
		return true
	}
	return false
}

// Final 执行记录是否已收尾。收尾后的记录不可再改写。
func (s LogStatus) Final() bool {
	return s == LogCompleted || s == LogDelayed || s == LogCancelled
}

// Assignment 是 route_assignments 表的 GORM 模型。
// RouteID 与 CombinedRouteID 恰好一个非空（两种线路互斥引用）。
type Assignment struct {
	ID              string  `gorm:"primaryKey;size:36" json:"id"`
	RouteID         *string `gorm:"index;size:36" json:"routeId,omitempty"`
	CombinedRouteID *string `gorm:"index;size:36" json:"combinedRouteId,omitempty"`
	VehicleID       string  `gorm:"index;size:36;not null" json:"vehicleId"`
	DriverID        string  `gorm:"index;size:36;not null" json:"driverId"`

	// 计划窗口。日期为 "2006-01-02"，EndDate 可省略表示开放结束。
	StartDate string  `gorm:"size:10;not null" json:"startDate"`
	EndDate   *string `gorm:"size:10" json:"endDate,omitempty"`

	Status Status `gorm:"type:varchar(16);not null;default:'scheduled'" json:"status"`
	Notes  string `gorm:"size:512" json:"notes"`

	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// RouteRef 返回调度引用的线路（种类 + ID）。
// 依赖创建/更新时已校验的互斥不变量。
func (a *Assignment) RouteRef() (route.Kind, string) {
	if a.CombinedRouteID != nil && *a.CombinedRouteID != "" {
		return route.KindCombined, *a.CombinedRouteID
	}
	if a.RouteID != nil {
		return route.KindRegular, *a.RouteID
	}
	return route.KindRegular, ""
}

// ExecutionLog 是 execution_logs 表的 GORM 模型：某次调度的单日执行记录。
// 一条记录从 started 开始，收尾为 completed / delayed / cancelled 之一。
type ExecutionLog struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	AssignmentID string    `gorm:"index;size:36;not null" json:"assignmentId"`
	Date         string    `gorm:"size:10;not null" json:"date"`
	StartTime    string    `gorm:"size:5;not null" json:"startTime"`
	EndTime      *string   `gorm:"size:5" json:"endTime,omitempty"`
	Status       LogStatus `gorm:"type:varchar(16);not null;default:'started'" json:"status"`
	DelayReason  *string   `gorm:"size:512" json:"delayReason,omitempty"`
	Notes        string    `gorm:"size:512" json:"notes"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
