package assignment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RouteFleet/RouteFleet/internal/common/apperr"
	"github.com/RouteFleet/RouteFleet/internal/route"
	"github.com/google/uuid"
)

// RouteResolver 校验线路引用（常规或组合）是否可解析。
type RouteResolver interface {
	Exists(ctx context.Context, kind route.Kind, id string) (bool, error)
}

// VehicleResolver 校验车辆引用是否可解析。
type VehicleResolver interface {
	VehicleExists(ctx context.Context, id string) (bool, error)
}

// DriverResolver 校验司机引用是否可解析。
type DriverResolver interface {
	DriverExists(ctx context.Context, id string) (bool, error)
}

// Service 调度协调器：创建/更新前做跨目录引用校验，
// 执行记录写入与调度状态流转在同一事务内完成。
type Service struct {
	store    Store
	routes   RouteResolver
	vehicles VehicleResolver
	drivers  DriverResolver
	now      func() time.Time
}

func NewService(store Store, routes RouteResolver, vehicles VehicleResolver, drivers DriverResolver) *Service {
	return &Service{
		store:    store,
		routes:   routes,
		vehicles: vehicles,
		drivers:  drivers,
		now:      time.Now,
	}
}

// Input 调度创建/更新入参。
// RouteID 与 CombinedRouteID 必须恰好填一个。
type Input struct {
	RouteID         string  `json:"routeId"`
	CombinedRouteID string  `json:"combinedRouteId"`
	VehicleID       string  `json:"vehicleId"`
	DriverID        string  `json:"driverId"`
	StartDate       string  `json:"startDate"`
	EndDate         *string `json:"endDate"`
	Notes           string  `json:"notes"`
}

// StartInput 开始一次执行的入参。
type StartInput struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	Notes     string `json:"notes"`
}

// CompleteInput 收尾一次执行的入参。
type CompleteInput struct {
	Status      LogStatus `json:"status"`
	EndTime     *string   `json:"endTime"`
	DelayReason *string   `json:"delayReason"`
	Notes       string    `json:"notes"`
}

// Create 新建调度，初始状态固定为 scheduled。
func (s *Service) Create(ctx context.Context, in Input) (*Assignment, error) {
	if err := s.validateInput(ctx, in); err != nil {
		return nil, err
	}

	a := &Assignment{
		ID:        uuid.NewString(),
		VehicleID: strings.TrimSpace(in.VehicleID),
		DriverID:  strings.TrimSpace(in.DriverID),
		StartDate: strings.TrimSpace(in.StartDate),
		EndDate:   trimOptional(in.EndDate),
		Status:    StatusScheduled,
		Notes:     strings.TrimSpace(in.Notes),
	}
	setRouteRef(a, in)

	if err := s.store.CreateAssignment(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Update 改写调度的计划字段。状态不在此处流转，
// 生命周期只通过执行记录推进（或 Cancel）。
func (s *Service) Update(ctx context.Context, id string, in Input) (*Assignment, error) {
	a, err := s.store.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateInput(ctx, in); err != nil {
		return nil, err
	}

	a.VehicleID = strings.TrimSpace(in.VehicleID)
	a.DriverID = strings.TrimSpace(in.DriverID)
	a.StartDate = strings.TrimSpace(in.StartDate)
	a.EndDate = trimOptional(in.EndDate)
	a.Notes = strings.TrimSpace(in.Notes)
	a.RouteID = nil
	a.CombinedRouteID = nil
	setRouteRef(a, in)

	if err := s.store.UpdateAssignment(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Cancel 取消调度。已进入终态的调度拒绝取消。
func (s *Service) Cancel(ctx context.Context, id string) (*Assignment, error) {
	a, err := s.store.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ApplyTransition(a, StatusCancelled, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.UpdateAssignment(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete 删除调度并级联删除其全部执行记录。
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.store.GetAssignment(ctx, id); err != nil {
		return err
	}
	return s.store.DeleteAssignmentCascade(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (*Assignment, error) {
	return s.store.GetAssignment(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Assignment, int64, error) {
	if f.Status != "" && !f.Status.Valid() {
		ve := &apperr.ValidationError{}
		ve.Add("status", fmt.Sprintf("unknown status %q", f.Status))
		return nil, 0, ve
	}
	return s.store.ListAssignments(ctx, f)
}

// StartExecution 为调度开始一次执行：插入 started 记录，
// 并在首次执行时把调度推进到 in_progress。终态调度拒绝。
func (s *Service) StartExecution(ctx context.Context, assignmentID string, in StartInput) (*ExecutionLog, error) {
	a, err := s.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	ve := &apperr.ValidationError{}
	if _, err := parseDate(in.Date); err != nil {
		ve.Add("date", "must be YYYY-MM-DD")
	}
	if _, err := parseClock(in.StartTime); err != nil {
		ve.Add("startTime", "must be HH:MM")
	}
	if ve.HasErrors() {
		return nil, ve
	}

	if a.Status.Terminal() {
		return nil, &apperr.InvalidTransitionError{Entity: "assignment", From: string(a.Status), To: string(StatusInProgress)}
	}
	if err := ApplyTransition(a, StatusInProgress, s.now()); err != nil {
		return nil, err
	}

	l := &ExecutionLog{
		ID:           uuid.NewString(),
		AssignmentID: a.ID,
		Date:         strings.TrimSpace(in.Date),
		StartTime:    strings.TrimSpace(in.StartTime),
		Status:       LogStarted,
		Notes:        strings.TrimSpace(in.Notes),
	}
	if err := s.store.CreateLogAndUpdateAssignment(ctx, l, a); err != nil {
		return nil, err
	}
	return l, nil
}

// CompleteExecution 收尾一条执行记录。
// completed / cancelled 同步推进调度终态；delayed 只标记记录本身，
// 调度保持 in_progress 以便后续补跑。
func (s *Service) CompleteExecution(ctx context.Context, logID string, in CompleteInput) (*ExecutionLog, error) {
	l, err := s.store.GetLog(ctx, logID)
	if err != nil {
		return nil, err
	}
	a, err := s.store.GetAssignment(ctx, l.AssignmentID)
	if err != nil {
		return nil, err
	}

	ve := &apperr.ValidationError{}
	if !in.Status.Valid() || !in.Status.Final() {
		ve.Add("status", fmt.Sprintf("must be one of completed, delayed, cancelled; got %q", in.Status))
	}
	if in.EndTime != nil {
		if _, err := parseClock(*in.EndTime); err != nil {
			ve.Add("endTime", "must be HH:MM")
		}
	}
	if in.Status == LogDelayed && (in.DelayReason == nil || strings.TrimSpace(*in.DelayReason) == "") {
		ve.Add("delayReason", "required when status is delayed")
	}
	if ve.HasErrors() {
		return nil, ve
	}

	if err := ApplyLogTransition(l, in.Status); err != nil {
		return nil, err
	}
	l.EndTime = trimOptional(in.EndTime)
	l.DelayReason = trimOptional(in.DelayReason)
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		l.Notes = notes
	}

	switch in.Status {
	case LogCompleted:
		if err := ApplyTransition(a, StatusCompleted, s.now()); err != nil {
			return nil, err
		}
	case LogCancelled:
		if err := ApplyTransition(a, StatusCancelled, s.now()); err != nil {
			return nil, err
		}
	}

	if err := s.store.UpdateLogAndAssignment(ctx, l, a); err != nil {
		return nil, err
	}
	return l, nil
}

// ListExecutions 列出某调度的全部执行记录（按日期、开始时间排序）。
func (s *Service) ListExecutions(ctx context.Context, assignmentID string) ([]ExecutionLog, error) {
	if _, err := s.store.GetAssignment(ctx, assignmentID); err != nil {
		return nil, err
	}
	return s.store.ListLogs(ctx, assignmentID)
}

// validateInput 逐字段校验调度入参，所有违规一次性返回。
func (s *Service) validateInput(ctx context.Context, in Input) error {
	ve := &apperr.ValidationError{}

	routeID := strings.TrimSpace(in.RouteID)
	combinedID := strings.TrimSpace(in.CombinedRouteID)
	switch {
	case routeID != "" && combinedID != "":
		ve.Add("routeId", "routeId and combinedRouteId are mutually exclusive")
		ve.Add("combinedRouteId", "routeId and combinedRouteId are mutually exclusive")
	case routeID == "" && combinedID == "":
		ve.Add("routeId", "either routeId or combinedRouteId is required")
	case routeID != "":
		ok, err := s.routes.Exists(ctx, route.KindRegular, routeID)
		if err != nil {
			return err
		}
		if !ok {
			ve.Add("routeId", fmt.Sprintf("route %s does not exist", routeID))
		}
	default:
		ok, err := s.routes.Exists(ctx, route.KindCombined, combinedID)
		if err != nil {
			return err
		}
		if !ok {
			ve.Add("combinedRouteId", fmt.Sprintf("combined route %s does not exist", combinedID))
		}
	}

	vehicleID := strings.TrimSpace(in.VehicleID)
	if vehicleID == "" {
		ve.Add("vehicleId", "required")
	} else {
		ok, err := s.vehicles.VehicleExists(ctx, vehicleID)
		if err != nil {
			return err
		}
		if !ok {
			ve.Add("vehicleId", fmt.Sprintf("vehicle %s does not exist", vehicleID))
		}
	}

	driverID := strings.TrimSpace(in.DriverID)
	if driverID == "" {
		ve.Add("driverId", "required")
	} else {
		ok, err := s.drivers.DriverExists(ctx, driverID)
		if err != nil {
			return err
		}
		if !ok {
			ve.Add("driverId", fmt.Sprintf("driver %s does not exist", driverID))
		}
	}

	start, startErr := parseDate(in.StartDate)
	if startErr != nil {
		ve.Add("startDate", "must be YYYY-MM-DD")
	}
	if in.EndDate != nil && strings.TrimSpace(*in.EndDate) != "" {
		end, endErr := parseDate(*in.EndDate)
		if endErr != nil {
			ve.Add("endDate", "must be YYYY-MM-DD")
		} else if startErr == nil && end.Before(start) {
			ve.Add("endDate", "must not be before startDate")
		}
	}

	if ve.HasErrors() {
		return ve
	}
	return nil
}

func setRouteRef(a *Assignment, in Input) {
	if id := strings.TrimSpace(in.CombinedRouteID); id != "" {
		a.CombinedRouteID = &id
		return
	}
	if id := strings.TrimSpace(in.RouteID); id != "" {
		a.RouteID = &id
	}
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func parseDate(v string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(v))
}

func parseClock(v string) (time.Time, error) {
	return time.Parse("15:04", strings.TrimSpace(v))
}
