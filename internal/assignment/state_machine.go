package assignment

import (
	"time"

	"github.com/RouteFleet/RouteFleet/internal/common/apperr"
)

// AllowTransition 调度状态机。
// scheduled 可直接取消；in_progress 走向 completed 或 cancelled；终态封闭。
var AllowTransition = map[Status][]Status{
	StatusScheduled:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// AllowLogTransition 执行记录状态机。started 收尾为三种终态之一。
var AllowLogTransition = map[LogStatus][]LogStatus{
	LogStarted:   {LogCompleted, LogDelayed, LogCancelled},
	LogCompleted: {},
	LogDelayed:   {},
	LogCancelled: {},
}

// CanTransition 判断调度状态流转是否合法。原状态重入视为合法（幂等写入）。
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range AllowTransition[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanLogTransition 判断执行记录状态流转是否合法。
// 收尾是一次性写入，已收尾的记录不允许任何改写（包括重入）。
func CanLogTransition(from, to LogStatus) bool {
	for _, next := range AllowLogTransition[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ApplyTransition 校验并执行调度状态流转，同时维护各状态时间戳。
func ApplyTransition(a *Assignment, to Status, now time.Time) error {
	if !CanTransition(a.Status, to) {
		return &apperr.InvalidTransitionError{Entity: "assignment", From: string(a.Status), To: string(to)}
	}
	if a.Status == to {
		return nil
	}

	a.Status = to
	switch to {
	case StatusInProgress:
		if a.StartedAt == nil {
			a.StartedAt = &now
		}
	case StatusCompleted:
		a.CompletedAt = &now
	case StatusCancelled:
		a.CancelledAt = &now
	}
	return nil
}

// ApplyLogTransition 校验并执行单条执行记录的收尾流转。
func ApplyLogTransition(l *ExecutionLog, to LogStatus) error {
	if !CanLogTransition(l.Status, to) {
		return &apperr.InvalidTransitionError{Entity: "execution log", From: string(l.Status), To: string(to)}
	}
	l.Status = to
	return nil
}
