package statemachine

import (
	"errors"
	"fmt"
	"sort"

	"vibedine-api/models"
)

// pipeline is the fixed preparation order. Every order walks this list one
// step at a time; the only branch is cancellation from a non-terminal state.
var pipeline = []models.OrderStatus{
	models.StatusReceived,
	models.StatusPreparing,
	models.StatusQualityCheck,
	models.StatusReady,
	models.StatusDelivered,
}

// pipelineIndex maps a status to its position for O(1) forward checks
var pipelineIndex = func() map[models.OrderStatus]int {
	m := make(map[models.OrderStatus]int, len(pipeline))
	for i, s := range pipeline {
		m[s] = i
	}
	return m
}()

// Pipeline returns the full forward sequence for documentation endpoints
func Pipeline() []models.OrderStatus {
	out := make([]models.OrderStatus, len(pipeline))
	copy(out, pipeline)
	return out
}

// IsTerminal reports whether no further transitions are permitted
func IsTerminal(s models.OrderStatus) bool {
	return s == models.StatusDelivered || s == models.StatusCancelled
}

// Known reports whether s is a defined status
func Known(s models.OrderStatus) bool {
	if s == models.StatusCancelled {
		return true
	}
	_, ok := pipelineIndex[s]
	return ok
}

// NextStatus returns the single legal forward step from the given status.
// Returns false for terminal states.
func NextStatus(from models.OrderStatus) (models.OrderStatus, bool) {
	i, ok := pipelineIndex[from]
	if !ok || i == len(pipeline)-1 {
		return "", false
	}
	return pipeline[i+1], true
}

// ValidTransitionsFrom returns all legal next states from a given state
func ValidTransitionsFrom(from models.OrderStatus) []models.OrderStatus {
	if IsTerminal(from) {
		return nil
	}
	var nexts []models.OrderStatus
	if next, ok := NextStatus(from); ok {
		nexts = append(nexts, next)
	}
	nexts = append(nexts, models.StatusCancelled)
	return nexts
}

// CanTransition checks whether from → to is a legal change: exactly one
// forward step, or cancellation of any non-terminal order
func CanTransition(from, to models.OrderStatus) error {
	if !Known(from) || !Known(to) {
		return fmt.Errorf("unknown order status in transition %s → %s", from, to)
	}
	if IsTerminal(from) {
		return errors.New("order is in terminal state " + string(from) + "; no further transitions")
	}
	if to == models.StatusCancelled {
		return nil
	}
	if next, ok := NextStatus(from); ok && next == to {
		return nil
	}
	return errors.New(
		"invalid transition: " + string(from) + " → " + string(to) +
			". Valid transitions from " + string(from) + " are: " + describeValidFrom(from),
	)
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	result := ""
	for i, s := range nexts {
		if i > 0 {
			result += ", "
		}
		result += string(s)
	}
	return result
}

// SortQueue orders a kitchen queue for display: priority descending, then
// creation time ascending so old normal-priority orders are not starved.
// The sort is stable for equal keys.
func SortQueue(orders []models.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].Priority != orders[j].Priority {
			return orders[i].Priority > orders[j].Priority
		}
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
}
