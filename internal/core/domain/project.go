package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProjectStatus represents the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectStatusPlanning   ProjectStatus = "planning"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusReview     ProjectStatus = "review"
	ProjectStatusDelivered  ProjectStatus = "delivered"
	ProjectStatusArchived   ProjectStatus = "archived"
)

// projectTransitions lists the allowed forward moves. Archiving is allowed
// from any state.
var projectTransitions = map[ProjectStatus][]ProjectStatus{
	ProjectStatusPlanning:   {ProjectStatusInProgress},
	ProjectStatusInProgress: {ProjectStatusReview},
	ProjectStatusReview:     {ProjectStatusInProgress, ProjectStatusDelivered},
	ProjectStatusDelivered:  {},
	ProjectStatusArchived:   {},
}

// Project represents one engagement for a client.
type Project struct {
	ID          uuid.UUID     `json:"id"`
	ClientID    uuid.UUID     `json:"client_id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	DueAt       *time.Time    `json:"due_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// CanTransitionTo reports whether moving the project to the target status
// is allowed.
func (p *Project) CanTransitionTo(target ProjectStatus) bool {
	if target == ProjectStatusArchived {
		return p.Status != ProjectStatusArchived
	}
	for _, next := range projectTransitions[p.Status] {
		if next == target {
			return true
		}
	}
	return false
}
