package entity

import (
	"time"

	"github.com/google/uuid"
)

const ApplicationStatusConfirmed = "CONFIRMED"

type JobApplication struct {
	Id         uuid.UUID
	SessionId  string
	Status     string
	Name       string
	Email      string
	Company    string
	JobRole    string
	Experience string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Fields returns the five collected values keyed by field name.
func (a *JobApplication) Fields() map[string]string {
	return map[string]string{
		"name":       a.Name,
		"email":      a.Email,
		"company":    a.Company,
		"job_role":   a.JobRole,
		"experience": a.Experience,
	}
}
