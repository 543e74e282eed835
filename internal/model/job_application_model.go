package model

import (
	"time"

	"github.com/google/uuid"
)

type JobApplication struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId  string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Status     string    `gorm:"type:varchar(32);not null"`
	Name       string    `gorm:"type:text;not null"`
	Email      string    `gorm:"type:text;not null"`
	Company    string    `gorm:"type:text;not null"`
	JobRole    string    `gorm:"type:text;not null"`
	Experience string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (JobApplication) TableName() string {
	return "job_applications"
}
