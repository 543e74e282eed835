package specification

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// OrderBy only accepts columns listed in sortableColumns.
type OrderBy struct {
	Column string
	Desc   bool
}

var sortableColumns = map[string]bool{
	"created_at":  true,
	"chunk_index": true,
	"title":       true,
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	if !sortableColumns[s.Column] {
		return db
	}
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", s.Column, dir))
}

type Limit struct {
	N int
}

func (s Limit) Apply(db *gorm.DB) *gorm.DB {
	if s.N <= 0 {
		return db
	}
	return db.Limit(s.N)
}
