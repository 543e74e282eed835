package implementation

import (
	"context"
	"errors"
	"time"

	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/mapper"
	"rag-chatbot-be/internal/model"
	"rag-chatbot-be/internal/pkg/apperror"
	"rag-chatbot-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// updatableColumns whitelists the columns UpdateField may touch.
var updatableColumns = map[string]bool{
	"name":       true,
	"email":      true,
	"company":    true,
	"job_role":   true,
	"experience": true,
}

type JobApplicationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.JobApplicationMapper
}

func NewJobApplicationRepository(db *gorm.DB) contract.JobApplicationRepository {
	return &JobApplicationRepositoryImpl{
		db:     db,
		mapper: mapper.NewJobApplicationMapper(),
	}
}

func (r *JobApplicationRepositoryImpl) FindBySessionId(ctx context.Context, sessionId string) (*entity.JobApplication, error) {
	var m model.JobApplication
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionId).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError("find job application", err)
	}
	return r.mapper.ToEntity(&m), nil
}

// Upsert inserts the application or overwrites the existing row of the same session in place.
func (r *JobApplicationRepositoryImpl) Upsert(ctx context.Context, application *entity.JobApplication) error {
	m := r.mapper.ToModel(application)
	m.UpdatedAt = time.Now()

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "name", "email", "company", "job_role", "experience", "updated_at"}),
		}).
		Create(m).Error
	if err != nil {
		return translateError("upsert job application", err)
	}

	stored, err := r.FindBySessionId(ctx, application.SessionId)
	if err != nil {
		return err
	}
	if stored != nil {
		*application = *stored
	}
	return nil
}

func (r *JobApplicationRepositoryImpl) UpdateField(ctx context.Context, sessionId, column, value string) (int64, error) {
	if !updatableColumns[column] {
		return 0, apperror.Validation("column %q cannot be updated", column)
	}

	res := r.db.WithContext(ctx).
		Model(&model.JobApplication{}).
		Where("session_id = ?", sessionId).
		Updates(map[string]interface{}{column: value, "updated_at": time.Now()})
	if res.Error != nil {
		return 0, translateError("update job application", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *JobApplicationRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId string) (int64, error) {
	res := r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.JobApplication{})
	if res.Error != nil {
		return 0, translateError("delete job application", res.Error)
	}
	return res.RowsAffected, nil
}
