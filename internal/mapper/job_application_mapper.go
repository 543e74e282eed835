package mapper

import (
	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/model"
)

type JobApplicationMapper struct{}

func NewJobApplicationMapper() *JobApplicationMapper {
	return &JobApplicationMapper{}
}

func (m *JobApplicationMapper) ToEntity(a *model.JobApplication) *entity.JobApplication {
	if a == nil {
		return nil
	}
	return &entity.JobApplication{
		Id:         a.Id,
		SessionId:  a.SessionId,
		Status:     a.Status,
		Name:       a.Name,
		Email:      a.Email,
		Company:    a.Company,
		JobRole:    a.JobRole,
		Experience: a.Experience,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func (m *JobApplicationMapper) ToModel(a *entity.JobApplication) *model.JobApplication {
	if a == nil {
		return nil
	}
	return &model.JobApplication{
		Id:         a.Id,
		SessionId:  a.SessionId,
		Status:     a.Status,
		Name:       a.Name,
		Email:      a.Email,
		Company:    a.Company,
		JobRole:    a.JobRole,
		Experience: a.Experience,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}
