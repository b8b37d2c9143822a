package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MatthijsVer/company-manager/internal/domain/entities"
)

// TaskRepository handles task data operations
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// ListByMeeting returns all tasks linked back to a meeting
func (r *TaskRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]entities.Task, error) {
	var tasks []entities.Task
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTasks bulk-creates tasks on an arbitrary gorm handle so the commit
// transaction can reuse it
func CreateTasks(db *gorm.DB, tasks []*entities.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return db.Create(&tasks).Error
}
