package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/JulianRp2177/api-task-manager/internal/notify"
	"github.com/JulianRp2177/api-task-manager/internal/repositories"
)

// AssignmentService はメールアドレスでタスクの担当者を割り当てます。
type AssignmentService struct {
	tasks    repositories.TaskRepository
	users    repositories.UserRepository
	notifier notify.Notifier

	// notifyTimeout は通知1回にかける上限で、リクエストの取り消しとは独立です。
	notifyTimeout time.Duration
}

// NewAssignmentService は新しいAssignmentServiceを作成します。
func NewAssignmentService(tasks repositories.TaskRepository, users repositories.UserRepository, notifier notify.Notifier) *AssignmentService {
	return &AssignmentService{tasks: tasks, users: users, notifier: notifier, notifyTimeout: notify.DefaultSendTimeout}
}

// Assign はタスクを userEmail のユーザーに割り当て、確認メッセージを返します。
// 通知の失敗はログに残すだけで、割り当て結果には影響しません。
func (s *AssignmentService) Assign(ctx context.Context, taskID int, userEmail string) (string, error) {
	if _, err := s.tasks.FindTaskByID(ctx, taskID); err != nil {
		if errors.Is(err, repositories.ErrTaskNotFound) {
			return "", ErrTaskNotFound
		}
		return "", err
	}

	user, err := s.users.FindByEmail(ctx, userEmail)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	task, err := s.tasks.AssignUser(ctx, taskID, user.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		log.Printf("Failed to assign task %d: %v", taskID, err)
		return "", fmt.Errorf("%w: %w", ErrAssignmentFailed, err)
	}
	if task == nil {
		return "", ErrAssignmentFailed
	}

	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()
	if err := s.notifier.TaskAssigned(notifyCtx, user.Email, task.Title); err != nil {
		log.Printf("Failed to send assignment notification to %s: %v", user.Email, err)
	}

	return fmt.Sprintf("Task assigned to %s", user.Email), nil
}
