// Package repositories はデータベース操作を行うリポジトリを提供します。
package repositories

import (
	"context"
	"errors"

	"github.com/JulianRp2177/api-task-manager/internal/models"
)

var (
	ErrDuplicateEmail   = errors.New("duplicate email")
	ErrUserNotFound     = errors.New("user not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrTaskListNotFound = errors.New("task list not found")
)

// UserRepository はユーザーの永続化を扱います。
type UserRepository interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// TaskRepository はタスクリストとタスクの永続化を扱います。
type TaskRepository interface {
	CreateList(ctx context.Context, name string) (*models.TaskList, error)
	// FindListByID はタスクを含めてリストを返します。
	FindListByID(ctx context.Context, id int) (*models.TaskList, error)
	// FindAllLists はタスクを含めずに全てのリストを返します。
	FindAllLists(ctx context.Context) ([]*models.TaskList, error)
	DeleteList(ctx context.Context, id int) error

	CreateTask(ctx context.Context, t *models.Task) (*models.Task, error)
	ListTasks(ctx context.Context, listID int, filter models.TaskFilter) ([]*models.Task, error)
	FindTaskByID(ctx context.Context, id int) (*models.Task, error)
	UpdateTask(ctx context.Context, t *models.Task) (*models.Task, error)
	DeleteTask(ctx context.Context, id int) error
	// AssignUser は担当者を設定します。タスクが消えていた場合は (nil, nil) を返します。
	AssignUser(ctx context.Context, taskID, userID int) (*models.Task, error)
}
