package services

import (
	"context"
	"errors"
	"math"

	"github.com/JulianRp2177/api-task-manager/internal/models"
	"github.com/JulianRp2177/api-task-manager/internal/repositories"
)

// TaskService はタスクリストとタスクのビジネスロジックを扱います。
type TaskService struct {
	tasks repositories.TaskRepository
}

// NewTaskService は新しいTaskServiceを作成します。
func NewTaskService(tasks repositories.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

// CompletionPercentage は完了タスクの割合を小数点以下2桁で返します。タスクが無ければ0です。
// ちょうど中間の値は偶数側に丸めます。
func CompletionPercentage(tasks []*models.Task) float64 {
	if len(tasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range tasks {
		if t.Completed {
			done++
		}
	}
	return math.RoundToEven(float64(done)/float64(len(tasks))*100*100) / 100
}

// CreateList は空のタスクリストを作成します。
func (s *TaskService) CreateList(ctx context.Context, name string) (*models.TaskList, error) {
	list, err := s.tasks.CreateList(ctx, name)
	if err != nil {
		return nil, err
	}
	list.Tasks = []*models.Task{}
	list.CompletedPercentage = 0
	return list, nil
}

// GetList はタスクと完了率を含めてリストを返します。
func (s *TaskService) GetList(ctx context.Context, id int) (*models.TaskList, error) {
	list, err := s.tasks.FindListByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTaskListNotFound) {
			return nil, ErrListNotFound
		}
		return nil, err
	}
	if list.Tasks == nil {
		list.Tasks = []*models.Task{}
	}
	list.CompletedPercentage = CompletionPercentage(list.Tasks)
	return list, nil
}

// ListAllLists はすべてのリストをそれぞれの完了率付きで返します。
func (s *TaskService) ListAllLists(ctx context.Context) ([]*models.TaskList, error) {
	lists, err := s.tasks.FindAllLists(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.TaskList, 0, len(lists))
	for _, l := range lists {
		full, err := s.GetList(ctx, l.ID)
		if err != nil {
			// 一覧取得の間に削除されたリストは飛ばす
			if errors.Is(err, ErrListNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, full)
	}
	return out, nil
}

// DeleteList はリストと所属するタスクを削除します。
func (s *TaskService) DeleteList(ctx context.Context, id int) error {
	if err := s.tasks.DeleteList(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTaskListNotFound) {
			return ErrListNotFound
		}
		return err
	}
	return nil
}

// CreateTask はリスト内にタスクを作成します。優先度の既定値は1、完了状態はfalseです。
func (s *TaskService) CreateTask(ctx context.Context, listID int, req models.TaskCreateRequest) (*models.Task, error) {
	if _, err := s.tasks.FindListByID(ctx, listID); err != nil {
		if errors.Is(err, repositories.ErrTaskListNotFound) {
			return nil, ErrListNotFound
		}
		return nil, err
	}

	priority := models.DefaultPriority
	if req.Priority != nil {
		priority = *req.Priority
	}
	task, err := s.tasks.CreateTask(ctx, &models.Task{
		TaskListID:  listID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    priority,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrTaskListNotFound) {
			return nil, ErrListNotFound
		}
		return nil, err
	}
	return task, nil
}

// ListTasks はリスト内のタスクを条件で絞り込んで返します。
func (s *TaskService) ListTasks(ctx context.Context, listID int, filter models.TaskFilter) ([]*models.Task, error) {
	return s.tasks.ListTasks(ctx, listID, filter)
}

// UpdateTask は patch で指定されたフィールドだけを更新します。
func (s *TaskService) UpdateTask(ctx context.Context, id int, patch models.TaskPatch) (*models.Task, error) {
	task, err := s.tasks.FindTaskByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	patch.Apply(task)

	updated, err := s.tasks.UpdateTask(ctx, task)
	if err != nil {
		if errors.Is(err, repositories.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return updated, nil
}

// DeleteTask は指定IDのタスクを削除します。
func (s *TaskService) DeleteTask(ctx context.Context, id int) error {
	if err := s.tasks.DeleteTask(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return err
	}
	return nil
}
