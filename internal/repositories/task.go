package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/JulianRp2177/api-task-manager/internal/models"
)

// SQLTaskRepo はtask_lists/tasksテーブルを扱います。
type SQLTaskRepo struct {
	DB *sql.DB
}

// NewSQLTaskRepo は新しいSQLTaskRepoインスタンスを作成します。
func NewSQLTaskRepo(db *sql.DB) *SQLTaskRepo {
	return &SQLTaskRepo{DB: db}
}

const taskColumns = "id, task_list_id, title, description, priority, completed, created_at, assigned_to_id"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(s rowScanner) (*models.Task, error) {
	var (
		t           models.Task
		description sql.NullString
		assignedTo  sql.NullInt64
	)
	if err := s.Scan(&t.ID, &t.TaskListID, &t.Title, &description, &t.Priority, &t.Completed, &t.CreatedAt, &assignedTo); err != nil {
		return nil, err
	}
	if description.Valid {
		t.Description = &description.String
	}
	if assignedTo.Valid {
		id := int(assignedTo.Int64)
		t.AssignedToID = &id
	}
	return &t, nil
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// CreateList は新しいタスクリストを挿入します。
func (r *SQLTaskRepo) CreateList(ctx context.Context, name string) (*models.TaskList, error) {
	createdAt := now()
	result, err := r.DB.ExecContext(ctx, "INSERT INTO task_lists (name, created_at) VALUES (?, ?)", name, createdAt)
	if err != nil {
		log.Printf("Failed to insert task list: %v", err)
		return nil, fmt.Errorf("could not insert task list: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("could not get last insert ID: %w", err)
	}
	return &models.TaskList{ID: int(id), Name: name, CreatedAt: createdAt, Tasks: []*models.Task{}}, nil
}

// FindListByID は指定IDのリストを、所属するタスクと一緒に取得します。
func (r *SQLTaskRepo) FindListByID(ctx context.Context, id int) (*models.TaskList, error) {
	var l models.TaskList
	err := r.DB.QueryRowContext(ctx, "SELECT id, name, created_at FROM task_lists WHERE id = ?", id).
		Scan(&l.ID, &l.Name, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskListNotFound
		}
		log.Printf("Failed to query task list by ID: %v", err)
		return nil, fmt.Errorf("could not query task list: %w", err)
	}

	tasks, err := r.ListTasks(ctx, id, models.TaskFilter{})
	if err != nil {
		return nil, err
	}
	l.Tasks = tasks
	return &l, nil
}

// FindAllLists はすべてのタスクリストを作成順に取得します。
func (r *SQLTaskRepo) FindAllLists(ctx context.Context) ([]*models.TaskList, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id, name, created_at FROM task_lists ORDER BY id")
	if err != nil {
		log.Printf("Failed to query task lists: %v", err)
		return nil, fmt.Errorf("could not query task lists: %w", err)
	}
	defer rows.Close()

	lists := []*models.TaskList{}
	for rows.Next() {
		var l models.TaskList
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("could not scan task list: %w", err)
		}
		l.Tasks = []*models.Task{}
		lists = append(lists, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task lists: %w", err)
	}
	return lists, nil
}

// DeleteList はリストを削除します。タスクは外部キーのCASCADEで削除されます。
func (r *SQLTaskRepo) DeleteList(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM task_lists WHERE id = ?", id)
	if err != nil {
		log.Printf("Failed to delete task list: %v", err)
		return fmt.Errorf("could not delete task list: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTaskListNotFound
	}
	return nil
}

// CreateTask は新しいタスクを挿入します。
func (r *SQLTaskRepo) CreateTask(ctx context.Context, t *models.Task) (*models.Task, error) {
	created := *t
	created.CreatedAt = now()

	query := "INSERT INTO tasks (task_list_id, title, description, priority, completed, created_at) VALUES (?, ?, ?, ?, ?, ?)"
	result, err := r.DB.ExecContext(ctx, query,
		created.TaskListID, created.Title, nullString(created.Description), created.Priority, created.Completed, created.CreatedAt)
	if err != nil {
		log.Printf("Failed to insert task: %v", err)
		return nil, fmt.Errorf("could not insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("could not get last insert ID: %w", err)
	}
	created.ID = int(id)
	return &created, nil
}

// ListTasks はリスト内のタスクを挿入順に取得します。
func (r *SQLTaskRepo) ListTasks(ctx context.Context, listID int, filter models.TaskFilter) ([]*models.Task, error) {
	conds := []string{"task_list_id = ?"}
	args := []any{listID}
	if filter.Completed != nil {
		conds = append(conds, "completed = ?")
		args = append(args, *filter.Completed)
	}
	if filter.Priority != nil {
		conds = append(conds, "priority = ?")
		args = append(args, *filter.Priority)
	}
	query := "SELECT " + taskColumns + " FROM tasks WHERE " + strings.Join(conds, " AND ") + " ORDER BY id"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Printf("Failed to query tasks: %v", err)
		return nil, fmt.Errorf("could not query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	return tasks, nil
}

// FindTaskByID は指定IDのタスクを取得します。
func (r *SQLTaskRepo) FindTaskByID(ctx context.Context, id int) (*models.Task, error) {
	t, err := scanTask(r.DB.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		log.Printf("Failed to query task by ID: %v", err)
		return nil, fmt.Errorf("could not query task: %w", err)
	}
	return t, nil
}

// UpdateTask は編集可能なフィールドを保存し、更新後のタスクを返します。
func (r *SQLTaskRepo) UpdateTask(ctx context.Context, t *models.Task) (*models.Task, error) {
	query := "UPDATE tasks SET title = ?, description = ?, priority = ?, completed = ? WHERE id = ?"
	result, err := r.DB.ExecContext(ctx, query, t.Title, nullString(t.Description), t.Priority, t.Completed, t.ID)
	if err != nil {
		log.Printf("Failed to update task: %v", err)
		return nil, fmt.Errorf("could not update task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrTaskNotFound
	}
	return r.FindTaskByID(ctx, t.ID)
}

// DeleteTask は指定IDのタスクを削除します。
func (r *SQLTaskRepo) DeleteTask(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		log.Printf("Failed to delete task: %v", err)
		return fmt.Errorf("could not delete task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// AssignUser はタスクの担当者を設定します。
func (r *SQLTaskRepo) AssignUser(ctx context.Context, taskID, userID int) (*models.Task, error) {
	result, err := r.DB.ExecContext(ctx, "UPDATE tasks SET assigned_to_id = ? WHERE id = ?", userID, taskID)
	if err != nil {
		log.Printf("Failed to assign task: %v", err)
		return nil, fmt.Errorf("could not assign task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, nil
	}
	return r.FindTaskByID(ctx, taskID)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
