package repositories_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JulianRp2177/api-task-manager/internal/config"
	"github.com/JulianRp2177/api-task-manager/internal/database"
	"github.com/JulianRp2177/api-task-manager/internal/models"
	"github.com/JulianRp2177/api-task-manager/internal/repositories"
)

type stores struct {
	users repositories.UserRepository
	tasks repositories.TaskRepository
}

// backends は同じテストをメモリ実装とSQLite実装の両方に対して実行します。
func backends(t *testing.T) map[string]func(t *testing.T) stores {
	return map[string]func(t *testing.T) stores{
		"memory": func(t *testing.T) stores {
			s := repositories.NewMemoryStore()
			return stores{users: s.Users(), tasks: s.Tasks()}
		},
		"sqlite": func(t *testing.T) stores {
			cfg := &config.Config{DBDriver: config.DriverSQLite, DSN: filepath.Join(t.TempDir(), "repo.db")}
			db, err := database.Open(context.Background(), cfg)
			require.NoError(t, err)
			t.Cleanup(func() { db.Close() })
			return stores{users: repositories.NewSQLUserRepo(db), tasks: repositories.NewSQLTaskRepo(db)}
		},
	}
}

func ptr[T any](v T) *T { return &v }

func TestUserRepository(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			created, err := s.users.Create(ctx, &models.User{Email: "a@example.com", HashedPassword: "hash", IsActive: true})
			require.NoError(t, err)
			require.NotZero(t, created.ID)

			found, err := s.users.FindByEmail(ctx, "a@example.com")
			require.NoError(t, err)
			assert.Equal(t, created.ID, found.ID)
			assert.Equal(t, "hash", found.HashedPassword)
			assert.True(t, found.IsActive)

			_, err = s.users.Create(ctx, &models.User{Email: "a@example.com", HashedPassword: "other", IsActive: true})
			require.ErrorIs(t, err, repositories.ErrDuplicateEmail)

			_, err = s.users.FindByEmail(ctx, "missing@example.com")
			require.ErrorIs(t, err, repositories.ErrUserNotFound)
		})
	}
}

func TestTaskRepository_ListsAndTasks(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			list, err := s.tasks.CreateList(ctx, "Groceries")
			require.NoError(t, err)
			require.NotZero(t, list.ID)
			assert.Empty(t, list.Tasks)
			assert.False(t, list.CreatedAt.IsZero())

			first, err := s.tasks.CreateTask(ctx, &models.Task{TaskListID: list.ID, Title: "milk", Priority: 2})
			require.NoError(t, err)
			assert.Nil(t, first.Description)
			assert.False(t, first.Completed)

			second, err := s.tasks.CreateTask(ctx, &models.Task{TaskListID: list.ID, Title: "bread", Description: ptr("rye"), Priority: 2, Completed: true})
			require.NoError(t, err)
			_, err = s.tasks.CreateTask(ctx, &models.Task{TaskListID: list.ID, Title: "eggs", Priority: 1, Completed: true})
			require.NoError(t, err)

			fetched, err := s.tasks.FindListByID(ctx, list.ID)
			require.NoError(t, err)
			require.Len(t, fetched.Tasks, 3)
			assert.Equal(t, "milk", fetched.Tasks[0].Title)
			assert.Equal(t, "rye", *fetched.Tasks[1].Description)

			filtered, err := s.tasks.ListTasks(ctx, list.ID, models.TaskFilter{Completed: ptr(true), Priority: ptr(2)})
			require.NoError(t, err)
			require.Len(t, filtered, 1)
			assert.Equal(t, second.ID, filtered[0].ID)

			byPriority, err := s.tasks.ListTasks(ctx, list.ID, models.TaskFilter{Priority: ptr(2)})
			require.NoError(t, err)
			assert.Len(t, byPriority, 2)

			all, err := s.tasks.FindAllLists(ctx)
			require.NoError(t, err)
			require.Len(t, all, 1)
			assert.Equal(t, "Groceries", all[0].Name)

			_, err = s.tasks.FindListByID(ctx, list.ID+100)
			require.ErrorIs(t, err, repositories.ErrTaskListNotFound)
		})
	}
}

func TestTaskRepository_UpdateDeleteAssign(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			list, err := s.tasks.CreateList(ctx, "Work")
			require.NoError(t, err)
			task, err := s.tasks.CreateTask(ctx, &models.Task{TaskListID: list.ID, Title: "report", Priority: 3})
			require.NoError(t, err)

			task.Completed = true
			updated, err := s.tasks.UpdateTask(ctx, task)
			require.NoError(t, err)
			assert.True(t, updated.Completed)
			assert.Equal(t, "report", updated.Title)

			// 値が変わらない更新でも見つかった扱いになること
			_, err = s.tasks.UpdateTask(ctx, updated)
			require.NoError(t, err)

			_, err = s.tasks.UpdateTask(ctx, &models.Task{ID: task.ID + 100, Title: "x"})
			require.ErrorIs(t, err, repositories.ErrTaskNotFound)

			user, err := s.users.Create(ctx, &models.User{Email: "worker@example.com", HashedPassword: "h", IsActive: true})
			require.NoError(t, err)

			assigned, err := s.tasks.AssignUser(ctx, task.ID, user.ID)
			require.NoError(t, err)
			require.NotNil(t, assigned)
			require.NotNil(t, assigned.AssignedToID)
			assert.Equal(t, user.ID, *assigned.AssignedToID)

			missing, err := s.tasks.AssignUser(ctx, task.ID+100, user.ID)
			require.NoError(t, err)
			assert.Nil(t, missing)

			require.NoError(t, s.tasks.DeleteTask(ctx, task.ID))
			require.ErrorIs(t, s.tasks.DeleteTask(ctx, task.ID), repositories.ErrTaskNotFound)
			_, err = s.tasks.FindTaskByID(ctx, task.ID)
			require.ErrorIs(t, err, repositories.ErrTaskNotFound)
		})
	}
}

func TestTaskRepository_DeleteListCascades(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			list, err := s.tasks.CreateList(ctx, "Temp")
			require.NoError(t, err)
			task, err := s.tasks.CreateTask(ctx, &models.Task{TaskListID: list.ID, Title: "gone", Priority: 1})
			require.NoError(t, err)

			require.NoError(t, s.tasks.DeleteList(ctx, list.ID))
			require.ErrorIs(t, s.tasks.DeleteList(ctx, list.ID), repositories.ErrTaskListNotFound)

			_, err = s.tasks.FindTaskByID(ctx, task.ID)
			require.ErrorIs(t, err, repositories.ErrTaskNotFound)
		})
	}
}

func TestMemoryStore_DeleteUserClearsAssignment(t *testing.T) {
	ctx := context.Background()
	s := repositories.NewMemoryStore()

	user, err := s.Users().Create(ctx, &models.User{Email: "x@example.com", IsActive: true})
	require.NoError(t, err)
	list, err := s.Tasks().CreateList(ctx, "L")
	require.NoError(t, err)
	task, err := s.Tasks().CreateTask(ctx, &models.Task{TaskListID: list.ID, Title: "t", Priority: 1})
	require.NoError(t, err)
	_, err = s.Tasks().AssignUser(ctx, task.ID, user.ID)
	require.NoError(t, err)

	s.DeleteUser(user.ID)

	got, err := s.Tasks().FindTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AssignedToID)
}

func TestMemoryStore_ConcurrentAssignmentIsLastWriteWins(t *testing.T) {
	ctx := context.Background()
	s := repositories.NewMemoryStore()

	a, err := s.Users().Create(ctx, &models.User{Email: "a@example.com", IsActive: true})
	require.NoError(t, err)
	b, err := s.Users().Create(ctx, &models.User{Email: "b@example.com", IsActive: true})
	require.NoError(t, err)
	list, err := s.Tasks().CreateList(ctx, "L")
	require.NoError(t, err)
	task, err := s.Tasks().CreateTask(ctx, &models.Task{TaskListID: list.ID, Title: "t", Priority: 1})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, id := range []int{a.ID, b.ID} {
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()
			_, _ = s.Tasks().AssignUser(ctx, task.ID, userID)
		}(id)
	}
	wg.Wait()

	got, err := s.Tasks().FindTaskByID(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AssignedToID)
	assert.Contains(t, []int{a.ID, b.ID}, *got.AssignedToID)
	assert.Equal(t, "t", got.Title)
}

func TestSQLite_DeleteUserClearsAssignment(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{DBDriver: config.DriverSQLite, DSN: filepath.Join(t.TempDir(), "setnull.db")}
	db, err := database.Open(ctx, cfg)
	require.NoError(t, err)
	defer db.Close()

	users := repositories.NewSQLUserRepo(db)
	tasks := repositories.NewSQLTaskRepo(db)

	user, err := users.Create(ctx, &models.User{Email: "x@example.com", HashedPassword: "h", IsActive: true})
	require.NoError(t, err)
	list, err := tasks.CreateList(ctx, "L")
	require.NoError(t, err)
	task, err := tasks.CreateTask(ctx, &models.Task{TaskListID: list.ID, Title: "t", Priority: 1})
	require.NoError(t, err)
	_, err = tasks.AssignUser(ctx, task.ID, user.ID)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", user.ID)
	require.NoError(t, err)

	got, err := tasks.FindTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AssignedToID)
	assert.Equal(t, "t", got.Title)
}
