package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/JulianRp2177/api-task-manager/internal/models"
)

// MemoryStore はプロセス内メモリにユーザー・リスト・タスクを保持します。
// DB_DRIVER=memory での起動とテストに使います。
type MemoryStore struct {
	mu sync.RWMutex

	users      map[int]*models.User
	userEmails map[string]int
	lists      map[int]*models.TaskList
	tasks      map[int]*models.Task

	lastUserID int
	lastListID int
	lastTaskID int
}

// NewMemoryStore は空のMemoryStoreを作成します。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      map[int]*models.User{},
		userEmails: map[string]int{},
		lists:      map[int]*models.TaskList{},
		tasks:      map[int]*models.Task{},
	}
}

// Users はUserRepositoryとしてのビューを返します。
func (s *MemoryStore) Users() UserRepository { return memoryUsers{s} }

// Tasks はTaskRepositoryとしてのビューを返します。
func (s *MemoryStore) Tasks() TaskRepository { return memoryTasks{s} }

// DeleteUser はユーザーを削除し、担当タスクの参照をクリアします (ON DELETE SET NULL)。
func (s *MemoryStore) DeleteUser(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return
	}
	delete(s.userEmails, u.Email)
	delete(s.users, id)
	for _, t := range s.tasks {
		if t.AssignedToID != nil && *t.AssignedToID == id {
			t.AssignedToID = nil
		}
	}
}

type memoryUsers struct{ s *MemoryStore }

func (m memoryUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, exists := m.s.userEmails[u.Email]; exists {
		return nil, ErrDuplicateEmail
	}
	m.s.lastUserID++
	stored := *u
	stored.ID = m.s.lastUserID
	m.s.users[stored.ID] = &stored
	m.s.userEmails[stored.Email] = stored.ID
	out := stored
	return &out, nil
}

func (m memoryUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	id, ok := m.s.userEmails[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := *m.s.users[id]
	return &out, nil
}

type memoryTasks struct{ s *MemoryStore }

func copyTask(t *models.Task) *models.Task {
	out := *t
	if t.Description != nil {
		d := *t.Description
		out.Description = &d
	}
	if t.AssignedToID != nil {
		a := *t.AssignedToID
		out.AssignedToID = &a
	}
	return &out
}

func (m memoryTasks) CreateList(_ context.Context, name string) (*models.TaskList, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.lastListID++
	l := &models.TaskList{ID: m.s.lastListID, Name: name, CreatedAt: time.Now().UTC()}
	m.s.lists[l.ID] = l
	return &models.TaskList{ID: l.ID, Name: l.Name, CreatedAt: l.CreatedAt, Tasks: []*models.Task{}}, nil
}

func (m memoryTasks) FindListByID(_ context.Context, id int) (*models.TaskList, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	l, ok := m.s.lists[id]
	if !ok {
		return nil, ErrTaskListNotFound
	}
	return &models.TaskList{
		ID:        l.ID,
		Name:      l.Name,
		CreatedAt: l.CreatedAt,
		Tasks:     m.tasksOf(id, models.TaskFilter{}),
	}, nil
}

func (m memoryTasks) FindAllLists(_ context.Context) ([]*models.TaskList, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	lists := []*models.TaskList{}
	for id := 1; id <= m.s.lastListID; id++ {
		if l, ok := m.s.lists[id]; ok {
			lists = append(lists, &models.TaskList{ID: l.ID, Name: l.Name, CreatedAt: l.CreatedAt, Tasks: []*models.Task{}})
		}
	}
	return lists, nil
}

func (m memoryTasks) DeleteList(_ context.Context, id int) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.lists[id]; !ok {
		return ErrTaskListNotFound
	}
	delete(m.s.lists, id)
	for taskID, t := range m.s.tasks {
		if t.TaskListID == id {
			delete(m.s.tasks, taskID)
		}
	}
	return nil
}

func (m memoryTasks) CreateTask(_ context.Context, t *models.Task) (*models.Task, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.lists[t.TaskListID]; !ok {
		return nil, ErrTaskListNotFound
	}
	m.s.lastTaskID++
	stored := copyTask(t)
	stored.ID = m.s.lastTaskID
	stored.CreatedAt = time.Now().UTC()
	m.s.tasks[stored.ID] = stored
	return copyTask(stored), nil
}

func (m memoryTasks) ListTasks(_ context.Context, listID int, filter models.TaskFilter) ([]*models.Task, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return m.tasksOf(listID, filter), nil
}

// tasksOf は呼び出し側がロックを保持している前提です。
func (m memoryTasks) tasksOf(listID int, filter models.TaskFilter) []*models.Task {
	tasks := []*models.Task{}
	for id := 1; id <= m.s.lastTaskID; id++ {
		t, ok := m.s.tasks[id]
		if !ok || t.TaskListID != listID || !filter.Matches(t) {
			continue
		}
		tasks = append(tasks, copyTask(t))
	}
	return tasks
}

func (m memoryTasks) FindTaskByID(_ context.Context, id int) (*models.Task, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	t, ok := m.s.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return copyTask(t), nil
}

func (m memoryTasks) UpdateTask(_ context.Context, t *models.Task) (*models.Task, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stored, ok := m.s.tasks[t.ID]
	if !ok {
		return nil, ErrTaskNotFound
	}
	updated := copyTask(t)
	stored.Title = updated.Title
	stored.Description = updated.Description
	stored.Priority = updated.Priority
	stored.Completed = updated.Completed
	return copyTask(stored), nil
}

func (m memoryTasks) DeleteTask(_ context.Context, id int) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.tasks[id]; !ok {
		return ErrTaskNotFound
	}
	delete(m.s.tasks, id)
	return nil
}

func (m memoryTasks) AssignUser(_ context.Context, taskID, userID int) (*models.Task, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	t, ok := m.s.tasks[taskID]
	if !ok {
		return nil, nil
	}
	if _, ok := m.s.users[userID]; !ok {
		return nil, ErrUserNotFound
	}
	id := userID
	t.AssignedToID = &id
	return copyTask(t), nil
}
