package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/JulianRp2177/api-task-manager/internal/models"
	"github.com/JulianRp2177/api-task-manager/internal/services"
)

// TaskHandler はタスクリストとタスクのハンドラーを管理します。
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler は新しいTaskHandlerを作成します。
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// CreateListHandler は新しいタスクリストを作成します。
func (h *TaskHandler) CreateListHandler(c *gin.Context) {
	var req models.TaskListCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithDetail(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	list, err := h.taskService.CreateList(c.Request.Context(), req.Name)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, list)
}

// GetListsHandler はすべてのリストを完了率付きで返します。
func (h *TaskHandler) GetListsHandler(c *gin.Context) {
	lists, err := h.taskService.ListAllLists(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, lists)
}

// GetListHandler は指定IDのリストを返します。
func (h *TaskHandler) GetListHandler(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	list, err := h.taskService.GetList(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// DeleteListHandler はリストとそのタスクを削除します。
func (h *TaskHandler) DeleteListHandler(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteList(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task list deleted successfully"})
}

// CreateTaskHandler はリスト内に新しいタスクを作成します。
func (h *TaskHandler) CreateTaskHandler(c *gin.Context) {
	listID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.TaskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithDetail(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), listID, req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// ListTasksHandler はリスト内のタスクを completed / priority で絞り込んで返します。
func (h *TaskHandler) ListTasksHandler(c *gin.Context) {
	listID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var filter models.TaskFilter
	if v, exists := c.GetQuery("completed"); exists {
		completed, err := strconv.ParseBool(v)
		if err != nil {
			abortWithDetail(c, http.StatusBadRequest, "Invalid completed filter")
			return
		}
		filter.Completed = &completed
	}
	if v, exists := c.GetQuery("priority"); exists {
		priority, err := strconv.Atoi(v)
		if err != nil {
			abortWithDetail(c, http.StatusBadRequest, "Invalid priority filter")
			return
		}
		filter.Priority = &priority
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), listID, filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// UpdateTaskHandler は指定されたフィールドだけタスクを更新します。
func (h *TaskHandler) UpdateTaskHandler(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var patch models.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abortWithDetail(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), id, patch)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTaskHandler は指定IDのタスクを削除します。
func (h *TaskHandler) DeleteTaskHandler(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
