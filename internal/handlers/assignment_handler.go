package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JulianRp2177/api-task-manager/internal/models"
	"github.com/JulianRp2177/api-task-manager/internal/services"
)

// AssignmentHandler はタスク割り当てのハンドラーです。
type AssignmentHandler struct {
	assignmentService *services.AssignmentService
}

// NewAssignmentHandler は新しいAssignmentHandlerを作成します。
func NewAssignmentHandler(assignmentService *services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

// AssignTaskHandler はタスクをメールアドレスで指定したユーザーに割り当てます。
func (h *AssignmentHandler) AssignTaskHandler(c *gin.Context) {
	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithDetail(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	message, err := h.assignmentService.Assign(c.Request.Context(), taskID, req.UserEmail)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}
