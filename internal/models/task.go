// Package models はアプリケーションのデータ構造を定義します。
package models

import (
	"time"
)

// DefaultPriority は優先度が指定されなかったときの値です。
const DefaultPriority = 1

// TaskList はタスクをまとめる名前付きのリストです。
// CompletedPercentage は保存されず、読み出しのたびに計算されます。
type TaskList struct {
	ID                  int       `json:"id"`
	Name                string    `json:"name"`
	CreatedAt           time.Time `json:"created_at"`
	Tasks               []*Task   `json:"tasks"`
	CompletedPercentage float64   `json:"completed_percentage"`
}

type Task struct {
	ID           int       `json:"id"`
	TaskListID   int       `json:"task_list_id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description"`
	Priority     int       `json:"priority"`
	Completed    bool      `json:"completed"`
	CreatedAt    time.Time `json:"created_at"`
	AssignedToID *int      `json:"assigned_to_id,omitempty"`
}

type TaskListCreateRequest struct {
	Name string `json:"name" binding:"required"`
}

type TaskCreateRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	Priority    *int    `json:"priority"`
}

// TaskPatch は部分更新です。nil のフィールドは変更しません。
type TaskPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *int    `json:"priority"`
	Completed   *bool   `json:"completed"`
}

// Apply は指定されたフィールドだけを t に反映します。
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

// TaskFilter はタスク一覧の絞り込み条件です。nil は絞り込みなし。
type TaskFilter struct {
	Completed *bool
	Priority  *int
}

// Matches は t が全ての条件に一致するかを返します。
func (f TaskFilter) Matches(t *Task) bool {
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	return true
}

type AssignTaskRequest struct {
	UserEmail string `json:"user_email" binding:"required,email"`
}
