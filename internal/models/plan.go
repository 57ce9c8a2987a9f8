// Package models содержит доменные структуры планов, профилей и пользователей,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import (
	"bytes"
	"encoding/json"
	"time"
)

const (
	// TitleMaxLen максимальная длина заголовка плана в символах.
	TitleMaxLen = 100
	// DescriptionMaxLen максимальная длина описания плана в символах.
	DescriptionMaxLen = 500
)

// Plan представляет задачу пользователя с дедлайном.
type Plan struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	DueDate     time.Time `json:"due_date"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// DummyPlan используется для приёма данных нового плана из JSON-запроса.
// Дата и время приходят строками и собираются в один момент времени сервисом.
type DummyPlan struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description,omitempty"`
	DueDate     string  `json:"due_date" validate:"required"`
	DueTime     string  `json:"due_time,omitempty"`
}

// DummyPlanPatch частичное обновление плана.
//
// Поля id, user_id и created_at принимаются, чтобы не считать их неизвестными,
// но никогда не применяются.
type DummyPlanPatch struct {
	Title       *string        `json:"title,omitempty"`
	Description OptionalString `json:"description"`
	DueDate     *string        `json:"due_date,omitempty"`
	DueTime     *string        `json:"due_time,omitempty"`
	Completed   *bool          `json:"completed,omitempty"`

	ID        json.RawMessage `json:"id,omitempty" swaggerignore:"true"`
	UserID    json.RawMessage `json:"user_id,omitempty" swaggerignore:"true"`
	CreatedAt json.RawMessage `json:"created_at,omitempty" swaggerignore:"true"`
}

// PlanPatch проверенные изменения, которые передаются в хранилище.
// nil означает «не менять».
type PlanPatch struct {
	Title          *string
	SetDescription bool
	Description    *string
	DueDate        *time.Time
	Completed      *bool
}

// Empty сообщает, что патч ничего не меняет.
func (p PlanPatch) Empty() bool {
	return p.Title == nil && !p.SetDescription && p.DueDate == nil && p.Completed == nil
}

// OptionalString различает отсутствующее поле, явный null и строковое значение.
type OptionalString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON вызывается только если поле присутствует в JSON.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// ToggleRequest текущее значение флага completed, которое нужно инвертировать.
type ToggleRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}

// PlanStats сводка по планам пользователя для дашборда.
type PlanStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Overdue   int `json:"overdue"`
}

// Dashboard данные главной страницы пользователя.
type Dashboard struct {
	Greeting string    `json:"greeting"`
	Stats    PlanStats `json:"stats"`
	Upcoming []*Plan   `json:"upcoming"`
	Plans    []*Plan   `json:"plans"`
	Profile  *Profile  `json:"profile,omitempty"`
	Now      time.Time `json:"now"`
}
