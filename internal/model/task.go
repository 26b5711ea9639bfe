package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTaskIDRequired   = errors.New("model: task id is required")
	ErrTaskTextRequired = errors.New("model: task text is required")
	ErrNegativeOffset   = errors.New("model: days from start must not be negative")
)

// TaskItem is one schedulable unit of a plot's plan. Drafts carry only
// DaysFromStart; resolved tasks also carry DueDate.
type TaskItem struct {
	ID            string     `yaml:"id"`
	Text          string     `yaml:"text"`
	IsCompleted   bool       `yaml:"is_completed"`
	DueDate       *time.Time `yaml:"due_date,omitempty"`
	DaysFromStart *int       `yaml:"days_from_start,omitempty"`
}

func NewTaskItem(text string, daysFromStart *int) TaskItem {
	return TaskItem{
		ID:            uuid.NewString(),
		Text:          text,
		DaysFromStart: cloneInt(daysFromStart),
	}
}

func (t TaskItem) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrTaskIDRequired
	}
	if strings.TrimSpace(t.Text) == "" {
		return ErrTaskTextRequired
	}
	if t.DaysFromStart != nil && *t.DaysFromStart < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeOffset, *t.DaysFromStart)
	}
	return nil
}

func (t TaskItem) IsPending() bool {
	return !t.IsCompleted
}

// Clone returns a copy that shares no pointers with t.
func (t TaskItem) Clone() TaskItem {
	out := t
	out.DueDate = cloneTime(t.DueDate)
	out.DaysFromStart = cloneInt(t.DaysFromStart)
	return out
}

func Offset(days int) *int {
	return &days
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	tm := *v
	return &tm
}
