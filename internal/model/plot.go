package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPlotIDRequired   = errors.New("model: plot id is required")
	ErrPlotNameRequired = errors.New("model: plot name is required")
	ErrPlotCropRequired = errors.New("model: plot crop is required")
	ErrDuplicateTaskID  = errors.New("model: duplicate task id in plan")
)

// Plot is a tracked piece of land. HasPlan distinguishes "no plan generated
// yet" from an installed plan that happens to be empty.
type Plot struct {
	ID            string     `yaml:"id"`
	Name          string     `yaml:"name"`
	PrimaryCrop   string     `yaml:"primary_crop"`
	SoilType      string     `yaml:"soil_type"`
	Dimension     string     `yaml:"dimension"`
	HasPlan       bool       `yaml:"has_plan"`
	Plan          []TaskItem `yaml:"plan,omitempty"`
	PlanStartDate *time.Time `yaml:"plan_start_date,omitempty"`
}

func NewPlot(name, crop, soilType, dimension string) Plot {
	return Plot{
		ID:          uuid.NewString(),
		Name:        name,
		PrimaryCrop: crop,
		SoilType:    soilType,
		Dimension:   dimension,
	}
}

func (p Plot) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrPlotIDRequired
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrPlotNameRequired
	}
	if strings.TrimSpace(p.PrimaryCrop) == "" {
		return ErrPlotCropRequired
	}
	seen := make(map[string]struct{}, len(p.Plan))
	for _, task := range p.Plan {
		if err := task.Validate(); err != nil {
			return err
		}
		if _, dup := seen[task.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateTaskID, task.ID)
		}
		seen[task.ID] = struct{}{}
	}
	return nil
}

func (p Plot) Clone() Plot {
	out := p
	out.PlanStartDate = cloneTime(p.PlanStartDate)
	if p.Plan != nil {
		out.Plan = make([]TaskItem, len(p.Plan))
		for i, task := range p.Plan {
			out.Plan[i] = task.Clone()
		}
	}
	return out
}

func (p Plot) TaskIndex(taskID string) int {
	for i, task := range p.Plan {
		if task.ID == taskID {
			return i
		}
	}
	return -1
}

// PlanSummary reports how many plan tasks are completed out of the total.
func (p Plot) PlanSummary() (completed int, total int) {
	for _, task := range p.Plan {
		if task.IsCompleted {
			completed++
		}
	}
	return completed, len(p.Plan)
}
