package storage

import "time"

type Plot struct {
	ID            string
	Name          string
	PrimaryCrop   string
	SoilType      string
	Dimension     string
	HasPlan       bool
	PlanStartDate *time.Time
	CreatedAt     time.Time
}

type PlanTask struct {
	ID            string
	PlotID        string
	Position      int
	Text          string
	IsCompleted   bool
	DueDate       *time.Time
	DaysFromStart *int
}

// PlotRows is one plot row together with its ordered plan.
type PlotRows struct {
	Plot  Plot
	Tasks []PlanTask
}

type PlotListFilter struct {
	WithPlanOnly bool
	Limit        int
	Offset       int
}
