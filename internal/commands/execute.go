package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Plot   func(PlotArgs) (Result, error)
	Plan   func(PlanArgs) (Result, error)
	Done   func(DoneArgs) (Result, error)
	Ask    func(AskArgs) (Result, error)
	Delete func() (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypePlot:
		if handlers.Plot == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Plot(*cmd.Plot)
	case TypePlan:
		if handlers.Plan == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Plan(*cmd.Plan)
	case TypeDone:
		if handlers.Done == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Done(*cmd.Done)
	case TypeAsk:
		if handlers.Ask == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Ask(*cmd.Ask)
	case TypeDelete:
		if handlers.Delete == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Delete()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}
