package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/agroplan/internal/model"
)

type Type string

const (
	TypePlot   Type = "plot"
	TypePlan   Type = "plan"
	TypeDone   Type = "done"
	TypeAsk    Type = "ask"
	TypeDelete Type = "delete"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type PlotArgs struct {
	Name      string
	Crop      string
	SoilType  string
	Dimension string
}

type PlanArgs struct {
	Start time.Time
}

// DoneArgs.Number is the 1-based position of the task in the plan.
type DoneArgs struct {
	Number int
}

type AskArgs struct {
	Question string
}

type Command struct {
	Type Type
	Raw  string
	Plot *PlotArgs
	Plan *PlanArgs
	Done *DoneArgs
	Ask  *AskArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	head, rest, _ := strings.Cut(raw, " ")
	rest = strings.TrimSpace(rest)

	switch Type(strings.ToLower(head)) {
	case TypePlot:
		return parsePlot(input, rest)
	case TypePlan:
		return parsePlan(input, rest)
	case TypeDone:
		return parseDone(input, rest)
	case TypeAsk:
		return parseAsk(input, rest)
	case TypeDelete:
		return Command{Type: TypeDelete, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

// parsePlot reads "name | crop | soil | dimension"; soil and dimension may
// be omitted.
func parsePlot(raw, rest string) (Command, error) {
	fields := strings.Split(rest, "|")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	for len(fields) < 4 {
		fields = append(fields, "")
	}
	if len(fields) > 4 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "plot takes at most 4 fields: name | crop | soil | dimension"}
	}
	if fields[0] == "" || fields[1] == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "plot requires a name and a crop"}
	}
	return Command{Type: TypePlot, Raw: raw, Plot: &PlotArgs{
		Name:      fields[0],
		Crop:      fields[1],
		SoilType:  fields[2],
		Dimension: fields[3],
	}}, nil
}

func parsePlan(raw, rest string) (Command, error) {
	if rest == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "plan requires a start date (yyyy-mm-dd)"}
	}
	start, err := model.ParseDate(rest)
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid start date %q, expected yyyy-mm-dd", rest)}
	}
	return Command{Type: TypePlan, Raw: raw, Plan: &PlanArgs{Start: start}}, nil
}

func parseDone(raw, rest string) (Command, error) {
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "done requires a task number starting at 1"}
	}
	return Command{Type: TypeDone, Raw: raw, Done: &DoneArgs{Number: n}}, nil
}

func parseAsk(raw, rest string) (Command, error) {
	if rest == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "ask requires a question"}
	}
	return Command{Type: TypeAsk, Raw: raw, Ask: &AskArgs{Question: rest}}, nil
}
