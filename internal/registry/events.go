package registry

type EventKind string

const (
	EventPlotCreated   EventKind = "plot_created"
	EventPlanInstalled EventKind = "plan_installed"
	EventTaskUpdated   EventKind = "task_updated"
	EventPlotDeleted   EventKind = "plot_deleted"
)

type Event struct {
	Kind   EventKind
	PlotID string
	TaskID string
}

// Listener is called synchronously after a mutation has been applied.
type Listener func(Event)

// Subscribe registers fn and returns a function that removes it.
func (r *Registry) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	id := r.nextSubID
	r.nextSubID++
	r.listeners[id] = fn
	return func() { delete(r.listeners, id) }
}

func (r *Registry) emit(ev Event) {
	for id := 0; id < r.nextSubID; id++ {
		if fn, ok := r.listeners[id]; ok {
			fn(ev)
		}
	}
}
