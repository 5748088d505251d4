package events

import "log/slog"

// LogObserver logs every event at debug level. Registered by the CLI when
// debug mode is enabled.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates a LogObserver writing to the given logger, or the
// default logger when nil.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnEvent(event Event) error {
	o.logger.Debug("event dispatched", "type", event.Type, "data", event.Data)
	return nil
}

func (o *LogObserver) Name() string { return "log" }

func (o *LogObserver) ShouldHandle(string) bool { return true }

// FuncObserver adapts a plain function into an Observer, optionally filtered
// to a single event type (empty string accepts everything).
type FuncObserver struct {
	ObserverName string
	EventType    string
	Fn           func(Event) error
}

func (o *FuncObserver) OnEvent(event Event) error { return o.Fn(event) }

func (o *FuncObserver) Name() string {
	if o.ObserverName == "" {
		return "func"
	}
	return o.ObserverName
}

func (o *FuncObserver) ShouldHandle(eventType string) bool {
	return o.EventType == "" || o.EventType == eventType
}
