package pipeline

import (
	"fmt"
	"time"
)

// Stage names the four pipeline phases, in their only legal order.
type Stage string

const (
	StageCheckBalance   Stage = "check-balance"
	StageProcessPayment Stage = "process-payment"
	StageUpload         Stage = "upload"
	StageSummary        Stage = "summary"
)

// StageEvent is one entry of the ordered, append-only progress log carried
// in the pipeline report. Consumers (CLI, UI, tests) render it however they
// like; nothing here fires during the call itself.
type StageEvent struct {
	Stage   Stage     `json:"stage"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

func (e StageEvent) String() string {
	return fmt.Sprintf("[%s] %s", e.Stage, e.Message)
}

type eventLog struct {
	events []StageEvent
}

func (l *eventLog) add(stage Stage, format string, args ...interface{}) {
	l.events = append(l.events, StageEvent{
		Stage:   stage,
		Message: fmt.Sprintf(format, args...),
		At:      time.Now(),
	})
}
