package tasks

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/doorman-ac/doorman/internal/logging"
)

var _ logging.InternalLogger = (*taskStoreLogger)(nil)

// taskStoreLogger stores task output in the task's own log buffer, so sync
// runs can be inspected over the admin API after the fact.
type taskStoreLogger struct {
	task *RunnableTask
}

func (t *taskStoreLogger) Debug(format string, args ...any) {
	t.task.AppendLog("debug", fmt.Sprintf(format, args...))
}

func (t *taskStoreLogger) Info(format string, args ...any) {
	t.task.AppendLog("info", fmt.Sprintf(format, args...))
}

func (t *taskStoreLogger) Warn(format string, args ...any) {
	t.task.AppendLog("warn", fmt.Sprintf(format, args...))
}

func (t *taskStoreLogger) Error(format string, args ...any) {
	t.task.AppendLog("error", fmt.Sprintf(format, args...))
}

// newCompositeLogger fans task output out to the process log and the task's
// log buffer.
func newCompositeLogger(task *RunnableTask, zlog zerolog.Logger) logging.MultiLogger {
	return logging.NewMultiLogger(
		logging.NewZLogger(zlog),
		&taskStoreLogger{task: task},
	)
}
