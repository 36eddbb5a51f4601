// Package tasks runs the background jobs of the server, currently the
// periodic control definition sync, and exposes their status and logs to the
// admin API.
package tasks

import (
	"fmt"
	"sync"
	"time"
)

const MaxLogsPerTask = 1000

type TaskNotFoundError struct {
	Name string
}

func (e TaskNotFoundError) Error() string {
	return fmt.Sprintf("task '%s' not found", e.Name)
}

type Manager struct {
	tasks sync.Map
}

func NewManager() *Manager {
	return &Manager{}
}

// Register adds a task. With a positive interval the task runs once
// immediately and then on every tick, so a registered control sync populates
// the store at startup instead of waiting a full interval.
func (m *Manager) Register(name string, interval time.Duration, fn TaskFunc) {
	task := &RunnableTask{
		Name:         name,
		Interval:     interval,
		Handler:      fn,
		registeredAt: time.Now(),
		Logs:         make([]LogEntry, 0),
	}
	m.tasks.Store(name, task)

	if interval > 0 {
		// TODO: more robust scheduling
		go m.scheduler(task)
	}
}

func (m *Manager) Trigger(name string) error {
	t, ok := m.tasks.Load(name)
	if !ok {
		return TaskNotFoundError{Name: name}
	}
	task := t.(*RunnableTask)
	go task.Run()
	return nil
}

func (m *Manager) ListStatus() []TaskStatus {
	var list []TaskStatus
	m.tasks.Range(func(key, value any) bool {
		task := value.(*RunnableTask)
		list = append(list, task.Status())
		return true
	})
	return list
}

func (m *Manager) GetLogs(name string) ([]LogEntry, error) {
	t, ok := m.tasks.Load(name)
	if !ok {
		return nil, TaskNotFoundError{Name: name}
	}
	task := t.(*RunnableTask)
	return task.GetLogs(), nil
}

func (m *Manager) scheduler(task *RunnableTask) {
	task.Run()

	ticker := time.NewTicker(task.Interval)
	for range ticker.C {
		task.Run()
	}
}
