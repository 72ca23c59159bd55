// Package app reads the application graph: the tasks of an application, their priorities and
// bindings, and the resources they share.
package app

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"omibyte.io/rtic/pcp"
)

type TaskKind uint8

const (
	Hardware TaskKind = iota
	Software
	Idle
)

func (k TaskKind) String() string {
	switch k {
	case Hardware:
		return "hardware"
	case Software:
		return "software"
	case Idle:
		return "idle"
	default:
		return "unknown"
	}
}

type Config struct {
	Name    string `yaml:"name"`
	Package string `yaml:"package"`

	// Device is the import path of the device package declaring the interrupt vector names.
	Device string `yaml:"device"`

	Backend     string   `yaml:"backend"`
	BackendArgs []string `yaml:"backendArgs"`
	Target      string   `yaml:"target"`

	// Dispatchers are free interrupts used to run software tasks.
	Dispatchers []string `yaml:"dispatchers"`
}

type Task struct {
	Name     string    `yaml:"name"`
	Priority pcp.Level `yaml:"priority"`

	// Binds is the interrupt a hardware task runs on.
	Binds    string `yaml:"binds"`
	Software bool   `yaml:"software"`
	Idle     bool   `yaml:"idle"`

	// Handler is the Go function implementing the task. Defaults to the task name.
	Handler string `yaml:"handler"`
}

func (t Task) Kind() TaskKind {
	switch {
	case t.Idle:
		return Idle
	case t.Software:
		return Software
	default:
		return Hardware
	}
}

func (t Task) HandlerName() string {
	if t.Handler != "" {
		return t.Handler
	}
	return t.Name
}

type Resource struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`

	// Init is a Go expression for the initial value. The zero value is used when empty.
	Init      string   `yaml:"init"`
	Accessors []string `yaml:"accessors"`
}

type App struct {
	Config    Config     `yaml:"app"`
	Tasks     []Task     `yaml:"tasks"`
	Resources []Resource `yaml:"resources"`
}

// Load reads and validates an application graph file.
func Load(path string) (*App, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	a, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// Parse decodes and validates an application graph. Unknown fields are rejected.
func Parse(data []byte) (*App, error) {
	var a App
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&a); err != nil {
		return nil, err
	}
	if a.Config.Package == "" {
		a.Config.Package = "main"
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

func (a *App) Task(name string) (Task, bool) {
	i := slices.IndexFunc(a.Tasks, func(t Task) bool {
		return t.Name == name
	})
	if i < 0 {
		return Task{}, false
	}
	return a.Tasks[i], true
}

// TasksOf returns the tasks of one kind in declaration order.
func (a *App) TasksOf(kind TaskKind) []Task {
	var tasks []Task
	for _, t := range a.Tasks {
		if t.Kind() == kind {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

func (a *App) IdleTask() (Task, bool) {
	idle := a.TasksOf(Idle)
	if len(idle) == 0 {
		return Task{}, false
	}
	return idle[0], true
}

// CheckPriorities reports the first task whose priority does not fit in max.
func (a *App) CheckPriorities(max pcp.Level) error {
	for _, t := range a.Tasks {
		if t.Priority > max {
			return graphErrorf(ErrPriority, "task %s has priority %d, the target supports at most %d", t.Name, t.Priority, max)
		}
	}
	return nil
}
