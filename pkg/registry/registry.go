// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// ActivityRegistry lists the task types this service implements.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

type Activity struct {
	ID           string                 `json:"id"`
	DisplayName  string                 `json:"displayName"`
	Description  string                 `json:"description"`
	Category     string                 `json:"category"`
	Version      string                 `json:"version"`
	TaskType     string                 `json:"taskType"`
	Status       string                 `json:"implementationStatus"`
	InputSchema  map[string]interface{} `json:"inputSchema"`
	OutputSchema map[string]interface{} `json:"outputSchema"`
	ErrorCodes   []string               `json:"errorCodes"`
	Timeout      string                 `json:"timeout"`
	Retries      int                    `json:"retries"`
	Workflows    []string               `json:"workflows"`
	Tags         []string               `json:"tags"`
}

//go:embed activities.json
var defaultRegistryData []byte

var (
	defaultRegistry     *ActivityRegistry
	defaultRegistryErr  error
	defaultRegistryOnce sync.Once
)

// Default returns the registry compiled into the binary.
func Default() (*ActivityRegistry, error) {
	defaultRegistryOnce.Do(func() {
		defaultRegistry, defaultRegistryErr = Parse(defaultRegistryData)
	})
	return defaultRegistry, defaultRegistryErr
}

// MustDefault is Default for package initialisation; it panics on a broken
// embedded registry.
func MustDefault() *ActivityRegistry {
	reg, err := Default()
	if err != nil {
		panic(err)
	}
	return reg
}

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates a registry document.
func Parse(data []byte) (*ActivityRegistry, error) {
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse activity registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Lookup finds the activity registered for taskType.
func (r *ActivityRegistry) Lookup(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// Validate checks that every activity is addressable and carries usable
// schemas and timeouts.
func (r *ActivityRegistry) Validate() error {
	var problems []string
	ids := make(map[string]struct{})
	taskTypes := make(map[string]struct{})

	for i, a := range r.Activities {
		name := a.ID
		if name == "" {
			name = fmt.Sprintf("activities[%d]", i)
			problems = append(problems, name+": id is required")
		}
		if _, dup := ids[a.ID]; dup && a.ID != "" {
			problems = append(problems, name+": duplicate id")
		}
		ids[a.ID] = struct{}{}

		if a.TaskType == "" {
			problems = append(problems, name+": taskType is required")
		} else if _, dup := taskTypes[a.TaskType]; dup {
			problems = append(problems, name+": duplicate taskType "+a.TaskType)
		}
		taskTypes[a.TaskType] = struct{}{}

		if len(a.InputSchema) == 0 {
			problems = append(problems, name+": inputSchema is required")
		}
		if a.Timeout != "" {
			if _, err := time.ParseDuration(a.Timeout); err != nil {
				problems = append(problems, fmt.Sprintf("%s: invalid timeout %q", name, a.Timeout))
			}
		}
		if a.Retries < 0 {
			problems = append(problems, name+": retries must not be negative")
		}
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("invalid activity registry: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InputSchemaJSON returns the activity's input schema as a JSON document.
func (a *Activity) InputSchemaJSON() ([]byte, error) {
	return json.Marshal(a.InputSchema)
}

func (a *Activity) OutputSchemaJSON() ([]byte, error) {
	return json.Marshal(a.OutputSchema)
}

// TimeoutDuration parses Timeout, returning fallback when it is unset.
func (a *Activity) TimeoutDuration(fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(a.Timeout); err == nil && d > 0 {
		return d
	}
	return fallback
}
