package cli

import (
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/toyz/delegen/internal/errors"
	"github.com/toyz/delegen/internal/models"
)

// Report summarises one generation run
type Report struct {
	RunID     string          `yaml:"run_id"`
	Module    string          `yaml:"module"`
	Patterns  []string        `yaml:"patterns"`
	StartedAt time.Time       `yaml:"started_at"`
	Duration  time.Duration   `yaml:"duration"`
	Rounds    int             `yaml:"rounds"`
	Generated []GeneratedFile `yaml:"generated"`
	Unchanged []string        `yaml:"unchanged,omitempty"`
	Failed    []Failure       `yaml:"failed,omitempty"`
	Stuck     []Failure       `yaml:"stuck,omitempty"`
}

// GeneratedFile is one output written during the run
type GeneratedFile struct {
	Declaration string `yaml:"declaration"`
	Output      string `yaml:"output"`
	Source      string `yaml:"source"`
	Round       int    `yaml:"round"`
}

// Failure is one declaration or marker that could not be generated
type Failure struct {
	Declaration string   `yaml:"declaration,omitempty"`
	Code        string   `yaml:"code"`
	Message     string   `yaml:"message"`
	Location    string   `yaml:"location,omitempty"`
	Unresolved  []string `yaml:"unresolved,omitempty"`
}

// NewReport starts the report of a run
func NewReport(module string, patterns []string) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Module:    module,
		Patterns:  append([]string(nil), patterns...),
		StartedAt: time.Now(),
	}
}

// AddGenerated records a unit written in round
func (r *Report) AddGenerated(unit models.GeneratedUnit, output string, round int) {
	r.Generated = append(r.Generated, GeneratedFile{
		Declaration: unit.Declaration,
		Output:      output,
		Source:      unit.Origin,
		Round:       round,
	})
}

// AddFailure records a failed declaration or marker
func (r *Report) AddFailure(err errors.DelegenError) {
	r.Failed = append(r.Failed, failureOf(err, nil))
}

// AddStuck records a declaration that never resolved
func (r *Report) AddStuck(err errors.DelegenError, unresolved []string) {
	r.Stuck = append(r.Stuck, failureOf(err, unresolved))
}

// Finish stamps the duration and sorts the unchanged outputs
func (r *Report) Finish(unchanged []string) {
	r.Duration = time.Since(r.StartedAt)
	r.Unchanged = append([]string(nil), unchanged...)
	sort.Strings(r.Unchanged)
}

// Stats returns the counters shown in the run summary
func (r *Report) Stats() map[string]interface{} {
	return map[string]interface{}{
		"Rounds":    r.Rounds,
		"Generated": len(r.Generated),
		"Unchanged": len(r.Unchanged),
		"Failed":    len(r.Failed),
		"Stuck":     len(r.Stuck),
	}
}

// OK reports whether every declaration was generated
func (r *Report) OK() bool {
	return len(r.Failed) == 0 && len(r.Stuck) == 0
}

// WriteYAML writes the report to path
func (r *Report) WriteYAML(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return errors.WrapFileSystemError("encode", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.WrapFileSystemError("write", path, err)
	}
	return nil
}

func failureOf(err errors.DelegenError, unresolved []string) Failure {
	f := Failure{
		Code:       err.ErrorCode().String(),
		Message:    err.Error(),
		Unresolved: unresolved,
	}
	if decl, ok := err.Context()["declaration"].(string); ok {
		f.Declaration = decl
	}
	if loc := err.Location(); !loc.IsEmpty() {
		f.Location = loc.String()
	}
	return f
}
