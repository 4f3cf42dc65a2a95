// Package driver runs one generation round over the marked declarations
// discovered by the host.
package driver

import (
	"strings"

	"github.com/toyz/delegen/internal/errors"
	"github.com/toyz/delegen/internal/filter"
	"github.com/toyz/delegen/internal/models"
	"github.com/toyz/delegen/internal/synth"
	"github.com/toyz/delegen/internal/utils"
)

// Emitter writes the generated unit of one declaration
type Emitter interface {
	Emit(decl models.TypeDeclaration, iface models.GeneratedInterfaceModel, delegate models.GeneratedDelegateModel) (models.GeneratedUnit, error)
}

// Result is the outcome of one round
type Result struct {
	Generated []models.GeneratedUnit   // units written this round
	Deferred  []models.TypeDeclaration // declarations to retry in a later round
	Skipped   []models.TypeDeclaration // declarations of a variant that is not generated
	Errors    *errors.MultipleErrors   // per-declaration failures
}

// Progressed reports whether the round generated anything
func (r Result) Progressed() bool {
	return len(r.Generated) > 0
}

// Driver validates candidates and runs filter, synthesis and emission
// for each one. A failing declaration never affects its siblings.
type Driver struct {
	policy  filter.Policy
	emitter Emitter
	logger  utils.Logger
}

// New creates a driver
func New(policy filter.Policy, emitter Emitter, logger utils.Logger) *Driver {
	return &Driver{policy: policy, emitter: emitter, logger: logger}
}

// Process runs one round over candidates. Declarations whose types cannot
// be resolved yet are returned in Result.Deferred without being generated.
func (d *Driver) Process(candidates []models.TypeDeclaration) Result {
	result := Result{Errors: errors.NewMultipleErrors()}
	d.logger.Info("Processing %d marked declaration(s)", len(candidates))

	for _, decl := range candidates {
		if decl.Kind != models.DeclarationClass {
			d.logger.Debug("Skipping %s: %s declarations are not generated", decl.Key(), decl.Kind)
			result.Skipped = append(result.Skipped, decl)
			continue
		}

		if decl.IsPending() {
			d.logger.Debug("Deferring %s: unresolved %s", decl.Key(), strings.Join(decl.Unresolved, ", "))
			result.Deferred = append(result.Deferred, decl)
			continue
		}

		unit, err := d.generate(decl)
		if err != nil {
			d.logger.Error("%v", err)
			result.Errors.Add(asDelegenError(decl, err))
			continue
		}
		result.Generated = append(result.Generated, unit)
	}

	return result
}

func (d *Driver) generate(decl models.TypeDeclaration) (models.GeneratedUnit, error) {
	loc := errors.SourceLocation{File: decl.File, Line: decl.Line}

	if err := decl.Validate(); err != nil {
		return models.GeneratedUnit{}, errors.NewValidationError(decl.Key(), err).WithLocation(loc)
	}
	if err := checkCollisions(decl); err != nil {
		return models.GeneratedUnit{}, err
	}

	members := filter.Members(d.policy.With(decl.Exclude...), decl.Members)
	d.logger.Debug("%s: %d of %d member(s) kept", decl.Key(), len(members), len(decl.Members))
	for _, m := range members {
		d.logger.Debug("  %s.%s", decl.Name, m.Name)
	}

	iface, err := synth.Interface(decl, members)
	if err != nil {
		return models.GeneratedUnit{}, err
	}
	delegate, err := synth.Delegate(decl, members)
	if err != nil {
		return models.GeneratedUnit{}, err
	}

	unit, err := d.emitter.Emit(decl, iface, delegate)
	if err != nil {
		return models.GeneratedUnit{}, err
	}

	d.logger.Info("Generated %s and %s for %s", iface.Name, delegate.Name, decl.Key())
	return unit, nil
}

// checkCollisions fails when the package already declares a generated name
func checkCollisions(decl models.TypeDeclaration) error {
	reserved := make(map[string]bool, len(decl.ReservedNames))
	for _, n := range decl.ReservedNames {
		reserved[n] = true
	}
	for _, name := range synth.GeneratedNames(decl.Name) {
		if reserved[name] {
			return errors.NewNameCollisionError(decl.Key(), name).
				WithLocation(errors.SourceLocation{File: decl.File, Line: decl.Line})
		}
	}
	return nil
}

func asDelegenError(decl models.TypeDeclaration, err error) errors.DelegenError {
	var de errors.DelegenError
	if errors.As(err, &de) {
		return de
	}
	return errors.WrapGenerateError(decl.Key(), err)
}
