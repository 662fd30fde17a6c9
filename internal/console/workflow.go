package console

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/sma-adp-console/internal/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

// Built-in workflow names.
const (
	DefaultWorkflow           = "default"
	SectionAssignmentWorkflow = "sectionAssignment"
)

// Workflow initialises the shared invite dialog for one calling context. Reset always runs
// before Setup. Both run with the console lock held and must not call back into the Console.
type Workflow interface {
	Reset(ctx *WorkflowContext)
	Setup(ctx *WorkflowContext)
}

// WorkflowFuncs adapts a pair of functions to Workflow. A nil function is a no-op.
type WorkflowFuncs struct {
	ResetFunc func(ctx *WorkflowContext)
	SetupFunc func(ctx *WorkflowContext)
}

// Reset calls ResetFunc.
func (w WorkflowFuncs) Reset(ctx *WorkflowContext) {
	if w.ResetFunc != nil {
		w.ResetFunc(ctx)
	}
}

// Setup calls SetupFunc.
func (w WorkflowFuncs) Setup(ctx *WorkflowContext) {
	if w.SetupFunc != nil {
		w.SetupFunc(ctx)
	}
}

// WorkflowContext is what a workflow sees while the dialog opens.
type WorkflowContext struct {
	Name     string
	Options  OpenOptions
	Dialog   *Dialog
	Programs []models.ProgramChoice

	deferred []string
}

// SelectPrograms pre-selects program ids. When the program choices have not been loaded yet the
// selection is applied once they are ready, or after the fallback delay.
func (w *WorkflowContext) SelectPrograms(ids []string) {
	if len(ids) == 0 {
		return
	}
	if len(w.Programs) > 0 {
		w.Dialog.Form.ProgramIDs = knownPrograms(ids, w.Programs)
		w.deferred = nil
		return
	}
	w.deferred = append([]string(nil), ids...)
}

// Deferred reports whether program pre-selection is waiting on the program choices.
func (w *WorkflowContext) Deferred() bool {
	return len(w.deferred) > 0
}

// DefaultReset returns the dialog to its blank baseline.
func DefaultReset(ctx *WorkflowContext) {
	d := ctx.Dialog
	d.Form = InviteForm{}
	d.Workflow = ""
	d.SectionVisible = false
	d.ProgramsVisible = false
	d.ProgramsRequired = false
	d.Errors = nil
}

// DefaultSetup applies the open options: section affordance, role resolution, program
// affordance, name and email prefill and program pre-selection.
func DefaultSetup(ctx *WorkflowContext) {
	opts := ctx.Options
	d := ctx.Dialog

	sectionID := strings.TrimSpace(opts.SectionID)
	if sectionID != "" {
		d.SectionVisible = true
		d.Form.SectionID = sectionID
	}

	role := d.Form.Role
	switch {
	case opts.Role != "":
		role = opts.Role
	case sectionID != "":
		role = models.RoleInstructor
	}
	d.Form.Role = role
	d.ProgramsVisible = role.RequiresPrograms()
	d.ProgramsRequired = role.RequiresPrograms()

	if opts.Email != "" {
		d.Form.Email = strings.TrimSpace(opts.Email)
	}
	if opts.FirstName != "" {
		d.Form.FirstName = strings.TrimSpace(opts.FirstName)
	}
	if opts.LastName != "" {
		d.Form.LastName = strings.TrimSpace(opts.LastName)
	}
	if opts.PersonalMessage != "" {
		d.Form.PersonalMessage = opts.PersonalMessage
	}

	ctx.SelectPrograms(opts.ProgramIDs)
}

var defaultWorkflow = WorkflowFuncs{ResetFunc: DefaultReset, SetupFunc: DefaultSetup}

// sectionAssignment composes the default workflow and stamps its name on the dialog.
var sectionAssignment = WorkflowFuncs{
	ResetFunc: defaultWorkflow.Reset,
	SetupFunc: func(ctx *WorkflowContext) {
		defaultWorkflow.Setup(ctx)
		ctx.Dialog.Workflow = SectionAssignmentWorkflow
	},
}

// Registry maps workflow names to strategies. Unknown or empty names resolve to the default.
type Registry struct {
	mu        sync.RWMutex
	workflows map[string]Workflow
}

// NewRegistry returns a registry holding the built-in workflows.
func NewRegistry() *Registry {
	return &Registry{workflows: map[string]Workflow{
		DefaultWorkflow:           defaultWorkflow,
		SectionAssignmentWorkflow: sectionAssignment,
	}}
}

// Register adds or replaces a workflow.
func (r *Registry) Register(name string, wf Workflow) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return appErrors.Clone(appErrors.ErrValidation, "workflow name is required")
	}
	if wf == nil {
		return appErrors.Clone(appErrors.ErrValidation, "workflow is required")
	}

	r.mu.Lock()
	r.workflows[name] = wf
	r.mu.Unlock()
	return nil
}

// Resolve returns the workflow registered under name together with the name actually used.
func (r *Registry) Resolve(name string) (string, Workflow) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if wf, ok := r.workflows[name]; ok && name != "" {
		return name, wf
	}
	return DefaultWorkflow, r.workflows[DefaultWorkflow]
}

// Names lists the registered workflow names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.workflows))
	for name := range r.workflows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// awaitPrograms applies a deferred pre-selection once the program choices are ready or the
// fallback delay elapses, unless the dialog was closed or reopened meanwhile.
func (c *Console) awaitPrograms(generation uint64, ids []string, settled chan struct{}) {
	defer close(settled)

	timer := time.NewTimer(c.programsWait)
	defer timer.Stop()

	select {
	case <-c.programsReady:
	case <-timer.C:
		c.logger.Debug("program choices not ready, applying pre-selection after fallback delay")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dialog.generation != generation || c.dialog.Phase != PhaseVisible {
		return
	}
	c.dialog.Form.ProgramIDs = knownPrograms(ids, c.state.Programs)
}

func knownPrograms(ids []string, programs []models.ProgramChoice) []string {
	known := make(map[string]struct{}, len(programs))
	for _, p := range programs {
		known[p.ID] = struct{}{}
	}
	selected := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := known[id]; ok {
			selected = append(selected, id)
		}
	}
	return selected
}
