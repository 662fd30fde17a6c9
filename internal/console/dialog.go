package console

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

// DialogPhase is the invite dialog lifecycle state.
type DialogPhase string

const (
	PhaseClosed      DialogPhase = "closed"
	PhaseResetting   DialogPhase = "resetting"
	PhaseConfiguring DialogPhase = "configuring"
	PhaseVisible     DialogPhase = "visible"
)

const inviteFailedFallback = "Failed to send invitation"

// InviteForm holds the invite dialog fields.
type InviteForm struct {
	Email           string      `json:"email" validate:"required,email"`
	Role            models.Role `json:"role" validate:"required,oneof=site_admin institution_admin program_admin instructor student"`
	FirstName       string      `json:"first_name" validate:"max=100"`
	LastName        string      `json:"last_name" validate:"max=100"`
	PersonalMessage string      `json:"personal_message" validate:"max=1000"`
	ProgramIDs      []string    `json:"program_ids"`
	SectionID       string      `json:"section_id"`
}

// OpenOptions is the caller context passed when opening the invite dialog.
type OpenOptions struct {
	Workflow        string
	Email           string
	Role            models.Role
	FirstName       string
	LastName        string
	SectionID       string
	ProgramIDs      []string
	PersonalMessage string
}

// Dialog is the shared invite dialog surface.
type Dialog struct {
	Phase            DialogPhase
	Workflow         string
	Form             InviteForm
	SectionVisible   bool
	ProgramsVisible  bool
	ProgramsRequired bool
	Errors           map[string]string

	generation uint64
	settled    chan struct{}
}

// DialogView is a copy of the dialog for rendering.
type DialogView struct {
	Phase            DialogPhase       `json:"phase"`
	Workflow         string            `json:"workflow,omitempty"`
	Form             InviteForm        `json:"form"`
	SectionVisible   bool              `json:"section_visible"`
	ProgramsVisible  bool              `json:"programs_visible"`
	ProgramsRequired bool              `json:"programs_required"`
	Errors           map[string]string `json:"errors,omitempty"`
}

func newDialog() *Dialog {
	settled := make(chan struct{})
	close(settled)
	return &Dialog{Phase: PhaseClosed, settled: settled}
}

func (d *Dialog) view() DialogView {
	form := d.Form
	form.ProgramIDs = append([]string(nil), d.Form.ProgramIDs...)
	var errs map[string]string
	if len(d.Errors) > 0 {
		errs = make(map[string]string, len(d.Errors))
		for k, v := range d.Errors {
			errs[k] = v
		}
	}
	return DialogView{
		Phase:            d.Phase,
		Workflow:         d.Workflow,
		Form:             form,
		SectionVisible:   d.SectionVisible,
		ProgramsVisible:  d.ProgramsVisible,
		ProgramsRequired: d.ProgramsRequired,
		Errors:           errs,
	}
}

func (d *Dialog) close() {
	d.Phase = PhaseClosed
	d.Errors = nil
	d.generation++
}

func newFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		form := sl.Current().Interface().(InviteForm)
		if form.Role.RequiresPrograms() && len(form.ProgramIDs) == 0 {
			sl.ReportError(form.ProgramIDs, "program_ids", "ProgramIDs", "required", "")
		}
	}, InviteForm{})
	return v
}

// OpenInviteDialog runs the selected workflow's Reset then Setup and shows the dialog.
func (c *Console) OpenInviteDialog(opts OpenOptions) DialogView {
	c.mu.Lock()
	defer c.mu.Unlock()

	name, wf := c.registry.Resolve(opts.Workflow)
	d := c.dialog
	d.generation++
	d.Errors = nil

	wctx := &WorkflowContext{
		Name:     name,
		Options:  opts,
		Dialog:   d,
		Programs: append([]models.ProgramChoice(nil), c.state.Programs...),
	}

	d.Phase = PhaseResetting
	wf.Reset(wctx)
	d.Phase = PhaseConfiguring
	wf.Setup(wctx)
	d.Phase = PhaseVisible

	settled := make(chan struct{})
	d.settled = settled
	if wctx.Deferred() {
		go c.awaitPrograms(d.generation, wctx.deferred, settled)
	} else {
		close(settled)
	}

	c.logger.Debug("invite dialog opened", zap.String("workflow", name), zap.Bool("programs_deferred", wctx.Deferred()))
	return d.view()
}

// DialogSettled is closed once any deferred program pre-selection for the open dialog finished.
func (c *Console) DialogSettled() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dialog.settled
}

// Dialog returns the current dialog state.
func (c *Console) Dialog() DialogView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dialog.view()
}

// UpdateInviteForm edits the visible form. The program affordance follows the role.
func (c *Console) UpdateInviteForm(edit func(form *InviteForm)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dialog.Phase != PhaseVisible {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "invite dialog is not open")
	}
	edit(&c.dialog.Form)
	c.dialog.ProgramsVisible = c.dialog.Form.Role.RequiresPrograms()
	c.dialog.ProgramsRequired = c.dialog.ProgramsVisible
	return nil
}

// DismissInviteDialog closes the dialog without submitting.
func (c *Console) DismissInviteDialog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialog.close()
}

// SubmitInviteDialog validates the form locally, then creates the invitation. A validation
// failure marks the form and makes no remote call; a remote failure keeps the dialog visible.
func (c *Console) SubmitInviteDialog(ctx context.Context) (*models.CreateInvitationResult, error) {
	c.mu.Lock()
	if c.dialog.Phase != PhaseVisible {
		c.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "invite dialog is not open")
	}
	settled := c.dialog.settled
	c.mu.Unlock()

	select {
	case <-settled:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	c.mu.Lock()
	form := normaliseForm(c.dialog.Form)
	c.dialog.Form = form
	if errs := c.validateForm(form); len(errs) > 0 {
		c.dialog.Errors = errs
		c.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrValidation, "invitation form is invalid")
	}
	c.dialog.Errors = nil
	generation := c.dialog.generation
	sectionVisible := c.dialog.SectionVisible
	c.mu.Unlock()

	req := models.CreateInvitationRequest{
		Email:           form.Email,
		Role:            form.Role,
		PersonalMessage: form.PersonalMessage,
		FirstName:       form.FirstName,
		LastName:        form.LastName,
	}
	if form.Role.RequiresPrograms() {
		req.ProgramIDs = form.ProgramIDs
	}
	if sectionVisible {
		req.SectionID = form.SectionID
	}

	result, err := c.remote.CreateInvitation(ctx, req)
	if err != nil {
		c.logger.Warn("invite failed", zap.String("email", req.Email), zap.Error(err))
		c.notices.Notify(appErrors.MessageOr(err, inviteFailedFallback), ToneError)
		return nil, err
	}
	if result == nil {
		result = &models.CreateInvitationResult{}
	}

	c.mu.Lock()
	if c.dialog.generation == generation {
		c.dialog.close()
	}
	c.mu.Unlock()

	if result.Invitation != nil {
		c.events.InvitationCreated(ctx, *result.Invitation)
	}
	c.LoadInvitations(ctx)

	if result.EmailError != "" {
		c.notices.Notify(InvitationEmailFailedMessage, ToneWarning, result.EmailError)
	} else {
		message := result.Message
		if message == "" {
			message = "Invitation sent successfully"
		}
		c.notices.Notify(message, ToneSuccess)
	}
	return result, nil
}

func (c *Console) validateForm(form InviteForm) map[string]string {
	err := c.validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"form": err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}

func normaliseForm(form InviteForm) InviteForm {
	form.Email = strings.TrimSpace(form.Email)
	form.FirstName = strings.TrimSpace(form.FirstName)
	form.LastName = strings.TrimSpace(form.LastName)
	form.SectionID = strings.TrimSpace(form.SectionID)
	ids := make([]string, 0, len(form.ProgramIDs))
	for _, id := range form.ProgramIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	form.ProgramIDs = ids
	return form
}
