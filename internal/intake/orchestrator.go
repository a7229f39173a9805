package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

var (
	// ErrUnknownForm is returned for a form name that is not registered.
	ErrUnknownForm = errors.New("unknown form")

	// ErrSubmissionInFlight is returned when a draft is submitted while a
	// previous submission of the same draft is still running.
	ErrSubmissionInFlight = errors.New("submission already in flight")
)

// submissionTokenField is the hidden field clients use to tag a draft. Two
// submissions carrying the same token are the same draft (a double click,
// a retried request); submissions with different tokens, or none, are
// independent. The token never reaches the schema or the submitter.
const submissionTokenField = "submission_id"

// Submitter hands an accepted, normalized submission to the backing services
// and returns the identifier of the record it produced.
type Submitter interface {
	Submit(ctx context.Context, form string, values map[string]string) (string, error)
}

// SubmitResult is the outcome of an accepted submission.
type SubmitResult struct {
	RecordID string `json:"record_id"`
	Redirect string `json:"redirect"`
}

// Orchestrator owns the registered forms and their submission state. Each
// draft is single-flight: while a tagged submission is running, a second
// submit of the same draft is rejected rather than queued. Drafts of other
// clients are never affected.
type Orchestrator struct {
	forms     map[string]*Form
	submitter Submitter
	logger    zerolog.Logger

	mu         sync.Mutex
	submitting map[string]bool
}

func NewOrchestrator(forms map[string]*Form, submitter Submitter, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		forms:      forms,
		submitter:  submitter,
		logger:     logger,
		submitting: make(map[string]bool),
	}
}

// Form returns a registered form by name.
func (o *Orchestrator) Form(name string) (*Form, error) {
	f, ok := o.forms[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownForm, name)
	}
	return f, nil
}

// FormNames returns the registered form names.
func (o *Orchestrator) FormNames() []string {
	names := make([]string, 0, len(o.forms))
	for name := range o.forms {
		names = append(names, name)
	}
	return names
}

func (o *Orchestrator) acquire(key string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.submitting[key] {
		return false
	}
	o.submitting[key] = true
	return true
}

func (o *Orchestrator) release(key string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.submitting, key)
}

// Submit validates a submission and, when it is accepted, invokes the
// submitter exactly once. Rejected values never reach the submitter; the
// caller keeps the draft either way, so a failed submission can simply be
// retried.
func (o *Orchestrator) Submit(ctx context.Context, name string, values map[string]string) (*SubmitResult, FieldErrors, error) {
	form, err := o.Form(name)
	if err != nil {
		return nil, nil, err
	}

	if token := values[submissionTokenField]; token != "" {
		key := name + ":" + token
		if !o.acquire(key) {
			return nil, nil, fmt.Errorf("%w: %s", ErrSubmissionInFlight, name)
		}
		defer o.release(key)
	}

	normalized, fieldErrs := form.Schema.Validate(values)
	if fieldErrs != nil {
		return nil, fieldErrs, nil
	}

	recordID, err := o.submitter.Submit(ctx, name, normalized)
	if err != nil {
		o.logger.Error().Err(err).Str("form", name).Msg("submission failed")
		return nil, nil, fmt.Errorf("submit %s: %w", name, err)
	}

	return &SubmitResult{
		RecordID: recordID,
		Redirect: fmt.Sprintf(form.SuccessRoute, recordID),
	}, nil, nil
}
