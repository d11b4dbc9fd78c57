package validation

import "strings"

// Observer receives validation events emitted by a Form. Implementations
// typically forward diagnostics to the UI channel owning each field.
type Observer interface {
	// OnFieldValidated fires after every field evaluation.
	OnFieldValidated(handle string, ok bool, message string)
	// OnValidationStateChanged fires when the form-level conjunction flips.
	OnValidationStateChanged(formValid bool)
}

type formField struct {
	handle    string
	validator Validator
	required  bool

	input   string
	valid   bool
	message string
	shown   bool
}

// Form binds a declared set of field handles to validators with
// required/optional semantics and exposes a form-level validity signal.
// Forms are not safe for concurrent use; callers serialise access.
type Form struct {
	fields   []*formField
	byHandle map[string]*formField
	observer Observer
	realtime bool

	lastFormValid bool
	stateKnown    bool
}

// NewForm constructs an empty form with realtime re-evaluation enabled.
func NewForm() *Form {
	return &Form{
		byHandle: map[string]*formField{},
		realtime: true,
	}
}

// SetObserver registers the observer notified about field and form events.
func (f *Form) SetObserver(obs Observer) {
	f.observer = obs
}

// SetRealtime toggles silent revalidation on input changes. Focus-loss
// validation keeps working in either mode.
func (f *Form) SetRealtime(enabled bool) {
	f.realtime = enabled
}

// AddField declares a field with its validator and required flag. Declaring
// the same handle twice replaces the earlier binding in place.
func (f *Form) AddField(handle string, validator Validator, required bool) *Form {
	handle = strings.TrimSpace(handle)
	if handle == "" || validator == nil {
		return f
	}
	if existing, ok := f.byHandle[handle]; ok {
		existing.validator = validator
		existing.required = required
		return f
	}
	field := &formField{handle: handle, validator: validator, required: required}
	f.fields = append(f.fields, field)
	f.byHandle[handle] = field
	return f
}

// AddRequiredField declares a field that must pass its validator.
func (f *Form) AddRequiredField(handle string, validator Validator) *Form {
	return f.AddField(handle, validator, true)
}

// AddOptionalField declares a field that is valid when left blank.
func (f *Form) AddOptionalField(handle string, validator Validator) *Form {
	return f.AddField(handle, validator, false)
}

// SetInput records the field's current input. With realtime enabled the
// field is revalidated silently, mirroring typing without surfacing errors.
func (f *Form) SetInput(handle, value string) {
	field, ok := f.byHandle[handle]
	if !ok {
		return
	}
	field.input = value
	if f.realtime {
		f.validate(field, false)
	}
}

// Blur signals focus loss on the field, validating it with errors shown.
func (f *Form) Blur(handle string) {
	if field, ok := f.byHandle[handle]; ok {
		f.validate(field, true)
	}
}

// ValidateField runs the field's validator, recording validity and, when
// showError is set, exposing the diagnostic on the field.
func (f *Form) ValidateField(handle string, showError bool) bool {
	field, ok := f.byHandle[handle]
	if !ok {
		return false
	}
	return f.validate(field, showError)
}

// ValidateAll evaluates every field in declaration order with errors shown
// and returns the conjunction.
func (f *Form) ValidateAll() bool {
	allValid := true
	for _, field := range f.fields {
		if !f.validate(field, true) {
			allValid = false
		}
	}
	return allValid
}

// IsFormValid reports the conjunction of the currently recorded validities.
func (f *Form) IsFormValid() bool {
	for _, field := range f.fields {
		if !field.valid {
			return false
		}
	}
	return true
}

// FirstInvalidField returns the first invalid handle in declaration order.
func (f *Form) FirstInvalidField() (string, bool) {
	for _, field := range f.fields {
		if !field.valid {
			return field.handle, true
		}
	}
	return "", false
}

// FieldError returns the diagnostic currently exposed on the field's UI
// channel, or empty when no error is shown.
func (f *Form) FieldError(handle string) string {
	field, ok := f.byHandle[handle]
	if !ok || !field.shown {
		return ""
	}
	return field.message
}

// ClearErrors drops exposed diagnostics without changing recorded validity.
func (f *Form) ClearErrors() {
	for _, field := range f.fields {
		field.shown = false
	}
}

func (f *Form) validate(field *formField, showError bool) bool {
	// Optional fields are valid with no message while blank.
	if !field.required && strings.TrimSpace(field.input) == "" {
		field.valid = true
		field.message = ""
		field.shown = false
		f.notifyField(field)
		f.notifyStateChange()
		return true
	}

	res := field.validator(field.input)
	field.valid = res.OK
	field.message = res.Message
	if res.OK {
		field.shown = false
	} else if showError {
		field.shown = true
	}

	f.notifyField(field)
	f.notifyStateChange()
	return res.OK
}

func (f *Form) notifyField(field *formField) {
	if f.observer != nil {
		f.observer.OnFieldValidated(field.handle, field.valid, field.message)
	}
}

func (f *Form) notifyStateChange() {
	current := f.IsFormValid()
	if f.stateKnown && current == f.lastFormValid {
		return
	}
	f.stateKnown = true
	f.lastFormValid = current
	if f.observer != nil {
		f.observer.OnValidationStateChanged(current)
	}
}
