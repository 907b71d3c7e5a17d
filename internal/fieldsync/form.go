package fieldsync

import (
	"errors"
	"slices"
	"sync"
)

// Element ids of the bound controls
const (
	ProductElementID = "id_product"
	PriceElementID   = "id_price"
)

// ErrUnknownOption is returned when selecting a value the selector does not offer
var ErrUnknownOption = errors.New("fieldsync: unknown option")

// SelectControl is a selector whose value changes by user action
type SelectControl interface {
	Value() string
	OnChange(fn func())
}

// InputControl is a text input the handler writes to
type InputControl interface {
	Value() string
	SetValue(v string)
}

// Document resolves controls by element id. A missing id yields nil.
type Document interface {
	ElementByID(id string) any
}

// Form is an in-memory Document holding selectors and inputs
type Form struct {
	mu       sync.RWMutex
	elements map[string]any
}

// NewForm creates an empty form
func NewForm() *Form {
	return &Form{elements: make(map[string]any)}
}

// AddSelect adds a selector offering options plus the empty placeholder.
// It replaces any element with the same id.
func (f *Form) AddSelect(id string, options ...string) *SelectField {
	field := &SelectField{id: id, options: slices.Clone(options)}
	f.mu.Lock()
	f.elements[id] = field
	f.mu.Unlock()
	return field
}

// AddInput adds a text input with an initial value
func (f *Form) AddInput(id, value string) *InputField {
	field := &InputField{id: id, value: value}
	f.mu.Lock()
	f.elements[id] = field
	f.mu.Unlock()
	return field
}

// ElementByID implements Document
func (f *Form) ElementByID(id string) any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.elements[id]
}

// SelectField is a single-choice selector. Its zero value is the empty
// placeholder selection.
type SelectField struct {
	id        string
	mu        sync.Mutex
	options   []string
	value     string
	listeners []func()
}

// ID returns the element id
func (s *SelectField) ID() string { return s.id }

// Value returns the current selection
func (s *SelectField) Value() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Options returns the selectable values, excluding the placeholder
func (s *SelectField) Options() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.options)
}

// OnChange registers fn to run after every Select
func (s *SelectField) OnChange(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Select changes the selection and notifies listeners synchronously, in
// registration order. The empty string selects the placeholder.
func (s *SelectField) Select(value string) error {
	s.mu.Lock()
	if value != "" && !slices.Contains(s.options, value) {
		s.mu.Unlock()
		return ErrUnknownOption
	}
	s.value = value
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
	return nil
}

// InputField is a free-text input. Safe for concurrent use.
type InputField struct {
	id    string
	mu    sync.RWMutex
	value string
}

// ID returns the element id
func (i *InputField) ID() string { return i.id }

// Value returns the current text
func (i *InputField) Value() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.value
}

// SetValue replaces the text
func (i *InputField) SetValue(v string) {
	i.mu.Lock()
	i.value = v
	i.mu.Unlock()
}
