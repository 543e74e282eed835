// Package workflow tracks the per-session job application draft while its
// fields are being collected.
package workflow

import (
	"strings"
	"time"
)

type State string

const (
	StateNone                 State = "NONE"
	StateStarted              State = "STARTED"
	StateCollecting           State = "COLLECTING"
	StateAwaitingConfirmation State = "AWAITING_CONFIRMATION"
	StateConfirmed            State = "CONFIRMED"
	StateCancelled            State = "CANCELLED"
)

func (s State) IsTerminal() bool {
	return s == StateConfirmed || s == StateCancelled
}

type Field string

const (
	FieldName       Field = "name"
	FieldEmail      Field = "email"
	FieldCompany    Field = "company"
	FieldJobRole    Field = "job_role"
	FieldExperience Field = "experience"
)

// Fields is the collection order.
var Fields = []Field{FieldName, FieldEmail, FieldCompany, FieldJobRole, FieldExperience}

var fieldLabels = map[Field]string{
	FieldName:       "Name",
	FieldEmail:      "Email",
	FieldCompany:    "Company",
	FieldJobRole:    "Job Role",
	FieldExperience: "Experience",
}

func (f Field) Label() string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}

// Prompt is the human-readable noun used when asking for the field.
func (f Field) Prompt() string {
	return strings.ToLower(f.Label())
}

func ParseField(s string) (Field, bool) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	_, ok := fieldLabels[f]
	return f, ok
}

// NormalizeValue trims v. Empty input and the literal "null" (any case) mean unset.
func NormalizeValue(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "null") {
		return "", false
	}
	return v, true
}

type Draft struct {
	SessionID string
	State     State
	Values    map[Field]string
	UpdatedAt time.Time
}

func newDraft(sessionID string) *Draft {
	return &Draft{
		SessionID: sessionID,
		State:     StateStarted,
		Values:    make(map[Field]string, len(Fields)),
		UpdatedAt: time.Now(),
	}
}

func (d *Draft) Clone() *Draft {
	if d == nil {
		return nil
	}
	c := *d
	c.Values = make(map[Field]string, len(d.Values))
	for k, v := range d.Values {
		c.Values[k] = v
	}
	return &c
}

// NextMissingField returns the first unset field in collection order.
func (d *Draft) NextMissingField() (Field, bool) {
	for _, f := range Fields {
		if d.Values[f] == "" {
			return f, true
		}
	}
	return "", false
}

func (d *Draft) IsComplete() bool {
	_, missing := d.NextMissingField()
	return !missing
}

// AsMap returns the values keyed by field name, unset fields included as "".
func (d *Draft) AsMap() map[string]string {
	out := make(map[string]string, len(Fields))
	for _, f := range Fields {
		out[string(f)] = d.Values[f]
	}
	return out
}
