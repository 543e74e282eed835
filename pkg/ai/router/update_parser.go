package router

import (
	"fmt"
	"regexp"
	"strings"

	"rag-chatbot-be/internal/pkg/apperror"
	"rag-chatbot-be/pkg/rag/workflow"
)

var (
	updateWordPattern  = regexp.MustCompile(`(?i)\bupdate\b`)
	clauseSplitPattern = regexp.MustCompile(`(?i)\s+and\s+|,`)
	toPattern          = regexp.MustCompile(`(?i)^(.*?)\s+to\s+(.*)$`)

	fillerWords = map[string]bool{"my": true, "the": true, "your": true}

	fieldAliases = map[string]workflow.Field{
		"name":                workflow.FieldName,
		"full name":           workflow.FieldName,
		"email":               workflow.FieldEmail,
		"e-mail":              workflow.FieldEmail,
		"mail":                workflow.FieldEmail,
		"email address":       workflow.FieldEmail,
		"company":             workflow.FieldCompany,
		"company name":        workflow.FieldCompany,
		"employer":            workflow.FieldCompany,
		"job role":            workflow.FieldJobRole,
		"job_role":            workflow.FieldJobRole,
		"role":                workflow.FieldJobRole,
		"position":            workflow.FieldJobRole,
		"job title":           workflow.FieldJobRole,
		"experience":          workflow.FieldExperience,
		"years of experience": workflow.FieldExperience,
	}
)

// UpdateClause is one "<field> to <value>" fragment. Exactly one of Field or
// Err is meaningful: Err is set when the clause could not be used.
type UpdateClause struct {
	Raw      string
	FieldRef string
	Field    workflow.Field
	Value    string
	Err      error
}

func (c UpdateClause) OK() bool { return c.Err == nil }

// ResolveField maps a free-form field reference onto a workflow field.
func ResolveField(ref string) (workflow.Field, bool) {
	words := strings.Fields(strings.ToLower(ref))
	kept := words[:0]
	for _, w := range words {
		if !fillerWords[w] {
			kept = append(kept, w)
		}
	}
	f, ok := fieldAliases[strings.Join(kept, " ")]
	return f, ok
}

func ValidFieldNames() string {
	names := make([]string, len(workflow.Fields))
	for i, f := range workflow.Fields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// ParseUpdateCommand splits text like "update my email to a@b.c and role to CTO"
// into clauses. It fails with apperror.ErrParse only when no clause is found;
// per-clause problems are reported on the clause itself.
func ParseUpdateCommand(text string) ([]UpdateClause, error) {
	body := text
	if loc := updateWordPattern.FindStringIndex(text); loc != nil {
		body = text[loc[1]:]
	}

	var clauses []UpdateClause
	for _, part := range clauseSplitPattern.Split(body, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		clauses = append(clauses, parseClause(part))
	}

	if len(clauses) == 0 {
		return nil, apperror.Parse("no update clauses in %q", text)
	}
	return clauses, nil
}

func parseClause(raw string) UpdateClause {
	c := UpdateClause{Raw: raw}

	m := toPattern.FindStringSubmatch(raw)
	if m == nil {
		c.Err = apperror.Parse("missing 'to' in %q", raw)
		return c
	}

	c.FieldRef = strings.TrimSpace(m[1])
	field, ok := ResolveField(c.FieldRef)
	if !ok {
		c.Err = apperror.Validation("'%s' is not a valid field. Valid fields are: %s", c.FieldRef, ValidFieldNames())
		return c
	}
	c.Field = field

	value, set := workflow.NormalizeValue(strings.Trim(strings.TrimSpace(m[2]), `"'.`))
	if !set {
		c.Err = apperror.Validation("no value given for %s", field.Prompt())
		return c
	}
	c.Value = value
	return c
}

// String renders the clause for logs.
func (c UpdateClause) String() string {
	if c.Err != nil {
		return fmt.Sprintf("%q: %v", c.Raw, c.Err)
	}
	return fmt.Sprintf("%s=%q", c.Field, c.Value)
}
