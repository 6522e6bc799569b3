package segment

import (
	"fmt"
	"reflect"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"

	"omnicrm/internal/core/apperror"
	"omnicrm/internal/domain/crm/contact"
)

// Member is the CEL-friendly projection of a contact.
type Member struct {
	ID         string   `cel:"id"`
	FirstName  string   `cel:"firstName"`
	LastName   string   `cel:"lastName"`
	Phone      string   `cel:"phone"`
	Email      string   `cel:"email"`
	Channel    string   `cel:"channel"`
	Status     string   `cel:"status"`
	LeadSource string   `cel:"leadSource"`
	Tags       []string `cel:"tags"`
	City       string   `cel:"city"`
	Country    string   `cel:"country"`
}

// memberOf projects a contact into its CEL shape.
func memberOf(c *contact.Contact) Member {
	return Member{
		ID:         c.ID.String(),
		FirstName:  c.FirstName,
		LastName:   deref(c.LastName),
		Phone:      deref(c.Phone),
		Email:      deref(c.Email),
		Channel:    string(c.Channel),
		Status:     deref(c.StatusSlug),
		LeadSource: deref(c.LeadSourceSlug),
		Tags:       c.Tags,
		City:       deref(c.City),
		Country:    deref(c.Country),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Evaluator compiles and runs segment expressions.
// Safe for concurrent use; the environment is immutable after creation.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator creates a CEL environment with the contact variable bound.
func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		// Register native types - enable parsing of struct tags
		ext.NativeTypes(
			ext.ParseStructTags(true),
			reflect.TypeFor[Member](),
		),
		ext.Strings(),
		cel.Variable("contact", cel.ObjectType("segment.Member")),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// Compile checks an expression and returns the runnable program.
// The expression must produce a boolean.
func (e *Evaluator) Compile(expression string) (cel.Program, error) {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, apperror.NewValidation("invalid segment expression").
			WithDetail("field", "expression").
			WithDetail("reason", issues.Err().Error())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, apperror.NewValidation("segment expression must return a boolean").
			WithDetail("field", "expression").
			WithDetail("got", ast.OutputType().String())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build cel program: %w", err)
	}
	return prg, nil
}

// Matches runs the compiled program against one contact.
func (e *Evaluator) Matches(prg cel.Program, c *contact.Contact) (bool, error) {
	out, _, err := prg.Eval(map[string]any{"contact": memberOf(c)})
	if err != nil {
		return false, fmt.Errorf("evaluate expression: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression returned %T, want bool", out.Value())
	}
	return result, nil
}
