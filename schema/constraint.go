package schema

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gisce/clicksign/internal/expr"
)

// Constraint is a predicate applied to a field value once its kind has been accepted.
// Check receives the dotted field path and the normalized value and returns a non-nil
// error describing the violation.
type Constraint interface {
	Check(field string, value any) error
}

// ConstraintFunc adapts a function to the Constraint interface.
type ConstraintFunc func(field string, value any) error

// Check calls f.
func (f ConstraintFunc) Check(field string, value any) error { return f(field, value) }

type oneOf struct {
	allowed []string
	set     map[string]struct{}
}

// OneOf accepts string values from a fixed set.
func OneOf(values ...string) Constraint {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return oneOf{allowed: append([]string(nil), values...), set: set}
}

func (o oneOf) Check(_ string, value any) error {
	s, ok := value.(string)
	if ok {
		if _, found := o.set[s]; found {
			return nil
		}
	}
	return fmt.Errorf("must be one of: %s", strings.Join(o.allowed, ", "))
}

// Predicate wraps a plain boolean test; message is reported when fn returns false.
func Predicate(message string, fn func(value any) bool) Constraint {
	return ConstraintFunc(func(_ string, value any) error {
		if fn(value) {
			return nil
		}
		return errors.New(message)
	})
}

var celEnvironment = sync.OnceValues(expr.NewEnvironment)

type celConstraint struct {
	program expr.Program
	message string
}

// MustExpr compiles a CEL predicate evaluated with `value` bound to the field value and
// `field` bound to its path. message is reported when the predicate yields false. It
// panics when the expression does not compile, so it belongs in package-level schema
// declarations.
func MustExpr(expression, message string) Constraint {
	env, err := celEnvironment()
	if err != nil {
		panic(fmt.Sprintf("schema: cel environment: %v", err))
	}
	program, err := env.Compile(expression)
	if err != nil {
		panic(fmt.Sprintf("schema: %v", err))
	}
	if strings.TrimSpace(message) == "" {
		message = fmt.Sprintf("must satisfy %s", program.Source())
	}
	return celConstraint{program: program, message: message}
}

func (c celConstraint) Check(field string, value any) error {
	ok, err := c.program.EvalBool(map[string]any{"value": value, "field": field})
	if err != nil {
		return fmt.Errorf("%s (%v)", c.message, err)
	}
	if !ok {
		return errors.New(c.message)
	}
	return nil
}
