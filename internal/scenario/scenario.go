package scenario

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Scenario describes one build session: the entity, the predicate steps
// and the statement shape.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name" validate:"required"`

	// Description explains what the scenario covers.
	Description string `yaml:"description,omitempty"`

	// Entity is the logical entity name, looked up in the mapping registry.
	Entity string `yaml:"entity" validate:"required"`

	// OnlyWhere emits only the WHERE clause.
	OnlyWhere bool `yaml:"only_where,omitempty"`

	// Columns is the SELECT list. Empty means *.
	Columns []string `yaml:"columns,omitempty"`

	// DateFormat renders time values. Empty means yyyy-MM-dd.
	DateFormat string `yaml:"date_format,omitempty"`

	// Placeholders switches to parameterized output with the named style:
	// question, dollar, colon or atp.
	Placeholders string `yaml:"placeholders,omitempty" validate:"omitempty,oneof=question dollar colon atp"`

	// Where lists the predicate operations in call order.
	Where []Step `yaml:"where,omitempty" validate:"dive"`
}

// Step is one predicate operation.
type Step struct {
	// Op is the operation name; see the Op constants.
	Op string `yaml:"op" validate:"required"`

	// Field is the field reference for comparison and pattern operations.
	Field string `yaml:"field,omitempty"`

	// Value is the operand of comparisons and the search string of
	// pattern operations.
	Value any `yaml:"value,omitempty"`

	// Values are the operands of in.
	Values []any `yaml:"values,omitempty"`

	// Low and High are the bounds of between.
	Low  any `yaml:"low,omitempty"`
	High any `yaml:"high,omitempty"`

	// Type reinterprets textual operands: date, char or uuid.
	Type string `yaml:"type,omitempty" validate:"omitempty,oneof=date char uuid"`

	// Steps are the nested operations of group.
	Steps []Step `yaml:"steps,omitempty" validate:"dive"`
}

// Operation names accepted in Step.Op.
const (
	OpAnd            = "and"
	OpOr             = "or"
	OpNot            = "not"
	OpEquals         = "equals"
	OpNotEquals      = "not_equals"
	OpGreaterThan    = "gt"
	OpGreaterOrEqual = "gte"
	OpLessThan       = "lt"
	OpLessOrEqual    = "lte"
	OpIn             = "in"
	OpIsNull         = "is_null"
	OpIsNotNull      = "is_not_null"
	OpBetween        = "between"
	OpStartsWith     = "starts_with"
	OpEndsWith       = "ends_with"
	OpContains       = "contains"
	OpGroup          = "group"
)

// operand lists what each operation needs besides Op.
type operand int

const (
	operandNone operand = iota
	operandField
	operandValue
	operandValues
	operandRange
	operandText
	operandSteps
)

var operands = map[string]operand{
	OpAnd:            operandNone,
	OpOr:             operandNone,
	OpNot:            operandNone,
	OpEquals:         operandValue,
	OpNotEquals:      operandValue,
	OpGreaterThan:    operandValue,
	OpGreaterOrEqual: operandValue,
	OpLessThan:       operandValue,
	OpLessOrEqual:    operandValue,
	OpIn:             operandValues,
	OpIsNull:         operandField,
	OpIsNotNull:      operandField,
	OpBetween:        operandRange,
	OpStartsWith:     operandText,
	OpEndsWith:       operandText,
	OpContains:       operandText,
	OpGroup:          operandSteps,
}

var scenarioValidator = validator.New()

// LoadScenario reads and parses a scenario YAML file.
// Unknown keys are rejected so that typos surface as errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Decode(data)
}

// Decode parses and validates scenario YAML.
func Decode(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := Validate(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// Validate checks required fields and the operands of every step.
func Validate(s *Scenario) error {
	if err := scenarioValidator.Struct(s); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			parts := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%s", strings.Join(parts, "; "))
		}
		return err
	}
	return validateSteps("where", s.Where)
}

func validateSteps(path string, steps []Step) error {
	for i, step := range steps {
		at := fmt.Sprintf("%s[%d]", path, i)

		need, ok := operands[step.Op]
		if !ok {
			return fmt.Errorf("%s: unknown op %q", at, step.Op)
		}

		switch need {
		case operandNone:
			if step.Field != "" {
				return fmt.Errorf("%s: %s takes no field", at, step.Op)
			}
		case operandSteps:
			if err := validateSteps(at+".steps", step.Steps); err != nil {
				return err
			}
		default:
			if step.Field == "" {
				return fmt.Errorf("%s: field is required for %s", at, step.Op)
			}
		}

		switch need {
		case operandValues:
			if len(step.Values) == 0 {
				return fmt.Errorf("%s: values must be non-empty for %s", at, step.Op)
			}
		case operandRange:
			if step.Low == nil || step.High == nil {
				return fmt.Errorf("%s: low and high are required for %s", at, step.Op)
			}
		case operandText:
			if _, ok := step.Value.(string); !ok {
				return fmt.Errorf("%s: value must be a string for %s", at, step.Op)
			}
		}
	}
	return nil
}
