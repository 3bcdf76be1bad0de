package schema

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// File is the decoded form of a YAML mapping file.
type File struct {
	Entities []EntityConfig `yaml:"entities" validate:"required,min=1,dive"`
}

// EntityConfig is one entity entry of a mapping file.
type EntityConfig struct {
	Name   string        `yaml:"name" validate:"required,member"`
	Table  string        `yaml:"table,omitempty" validate:"omitempty,max=128"`
	Fields []FieldConfig `yaml:"fields,omitempty" validate:"dive"`
}

// FieldConfig is one field entry of a mapping file.
type FieldConfig struct {
	Name   string `yaml:"name" validate:"required,member"`
	Column string `yaml:"column,omitempty" validate:"omitempty,max=128"`
}

// newValidator returns a validator with the "member" tag registered.
// member accepts names that checkReference accepts.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("member", func(fl validator.FieldLevel) bool {
		return checkReference(normalize(fl.Field().String())) == ""
	})
	return v
}

var configValidator = newValidator()

// Validate checks a decoded entity entry.
func (c EntityConfig) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return describeValidation(c.Name, err)
	}
	return nil
}

// Entity converts the entry into an Entity.
func (c EntityConfig) Entity() *Entity {
	opts := make([]Option, 0, len(c.Fields)+1)
	if c.Table != "" {
		opts = append(opts, WithTable(c.Table))
	}
	for _, f := range c.Fields {
		opts = append(opts, WithColumn(f.Name, f.Column))
	}
	return NewEntity(c.Name, opts...)
}

// describeValidation flattens validator errors into one message.
func describeValidation(entity string, err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	if entity == "" {
		entity = "<unnamed>"
	}
	return fmt.Errorf("entity %s: %s", entity, strings.Join(parts, "; "))
}
