// Package schema проверяет тела запросов по встроенным JSON-схемам до разбора в модели.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	CreateTask = "create_task"
	ShareTask  = "share_task"
	ToggleTask = "toggle_task"
)

var ErrInvalid = errors.New("invalid request body")

//go:embed schemas/*.json
var files embed.FS

// ValidationError первая найденная причина несоответствия схеме
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

type Validator struct {
	schemas map[string]*jsonschema.Schema
}

func New() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7

	names := []string{CreateTask, ShareTask, ToggleTask}
	for _, name := range names {
		data, err := files.ReadFile("schemas/" + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}
		if err := compiler.AddResource(name+".json", bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", name, err)
		}
	}

	v := &Validator{schemas: make(map[string]*jsonschema.Schema, len(names))}
	for _, name := range names {
		s, err := compiler.Compile(name + ".json")
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		v.schemas[name] = s
	}
	return v, nil
}

// Decode проверяет data по схеме name и разбирает в dst
func (v *Validator) Decode(name string, data []byte, dst any) error {
	s, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return &ValidationError{Message: "invalid json: " + err.Error()}
	}
	if err := s.Validate(doc); err != nil {
		return toValidationError(err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return &ValidationError{Message: err.Error()}
	}
	return nil
}

func toValidationError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &ValidationError{Message: err.Error()}
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return &ValidationError{
		Path:    strings.TrimPrefix(ve.InstanceLocation, "/"),
		Message: ve.Message,
	}
}
