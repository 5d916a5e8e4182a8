package ir

import (
	"fmt"
)

// ValidationError represents a validation error.
type ValidationError struct {
	Message string
	// Optional context
	Method    string
	Operation int
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Method != "" {
		if e.Operation >= 0 {
			return fmt.Sprintf("in method %s, operation %d: %s", e.Method, e.Operation, e.Message)
		}
		return fmt.Sprintf("in method %s: %s", e.Method, e.Message)
	}
	return e.Message
}

// Validator validates program descriptions.
type Validator struct {
	program *Program
	errors  []ValidationError
}

// Validate checks the program description for structural mistakes that the
// compiler would otherwise report one at a time.
// Returns validation errors if any, or nil if the program is valid.
func Validate(program *Program) ([]ValidationError, error) {
	if program == nil {
		return nil, fmt.Errorf("program is nil")
	}

	v := &Validator{program: program}
	v.validateStage()
	v.validateFields()
	v.validateMethods()

	if len(v.errors) > 0 {
		return v.errors, nil
	}
	return nil, nil
}

func (v *Validator) validateStage() {
	switch v.program.Stage {
	case StageVertex, StageFragment, StageTessellation, StageCompute:
	case StageGeometry:
		if v.program.Options.MaxVertices == 0 {
			v.addError("geometry stage declares no max vertices")
		}
	default:
		v.addError(fmt.Sprintf("unknown stage %d", v.program.Stage))
	}
}

func (v *Validator) validateFields() {
	seen := make(map[string]bool, len(v.program.Fields))
	for i, field := range v.program.Fields {
		if field.Name == "" {
			v.addError(fmt.Sprintf("field %d has no name", i))
		} else if seen[field.Name] {
			v.addError(fmt.Sprintf("duplicate field %q", field.Name))
		}
		seen[field.Name] = true

		if field.Type == nil {
			v.addError(fmt.Sprintf("field %q has no type", field.Name))
		}
	}
}

func (v *Validator) validateMethods() {
	seen := make(map[string]bool, len(v.program.Methods))
	for i := range v.program.Methods {
		method := &v.program.Methods[i]
		if method.Name == "" {
			v.addError(fmt.Sprintf("method %d has no name", i))
			continue
		}
		if seen[method.Name] {
			v.addError(fmt.Sprintf("duplicate method %q", method.Name))
		}
		seen[method.Name] = true

		for j, local := range method.Locals {
			if local.Type == nil {
				v.addMethodError(method.Name, -1, fmt.Sprintf("local %d has no type", j))
			}
		}
		for j, op := range method.Body {
			v.validateOperation(method, j, op)
		}
	}

	if !seen[EntryPointName] {
		v.addError(fmt.Sprintf("no %q method to use as the entry point", EntryPointName))
	}
}

func (v *Validator) validateOperation(method *Method, index int, op Operation) {
	fieldInRange := func(i int) {
		if i < 0 || i >= len(v.program.Fields) {
			v.addMethodError(method.Name, index, fmt.Sprintf("field index %d out of range", i))
		}
	}
	localInRange := func(i int) {
		if i < 0 || i >= len(method.Locals) {
			v.addMethodError(method.Name, index, fmt.Sprintf("local index %d out of range", i))
		}
	}

	switch op := op.(type) {
	case LoadField:
		fieldInRange(op.Field)
	case StoreField:
		fieldInRange(op.Field)
	case LoadLocal:
		localInRange(op.Local)
	case StoreLocal:
		localInRange(op.Local)
	case Construct:
		if op.Type == nil {
			v.addMethodError(method.Name, index, "construct without a type")
		}
		if op.Count <= 0 {
			v.addMethodError(method.Name, index, fmt.Sprintf("construct of %d components", op.Count))
		}
	case nil:
		v.addMethodError(method.Name, index, "nil operation")
	}
}

func (v *Validator) addError(msg string) {
	v.errors = append(v.errors, ValidationError{Message: msg, Operation: -1})
}

func (v *Validator) addMethodError(method string, operation int, msg string) {
	v.errors = append(v.errors, ValidationError{Message: msg, Method: method, Operation: operation})
}
