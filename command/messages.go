package command

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-resources/core"
)

const (
	TypeLookup  = "resources.command.lookup"
	TypeExecute = "resources.command.execute"
	TypeCreate  = "resources.command.create"
	TypeRead    = "resources.command.read"
	TypeUpdate  = "resources.command.update"
	TypeDelete  = "resources.command.delete"
)

type LookupMessage struct {
	Resource    string
	Batch       []core.CallItem
	Environment core.Environment
}

func (LookupMessage) Type() string { return TypeLookup }

func (m LookupMessage) Validate() error {
	if strings.TrimSpace(m.Resource) == "" {
		return commandValidationError("resource", "resource name is required")
	}
	return validateBatch(m.Batch)
}

type ExecuteMessage struct {
	Resource    string
	Batch       []core.CallItem
	Environment core.Environment
}

func (ExecuteMessage) Type() string { return TypeExecute }

func (m ExecuteMessage) Validate() error {
	if strings.TrimSpace(m.Resource) == "" {
		return commandValidationError("resource", "resource name is required")
	}
	return validateBatch(m.Batch)
}

type CreateMessage struct {
	Resource     string
	CreateMethod string
	CreateArgs   core.Args
	Batch        []core.CallItem
	Environment  core.Environment
}

func (CreateMessage) Type() string { return TypeCreate }

func (m CreateMessage) Validate() error {
	if strings.TrimSpace(m.Resource) == "" {
		return commandValidationError("resource", "resource name is required")
	}
	if strings.TrimSpace(m.CreateMethod) == "" {
		return commandValidationError("create_method", "creation method is required")
	}
	return validateBatch(m.Batch)
}

type ReadMessage struct {
	Resource        string
	Batch           []core.CallItem
	ConstructorArgs core.Args
	Environment     core.Environment
}

func (ReadMessage) Type() string { return TypeRead }

func (m ReadMessage) Validate() error {
	if strings.TrimSpace(m.Resource) == "" {
		return commandValidationError("resource", "resource name is required")
	}
	return validateBatch(m.Batch)
}

type UpdateMessage struct {
	Resource        string
	Batch           []core.CallItem
	ConstructorArgs core.Args
	Environment     core.Environment
}

func (UpdateMessage) Type() string { return TypeUpdate }

func (m UpdateMessage) Validate() error {
	if strings.TrimSpace(m.Resource) == "" {
		return commandValidationError("resource", "resource name is required")
	}
	return validateBatch(m.Batch)
}

type DeleteMessage struct {
	Resource        string
	Call            core.CallItem
	ConstructorArgs core.Args
	Environment     core.Environment
}

func (DeleteMessage) Type() string { return TypeDelete }

func (m DeleteMessage) Validate() error {
	if strings.TrimSpace(m.Resource) == "" {
		return commandValidationError("resource", "resource name is required")
	}
	if strings.TrimSpace(m.Call.Method) == "" {
		return commandValidationError("method", "method name is required")
	}
	return nil
}

func validateBatch(batch []core.CallItem) error {
	for i, item := range batch {
		if strings.TrimSpace(item.Method) == "" {
			return commandValidationError(fmt.Sprintf("batch[%d].method", i), "method name is required")
		}
	}
	return nil
}
