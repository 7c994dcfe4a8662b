package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-resources/core"
)

// Dispatcher is the dispatch surface the command handlers delegate to,
// satisfied by core.Service.
type Dispatcher interface {
	Lookup(ctx context.Context, name string, batch []core.CallItem, env core.Environment) (core.DispatchResponse, error)
	Execute(ctx context.Context, name string, batch []core.CallItem, env core.Environment) (core.DispatchResponse, error)
	Create(ctx context.Context, name string, createMethod string, createArgs core.Args, batch []core.CallItem, env core.Environment) (core.DispatchResponse, error)
	Read(ctx context.Context, name string, batch []core.CallItem, ctorArgs core.Args, env core.Environment) (core.DispatchResponse, error)
	Update(ctx context.Context, name string, batch []core.CallItem, ctorArgs core.Args, env core.Environment) (core.DispatchResponse, error)
	Delete(ctx context.Context, name string, call core.CallItem, ctorArgs core.Args, env core.Environment) (core.DispatchResponse, error)
}

type LookupCommand struct {
	service Dispatcher
}

func NewLookupCommand(service Dispatcher) *LookupCommand {
	return &LookupCommand{service: service}
}

func (c *LookupCommand) Execute(ctx context.Context, msg LookupMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: lookup dispatcher is required")
	}
	out, err := c.service.Lookup(ctx, msg.Resource, msg.Batch, msg.Environment)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ExecuteCommand struct {
	service Dispatcher
}

func NewExecuteCommand(service Dispatcher) *ExecuteCommand {
	return &ExecuteCommand{service: service}
}

func (c *ExecuteCommand) Execute(ctx context.Context, msg ExecuteMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: execute dispatcher is required")
	}
	out, err := c.service.Execute(ctx, msg.Resource, msg.Batch, msg.Environment)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CreateCommand struct {
	service Dispatcher
}

func NewCreateCommand(service Dispatcher) *CreateCommand {
	return &CreateCommand{service: service}
}

func (c *CreateCommand) Execute(ctx context.Context, msg CreateMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: create dispatcher is required")
	}
	out, err := c.service.Create(ctx, msg.Resource, msg.CreateMethod, msg.CreateArgs, msg.Batch, msg.Environment)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ReadCommand struct {
	service Dispatcher
}

func NewReadCommand(service Dispatcher) *ReadCommand {
	return &ReadCommand{service: service}
}

func (c *ReadCommand) Execute(ctx context.Context, msg ReadMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: read dispatcher is required")
	}
	out, err := c.service.Read(ctx, msg.Resource, msg.Batch, msg.ConstructorArgs, msg.Environment)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpdateCommand struct {
	service Dispatcher
}

func NewUpdateCommand(service Dispatcher) *UpdateCommand {
	return &UpdateCommand{service: service}
}

func (c *UpdateCommand) Execute(ctx context.Context, msg UpdateMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: update dispatcher is required")
	}
	out, err := c.service.Update(ctx, msg.Resource, msg.Batch, msg.ConstructorArgs, msg.Environment)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DeleteCommand struct {
	service Dispatcher
}

func NewDeleteCommand(service Dispatcher) *DeleteCommand {
	return &DeleteCommand{service: service}
}

func (c *DeleteCommand) Execute(ctx context.Context, msg DeleteMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: delete dispatcher is required")
	}
	out, err := c.service.Delete(ctx, msg.Resource, msg.Call, msg.ConstructorArgs, msg.Environment)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
