package command

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-resources/core"
)

var (
	_ gocmd.Commander[LookupMessage]  = (*LookupCommand)(nil)
	_ gocmd.Commander[ExecuteMessage] = (*ExecuteCommand)(nil)
	_ gocmd.Commander[CreateMessage]  = (*CreateCommand)(nil)
	_ gocmd.Commander[ReadMessage]    = (*ReadCommand)(nil)
	_ gocmd.Commander[UpdateMessage]  = (*UpdateCommand)(nil)
	_ gocmd.Commander[DeleteMessage]  = (*DeleteCommand)(nil)

	_ Dispatcher = (*core.Service)(nil)
)
