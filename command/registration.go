package command

import (
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
)

type Subscriptions []commanddispatcher.Subscription

func (s Subscriptions) Unsubscribe() {
	for _, subscription := range s {
		if subscription != nil {
			subscription.Unsubscribe()
		}
	}
}

// Register subscribes the six dispatch handlers to the process-wide
// command dispatcher and returns their subscriptions.
func Register(service Dispatcher) Subscriptions {
	return Subscriptions{
		commanddispatcher.SubscribeCommand(NewLookupCommand(service)),
		commanddispatcher.SubscribeCommand(NewExecuteCommand(service)),
		commanddispatcher.SubscribeCommand(NewCreateCommand(service)),
		commanddispatcher.SubscribeCommand(NewReadCommand(service)),
		commanddispatcher.SubscribeCommand(NewUpdateCommand(service)),
		commanddispatcher.SubscribeCommand(NewDeleteCommand(service)),
	}
}
