package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[StartOAuthMessage]       = (*StartOAuthCommand)(nil)
	_ gocmd.Commander[CompleteCallbackMessage] = (*CompleteCallbackCommand)(nil)
	_ gocmd.Commander[SetAPIKeyMessage]        = (*SetAPIKeyCommand)(nil)
)
