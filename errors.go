package x30ctl

import "github.com/pkg/errors"

// ErrUnknownCommand is wrapped into an Error event when HandleCommand
// receives a verb it doesn't recognize (spec §6.1, §7).
var ErrUnknownCommand = errors.New("x30ctl: unknown command")

// errorEventCode is the fixed code every user-visible Error event
// carries (spec §7: "Error events carry (code=-1, message)").
const errorEventCode = -1
