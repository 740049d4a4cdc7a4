package hub

import (
	"context"
	"fmt"
)

// GroupResolver answers "who is in group G" at the moment a group message is
// routed. Membership is never cached by the hub, so a membership change
// takes effect on the very next message.
type GroupResolver interface {
	MembersOf(ctx context.Context, groupID int64) ([]string, error)
}

// ResolutionError wraps a failed membership lookup. The router treats it as
// "deliver to nobody": the message is dropped for that one attempt, logged
// by the caller, and never retried automatically.
type ResolutionError struct {
	GroupID int64
	Err     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("hub: resolve members of group %d: %v", e.GroupID, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
