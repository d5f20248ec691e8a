package events

import (
	"fmt"

	"github.com/google/uuid"
)

func uuidNew() string { return uuid.NewString() }

func panicToError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("events: listener panic: %v", r)
}
