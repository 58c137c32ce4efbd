package protocol

import (
	"fmt"

	"github.com/facebookgo/stack"
)

// ProtocolException represents a wire level encoding or decoding failure.
// These are fatal: a request that cannot be encoded is never retried.
type ProtocolException struct {
	Name    string      `json:"name"`
	Message string      `json:"message"`
	Stack   stack.Stack `json:"stack"`
}

func (e ProtocolException) Error() string {
	return fmt.Sprintf("[%s] %s", e.Name, e.Message)
}

// NewProtocolException returns a new wire level exception
func NewProtocolException(name string, message string, params ...interface{}) error {
	err := ProtocolException{
		Name:    name,
		Message: fmt.Sprintf(message, params...),
		Stack:   stack.Callers(1),
	}
	return err
}

// IsProtocolException reports whether err originated in the codec.
func IsProtocolException(err error) bool {
	_, ok := err.(ProtocolException)
	return ok
}
