package common

import (
	"fmt"
)

// ConnectionError indicates the database engine could not be reached or
// refused the credentials. The query was never sent.
type ConnectionError struct {
	Engine EngineKind
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: connection failed: %v", e.Engine, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// QueryError indicates the engine accepted the connection but rejected the
// query (syntax error, missing object, permission denied).
type QueryError struct {
	Engine EngineKind
	Err    error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: query failed: %v", e.Engine, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// DistributionInputError indicates the input series cannot parameterize a
// sampling distribution (zero trials, or a cell that is not numeric).
type DistributionInputError struct {
	Reason string
}

func (e *DistributionInputError) Error() string {
	return "invalid distribution input: " + e.Reason
}

type UserVisibleError struct {
	HttpCode int
	Message  string
}

func (e *UserVisibleError) Error() string {
	return fmt.Sprintf("Error %d: %s", e.HttpCode, e.Message)
}

func NewUserVisibleError(httpCode int, message string) *UserVisibleError {
	return &UserVisibleError{
		HttpCode: httpCode,
		Message:  message,
	}
}

func WrapErrorForResponse(err error, message string) error {
	if e, ok := err.(*UserVisibleError); ok {
		return &UserVisibleError{
			HttpCode: e.HttpCode,
			Message:  fmt.Sprintf("%s: %s", message, e.Message),
		}
	}
	return err
}
