package errors

import rpccode "google.golang.org/genproto/googleapis/rpc/code"

//EventError Error with code.
type EventError interface {
	Code() rpccode.Code
	Error() string
}

//UnknownError Unknown error
type UnknownError struct {
	Msg string
}

func (e *UnknownError) Error() string {
	return e.Msg
}

//Code Code of the error.
func (e *UnknownError) Code() rpccode.Code {
	return rpccode.Code_INTERNAL
}

//MalformedEventError Error for a change payload which cannot be handled
type MalformedEventError struct {
	Msg string
}

func (e *MalformedEventError) Error() string {
	return e.Msg
}

//Code Code of the error.
func (e *MalformedEventError) Code() rpccode.Code {
	return rpccode.Code_INVALID_ARGUMENT
}

//PublishError Error for a failed downstream publish
type PublishError struct {
	Msg string
}

func (e *PublishError) Error() string {
	return e.Msg
}

//Code Code of the error.
func (e *PublishError) Code() rpccode.Code {
	return rpccode.Code_UNAVAILABLE
}
