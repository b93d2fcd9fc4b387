package errors

import "net/http"

var ErrNoSession = &Exception{
	Message:    "no active session",
	StatusCode: http.StatusConflict,
}
