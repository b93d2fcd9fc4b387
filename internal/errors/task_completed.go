package errors

import "net/http"

var ErrTaskCompleted = &Exception{
	Message:    "completed tasks cannot be edited",
	StatusCode: http.StatusConflict,
}
