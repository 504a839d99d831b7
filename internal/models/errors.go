package models

import (
	"fmt"
	"time"
)

// PersonNotFoundError is returned when an id based lookup finds no person
type PersonNotFoundError struct {
	ID int64
}

func (e *PersonNotFoundError) Error() string {
	return fmt.Sprintf("Person not found with id: %d", e.ID)
}

// ErrorResponse is the JSON body sent for mapped domain errors
type ErrorResponse struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// NewErrorResponse builds an ErrorResponse stamped with the current time in epoch milliseconds
func NewErrorResponse(status int, message string) ErrorResponse {
	return ErrorResponse{
		Status:    status,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	}
}
