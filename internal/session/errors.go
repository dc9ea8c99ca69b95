package session

import "errors"

// ErrTicketSpent is returned when a ticket was already committed or abandoned.
var ErrTicketSpent = errors.New("ticket already committed or abandoned")
