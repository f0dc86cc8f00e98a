// Package service provides the application-level services orchestrating the
// catalog, the member set, and the loan records.
package service

import "errors"

// Business-rule violations. Each one is a recoverable, typed failure: the
// operation reports it and leaves no partial state change behind.
var (
	// ErrMediaUnavailable indicates every copy of the requested item is
	// already checked out.
	ErrMediaUnavailable = errors.New("media is not available")

	// ErrUserHasOverdue indicates the user holds at least one overdue item
	// and may not borrow until it is returned.
	ErrUserHasOverdue = errors.New("user has overdue items")

	// ErrUserBlocked indicates the user carries an unpaid fine balance and
	// may not borrow until it is paid.
	ErrUserBlocked = errors.New("user has unpaid fines")

	// ErrInvalidCredentials indicates a failed login attempt. The same
	// error covers unknown names and wrong passwords so the response does
	// not reveal which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
