package session

import "errors"

var (
	// ErrSessionActive is returned when StartSession is called while a
	// session is already in progress for the user.
	ErrSessionActive = errors.New("session already active for user")

	// ErrNoActiveSession is returned when EndSession is called with no
	// session in progress. Feedback recording stays a silent no-op instead,
	// since producers may race with session teardown.
	ErrNoActiveSession = errors.New("no active session for user")
)
