package domain

import "errors"

var (
	ErrNotRegistered     = errors.New("connection not registered")
	ErrTargetUnavailable = errors.New("target user not found or offline")
	ErrBusy              = errors.New("party already in a call")
	ErrNoSuchSession     = errors.New("no such call session")
	ErrNotConnected      = errors.New("connection not attached to gateway")
	ErrPollNotFound      = errors.New("poll not found")
	ErrPollInactive      = errors.New("poll is not active")
	ErrInvalidPoll       = errors.New("invalid poll definition")
)
