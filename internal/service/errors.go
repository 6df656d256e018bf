package service

import "errors"

var (
	ErrNoPrompt          = errors.New("no prompt found, please generate a prompt first")
	ErrNotConfigured     = errors.New("service is not configured")
	ErrSongNotProcessing = errors.New("song is no longer processing")
)
