package services

import "errors"

// Sentinel errors surfaced by the service layer. Handlers map these onto
// HTTP responses; anything else is treated as an internal error.
var (
	ErrEmptyBatch          = errors.New("no activities provided")
	ErrContentNotFound     = errors.New("content not found")
	ErrInvalidContentType  = errors.New("invalid content type")
	ErrInvalidActivityType = errors.New("invalid activity type")
	ErrNoQuizAnswers       = errors.New("no quiz answers provided")
	ErrUserNotFound        = errors.New("user not found")

	ErrNotOwner           = errors.New("not the owner of this resource")
	ErrInvalidVote        = errors.New("invalid vote type")
	ErrNotDownloadable    = errors.New("content is not downloadable")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrParentCommentWrong = errors.New("parent comment does not belong to this content")
)
