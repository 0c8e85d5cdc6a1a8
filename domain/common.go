package domain

import (
	"errors"
	"os"
)

const (
	RoleUser = "user"
)

var (
	MessageUserNotAllowed       = "user not allowed"
	MessageFailedProcessRequest = "failed to process request"
	MessageFailedBodyRequest    = "failed to parse request body"
	MessageFailedGetToken       = "failed to get token"
	MessageFailedTokenInvalid   = "failed to token invalid"

	JwtSecret = os.Getenv("JWT_SECRET")

	ErrParseUUID         = errors.New("failed to parse UUID")
	ErrUserNotAllowed    = errors.New("user not allowed")
	ErrTokenNotFound     = errors.New("failed to token not found")
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenInvalid      = errors.New("token invalid")
	ErrInvalidPagination = errors.New("invalid pagination parameters")
)

type (
	// PageMeta is the list envelope shared by paginated endpoints.
	// Next and Previous hold page numbers, nil when out of range.
	PageMeta struct {
		Count    int64 `json:"count"`
		Next     *int  `json:"next"`
		Previous *int  `json:"previous"`
	}
)

// NewPageMeta derives next/previous page numbers from the total row count.
func NewPageMeta(count int64, page, limit int) PageMeta {
	meta := PageMeta{Count: count}
	if int64(page*limit) < count {
		next := page + 1
		meta.Next = &next
	}
	if page > 1 {
		prev := page - 1
		meta.Previous = &prev
	}
	return meta
}
