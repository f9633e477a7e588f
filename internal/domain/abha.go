package domain

import "errors"

var (
	ErrABHANotFound = errors.New("abha record not found")
	ErrUpstream     = errors.New("upstream request failed")
)
