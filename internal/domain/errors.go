package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrDuplicateVendorName = errors.New("vendor name already exists")
	ErrDuplicatePONumber   = errors.New("po number already exists")
	ErrDuplicateGRNNumber  = errors.New("grn number already exists")
	ErrInvalidExtraction   = errors.New("extraction payload does not match expected shape")
	ErrExceptionClosed     = errors.New("exception is already resolved or dismissed")
)
