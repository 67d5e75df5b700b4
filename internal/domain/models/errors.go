package models

import "errors"

// ErrBatchNotFound indicates no batch of the account matches the requested key.
var ErrBatchNotFound = errors.New("batch not found")
