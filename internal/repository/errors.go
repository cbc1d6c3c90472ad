package repository

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorKind tags the broad cause of a storage failure.
type ErrorKind string

const (
	KindConstraintViolation ErrorKind = "constraint_violation"
	KindQuery               ErrorKind = "query"
	KindConnection          ErrorKind = "connection"
	KindUnknown             ErrorKind = "unknown"
)

const (
	// integrity_constraint_violation SQLSTATE class.
	integrityViolationClass = "23"
	// UniqueViolationCode is the SQLSTATE for unique_violation.
	UniqueViolationCode = "23505"
)

// StorageError is returned by repositories for every failed write.
type StorageError struct {
	Kind ErrorKind
	// Code is the SQLSTATE reported by the server, if any.
	Code       string
	Constraint string
	Err        error
}

func (e *StorageError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("%s (%s): %v", e.Kind, e.Constraint, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsUniqueViolation reports whether a unique constraint rejected the write.
func (e *StorageError) IsUniqueViolation() bool {
	return e.Kind == KindConstraintViolation && e.Code == UniqueViolationCode
}

// IsQueryLevel reports whether the database itself rejected the statement.
func (e *StorageError) IsQueryLevel() bool {
	return e.Kind == KindConstraintViolation || e.Kind == KindQuery
}

// AsStorageError extracts a StorageError from err, if present.
func AsStorageError(err error) (*StorageError, bool) {
	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		return storageErr, true
	}
	return nil, false
}

// classifyError wraps a driver error into a StorageError.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsStorageError(err); ok {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if strings.HasPrefix(pgErr.Code, integrityViolationClass) {
			return &StorageError{Kind: KindConstraintViolation, Code: pgErr.Code, Constraint: pgErr.ConstraintName, Err: err}
		}
		return &StorageError{Kind: KindQuery, Code: pgErr.Code, Err: err}
	}

	var connectErr *pgconn.ConnectError
	var netErr net.Error
	switch {
	case errors.As(err, &connectErr),
		errors.As(err, &netErr),
		pgconn.Timeout(err),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return &StorageError{Kind: KindConnection, Err: err}
	}

	return &StorageError{Kind: KindUnknown, Err: err}
}
