// Copyright 2026 Google LLC. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	stderrors "errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Code is the error code of a LedgerError.
type Code uint32

// Codes mirror google.golang.org/grpc/codes.
const (
	OK Code = iota
	Canceled
	Unknown
	InvalidArgument
	DeadlineExceeded
	NotFound
	AlreadyExists
	PermissionDenied
	ResourceExhausted
	FailedPrecondition
	Aborted
	OutOfRange
	Unimplemented
	Internal
	Unavailable
	DataLoss
	Unauthenticated
)

// String returns the gRPC name of the code.
func (c Code) String() string {
	return codes.Code(c).String()
}

// LedgerError is an error with an associated Code.
type LedgerError interface {
	error
	Code() Code
}

type ledgerError struct {
	code Code
	err  error
}

func (e *ledgerError) Error() string { return e.err.Error() }

func (e *ledgerError) Unwrap() error { return e.err }

func (e *ledgerError) Code() Code { return e.code }

// GRPCStatus lets status.FromError and status.Code recover the code.
func (e *ledgerError) GRPCStatus() *status.Status {
	return status.New(codes.Code(e.code), e.err.Error())
}

// Errorf creates a LedgerError from the specified code and message. %w verbs
// are honoured, so the result can wrap a sentinel.
func Errorf(code Code, format string, a ...interface{}) error {
	return &ledgerError{code: code, err: fmt.Errorf(format, a...)}
}

// New creates a LedgerError from the specified code and message.
func New(code Code, msg string) error {
	return &ledgerError{code: code, err: stderrors.New(msg)}
}

// ErrorCode returns the code of the first LedgerError in err's chain.
// Unknown is returned for other non-nil errors, OK for nil.
func ErrorCode(err error) Code {
	if err == nil {
		return OK
	}
	var le LedgerError
	if stderrors.As(err, &le) {
		return le.Code()
	}
	return Unknown
}

// Is reports whether any error in err's chain matches target. It saves
// callers importing both this package and the standard one.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
