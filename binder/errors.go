package binder

import "github.com/crmarques/storectl/faults"

func operationInFlightError() error {
	return faults.NewTypedError(faults.ConflictError, "another operation is already in progress", nil)
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}
