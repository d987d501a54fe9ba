package resource

import "github.com/crmarques/cloudstore/faults"

func preconditionError(message string) error {
	return faults.NewTypedError(faults.PreconditionError, message, nil)
}

func fieldAccessError(message string) error {
	return faults.NewTypedError(faults.FieldAccessError, message, nil)
}

func constructionError(message string, cause error) error {
	return faults.NewTypedError(faults.ConstructionError, message, cause)
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}
