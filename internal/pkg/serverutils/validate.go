package serverutils

import (
	"ragchat-client/internal/pkg/apperror"
	"ragchat-client/internal/pkg/validation"
)

func ValidateRequest(req interface{}) error {
	return validation.Struct(apperror.Op("stub.ValidateRequest"), req)
}
