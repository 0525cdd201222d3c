package validation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"ragchat-client/internal/pkg/apperror"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator with the project rules registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// Semantic captions summarize re-ranked passages, so they are only
		// meaningful with the ranker enabled.
		_ = v.RegisterValidation("captions_need_ranker", func(fl validator.FieldLevel) bool {
			if !fl.Field().Bool() {
				return true
			}
			ranker := fl.Parent().FieldByName("UseSemanticRanker")
			return ranker.IsValid() && ranker.Bool()
		})
		instance = v
	})
	return instance
}

// Struct validates s and converts failures into a KindInvalid error listing
// every offending field.
func Struct(op apperror.Op, s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperror.Invalid(op, err.Error())
	}
	return apperror.Invalid(op, strings.Join(FieldMessages(verrs), "; "))
}

func FieldMessages(verrs validator.ValidationErrors) []string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "min", "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max", "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		case "captions_need_ranker":
			msgs = append(msgs, "semantic captions require the semantic ranker")
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return msgs
}
