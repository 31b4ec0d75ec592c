package backup

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/dmitrijs2005/recipebox/internal/common"
	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks doc before anything is deleted. Every failure wraps
// common.ErrInvalidFormat.
func Validate(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: empty document", common.ErrInvalidFormat)
	}
	switch {
	case doc.Version == 0:
		return fmt.Errorf("%w: version is required", common.ErrInvalidFormat)
	case doc.Categories == nil:
		return fmt.Errorf("%w: categories is required", common.ErrInvalidFormat)
	case doc.Recipes == nil:
		return fmt.Errorf("%w: recipes is required", common.ErrInvalidFormat)
	case doc.Version < 0 || doc.Version > FormatVersion:
		return fmt.Errorf("%w: unsupported version %d", common.ErrInvalidFormat, doc.Version)
	}

	if err := getValidator().Struct(doc); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s", common.ErrInvalidFormat, describe(verrs[0]))
		}
		return fmt.Errorf("%w: %v", common.ErrInvalidFormat, err)
	}

	for i, r := range doc.Recipes {
		for j, it := range r.Ingredients {
			if it.RecipeID != "" && it.RecipeID != r.ID {
				return fmt.Errorf("%w: recipes[%d].ingredients[%d].recipeId %q does not match recipe %q",
					common.ErrInvalidFormat, i, j, it.RecipeID, r.ID)
			}
		}
	}
	return nil
}

// describe renders fe as "recipes[0].title is required".
func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed on %s", field, fe.Tag())
	}
}
