package validators

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/angelmondragon/stallpos/pkg/errors"
)

// MaxBodyBytes bounds request bodies. Catalog replacements may carry product
// images inline as data URLs, so the limit is generous.
const MaxBodyBytes = 10 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// DecodeJSONBody decodes a strict request DTO and runs its validate tags.
func DecodeJSONBody(r *http.Request, dest any) error {
	defer func() {
		io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(limitBody(r))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		if tooLarge(err) {
			return errTooLarge()
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").WithDetails(map[string]any{"error": err.Error()})
	}
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

// ReadJSONBody returns the raw body after checking that it is a JSON object.
// Callers that sanitize leniently decode it themselves.
func ReadJSONBody(r *http.Request) ([]byte, error) {
	raw, err := io.ReadAll(limitBody(r))
	if err != nil {
		if tooLarge(err) {
			return nil, errTooLarge()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body")
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request body must be a JSON object")
	}
	return trimmed, nil
}

// DecodeLenientBody decodes a JSON object into dest, ignoring unknown fields.
// Field values are expected to be sanitized by the caller.
func DecodeLenientBody(r *http.Request, dest any) error {
	raw, err := ReadJSONBody(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").WithDetails(map[string]any{"error": err.Error()})
	}
	return nil
}

func limitBody(r *http.Request) io.Reader {
	return http.MaxBytesReader(nil, r.Body, MaxBodyBytes)
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func errTooLarge() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeTooLarge, "request body too large").
		WithDetails(map[string]any{"limitBytes": MaxBodyBytes})
}

func formatValidationErrors(err error) *pkgerrors.Error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	}
	return "is invalid"
}
