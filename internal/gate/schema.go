package gate

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/daypass/chat-gateway-go/internal/errors"
)

// TextField is one user-authored prose field of a decoded request body. The
// gate screens these for injection phrasing and sanitizes them in place before
// the handler sees them.
type TextField struct {
	Name  string
	Value *string
}

// Schema declares the shape of one endpoint's request body. New returns a
// pointer to a fresh request struct carrying validate tags; Text lists the
// prose fields of a decoded value.
type Schema struct {
	New  func() any
	Text func(v any) []TextField
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate parses the body strictly against the schema and runs the
// declared bounds. It fails closed: unknown fields, type mismatches and range
// violations are rejected with the offending field names, and nothing is
// coerced or truncated.
func decodeAndValidate(r *http.Request, schema Schema) (any, *apperrors.AppError) {
	v := schema.New()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return nil, apperrors.ValidationError("Invalid request data").WithDetails([]string{typeErr.Field})
		}
		if errors.Is(err, io.EOF) {
			return nil, apperrors.ValidationError("Request body is required")
		}
		return nil, apperrors.ValidationError("Invalid JSON body")
	}

	if err := validate.Struct(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			fields := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields = append(fields, fieldPath(fe))
			}
			return nil, apperrors.ValidationError("Invalid request data").WithDetails(fields)
		}
		return nil, apperrors.ValidationError("Invalid request data")
	}

	return v, nil
}

// fieldPath strips the root struct name from the validator namespace,
// e.g. "ChatRequest.messages[0].content" becomes "messages[0].content".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
