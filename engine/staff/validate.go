package staff

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

const (
	MaxJobNumberLen = 15
	MaxExtensionLen = 4
)

var (
	emailPattern     = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,4}$`)
	rutPattern       = regexp.MustCompile(`^\d{1,2}(\.?\d{3}){2}-[\dkK]$`)
	jobNumberPattern = regexp.MustCompile(`^[0-9\s+]+$`)
	extensionPattern = regexp.MustCompile(`^[0-9]+$`)
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// NewUser is the payload accepted by the create-user endpoint.
type NewUser struct {
	Identifier string `json:"rut"            validate:"required,rut"`
	FirstNames string `json:"nombres"        validate:"required"`
	LastNames  string `json:"apellidos"      validate:"required"`
	Email      string `json:"email"          validate:"required,staff_email"`
	Password   string `json:"passHash"       validate:"required"`
	Role       Role   `json:"rol"            validate:"required,staff_role"`
	Department string `json:"dependencias"   validate:"required"`
	Address    string `json:"direcciones"    validate:"required"`
	JobNumber  string `json:"numMunicipal"   validate:"required,job_number"`
	Extension  string `json:"anexoMunicipal" validate:"required,extension"`
}

// Redacted returns a copy safe for logs
func (u NewUser) Redacted() NewUser {
	if u.Password != "" {
		u.Password = "[REDACTED]"
	}
	return u
}

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		// registration only fails on empty tags
		_ = v.RegisterValidation("rut", matches(rutPattern))
		_ = v.RegisterValidation("staff_email", matches(emailPattern))
		_ = v.RegisterValidation("job_number", func(fl validator.FieldLevel) bool {
			return validJobNumber(fl.Field().String())
		})
		_ = v.RegisterValidation("extension", func(fl validator.FieldLevel) bool {
			return validExtension(fl.Field().String())
		})
		_ = v.RegisterValidation("staff_role", func(fl validator.FieldLevel) bool {
			return Role(fl.Field().String()).Valid()
		})
		validate = v
	})
	return validate
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// ValidIdentifier reports whether s has the 12.345.678-9 shape
func ValidIdentifier(s string) bool {
	return rutPattern.MatchString(s)
}

func validJobNumber(s string) bool {
	return len(s) <= MaxJobNumberLen && jobNumberPattern.MatchString(s)
}

func validExtension(s string) bool {
	return len(s) <= MaxExtensionLen && extensionPattern.MatchString(s)
}

// Validate checks every field of the new user and reports all failures at once.
func (u NewUser) Validate() error {
	err := validatorInstance().Struct(u)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate user: %w", err)
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: messageFor(fe.Tag())})
	}
	return out
}

func messageFor(tag string) string {
	switch tag {
	case "required":
		return "is required"
	case "rut":
		return "must look like 12.345.678-9"
	case "staff_email":
		return "is not a valid email address"
	case "job_number":
		return fmt.Sprintf("only digits, spaces and '+' allowed, at most %d characters", MaxJobNumberLen)
	case "extension":
		return fmt.Sprintf("only digits allowed, at most %d characters", MaxExtensionLen)
	case "staff_role":
		return "must be one of user, admin, superAdmin"
	default:
		return "is invalid"
	}
}

// ValidateCell applies the same field rules to a single grid edit.
func ValidateCell(col ColumnID, value string) error {
	fail := func(tag string) error {
		return &ValidationError{Fields: []FieldError{{Field: string(col), Message: messageFor(tag)}}}
	}
	switch col {
	case ColumnIdentifier:
		return ErrImmutableIdentifier
	case ColumnEmail:
		if !emailPattern.MatchString(value) {
			return fail("staff_email")
		}
	case ColumnRole:
		if !Role(value).Valid() {
			return fail("staff_role")
		}
	case ColumnJobNumber:
		if !validJobNumber(value) {
			return fail("job_number")
		}
	case ColumnExtension:
		if !validExtension(value) {
			return fail("extension")
		}
	case ColumnFirstNames, ColumnLastNames, ColumnDepartment, ColumnAddress:
		if strings.TrimSpace(value) == "" {
			return fail("required")
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownColumn, col)
	}
	return nil
}
