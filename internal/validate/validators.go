// Package validate holds the standard field validators wired into the
// lifecycle engine. Validators receive the raw attribute value from the
// request payload and return the canonical form the engine persists; a nil
// value means the caller omitted or cleared the attribute, and validators
// guarding required fields reject it.
package validate

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ayodelan/schoolbase-backend/internal/domain"
	"github.com/ayodelan/schoolbase-backend/internal/lifecycle"
)

const dateLayout = "2006-01-02"

var (
	phoneRe       = regexp.MustCompile(`^\+?[0-9][0-9 \-]{5,18}[0-9]$`)
	sessionYearRe = regexp.MustCompile(`^([0-9]{4})(?:/([0-9]{4}))?$`)

	errRequired = errors.New("is required")
)

// Optional lifts a validator over nil: an omitted value passes untouched,
// anything else goes through the wrapped validator.
func Optional(v lifecycle.FieldValidator) lifecycle.FieldValidator {
	return func(value any) (any, error) {
		if value == nil {
			return nil, nil
		}
		return v(value)
	}
}

// NonEmptyString requires a non-blank string and canonicalizes it by
// trimming surrounding whitespace.
func NonEmptyString(value any) (any, error) {
	if value == nil {
		return nil, errRequired
	}
	s, ok := value.(string)
	if !ok {
		return nil, errors.New("must be a string")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("must not be empty")
	}
	return s, nil
}

// OptionalString accepts nil or any string, trimmed.
func OptionalString(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	s, ok := value.(string)
	if !ok {
		return nil, errors.New("must be a string")
	}
	return strings.TrimSpace(s), nil
}

// Phone requires a plausible phone number: digits with optional leading
// plus, spaces, and dashes.
func Phone(value any) (any, error) {
	if value == nil {
		return nil, errRequired
	}
	s, ok := value.(string)
	if !ok || s == "" {
		return nil, errors.New("must be a phone number")
	}
	s = strings.TrimSpace(s)
	if !phoneRe.MatchString(s) {
		return nil, errors.New("must be a valid phone number")
	}
	return s, nil
}

// Email requires an RFC 5322 address, lowercased for storage.
func Email(value any) (any, error) {
	if value == nil {
		return nil, errRequired
	}
	s, ok := value.(string)
	if !ok || s == "" {
		return nil, errors.New("must be an email address")
	}
	s = strings.TrimSpace(s)
	if _, err := mail.ParseAddress(s); err != nil {
		return nil, errors.New("must be a valid email address")
	}
	return strings.ToLower(s), nil
}

// OptionalEmail accepts nil or a valid address.
func OptionalEmail(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	return Email(value)
}

// SessionYear accepts "YYYY/YYYY" with consecutive years, or a bare "YYYY".
func SessionYear(value any) (any, error) {
	if value == nil {
		return nil, errRequired
	}
	s, ok := value.(string)
	if !ok || s == "" {
		return nil, errors.New("must be a session year")
	}
	s = strings.TrimSpace(s)
	m := sessionYearRe.FindStringSubmatch(s)
	if m == nil {
		return nil, errors.New("must look like 2024/2025 or 2024")
	}
	if m[2] != "" {
		first, _ := strconv.Atoi(m[1])
		second, _ := strconv.Atoi(m[2])
		if second != first+1 {
			return nil, errors.New("years must be consecutive")
		}
	}
	return s, nil
}

// Date requires an ISO date, either a string in YYYY-MM-DD form or a
// time.Time, and canonicalizes both to the YYYY-MM-DD string.
func Date(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, errRequired
	case time.Time:
		return v.Format(dateLayout), nil
	case string:
		t, err := time.Parse(dateLayout, strings.TrimSpace(v))
		if err != nil {
			return nil, errors.New("must be a date in YYYY-MM-DD form")
		}
		return t.Format(dateLayout), nil
	default:
		return nil, errors.New("must be a date")
	}
}

// OptionalDate accepts nil or a valid date.
func OptionalDate(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	return Date(value)
}

// Score requires a number between 0 and 100 inclusive, stored as float64.
// JSON payloads deliver numbers as float64; integers from other callers are
// accepted too.
func Score(value any) (any, error) {
	if value == nil {
		return nil, errRequired
	}
	f, ok := asFloat(value)
	if !ok {
		return nil, errors.New("must be a number")
	}
	if f < 0 || f > 100 {
		return nil, errors.New("must be between 0 and 100")
	}
	return f, nil
}

// OptionalScore accepts nil or a valid score.
func OptionalScore(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	return Score(value)
}

// PositiveInt requires a whole number greater than zero, stored as int64.
func PositiveInt(value any) (any, error) {
	if value == nil {
		return nil, errRequired
	}
	f, ok := asFloat(value)
	if !ok || f != float64(int64(f)) {
		return nil, errors.New("must be a whole number")
	}
	if f <= 0 {
		return nil, errors.New("must be positive")
	}
	return int64(f), nil
}

// OneOf requires the value to be one of the allowed strings.
func OneOf(allowed ...string) lifecycle.FieldValidator {
	return func(value any) (any, error) {
		if value == nil {
			return nil, errRequired
		}
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("must be one of %s", strings.Join(allowed, ", "))
		}
		for _, a := range allowed {
			if s == a {
				return s, nil
			}
		}
		return nil, fmt.Errorf("must be one of %s", strings.Join(allowed, ", "))
	}
}

// StaffTypeValid requires a recognized staff type discriminator.
func StaffTypeValid(value any) (any, error) {
	if value == nil {
		return nil, errRequired
	}
	s, ok := value.(string)
	if !ok || !domain.StaffType(s).IsValid() {
		return nil, errors.New("must be EDUCATOR, ADMIN, SUPPORT, or SYSTEM")
	}
	return s, nil
}

// UUIDRef requires a uuid value, either parsed or in string form, and
// canonicalizes to uuid.UUID.
func UUIDRef(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, errRequired
	case uuid.UUID:
		return v, nil
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, errors.New("must be a uuid")
		}
		return id, nil
	default:
		return nil, errors.New("must be a uuid")
	}
}

// OptionalUUIDRef accepts nil or a valid uuid.
func OptionalUUIDRef(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	return UUIDRef(value)
}

var errNonNegativeNumber = errors.New("must be a non-negative number")

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
