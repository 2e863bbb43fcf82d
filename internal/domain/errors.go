package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrNotBookable          = errors.New("resort has no package categories")
	ErrNoPlanSelected       = errors.New("no plan selected")
	ErrUnknownPlan          = errors.New("unknown package item")
	ErrUnknownDuration      = errors.New("unknown duration")
	ErrInvalidRoomType      = errors.New("room type must be single or double")
	ErrAlreadySubmitted     = errors.New("booking already submitted")
	ErrInvalidPrice         = errors.New("invalid price")
	ErrUnknownIcon          = errors.New("unknown icon")
	ErrDuplicateItemName    = errors.New("duplicate package item name")
	ErrConfirmationRequired = errors.New("deletion requires confirmation")
	ErrLastHeroSlot         = errors.New("cannot remove the last hero slot")
	ErrIndexOutOfRange      = errors.New("index out of range")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrStoragePermission    = errors.New("storage permission denied")
)

// ValidationError carries per-field messages for a rejected form.
type ValidationError struct {
	fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{fields: make(map[string][]string)}
}

func (e *ValidationError) Add(field, msg string) {
	e.fields[field] = append(e.fields[field], msg)
}

func (e *ValidationError) Len() int { return len(e.fields) }

func (e *ValidationError) Fields() map[string][]string { return e.fields }

func (e *ValidationError) Error() string {
	return "validation failed"
}

// AsValidationError returns the wrapped ValidationError, if any.
func AsValidationError(err error) *ValidationError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
