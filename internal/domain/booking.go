package domain

import "time"

type RoomType string

const (
	RoomSingle RoomType = "single"
	RoomDouble RoomType = "double"
)

func ParseRoomType(s string) (RoomType, error) {
	switch RoomType(s) {
	case RoomSingle, RoomDouble:
		return RoomType(s), nil
	}
	return "", ErrInvalidRoomType
}

// Label is the Arabic occupancy label used in outbound messages.
func (t RoomType) Label() string {
	if t == RoomDouble {
		return "دبل (مزدوجة)"
	}
	return "سنجل (فردية)"
}

// Contact is what the visitor types into the booking form.
type Contact struct {
	Name  string `json:"name" validate:"required,max=255"`
	Phone string `json:"phone" validate:"required,max=64"`
	Email string `json:"email" validate:"required,email,max=255"`
	Date  string `json:"date" validate:"required,max=64"`
}

// BookingRecord is the single row appended per submission.
type BookingRecord struct {
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email"`
	Date       string    `json:"date"`
	Plan       string    `json:"plan"`
	ResortName string    `json:"resort_name"`
	Duration   string    `json:"duration"`
	RoomType   RoomType  `json:"room_type"`
	Price      Price     `json:"price"`
	CreatedAt  time.Time `json:"created_at"`
}

// AdminUser is a content-editor account.
type AdminUser struct {
	ID           int64
	Email        string
	PasswordHash string
}
