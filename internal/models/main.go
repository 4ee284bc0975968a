// Package models defines the core data structures for users, conversion
// history, tutor requests and tutoring sessions.
package models

// Role classifies a user and selects which dashboard and query variant they see.
type Role string

const (
	// RoleStudent is a user who requests tutors.
	RoleStudent Role = "student"
	// RoleTutor is a user who receives and answers tutor requests.
	RoleTutor Role = "tutor"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTutor
}

// User represents an application user with credentials.
type User struct {
	// ID is the auto-assigned identity of the user.
	ID int64 `json:"id"`
	// Username is the unique login name chosen by the user.
	Username string `json:"username"`
	// Email is the unique email address of the user.
	Email string `json:"email"`
	// PasswordHash is the digest of the user's password. Never serialized.
	PasswordHash string `json:"-"`
	// Role is fixed at registration.
	Role Role `json:"role"`
	// CreatedAt is the registration time in epoch milliseconds.
	CreatedAt int64 `json:"created_at"`
}

// ConversionEntry is one logged number-base conversion.
type ConversionEntry struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	InputValue  string `json:"input_value"`
	InputBase   int    `json:"input_base"`
	OutputValue string `json:"output_value"`
	OutputBase  int    `json:"output_base"`
	// Timestamp is the insert time in epoch milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// SupportedBases lists the radixes a conversion may use.
var SupportedBases = []int{2, 8, 10, 16}

// ValidBase reports whether base is one of SupportedBases.
func ValidBase(base int) bool {
	for _, b := range SupportedBases {
		if b == base {
			return true
		}
	}
	return false
}

// TutorRequest links a student to a tutor they asked for.
type TutorRequest struct {
	ID              int64         `json:"id"`
	StudentUsername string        `json:"student_username"`
	TutorUsername   string        `json:"tutor_username"`
	Status          RequestStatus `json:"status"`
	CreatedAt       int64         `json:"created_at"`
	UpdatedAt       int64         `json:"updated_at"`
}

// Session is a tutoring session created from an accepted request.
type Session struct {
	ID              int64         `json:"id"`
	RequestID       int64         `json:"request_id"`
	StudentUsername string        `json:"student_username"`
	TutorUsername   string        `json:"tutor_username"`
	Topic           string        `json:"topic"`
	Status          SessionStatus `json:"status"`
	CreatedAt       int64         `json:"created_at"`
	UpdatedAt       int64         `json:"updated_at"`
}
