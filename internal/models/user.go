package models

type UserRole string

const (
	RoleCitizen  UserRole = "CITIZEN"
	RoleEmployee UserRole = "EMPLOYEE"
	RoleAdmin    UserRole = "ADMIN"
)

type User struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Password   string   `json:"password,omitempty"`
	Role       UserRole `json:"role"`
	Department string   `json:"department,omitempty"`
	Avatar     string   `json:"avatar,omitempty"`
	DOB        string   `json:"dob,omitempty"`
	Mobile     string   `json:"mobile,omitempty"`
	Aadhaar    string   `json:"aadhaar,omitempty"`
	Address    string   `json:"address,omitempty"`
	Gender     string   `json:"gender,omitempty"`
}

// Sanitized returns a copy safe to send to clients.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}
