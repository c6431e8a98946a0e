package models

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	var v ValidationError
	if !validEmail(r.Email) {
		v.Add("email", "Invalid email address")
	}
	if r.Password == "" {
		v.Add("password", "Password is required")
	}
	return v.OrNil()
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r SignupRequest) Validate() error {
	var v ValidationError
	if r.Name == "" {
		v.Add("name", "Name is required")
	}
	if !validEmail(r.Email) {
		v.Add("email", "Invalid email address")
	}
	if len(r.Password) < 8 {
		v.Add("password", "Password must be at least 8 characters")
	}
	return v.OrNil()
}

type ProfileUpdate struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

func (r ProfileUpdate) Validate() error {
	var v ValidationError
	if r.Name != nil && *r.Name == "" {
		v.Add("name", "Name is required")
	}
	if r.Email != nil && !validEmail(*r.Email) {
		v.Add("email", "Invalid email address")
	}
	return v.OrNil()
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
