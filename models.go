package backoffice

import "time"

// User is the identity record returned by the remote API on login and
// register, and the value persisted under the "user" storage key.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsActive  bool   `json:"is_active"`

	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Hotel mirrors the remote API's hotel resource.
type Hotel struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	Address       string  `json:"address"`
	City          string  `json:"city"`
	Country       string  `json:"country"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone,omitempty"`
	Website       string  `json:"website,omitempty"`
	PricePerNight string  `json:"price_per_night"`
	Currency      string  `json:"currency"`
	Rating        float64 `json:"rating"`
	IsActive      bool    `json:"is_active"`
	Image         string  `json:"image,omitempty"`
	Slug          string  `json:"slug,omitempty"`

	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Room mirrors the remote API's room resource.
type Room struct {
	ID            string `json:"id"`
	HotelID       string `json:"hotel"`
	RoomNumber    string `json:"room_number"`
	RoomType      string `json:"room_type"`
	Capacity      string `json:"capacity"`
	PricePerNight string `json:"price_per_night"`
	IsAvailable   bool   `json:"is_available"`

	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Booking mirrors the remote API's booking resource.
type Booking struct {
	ID         string    `json:"id"`
	HotelID    string    `json:"hotel"`
	UserID     string    `json:"user"`
	RoomID     string    `json:"room"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	TotalPrice string    `json:"total_price"`
	Status     string    `json:"status"`

	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Credentials is the login request payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Profile is the registration request payload. The remote API performs the
// authoritative validation; the tags here only reject obviously broken input
// before it goes on the wire.
type Profile struct {
	FirstName            string `json:"first_name" validate:"required"`
	LastName             string `json:"last_name" validate:"required"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}
