package models

import "time"

// User учётная запись провайдера идентификации.
type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Profile отображаемые данные пользователя, один к одному с User.
type Profile struct {
	ID       string  `json:"id"`
	FullName *string `json:"full_name"`
}

// Identity пользователь, определённый по токену запроса.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Session пара токенов, выданная при входе или обновлении.
// Refresh-токен передаётся клиенту только в HttpOnly cookie.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *User     `json:"user"`
}

// SignUpRequest данные регистрации.
type SignUpRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	FullName *string `json:"full_name,omitempty" validate:"omitempty,max=100"`
}

// SignInRequest данные входа по паролю.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerificationRequest запрос на отправку письма подтверждения.
type VerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}
