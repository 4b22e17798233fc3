package auth

// Request and response shapes exchanged with the external auth API. They are
// passed through unchanged.

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type RequestOtpRequest struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose,omitempty"`
}

type VerifyOtpRequest struct {
	Email string `json:"email"`
	Otp   string `json:"otp"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Otp         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

type VerifyAccountRequest struct {
	Email string `json:"email"`
	Otp   string `json:"otp"`
}

// AuthResponse is the envelope every auth endpoint answers with.
type AuthResponse[T any] struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Data       T      `json:"data"`
	StatusCode int    `json:"statusCode"`
	Timestamp  string `json:"timestamp"`
	TraceID    string `json:"traceId,omitempty"`
}

type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    int64  `json:"expiresIn,omitempty"`
	User         User   `json:"user"`
}

type ResendOtpResponse struct {
	Email       string `json:"email"`
	ExpiresAt   string `json:"expiresAt,omitempty"`
	ResendAfter int    `json:"resendAfter,omitempty"`
}

// Empty is the payload of responses that carry no data.
type Empty struct{}
