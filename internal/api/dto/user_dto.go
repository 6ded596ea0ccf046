package dto

import (
	"time"

	"github.com/spec-kit/appointment-service/internal/domain"
)

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserView  `json:"user"`
}

// PasswordResetRequest initiates a reset flow.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetResponse returns the reset token. Email delivery is outside
// this service, so the token travels back in the response.
type PasswordResetResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// PasswordResetConfirmRequest completes a reset flow.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// PasswordChangeRequest changes the current user's password.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UserView is the account representation for responses.
type UserView struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Role      domain.Role       `json:"role"`
	Status    domain.UserStatus `json:"status"`
	CreatedAt time.Time         `json:"created"`
}

// UserListResponse is the paged account listing.
type UserListResponse struct {
	Items      []UserView `json:"items"`
	TotalCount int        `json:"totalCount"`
}

// AdminCreateUserRequest payload for administrator-created accounts.
type AdminCreateUserRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// AdminUpdateUserRequest payload for partial account updates.
type AdminUpdateUserRequest struct {
	Name   *string            `json:"name"`
	Email  *string            `json:"email"`
	Role   *domain.Role       `json:"role"`
	Status *domain.UserStatus `json:"status"`
}

// ActivityLogView is one audit trail entry.
type ActivityLogView struct {
	ID          int64     `json:"id"`
	UserID      *string   `json:"userId"`
	UserName    string    `json:"userName"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	IPAddress   string    `json:"ipAddress"`
	CreatedAt   time.Time `json:"created"`
}

// ActivityLogListResponse is the paged audit trail.
type ActivityLogListResponse struct {
	Items      []ActivityLogView `json:"items"`
	TotalCount int               `json:"totalCount"`
}

// NewUserView maps an account to its response form.
func NewUserView(u *domain.User) UserView {
	return UserView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}

// NewUserListResponse maps a page of accounts.
func NewUserListResponse(users []domain.User, totalCount int) UserListResponse {
	views := make([]UserView, 0, len(users))
	for i := range users {
		views = append(views, NewUserView(&users[i]))
	}
	return UserListResponse{Items: views, TotalCount: totalCount}
}

// NewActivityLogListResponse maps a page of audit entries.
func NewActivityLogListResponse(entries []domain.ActivityLog, totalCount int) ActivityLogListResponse {
	views := make([]ActivityLogView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, ActivityLogView{
			ID:          entry.ID,
			UserID:      entry.UserID,
			UserName:    entry.UserName,
			Action:      entry.Action,
			Description: entry.Description,
			IPAddress:   entry.IPAddress,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return ActivityLogListResponse{Items: views, TotalCount: totalCount}
}
