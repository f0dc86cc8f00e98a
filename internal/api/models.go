package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/weilandt/circ-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the member registration endpoint.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,min=2,max=64"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the login endpoint. Members and
// admins share it; the issued token carries the resolved role.
type LoginRequest struct {
	Name     string `json:"name"     validate:"required"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	Username     string `json:"username"`
	Role         string `json:"role"`
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    string `json:"expires_at,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh
// endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// CreateMediaRequest defines the payload for adding a catalog item.
type CreateMediaRequest struct {
	ID          string `json:"id"           validate:"required"`
	Title       string `json:"title"        validate:"required"`
	Author      string `json:"author"`
	Category    string `json:"category"     validate:"required,oneof=book cd"`
	TotalCopies int    `json:"total_copies" validate:"required,min=1"`
}

// UpdateCopiesRequest defines the payload for changing an item's total copy
// count.
type UpdateCopiesRequest struct {
	TotalCopies int `json:"total_copies" validate:"required,min=1"`
}

// MediaResponse describes one catalog item.
type MediaResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author,omitempty"`
	Category    string `json:"category"`
	TotalCopies int    `json:"total_copies"`
	Available   int    `json:"available"`
}

// NewMediaResponse converts a catalog item to its API shape.
func NewMediaResponse(item *domain.MediaItem) MediaResponse {
	return MediaResponse{
		ID:          item.ID,
		Title:       item.Title,
		Author:      item.Author,
		Category:    string(item.Category),
		TotalCopies: item.TotalCopies,
		Available:   item.Available,
	}
}

// BorrowRequest defines the payload for checking out a catalog item.
type BorrowRequest struct {
	MediaID string `json:"media_id" validate:"required"`
}

// LoanResponse describes one loan record.
type LoanResponse struct {
	ID         uuid.UUID `json:"id"`
	MediaID    string    `json:"media_id"`
	Title      string    `json:"title"`
	BorrowedAt time.Time `json:"borrowed_at"`
	DueAt      time.Time `json:"due_at"`
	Returned   bool      `json:"returned"`
	Fine       string    `json:"fine"`
}

// NewLoanResponse converts a loan record to its API shape. The fine shown is
// the fine accrued as of now.
func NewLoanResponse(loan *domain.LoanRecord, now time.Time) LoanResponse {
	return LoanResponse{
		ID:         loan.ID,
		MediaID:    loan.Media.ID,
		Title:      loan.Media.Title,
		BorrowedAt: loan.BorrowedAt,
		DueAt:      loan.DueAt,
		Returned:   loan.Returned,
		Fine:       loan.CurrentFine(now).String(),
	}
}

// OverdueResponse lists a member's overdue loans and current balance.
type OverdueResponse struct {
	Overdue     []LoanResponse `json:"overdue"`
	FineBalance string         `json:"fine_balance"`
	Blocked     bool           `json:"blocked"`
}

// PayFineRequest defines the payload for paying down a fine balance.
type PayFineRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// BalanceResponse reports a member's fine balance after a payment.
type BalanceResponse struct {
	FineBalance string `json:"fine_balance"`
	Blocked     bool   `json:"blocked"`
}

// ReminderResponse reports the outcome of a reminder request.
type ReminderResponse struct {
	OverdueCount int  `json:"overdue_count"`
	Sent         bool `json:"sent"`
}
