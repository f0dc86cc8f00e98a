package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// User-specific validation errors
var (
	// ErrEmptyUsername is returned when a user name is empty or blank.
	ErrEmptyUsername = errors.New("user name cannot be empty")

	// ErrEmptyEmail is returned when a user email is empty.
	ErrEmptyEmail = errors.New("email cannot be empty")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrEmptyPassword is returned when neither a plaintext nor a hashed
	// password is present.
	ErrEmptyPassword = errors.New("password cannot be empty")
)

// User is a registered library member. A user exclusively owns its loan
// records; the records hold non-owning references to shared catalog items.
// The blocked state is not stored, it is derived from the fine balance.
type User struct {
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Password       string          `json:"-"` // plaintext, only set transiently during registration
	HashedPassword string          `json:"-"`
	Loans          []*LoanRecord   `json:"loans"`
	FineBalance    decimal.Decimal `json:"fine_balance"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NewUser creates a member with a zero fine balance and no loans. The caller
// is responsible for hashing the password before the user is stored.
func NewUser(name, email, password string) (*User, error) {
	user := &User{
		Name:        name,
		Email:       email,
		Password:    password,
		FineBalance: decimal.Zero,
		CreatedAt:   time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyUsername
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}

	at := strings.Index(u.Email, "@")
	if at <= 0 || at == len(u.Email)-1 {
		return ErrInvalidEmail
	}

	if u.Password == "" && u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	return nil
}

// AddFine increases the fine balance. Zero and negative amounts are silently
// ignored rather than treated as errors.
func (u *User) AddFine(amount decimal.Decimal) {
	if amount.Sign() <= 0 {
		return
	}
	u.FineBalance = u.FineBalance.Add(amount)
}

// PayFine reduces the fine balance, flooring at zero. Zero and negative
// amounts are silently ignored.
func (u *User) PayFine(amount decimal.Decimal) {
	if amount.Sign() <= 0 {
		return
	}
	u.FineBalance = u.FineBalance.Sub(amount)
	if u.FineBalance.Sign() < 0 {
		u.FineBalance = decimal.Zero
	}
}

// CalculateNewFines scans every loan whose fine has not yet been posted and
// totals the fines currently owed on them. Each loan that contributes is
// marked posted as part of the scan, so a second scan without intervening
// time reports zero: the scan both computes and locks in. Loans already
// posted are skipped and left untouched even if their fine has since grown.
func (u *User) CalculateNewFines(now time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, loan := range u.Loans {
		if loan.FinePosted {
			continue
		}
		fine := loan.CurrentFine(now)
		if fine.Sign() > 0 {
			total = total.Add(fine)
			loan.FinePosted = true
			loan.FineAmount = fine
		}
	}
	return total
}

// UpdateFineBalance posts any newly accrued fines to the balance.
func (u *User) UpdateFineBalance(now time.Time) {
	u.AddFine(u.CalculateNewFines(now))
}

// IsBlocked reports whether the user may not borrow. Only an unpaid fine
// balance blocks; overdue items that have not yet been fined do not.
func (u *User) IsBlocked() bool {
	return u.FineBalance.Sign() > 0
}

// HasUnpaidFines is the balance-side borrowing predicate. It is the same
// test as IsBlocked, exposed under its own name so calling policy can
// distinguish it from HasOverdueItems.
func (u *User) HasUnpaidFines() bool {
	return u.FineBalance.Sign() > 0
}

// HasOverdueItems reports whether any active loan is past due as of now.
func (u *User) HasOverdueItems(now time.Time) bool {
	for _, loan := range u.Loans {
		if loan.IsOverdue(now) {
			return true
		}
	}
	return false
}

// OverdueLoans returns the active loans past due as of now, in the order the
// loans were taken out.
func (u *User) OverdueLoans(now time.Time) []*LoanRecord {
	var overdue []*LoanRecord
	for _, loan := range u.Loans {
		if loan.IsOverdue(now) {
			overdue = append(overdue, loan)
		}
	}
	return overdue
}
