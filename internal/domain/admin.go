package domain

import (
	"errors"
	"strings"
)

// ErrEmptyAdminName is returned when an admin user name is empty or blank.
var ErrEmptyAdminName = errors.New("admin name cannot be empty")

// Admin is a staff account that may manage the catalog. Admins do not borrow,
// so they carry no loans or fine balance.
type Admin struct {
	Name           string `json:"name"`
	HashedPassword string `json:"-"`
}

// NewAdmin creates an admin account. The caller hashes the password before
// the admin is stored.
func NewAdmin(name, hashedPassword string) (*Admin, error) {
	admin := &Admin{
		Name:           name,
		HashedPassword: hashedPassword,
	}

	if err := admin.Validate(); err != nil {
		return nil, err
	}

	return admin, nil
}

// Validate checks if the Admin has valid data.
func (a *Admin) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyAdminName
	}

	if a.HashedPassword == "" {
		return ErrEmptyPassword
	}

	return nil
}

// Username returns the admin's user name.
func (a *Admin) Username() string {
	return a.Name
}

// HasUsername reports whether the admin's user name matches name,
// case-insensitively.
func (a *Admin) HasUsername(name string) bool {
	return strings.EqualFold(a.Name, name)
}
