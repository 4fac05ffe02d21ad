package model

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"shop-backend/internal/shared"
	"shop-backend/internal/shared/query"
)

type ListUsersFilter struct {
	Role      shared.Role `json:"role"`
	IsActive  *bool       `json:"isActive"`
	Search    string      `json:"search"`
	SortBy    string      `json:"sortBy"`
	SortOrder string      `json:"sortOrder"`
	Page      query.Page  `json:"-"`
}

func (f ListUsersFilter) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Role, validation.By(func(interface{}) error {
			if f.Role != "" && !f.Role.IsValid() {
				return errors.New("must be one of CUSTOMER, TECHNICIAN, MANAGER, ADMIN")
			}
			return nil
		})),
	)
}

type ListUsersResponse struct {
	Users      []User           `json:"users"`
	Pagination query.Pagination `json:"pagination"`
}

type BulkUpdateUsersRequest struct {
	IDs      []string     `json:"ids"`
	Role     *shared.Role `json:"role"`
	IsActive *bool        `json:"isActive"`
}

func (r *BulkUpdateUsersRequest) Normalize() {
	if r.Role != nil {
		role := shared.Role(strings.ToUpper(strings.TrimSpace(string(*r.Role))))
		r.Role = &role
	}
}

func (r BulkUpdateUsersRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IDs, validation.Required, validation.Length(1, 100), validation.Each(is.UUID)),
		validation.Field(&r.Role, validation.By(func(interface{}) error {
			if r.Role != nil && !r.Role.IsValid() {
				return errors.New("must be one of CUSTOMER, TECHNICIAN, MANAGER, ADMIN")
			}
			if r.Role == nil && r.IsActive == nil {
				return errors.New("at least one of role, isActive is required")
			}
			return nil
		})),
	)
}

// Demotes reports whether applying r takes admin rights away.
func (r BulkUpdateUsersRequest) Demotes() bool {
	return r.Role != nil && *r.Role != shared.RoleAdmin
}

// Deactivates reports whether applying r disables accounts.
func (r BulkUpdateUsersRequest) Deactivates() bool {
	return r.IsActive != nil && !*r.IsActive
}

type BulkUpdateResponse struct {
	Updated int64 `json:"updated"`
}
