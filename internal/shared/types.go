package shared

// Role of an authenticated principal.
type Role string

const (
	RoleCustomer   Role = "CUSTOMER"
	RoleTechnician Role = "TECHNICIAN"
	RoleManager    Role = "MANAGER"
	RoleAdmin      Role = "ADMIN"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleTechnician, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// IsPrivileged reports whether the role may act on any resource.
func (r Role) IsPrivileged() bool {
	return r == RoleAdmin || r == RoleManager
}

// Asynq task types
const (
	TypeSendOrderConfirmation = "email:order_confirmation"
	TypeWriteAuditLog         = "audit:log"
	TypeExpirePendingOrders   = "order:expire_pending"
)

// Asynq queues
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// Actor identifies who performed a state change.
type Actor struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	IPAddress string `json:"ipAddress,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
}
