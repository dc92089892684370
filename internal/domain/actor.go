package domain

// ActorType identifies which side of the platform owns a ticket.
type ActorType string

const (
	ActorTypeEndUser ActorType = "END_USER"
	ActorTypeDriver  ActorType = "DRIVER"
)

// Valid reports whether the value is one of the known actor types.
func (a ActorType) Valid() bool {
	switch a {
	case ActorTypeEndUser, ActorTypeDriver:
		return true
	}
	return false
}

// SenderType identifies who authored a thread message.
type SenderType string

const (
	SenderTypeEndUser SenderType = "END_USER"
	SenderTypeDriver  SenderType = "DRIVER"
	SenderTypeAdmin   SenderType = "ADMIN"
)

// SenderTypeForActor maps a ticket's actor type to the matching sender type.
func SenderTypeForActor(actor ActorType) SenderType {
	switch actor {
	case ActorTypeDriver:
		return SenderTypeDriver
	default:
		return SenderTypeEndUser
	}
}

// UserRole enumerates roles carried by the platform user directory.
type UserRole string

const (
	UserRoleAdmin    UserRole = "ADMIN"
	UserRoleCustomer UserRole = "CUSTOMER"
)
