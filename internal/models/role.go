package models

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleSeller   Role = "SELLER"
	RoleAdmin    Role = "ADMIN"
)

// Capability names an action gated at the request boundary.
type Capability string

const (
	CapCheckout         Capability = "checkout"
	CapRedeemPoints     Capability = "redeem_points"
	CapManageCatalog    Capability = "manage_catalog"
	CapViewSellerOrders Capability = "view_seller_orders"
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleCustomer: {
		CapCheckout:     true,
		CapRedeemPoints: true,
	},
	RoleSeller: {
		CapManageCatalog:    true,
		CapViewSellerOrders: true,
	},
	RoleAdmin: {
		CapCheckout:         true,
		CapRedeemPoints:     true,
		CapManageCatalog:    true,
		CapViewSellerOrders: true,
	},
}

// ParseRole converts a stored or claimed role name into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := roleCapabilities[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Can reports whether the role grants the capability.
func (r Role) Can(c Capability) bool {
	return roleCapabilities[r][c]
}

// Identity is the authenticated caller attached to each request.
type Identity struct {
	UserID string
	Role   Role
}
