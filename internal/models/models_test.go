package models

import (
	"testing"
	"time"

	"ecobazaar/internal/apperrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct(id string, price int64) *Product {
	return &Product{ID: id, Name: "Product " + id, Price: decimal.NewFromInt(price), CarbonSavedPerItem: 1.5}
}

func TestCartAddMergesLines(t *testing.T) {
	cart := NewCart("user-1")
	require.NoError(t, cart.Add(testProduct("p1", 100), 1))
	require.NoError(t, cart.Add(testProduct("p1", 100), 2))
	require.NoError(t, cart.Add(testProduct("p2", 40), 1))

	assert.Len(t, cart.Items, 2)
	item, ok := cart.Find("p1")
	require.True(t, ok)
	assert.Equal(t, 3, item.Quantity)
	assert.Equal(t, cart.ID, item.CartID)
	assert.True(t, decimal.NewFromInt(340).Equal(cart.Subtotal()))
}

func TestCartAddRejectsNonPositiveQuantity(t *testing.T) {
	cart := NewCart("user-1")
	err := cart.Add(testProduct("p1", 10), 0)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
	assert.True(t, cart.IsEmpty())
}

func TestCartSetQuantity(t *testing.T) {
	cart := NewCart("user-1")
	require.NoError(t, cart.Add(testProduct("p1", 10), 1))

	require.NoError(t, cart.SetQuantity("p1", 5))
	item, _ := cart.Find("p1")
	assert.Equal(t, 5, item.Quantity)

	require.NoError(t, cart.SetQuantity("p1", 0))
	assert.True(t, cart.IsEmpty())

	err := cart.SetQuantity("missing", 1)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestCartSnapshotIsIndependent(t *testing.T) {
	cart := NewCart("user-1")
	require.NoError(t, cart.Add(testProduct("p1", 10), 1))

	snap := cart.Snapshot()
	cart.Clear()

	assert.Len(t, snap, 1)
	assert.True(t, cart.IsEmpty())
	assert.False(t, cart.Remove("p1"))
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"CUSTOMER", RoleCustomer, false},
		{" seller ", RoleSeller, false},
		{"admin", RoleAdmin, false},
		{"ROOT", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestRoleCapabilities(t *testing.T) {
	assert.True(t, RoleCustomer.Can(CapCheckout))
	assert.False(t, RoleCustomer.Can(CapManageCatalog))
	assert.True(t, RoleSeller.Can(CapViewSellerOrders))
	assert.False(t, RoleSeller.Can(CapCheckout))
	assert.True(t, RoleAdmin.Can(CapRedeemPoints))
	assert.False(t, Role("GUEST").Can(CapCheckout))
}

func TestCouponExpiredOn(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	c := &Coupon{ExpiryDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)}
	assert.False(t, c.ExpiredOn(now), "expiry on the same day is still valid")

	c.ExpiryDate = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	assert.True(t, c.ExpiredOn(now))
}
