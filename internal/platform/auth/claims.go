package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	UserRoleKey contextKey = "user_role"
	DoctorIDKey contextKey = "doctor_id"
)

// Staff roles. The push-channel handshake derives a connection's routing
// scope from the role, so new roles must decide whether they are clinic-wide
// listeners (front desk) or scoped ones (doctors).
const (
	RoleAdmin     = "admin"
	RoleDoctor    = "doctor"
	RoleFrontDesk = "front_desk"
)

// Claims are the JWT claims issued to clinic staff.
type Claims struct {
	jwt.RegisteredClaims
	Role     string `json:"role"`
	DoctorID string `json:"doctor_id,omitempty"`
	Name     string `json:"name,omitempty"`
}

// UserIDFromContext returns the authenticated subject, or "" if absent.
func UserIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(UserIDKey).(string)
	return uid
}

// RoleFromContext returns the authenticated role, or "" if absent.
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(UserRoleKey).(string)
	return role
}

// DoctorIDFromContext returns the doctor id for doctor-role users, or "".
func DoctorIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(DoctorIDKey).(string)
	return id
}

// WithClaims stores the identity derived from validated claims on a context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.Subject)
	ctx = context.WithValue(ctx, UserRoleKey, claims.Role)
	ctx = context.WithValue(ctx, DoctorIDKey, claims.DoctorID)
	return ctx
}
