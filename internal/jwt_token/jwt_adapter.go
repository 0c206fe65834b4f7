package jwttoken

import (
	id "coopreg/pkg/domain"
	dErrors "coopreg/pkg/domain-errors"
	authmw "coopreg/pkg/platform/middleware/auth"
)

// ToActor converts validated claims into the actor the auth middleware
// stores on the request. Malformed ids or unknown roles are unauthorized.
func ToActor(claims *Claims) (*authmw.Actor, error) {
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	tenantID, err := id.ParseTenantID(claims.TenantID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token tenant")
	}
	role, err := id.ParseRole(claims.Role)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token role")
	}
	return &authmw.Actor{UserID: userID, Role: role, TenantID: tenantID}, nil
}

type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.Actor, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToActor(claims)
}
