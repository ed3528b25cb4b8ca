package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Govind-619/JewelSphere/models"
	"github.com/golang-jwt/jwt"
)

var ErrInvalidToken = errors.New("invalid token")

// GenerateToken creates a signed JWT carrying the identity
func GenerateToken(secret string, identity models.Identity, ttl time.Duration) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["user_id"] = identity.UserID
	claims["role"] = identity.Role
	claims["exp"] = time.Now().Add(ttl).Unix()

	return token.SignedString([]byte(secret))
}

// ValidateToken validates a JWT and returns the identity it carries.
// Tokens holding an admin_id claim are admin tokens.
func ValidateToken(secret, tokenString string) (models.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Identity{}, ErrInvalidToken
	}

	if adminID := claimString(claims["admin_id"]); adminID != "" {
		return models.Identity{UserID: adminID, Role: models.RoleAdmin}, nil
	}

	userID := claimString(claims["user_id"])
	if userID == "" {
		return models.Identity{}, fmt.Errorf("%w: missing user id", ErrInvalidToken)
	}
	role, _ := claims["role"].(string)
	if role != models.RoleAdmin {
		role = models.RoleCustomer
	}
	return models.Identity{UserID: userID, Role: role}, nil
}

// claimString accepts ids issued either as strings or as JSON numbers
func claimString(v interface{}) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatInt(int64(id), 10)
	}
	return ""
}
