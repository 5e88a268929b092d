// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiry is returned by TokenExpiry for a token without an exp claim.
var ErrNoExpiry = errors.New("token has no expiry")

// TokenExpiry reads the exp claim of tokenString without verifying the
// signature. The agent never holds the signing key; the server remains the
// authority on validity.
func TokenExpiry(tokenString string) (time.Time, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, fmt.Errorf("parse token: %w", err)
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("read exp claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, ErrNoExpiry
	}

	return exp.Time, nil
}

// TokenExpired reports whether tokenString is past its exp claim at now.
// Tokens that cannot be parsed or carry no expiry are not reported as
// expired; the server decides.
func TokenExpired(tokenString string, now time.Time) bool {
	if tokenString == "" {
		return false
	}

	exp, err := TokenExpiry(tokenString)
	if err != nil {
		return false
	}

	return !now.Before(exp)
}
