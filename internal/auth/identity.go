package auth

import (
	"context"
	"time"
)

// Token is an access token obtained from the identity provider together with
// the serialised cache that produced it.
type Token struct {
	AccessToken string
	ExpiresOn   time.Time
	Account     string
	Cache       []byte
}

// Expiry is the exp claim when the access token is a JWT, otherwise the
// expiry reported by the provider
func (t *Token) Expiry() time.Time {
	if exp, ok := TokenExpiry(t.AccessToken); ok {
		return exp
	}
	return t.ExpiresOn
}

// DeviceLogin is an in-progress device-code sign-in
type DeviceLogin struct {
	UserCode        string
	VerificationURL string
	Message         string
	ExpiresOn       time.Time

	wait func(ctx context.Context) (*Token, error)
}

// NewDeviceLogin builds a DeviceLogin whose completion is delegated to wait
func NewDeviceLogin(userCode, verificationURL, message string, expiresOn time.Time, wait func(ctx context.Context) (*Token, error)) *DeviceLogin {
	return &DeviceLogin{
		UserCode:        userCode,
		VerificationURL: verificationURL,
		Message:         message,
		ExpiresOn:       expiresOn,
		wait:            wait,
	}
}

// Wait blocks until the user finishes signing in or ctx is done
func (d *DeviceLogin) Wait(ctx context.Context) (*Token, error) {
	return d.wait(ctx)
}

// Identity is the boundary to the OAuth library
type Identity interface {
	// AcquireSilent redeems a previously exported cache without user interaction
	AcquireSilent(ctx context.Context, cache []byte) (*Token, error)
	// StartDeviceCode begins a fresh device-code sign-in
	StartDeviceCode(ctx context.Context) (*DeviceLogin, error)
}
