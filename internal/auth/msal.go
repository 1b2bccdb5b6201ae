package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/AzureAD/microsoft-authentication-library-for-go/apps/cache"
	"github.com/AzureAD/microsoft-authentication-library-for-go/apps/public"
)

// MSALIdentity implements Identity with the MSAL public client
type MSALIdentity struct {
	clientID  string
	authority string
	scopes    []string
}

// NewMSALIdentity creates an identity adapter for a public client application
func NewMSALIdentity(clientID, authority string, scopes []string) (*MSALIdentity, error) {
	if clientID == "" {
		return nil, errors.New("client id is required")
	}
	return &MSALIdentity{clientID: clientID, authority: authority, scopes: scopes}, nil
}

func (m *MSALIdentity) client(accessor *memoryCache) (public.Client, error) {
	opts := []public.Option{public.WithCache(accessor)}
	if m.authority != "" {
		opts = append(opts, public.WithAuthority(m.authority))
	}
	client, err := public.New(m.clientID, opts...)
	if err != nil {
		return public.Client{}, fmt.Errorf("failed to create public client: %w", err)
	}
	return client, nil
}

// AcquireSilent loads the cache and redeems the first cached account
func (m *MSALIdentity) AcquireSilent(ctx context.Context, data []byte) (*Token, error) {
	accessor := &memoryCache{data: data}
	client, err := m.client(accessor)
	if err != nil {
		return nil, err
	}

	accounts, err := client.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cached accounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil, errors.New("cache holds no accounts")
	}

	result, err := client.AcquireTokenSilent(ctx, m.scopes, public.WithSilentAccount(accounts[0]))
	if err != nil {
		return nil, err
	}

	return &Token{
		AccessToken: result.AccessToken,
		ExpiresOn:   result.ExpiresOn,
		Account:     result.Account.PreferredUsername,
		Cache:       accessor.snapshot(),
	}, nil
}

// StartDeviceCode starts from an empty cache so the resulting record replaces
// the old one wholesale
func (m *MSALIdentity) StartDeviceCode(ctx context.Context) (*DeviceLogin, error) {
	accessor := &memoryCache{}
	client, err := m.client(accessor)
	if err != nil {
		return nil, err
	}

	dc, err := client.AcquireTokenByDeviceCode(ctx, m.scopes)
	if err != nil {
		return nil, err
	}

	wait := func(ctx context.Context) (*Token, error) {
		result, err := dc.AuthenticationResult(ctx)
		if err != nil {
			return nil, err
		}
		return &Token{
			AccessToken: result.AccessToken,
			ExpiresOn:   result.ExpiresOn,
			Account:     result.Account.PreferredUsername,
			Cache:       accessor.snapshot(),
		}, nil
	}

	return NewDeviceLogin(dc.Result.UserCode, dc.Result.VerificationURL, dc.Result.Message, dc.Result.ExpiresOn, wait), nil
}

// memoryCache holds the serialised MSAL cache between client calls
type memoryCache struct {
	mu   sync.Mutex
	data []byte
}

func (c *memoryCache) Replace(_ context.Context, u cache.Unmarshaler, _ cache.ReplaceHints) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.data) == 0 {
		return nil
	}
	return u.Unmarshal(c.data)
}

func (c *memoryCache) Export(_ context.Context, m cache.Marshaler, _ cache.ExportHints) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.data = data
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) snapshot() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]byte, len(c.data))
	copy(out, c.data)
	return out
}
