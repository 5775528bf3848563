// Package services contains application services for the journal CLI: the
// auth session and the entry save flow with its attachment upload pass.
package services

import (
	"context"
	"fmt"

	"github.com/DAC098/tj2/internal/client/client"
	"github.com/DAC098/tj2/internal/client/repositories/metadata"
)

// AuthService manages the CLI's server session.
type AuthService interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) error
	Ping(ctx context.Context) error
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (string, error)
	Close(ctx context.Context) error
}

type authService struct {
	client       client.Client
	metadataRepo metadata.Repository
}

// NewAuthService constructs an AuthService bound to the given API client
// and local metadata store.
func NewAuthService(client client.Client, metadataRepo metadata.Repository) AuthService {
	return &authService{client: client, metadataRepo: metadataRepo}
}

func (a *authService) Register(ctx context.Context, username, password string) error {
	if err := a.client.Register(ctx, username, password); err != nil {
		return fmt.Errorf("register error: %w", err)
	}
	return nil
}

// Login authenticates against the server and remembers the user locally.
// Token persistence happens through the client's token listener.
func (a *authService) Login(ctx context.Context, username, password string) error {
	if err := a.client.Login(ctx, username, password); err != nil {
		return fmt.Errorf("login error: %w", err)
	}
	if err := a.metadataRepo.Set(ctx, metadata.KeyCurrentUser, []byte(username)); err != nil {
		return fmt.Errorf("failed to remember user: %w", err)
	}
	return nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Logout wipes the locally cached session (tokens and user).
func (a *authService) Logout(ctx context.Context) error {
	return a.metadataRepo.Clear(ctx)
}

// CurrentUser returns the locally remembered username, empty when logged out.
func (a *authService) CurrentUser(ctx context.Context) (string, error) {
	name, err := a.metadataRepo.Get(ctx, metadata.KeyCurrentUser)
	if err != nil {
		return "", err
	}
	return string(name), nil
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
