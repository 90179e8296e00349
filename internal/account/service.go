// Package account covers the signed-in user's own data: profile and the
// address book used at checkout.
package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/thriftline/marketplace/internal/domain"
	"github.com/thriftline/marketplace/internal/port"
	"github.com/thriftline/marketplace/internal/repository"
)

type Service struct {
	ident     port.Identity
	profiles  port.ProfileRepository
	addresses port.AddressRepository
}

func NewService(ident port.Identity, profiles port.ProfileRepository, addresses port.AddressRepository) *Service {
	return &Service{
		ident:     ident,
		profiles:  profiles,
		addresses: addresses,
	}
}

// CurrentProfile returns the stored profile of the signed-in user, or an
// empty profile pre-filled from the identity when none is stored yet.
func (s *Service) CurrentProfile(ctx context.Context) (domain.Profile, error) {
	user, err := s.ident.Current(ctx)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("ident.Current: %w", err)
	}

	profile, err := s.profiles.GetProfile(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return domain.Profile{UserID: user.ID, Email: user.Email}, nil
		}
		return domain.Profile{}, fmt.Errorf("profiles.GetProfile: %w", err)
	}

	return profile, nil
}

// SaveProfile upserts name and phone; the email always comes from the
// identity provider, never from the caller.
func (s *Service) SaveProfile(ctx context.Context, name, phoneNumber string) error {
	user, err := s.ident.Current(ctx)
	if err != nil {
		return fmt.Errorf("ident.Current: %w", err)
	}

	profile := domain.Profile{
		UserID:      user.ID,
		Name:        name,
		PhoneNumber: phoneNumber,
		Email:       user.Email,
	}

	if err := s.profiles.UpsertProfile(ctx, profile); err != nil {
		return fmt.Errorf("profiles.UpsertProfile: %w", err)
	}

	return nil
}

func (s *Service) AddAddress(ctx context.Context, address string) (domain.Address, error) {
	user, err := s.ident.Current(ctx)
	if err != nil {
		return domain.Address{}, fmt.Errorf("ident.Current: %w", err)
	}

	added, err := s.addresses.AddAddress(ctx, user.ID, address)
	if err != nil {
		return domain.Address{}, fmt.Errorf("addresses.AddAddress: %w", err)
	}

	return added, nil
}

func (s *Service) Addresses(ctx context.Context) ([]domain.Address, error) {
	user, err := s.ident.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("ident.Current: %w", err)
	}

	list, err := s.addresses.ListAddresses(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("addresses.ListAddresses: %w", err)
	}

	return list, nil
}

func (s *Service) RemoveAddress(ctx context.Context, addressID uuid.UUID) error {
	user, err := s.ident.Current(ctx)
	if err != nil {
		return fmt.Errorf("ident.Current: %w", err)
	}

	if _, err := s.addresses.DeleteAddress(ctx, user.ID, addressID); err != nil {
		return fmt.Errorf("addresses.DeleteAddress: %w", err)
	}

	return nil
}
