// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package social

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tomtom215/moviebooks/internal/auth"
	"github.com/tomtom215/moviebooks/internal/database"
	"github.com/tomtom215/moviebooks/internal/logging"
	"github.com/tomtom215/moviebooks/internal/media"
	"github.com/tomtom215/moviebooks/internal/models"
	"github.com/tomtom215/moviebooks/internal/validation"
)

// RegisterInput is the registration request body.
type RegisterInput struct {
	Username    string `json:"username" validate:"required,username"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	DisplayName string `json:"displayName" validate:"omitempty,max=50"`
}

// LoginInput is the login request body.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileInput holds profile edits. Nil fields are left unchanged.
type ProfileInput struct {
	DisplayName *string `json:"displayName" validate:"omitempty,max=50"`
	Bio         *string `json:"bio" validate:"omitempty,max=500"`
	Location    *string `json:"location" validate:"omitempty,max=100"`
}

// Register creates an account and returns it with a fresh token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.AuthResponse, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if verr := validation.ValidateStruct(in); verr != nil {
		return nil, validationError(verr.Error())
	}

	exists, err := s.store.UserExists(ctx, in.Username, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return nil, conflictError(MsgUserExists)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	now := s.now()
	u := &models.User{
		ID:           bson.NewObjectID(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		DisplayName:  in.DisplayName,
		Favorites:    []bson.ObjectID{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, conflictError(MsgUserExists)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	logging.Ctx(ctx).Info().Str("user_id", u.ID.Hex()).Str("username", u.Username).Msg("User registered")
	return s.authResponse(u)
}

// Login verifies credentials and issues a token.
func (s *Service) Login(ctx context.Context, in LoginInput) (*models.AuthResponse, error) {
	in.Email = normalizeEmail(in.Email)
	if verr := validation.ValidateStruct(in); verr != nil {
		return nil, validationError(verr.Error())
	}

	u, err := s.store.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, database.ErrNotFound) {
		return nil, unauthorizedError(MsgInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, in.Password) {
		return nil, unauthorizedError(MsgInvalidCredentials)
	}
	return s.authResponse(u)
}

func (s *Service) authResponse(u *models.User) (*models.AuthResponse, error) {
	token, err := s.jwt.GenerateToken(u.ID.Hex(), u.Username)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Token:     token,
		CreatedAt: u.CreatedAt,
	}, nil
}

// Profile returns a user's public profile with follow and connection counts.
func (s *Service) Profile(ctx context.Context, userID bson.ObjectID) (*models.UserProfile, error) {
	u, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFoundError(MsgUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return s.profile(ctx, u)
}

func (s *Service) profile(ctx context.Context, u *models.User) (*models.UserProfile, error) {
	counts, err := s.store.CountFollows(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("count follows: %w", err)
	}
	conns, err := s.store.CountConnectionsByUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("count connections: %w", err)
	}
	return &models.UserProfile{
		ID:                u.ID,
		Username:          u.Username,
		DisplayName:       u.DisplayName,
		Bio:               u.Bio,
		Location:          u.Location,
		ProfilePictureURL: u.ProfilePictureURL,
		Followers:         counts.Followers,
		Following:         counts.Following,
		Connections:       conns,
		CreatedAt:         u.CreatedAt,
	}, nil
}

// UpdateProfile edits the caller's profile. A new picture replaces the old
// one, which is then deleted from the image store.
func (s *Service) UpdateProfile(ctx context.Context, userID bson.ObjectID, in ProfileInput, picture *media.Upload) (*models.UserProfile, error) {
	trimPtr(in.DisplayName)
	trimPtr(in.Bio)
	trimPtr(in.Location)
	if verr := validation.ValidateStruct(in); verr != nil {
		return nil, validationError(verr.Error())
	}

	current, err := s.actor(ctx, userID)
	if err != nil {
		return nil, err
	}

	update := database.ProfileUpdate{
		DisplayName: in.DisplayName,
		Bio:         in.Bio,
		Location:    in.Location,
	}

	var asset *media.Asset
	if picture != nil {
		asset, err = s.media.Save(ctx, picture)
		if err != nil {
			return nil, fmt.Errorf("store profile picture: %w", err)
		}
		update.ProfilePictureURL = &asset.URL
		update.ProfilePictureID = &asset.PublicID
	}

	u, err := s.store.UpdateUserProfile(ctx, userID, update, s.now())
	if err != nil {
		if asset != nil {
			s.discardAsset(ctx, asset.PublicID)
		}
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFoundError(MsgUserNotFound)
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if asset != nil && current.ProfilePictureID != "" {
		s.discardAsset(ctx, current.ProfilePictureID)
	}
	return s.profile(ctx, u)
}

// DeleteAccount removes the caller and everything they created: each of
// their connections with its cleanup, their comments, follow edges in both
// directions, notifications they sent or received, and their likes and
// favorites on other connections.
func (s *Service) DeleteAccount(ctx context.Context, userID bson.ObjectID) error {
	u, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return notFoundError(MsgUserNotFound)
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	conns, err := s.store.ListConnectionsByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("list connections: %w", err)
	}
	for _, c := range conns {
		if err := s.removeConnection(ctx, c); err != nil {
			return err
		}
	}

	_ = s.effects.Run(ctx, EffectPurgeUser, userPayload{UserID: userID})
	s.discardAsset(ctx, u.ProfilePictureID)

	if err := s.store.DeleteUser(ctx, userID); err != nil && !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("delete user: %w", err)
	}

	logging.Ctx(ctx).Info().
		Str("user_id", userID.Hex()).
		Int("connections", len(conns)).
		Msg("Account deleted")
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
