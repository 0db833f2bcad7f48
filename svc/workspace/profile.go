package workspace

import (
	"context"
	"errors"
	"strings"

	"github.com/ngolasuite/ngola/pkg/domain"
	"github.com/ngolasuite/ngola/pkg/repository"
	"github.com/ngolasuite/ngola/pkg/validator"
)

// ProfileUpdate carries the profile fields a user may change. Nil fields are
// left alone.
type ProfileUpdate struct {
	DisplayName *string
	Phone       *string
	Department  *string
	AvatarURL   *string
}

func (u ProfileUpdate) apply(p domain.Profile) domain.Profile {
	if u.DisplayName != nil {
		p.DisplayName = strings.TrimSpace(*u.DisplayName)
	}
	if u.Phone != nil {
		p.Phone = strings.TrimSpace(*u.Phone)
	}
	if u.Department != nil {
		p.Department = strings.TrimSpace(*u.Department)
	}
	if u.AvatarURL != nil {
		p.AvatarURL = strings.TrimSpace(*u.AvatarURL)
	}
	return p
}

// emailer is implemented by actors that know their account email.
type emailer interface{ Email() string }

// profileCache is implemented by actors that keep the profile in memory.
type profileCache interface{ SetProfile(domain.Profile) }

// Profile returns the actor's profile. A user without a stored profile gets
// one built from the account.
func (s *Service) Profile(ctx context.Context, a Actor) (domain.Profile, error) {
	userID, err := userOf(a)
	if err != nil {
		return domain.Profile{}, err
	}
	p, err := s.repos.Profiles.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		p = domain.Profile{ID: userID}
		if e, ok := a.(emailer); ok {
			p.Email = e.Email()
		}
		return p, nil
	}
	return p, err
}

// UpdateProfile saves the changed fields, creating the profile if needed.
func (s *Service) UpdateProfile(ctx context.Context, a Actor, u ProfileUpdate) (domain.Profile, error) {
	p, err := s.Profile(ctx, a)
	if err != nil {
		return domain.Profile{}, err
	}
	p = u.apply(p)
	if err := validator.Apply(
		validator.Required("email", p.Email),
		validator.MaxLen("display_name", p.DisplayName, 120),
		validator.MaxLen("department", p.Department, 120),
		validator.When(p.Phone != "", validator.Phone("phone", p.Phone)),
	); err != nil {
		return domain.Profile{}, err
	}

	p, err = s.repos.Profiles.Save(ctx, p)
	if err != nil {
		return domain.Profile{}, err
	}
	if c, ok := a.(profileCache); ok {
		c.SetProfile(p)
	}
	return p, nil
}
