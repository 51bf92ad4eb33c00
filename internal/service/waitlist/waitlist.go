// Package waitlist collects interest signups for provinces the store does
// not ship to yet.
package waitlist

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/repository/waitlist"
)

var (
	ErrInvalidEntry    = errors.New("name, email and province are required")
	ErrUnknownProvince = errors.New("unknown province")
)

// provinces is the fixed list of Argentine provinces accepted on signup.
var provinces = map[string]struct{}{
	"Buenos Aires":        {},
	"CABA":                {},
	"Catamarca":           {},
	"Chaco":               {},
	"Chubut":              {},
	"Córdoba":             {},
	"Corrientes":          {},
	"Entre Ríos":          {},
	"Formosa":             {},
	"Jujuy":               {},
	"La Pampa":            {},
	"La Rioja":            {},
	"Mendoza":             {},
	"Misiones":            {},
	"Neuquén":             {},
	"Río Negro":           {},
	"Salta":               {},
	"San Juan":            {},
	"San Luis":            {},
	"Santa Cruz":          {},
	"Santa Fe":            {},
	"Santiago del Estero": {},
	"Tierra del Fuego":    {},
	"Tucumán":             {},
}

type Service struct {
	repo waitlist.Repository
}

func New(repo waitlist.Repository) *Service {
	return &Service{repo: repo}
}

// Join adds a signup. A repeated email surfaces domain.ErrAlreadyExists.
func (s *Service) Join(ctx context.Context, name, email, province string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	province = strings.TrimSpace(province)
	if name == "" || email == "" || province == "" || !strings.Contains(email, "@") {
		return ErrInvalidEntry
	}
	if _, ok := provinces[province]; !ok {
		return ErrUnknownProvince
	}
	return s.repo.Add(ctx, name, email, province)
}

func (s *Service) List(ctx context.Context) ([]domain.WaitlistEntry, error) {
	return s.repo.List(ctx)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
