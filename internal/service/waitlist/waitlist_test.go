package waitlist

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
)

type stubRepo struct {
	added  []string
	addErr error
}

func (s *stubRepo) Add(_ context.Context, _, email, _ string) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.added = append(s.added, email)
	return nil
}

func (s *stubRepo) List(_ context.Context) ([]domain.WaitlistEntry, error) {
	return nil, nil
}

func (s *stubRepo) Count(_ context.Context) (int, error) {
	return len(s.added), nil
}

func TestJoin_Valid(t *testing.T) {
	repo := &stubRepo{}
	svc := New(repo)

	if err := svc.Join(context.Background(), "Ana", "ana@example.com", "Mendoza"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if len(repo.added) != 1 {
		t.Fatalf("expected one signup, got %d", len(repo.added))
	}
}

func TestJoin_TrimsInput(t *testing.T) {
	repo := &stubRepo{}
	svc := New(repo)

	if err := svc.Join(context.Background(), "  Ana ", " ana@example.com ", " Salta "); err != nil {
		t.Fatalf("join: %v", err)
	}
}

func TestJoin_Invalid(t *testing.T) {
	svc := New(&stubRepo{})

	cases := [][3]string{
		{"", "ana@example.com", "Salta"},
		{"Ana", "", "Salta"},
		{"Ana", "not-an-email", "Salta"},
		{"Ana", "ana@example.com", ""},
	}
	for _, c := range cases {
		if err := svc.Join(context.Background(), c[0], c[1], c[2]); !errors.Is(err, ErrInvalidEntry) {
			t.Fatalf("expected ErrInvalidEntry for %v, got %v", c, err)
		}
	}
}

func TestJoin_UnknownProvince(t *testing.T) {
	svc := New(&stubRepo{})

	if err := svc.Join(context.Background(), "Ana", "ana@example.com", "Narnia"); !errors.Is(err, ErrUnknownProvince) {
		t.Fatalf("expected ErrUnknownProvince, got %v", err)
	}
}

func TestJoin_DuplicateEmail(t *testing.T) {
	svc := New(&stubRepo{addErr: domain.ErrAlreadyExists})

	if err := svc.Join(context.Background(), "Ana", "ana@example.com", "Chubut"); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}
