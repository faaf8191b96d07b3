package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// DirectoryService manages the saved customers and company profiles that
// quotes copy their party details from.
type DirectoryService interface {
	ListCustomers(ctx context.Context) ([]Customer, error)
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	// FindCustomer matches a customer by name, ignoring case and surrounding space.
	FindCustomer(ctx context.Context, name string) (*Customer, error)
	SaveCustomer(ctx context.Context, c *Customer) (*Customer, error)
	DeleteCustomer(ctx context.Context, id string) error

	ListProfiles(ctx context.Context) ([]CompanyProfile, error)
	GetProfile(ctx context.Context, id string) (*CompanyProfile, error)
	FindProfile(ctx context.Context, name string) (*CompanyProfile, error)
	SaveProfile(ctx context.Context, p *CompanyProfile) (*CompanyProfile, error)
	DeleteProfile(ctx context.Context, id string) error
}

type directoryService struct {
	docs *Documents
	log  zerolog.Logger
}

func NewDirectoryService(docs *Documents, log zerolog.Logger) DirectoryService {
	return &directoryService{docs: docs, log: log.With().Str("service", "directory").Logger()}
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func (s *directoryService) ListCustomers(ctx context.Context) ([]Customer, error) {
	db, err := s.docs.Read(ctx)
	if err != nil {
		return nil, err
	}
	out := append([]Customer(nil), db.Customers...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].CustomerName) < strings.ToLower(out[j].CustomerName)
	})
	return out, nil
}

func (s *directoryService) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	db, err := s.docs.Read(ctx)
	if err != nil {
		return nil, err
	}
	for i := range db.Customers {
		if db.Customers[i].ID == id {
			c := db.Customers[i]
			return &c, nil
		}
	}
	return nil, fmt.Errorf("customer %s: %w", id, ErrNotFound)
}

func (s *directoryService) FindCustomer(ctx context.Context, name string) (*Customer, error) {
	db, err := s.docs.Read(ctx)
	if err != nil {
		return nil, err
	}
	for i := range db.Customers {
		if sameName(db.Customers[i].CustomerName, name) {
			c := db.Customers[i]
			return &c, nil
		}
	}
	return nil, fmt.Errorf("customer %q: %w", name, ErrNotFound)
}

func (s *directoryService) SaveCustomer(ctx context.Context, c *Customer) (*Customer, error) {
	in := *c
	if in.ID == "" {
		in.ID = NewID()
	}
	rec, err := RecordFrom(in)
	if err != nil {
		return nil, err
	}
	valid, err := ValidateCustomer(ApplyCustomerDefaults(rec))
	if err != nil {
		return nil, err
	}
	err = s.docs.Update(ctx, func(db *Database) error {
		for i := range db.Customers {
			if db.Customers[i].ID == valid.ID {
				db.Customers[i] = *valid
				return nil
			}
		}
		db.Customers = append(db.Customers, *valid)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("customer_id", valid.ID).Msg("customer saved")
	return valid, nil
}

func (s *directoryService) DeleteCustomer(ctx context.Context, id string) error {
	return s.docs.Update(ctx, func(db *Database) error {
		for i := range db.Customers {
			if db.Customers[i].ID == id {
				db.Customers = append(db.Customers[:i], db.Customers[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("customer %s: %w", id, ErrNotFound)
	})
}

func (s *directoryService) ListProfiles(ctx context.Context) ([]CompanyProfile, error) {
	db, err := s.docs.Read(ctx)
	if err != nil {
		return nil, err
	}
	out := append([]CompanyProfile(nil), db.CompanyProfiles...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].CompanyName) < strings.ToLower(out[j].CompanyName)
	})
	return out, nil
}

func (s *directoryService) GetProfile(ctx context.Context, id string) (*CompanyProfile, error) {
	db, err := s.docs.Read(ctx)
	if err != nil {
		return nil, err
	}
	for i := range db.CompanyProfiles {
		if db.CompanyProfiles[i].ID == id {
			p := db.CompanyProfiles[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("company profile %s: %w", id, ErrNotFound)
}

func (s *directoryService) FindProfile(ctx context.Context, name string) (*CompanyProfile, error) {
	db, err := s.docs.Read(ctx)
	if err != nil {
		return nil, err
	}
	for i := range db.CompanyProfiles {
		if sameName(db.CompanyProfiles[i].CompanyName, name) {
			p := db.CompanyProfiles[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("company profile %q: %w", name, ErrNotFound)
}

func (s *directoryService) SaveProfile(ctx context.Context, p *CompanyProfile) (*CompanyProfile, error) {
	in := *p
	if in.ID == "" {
		in.ID = NewID()
	}
	rec, err := RecordFrom(in)
	if err != nil {
		return nil, err
	}
	valid, err := ValidateCompanyProfile(ApplyCompanyProfileDefaults(rec))
	if err != nil {
		return nil, err
	}
	err = s.docs.Update(ctx, func(db *Database) error {
		for i := range db.CompanyProfiles {
			if db.CompanyProfiles[i].ID == valid.ID {
				db.CompanyProfiles[i] = *valid
				return nil
			}
		}
		db.CompanyProfiles = append(db.CompanyProfiles, *valid)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("profile_id", valid.ID).Msg("company profile saved")
	return valid, nil
}

func (s *directoryService) DeleteProfile(ctx context.Context, id string) error {
	return s.docs.Update(ctx, func(db *Database) error {
		for i := range db.CompanyProfiles {
			if db.CompanyProfiles[i].ID == id {
				db.CompanyProfiles = append(db.CompanyProfiles[:i], db.CompanyProfiles[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("company profile %s: %w", id, ErrNotFound)
	})
}
