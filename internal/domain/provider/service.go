package provider

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

type serviceCatalog interface {
	ServiceExists(ctx context.Context, ids []int64) (map[int64]bool, error)
}

type tokenIssuer interface {
	Issue(ctx context.Context, userID int64) (string, error)
}

// ValidationError carries field-level problems found after struct validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Fields)
}

type Service struct {
	repo    Repository
	catalog serviceCatalog
	tokens  tokenIssuer
	logger  *zap.Logger
}

func NewService(repo Repository, catalog serviceCatalog, tokens tokenIssuer, logger *zap.Logger) *Service {
	return &Service{repo: repo, catalog: catalog, tokens: tokens, logger: logger}
}

// BecomeProvider stores the offerings, tags the user as a provider and
// returns a fresh token carrying the new role. Repeating the call updates the
// same offerings and leaves the role unchanged.
func (s *Service) BecomeProvider(ctx context.Context, userID int64, req BecomeProviderRequest) (string, error) {
	fields := map[string]string{}
	ids := make([]int64, 0, len(req.Services))
	seen := make(map[int64]bool, len(req.Services))
	for i, in := range req.Services {
		prefix := fmt.Sprintf("services[%d].", i)
		for k, v := range rangeErrors(prefix, in.Availability) {
			fields[k] = v
		}
		if seen[in.ServiceID] {
			fields[prefix+"service_id"] = "unique"
		}
		seen[in.ServiceID] = true
		ids = append(ids, in.ServiceID)
	}

	known, err := s.catalog.ServiceExists(ctx, ids)
	if err != nil {
		return "", err
	}
	for i, id := range ids {
		if !known[id] {
			fields[fmt.Sprintf("services[%d].service_id", i)] = "exists"
		}
	}
	if len(fields) > 0 {
		return "", &ValidationError{Fields: fields}
	}

	offerings := make([]Offering, 0, len(req.Services))
	for _, in := range req.Services {
		offerings = append(offerings, Offering{
			ServiceID:    in.ServiceID,
			Experience:   *in.Experience,
			Price:        in.Price,
			Availability: in.Availability,
		})
	}

	if err := s.repo.AddOfferingsForUser(ctx, userID, offerings); err != nil {
		return "", fmt.Errorf("add offerings: %w", err)
	}
	s.logger.Info("provider onboarded", zap.Int64("user_id", userID), zap.Int("offerings", len(offerings)))

	return s.tokens.Issue(ctx, userID)
}

func (s *Service) ListMine(ctx context.Context, userID int64) ([]Offering, error) {
	out, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Offering{}
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, userID, id int64, req UpdateOfferingRequest) (*Offering, error) {
	if req.Availability != nil {
		if fields := rangeErrors("", req.Availability); len(fields) > 0 {
			return nil, &ValidationError{Fields: fields}
		}
	}

	patch := OfferingPatch{Price: req.Price, Experience: req.Experience}
	if req.Availability != nil {
		patch.Availability = &req.Availability
	}
	return s.repo.UpdateForUser(ctx, id, userID, patch)
}

func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	return s.repo.DeleteForUser(ctx, id, userID)
}

func (s *Service) SearchByService(ctx context.Context, serviceName string) ([]Listing, error) {
	out, err := s.repo.SearchByServiceName(ctx, strings.TrimSpace(serviceName))
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Listing{}
	}
	return out, nil
}

func (s *Service) SearchByCategory(ctx context.Context, category string) ([]CategoryListing, error) {
	out, err := s.repo.SearchByCategory(ctx, strings.TrimSpace(category))
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []CategoryListing{}
	}
	return out, nil
}
