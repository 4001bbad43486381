package service

import (
	"context"

	"crm-backend/internal/repository"

	"github.com/google/uuid"
)

// searchHitLimit caps hits per entity type.
const searchHitLimit = 5

// SearchHit is one typed row of a global search result. Status is only set
// for types that carry one (leads, deals).
type SearchHit struct {
	Type     string    `json:"type"`
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle,omitempty"`
	Status   string    `json:"status,omitempty"`
}

// SearchService answers the global search box: one query matched against
// leads, contacts, accounts, and deals, a handful of hits per type.
type SearchService interface {
	GlobalSearch(ctx context.Context, q string) ([]SearchHit, error)
}

type searchService struct {
	leads    repository.LeadRepository
	contacts repository.ContactRepository
	accounts repository.AccountRepository
	deals    repository.DealRepository
}

func NewSearchService(
	leads repository.LeadRepository,
	contacts repository.ContactRepository,
	accounts repository.AccountRepository,
	deals repository.DealRepository,
) SearchService {
	return &searchService{leads: leads, contacts: contacts, accounts: accounts, deals: deals}
}

func (s *searchService) GlobalSearch(ctx context.Context, q string) ([]SearchHit, error) {
	hits := []SearchHit{}

	leads, _, err := s.leads.List(ctx, repository.LeadFilter{Search: q, Limit: searchHitLimit})
	if err != nil {
		return nil, err
	}
	for _, l := range leads {
		subtitle := l.Company
		if subtitle == "" {
			subtitle = l.Email
		}
		hits = append(hits, SearchHit{
			Type:     "lead",
			ID:       l.ID,
			Title:    l.FullName(),
			Subtitle: subtitle,
			Status:   l.Status,
		})
	}

	contacts, _, err := s.contacts.List(ctx, q, 1, searchHitLimit)
	if err != nil {
		return nil, err
	}
	for _, c := range contacts {
		subtitle := c.Company
		if subtitle == "" {
			subtitle = c.Email
		}
		hits = append(hits, SearchHit{
			Type:     "contact",
			ID:       c.ID,
			Title:    c.Name,
			Subtitle: subtitle,
		})
	}

	accounts, _, err := s.accounts.List(ctx, q, 1, searchHitLimit)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		hits = append(hits, SearchHit{
			Type:     "account",
			ID:       a.ID,
			Title:    a.Name,
			Subtitle: a.Industry,
		})
	}

	deals, _, err := s.deals.List(ctx, repository.DealFilter{Search: q, Limit: searchHitLimit})
	if err != nil {
		return nil, err
	}
	for _, d := range deals {
		hits = append(hits, SearchHit{
			Type:     "deal",
			ID:       d.ID,
			Title:    d.Title,
			Subtitle: "Value: $" + d.Value.StringFixed(0),
			Status:   d.Stage,
		})
	}

	return hits, nil
}
