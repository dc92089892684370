package service

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/vanline/support-service/internal/domain"
	"github.com/vanline/support-service/internal/repository"
	apperrors "github.com/vanline/support-service/pkg/util"
)

// directorySearchLimit bounds how many name matches each directory may
// contribute to the id filter set.
const directorySearchLimit = 100

// SearchService is the administrator triage listing: multi-filter, actor
// name search, sort and pagination over the whole ticket set.
type SearchService struct {
	tickets repository.TicketRepository
	users   repository.UserRepository
	drivers repository.DriverRepository
	logger  *zap.Logger
}

// SearchDependencies bundles collaborators.
type SearchDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	DriverRepo repository.DriverRepository
	Logger     *zap.Logger
}

// TicketSearchInput describes the admin listing parameters. Zero values mean
// "no filter" and the documented defaults.
type TicketSearchInput struct {
	Status          *domain.TicketStatus
	ActorType       *domain.ActorType
	AssignedAdminID *string
	Search          string
	SortKey         repository.SortKey
	SortOrder       repository.SortOrder
	Page            int
	Limit           int
}

// TicketWithActor is a page item enriched with the actor's display name.
type TicketWithActor struct {
	domain.Ticket
	ActorName string
}

// TicketSearchResult is one page of the admin listing.
type TicketSearchResult struct {
	Items      []TicketWithActor
	Total      int
	Page       int
	Limit      int
	TotalPages int
	HasMore    bool
}

// NewSearchService creates the service.
func NewSearchService(deps SearchDependencies) *SearchService {
	return &SearchService{
		tickets: deps.TicketRepo,
		users:   deps.UserRepo,
		drivers: deps.DriverRepo,
		logger:  deps.Logger,
	}
}

// SearchTickets filters, searches, sorts and paginates the ticket set for an
// administrator. Filtering and slicing happen in the store; only the
// returned page is enriched in memory.
func (s *SearchService) SearchTickets(ctx context.Context, requesterID string, input TicketSearchInput) (*TicketSearchResult, error) {
	if err := normalizeSearchInput(&input); err != nil {
		return nil, err
	}

	req, err := resolveRequester(ctx, s.users, requesterID)
	if err != nil {
		return nil, err
	}
	if !req.IsAdmin() {
		return nil, apperrors.NewForbidden("administrator access required")
	}

	page := clampPage(input.Page)
	limit := clampLimit(input.Limit, defaultSearchLimit)

	var actorIDs []string
	if term := strings.TrimSpace(input.Search); term != "" {
		actorIDs = s.matchActorIDs(ctx, term, input.ActorType)
		if len(actorIDs) == 0 {
			return &TicketSearchResult{Items: []TicketWithActor{}, Page: page, Limit: limit}, nil
		}
	}

	items, total, err := s.tickets.Search(ctx, repository.TicketSearchQuery{
		Status:          input.Status,
		ActorType:       input.ActorType,
		AssignedAdminID: input.AssignedAdminID,
		ActorIDs:        actorIDs,
		SortKey:         input.SortKey,
		SortOrder:       input.SortOrder,
		Limit:           limit,
		Offset:          (page - 1) * limit,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	return &TicketSearchResult{
		Items:      s.attachActorNames(ctx, items),
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
		HasMore:    page*limit < total,
	}, nil
}

// matchActorIDs resolves the free-text name search to an actor id set. The
// actorType filter narrows which directories are consulted; one directory
// failing is logged and the other still contributes.
func (s *SearchService) matchActorIDs(ctx context.Context, term string, actorType *domain.ActorType) []string {
	set := map[string]struct{}{}
	if actorType == nil || *actorType == domain.ActorTypeEndUser {
		users, err := s.users.SearchByName(ctx, term, directorySearchLimit)
		if err != nil {
			s.logger.Warn("user name search failed", zap.String("term", term), zap.Error(err))
		}
		for i := range users {
			set[users[i].ID] = struct{}{}
		}
	}
	if actorType == nil || *actorType == domain.ActorTypeDriver {
		drivers, err := s.drivers.SearchByName(ctx, term, directorySearchLimit)
		if err != nil {
			s.logger.Warn("driver name search failed", zap.String("term", term), zap.Error(err))
		}
		for i := range drivers {
			set[drivers[i].ID] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// attachActorNames batch-resolves display names for the actors on the page.
// A directory miss or failure leaves the per-type fallback name.
func (s *SearchService) attachActorNames(ctx context.Context, items []domain.Ticket) []TicketWithActor {
	userIDs := map[string]struct{}{}
	driverIDs := map[string]struct{}{}
	for i := range items {
		switch items[i].ActorType {
		case domain.ActorTypeDriver:
			driverIDs[items[i].ActorID] = struct{}{}
		default:
			userIDs[items[i].ActorID] = struct{}{}
		}
	}

	names := make(map[string]string, len(userIDs)+len(driverIDs))
	if len(userIDs) > 0 {
		users, err := s.users.FindByIDs(ctx, sortedKeys(userIDs))
		if err != nil {
			s.logger.Warn("user name resolution failed", zap.Error(err))
		}
		for i := range users {
			names[users[i].ID] = users[i].Name
		}
	}
	if len(driverIDs) > 0 {
		drivers, err := s.drivers.FindByIDs(ctx, sortedKeys(driverIDs))
		if err != nil {
			s.logger.Warn("driver name resolution failed", zap.Error(err))
		}
		for i := range drivers {
			names[drivers[i].ID] = drivers[i].Name
		}
	}

	result := make([]TicketWithActor, 0, len(items))
	for i := range items {
		name, ok := names[items[i].ActorID]
		if !ok {
			name = unknownActorName(items[i].ActorType)
		}
		result = append(result, TicketWithActor{Ticket: items[i], ActorName: name})
	}
	return result
}

func normalizeSearchInput(input *TicketSearchInput) error {
	if input.Status != nil && !input.Status.Valid() {
		return apperrors.NewValidationError("unknown status", map[string]any{"status": *input.Status})
	}
	if input.ActorType != nil && !input.ActorType.Valid() {
		return apperrors.NewValidationError("unknown actor_type", map[string]any{"actor_type": *input.ActorType})
	}
	switch input.SortKey {
	case "":
		input.SortKey = repository.SortByLastMessageAt
	case repository.SortByLastMessageAt, repository.SortByCreatedAt:
	default:
		return apperrors.NewValidationError("unknown sort_by", map[string]any{"sort_by": input.SortKey})
	}
	switch input.SortOrder {
	case "":
		input.SortOrder = repository.SortDesc
	case repository.SortAsc, repository.SortDesc:
	default:
		return apperrors.NewValidationError("unknown sort_order", map[string]any{"sort_order": input.SortOrder})
	}
	return nil
}

func unknownActorName(actorType domain.ActorType) string {
	if actorType == domain.ActorTypeDriver {
		return "Unknown Driver"
	}
	return "Unknown User"
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
