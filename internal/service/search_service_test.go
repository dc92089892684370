package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vanline/support-service/internal/domain"
	"github.com/vanline/support-service/internal/repository"
	apperrors "github.com/vanline/support-service/pkg/util"
)

type searchFixture struct {
	tickets *fakeTicketRepo
	users   *fakeUserRepo
	drivers *fakeDriverRepo
}

func newTestSearchService(t *testing.T, users ...domain.User) (*SearchService, *searchFixture) {
	t.Helper()
	fx := &searchFixture{
		tickets: newFakeTicketRepo(),
		users:   newFakeUserRepo(users...),
		drivers: newFakeDriverRepo(),
	}
	svc := NewSearchService(SearchDependencies{
		TicketRepo: fx.tickets,
		UserRepo:   fx.users,
		DriverRepo: fx.drivers,
		Logger:     zap.NewNop(),
	})
	return svc, fx
}

func TestSearchTickets_RequiresAdmin(t *testing.T) {
	svc, _ := newTestSearchService(t, endUser("u1", "Jane Doe"))

	_, err := svc.SearchTickets(context.Background(), "u1", TicketSearchInput{})
	expectDomainError(t, err, apperrors.CodeForbidden)

	_, err = svc.SearchTickets(context.Background(), "nobody", TicketSearchInput{})
	expectDomainError(t, err, apperrors.CodeForbidden)
}

func TestSearchTickets_MergesBothDirectories(t *testing.T) {
	svc, fx := newTestSearchService(t, adminUser("a1"))
	fx.users.searchResults = []domain.User{endUser("u1", "Jane Doe")}
	fx.drivers.searchResults = []domain.Driver{driverRecord("d7", "Jane Trucker")}

	_, err := svc.SearchTickets(context.Background(), "a1", TicketSearchInput{Search: "Jane"})
	require.NoError(t, err)
	require.Equal(t, "Jane", fx.users.lastTerm)
	require.Equal(t, "Jane", fx.drivers.lastTerm)
	require.Equal(t, []string{"d7", "u1"}, fx.tickets.lastSearch.ActorIDs)
}

func TestSearchTickets_ActorTypeNarrowsDirectories(t *testing.T) {
	svc, fx := newTestSearchService(t, adminUser("a1"))
	fx.drivers.searchResults = []domain.Driver{driverRecord("d7", "Jane Trucker")}
	driver := domain.ActorTypeDriver

	_, err := svc.SearchTickets(context.Background(), "a1", TicketSearchInput{Search: "Jane", ActorType: &driver})
	require.NoError(t, err)
	require.Empty(t, fx.users.lastTerm)
	require.Equal(t, "Jane", fx.drivers.lastTerm)
	require.Equal(t, []string{"d7"}, fx.tickets.lastSearch.ActorIDs)
	require.NotNil(t, fx.tickets.lastSearch.ActorType)
	require.Equal(t, driver, *fx.tickets.lastSearch.ActorType)
}

func TestSearchTickets_NoDirectoryMatchShortCircuits(t *testing.T) {
	svc, fx := newTestSearchService(t, adminUser("a1"))

	result, err := svc.SearchTickets(context.Background(), "a1", TicketSearchInput{Search: "nobody named this"})
	require.NoError(t, err)
	require.Zero(t, result.Total)
	require.Zero(t, result.TotalPages)
	require.Empty(t, result.Items)
	require.False(t, result.HasMore)
	require.Zero(t, fx.tickets.searchCalls)
}

func TestSearchTickets_DirectoryFailureIsIsolated(t *testing.T) {
	svc, fx := newTestSearchService(t, adminUser("a1"))
	fx.users.searchErr = errors.New("user directory down")
	fx.drivers.searchResults = []domain.Driver{driverRecord("d7", "Jane Trucker")}

	_, err := svc.SearchTickets(context.Background(), "a1", TicketSearchInput{Search: "Jane"})
	require.NoError(t, err)
	require.Equal(t, []string{"d7"}, fx.tickets.lastSearch.ActorIDs)
}

func TestSearchTickets_PaginationMath(t *testing.T) {
	svc, fx := newTestSearchService(t, adminUser("a1"))
	fx.tickets.searchTotal = 101

	result, err := svc.SearchTickets(context.Background(), "a1", TicketSearchInput{Page: 2, Limit: 20})
	require.NoError(t, err)
	require.Equal(t, 101, result.Total)
	require.Equal(t, 6, result.TotalPages)
	require.True(t, result.HasMore)
	require.Equal(t, 20, fx.tickets.lastSearch.Limit)
	require.Equal(t, 20, fx.tickets.lastSearch.Offset)

	// Defaults and clamps: page 1, limit 20, upper bound 100.
	result, err = svc.SearchTickets(context.Background(), "a1", TicketSearchInput{})
	require.NoError(t, err)
	require.Equal(t, 1, result.Page)
	require.Equal(t, 20, result.Limit)

	result, err = svc.SearchTickets(context.Background(), "a1", TicketSearchInput{Limit: 999})
	require.NoError(t, err)
	require.Equal(t, 100, result.Limit)

	fx.tickets.searchTotal = 100
	result, err = svc.SearchTickets(context.Background(), "a1", TicketSearchInput{Page: 5, Limit: 20})
	require.NoError(t, err)
	require.False(t, result.HasMore)
	require.Equal(t, 5, result.TotalPages)
}

func TestSearchTickets_EnrichesActorNamesForPageOnly(t *testing.T) {
	svc, fx := newTestSearchService(t, adminUser("a1"), endUser("u1", "Jane Doe"))
	fx.drivers.drivers["d7"] = driverRecord("d7", "Bob Hauler")
	fx.tickets.searchItems = []domain.Ticket{
		{ID: "tic-1", ActorType: domain.ActorTypeEndUser, ActorID: "u1"},
		{ID: "tic-2", ActorType: domain.ActorTypeDriver, ActorID: "d7"},
		{ID: "tic-3", ActorType: domain.ActorTypeEndUser, ActorID: "ghost"},
		{ID: "tic-4", ActorType: domain.ActorTypeDriver, ActorID: "phantom"},
	}
	fx.tickets.searchTotal = 4

	result, err := svc.SearchTickets(context.Background(), "a1", TicketSearchInput{})
	require.NoError(t, err)
	require.Len(t, result.Items, 4)
	require.Equal(t, "Jane Doe", result.Items[0].ActorName)
	require.Equal(t, "Bob Hauler", result.Items[1].ActorName)
	require.Equal(t, "Unknown User", result.Items[2].ActorName)
	require.Equal(t, "Unknown Driver", result.Items[3].ActorName)
	require.Equal(t, 1, fx.users.findCalls)
	require.Equal(t, 1, fx.drivers.findCalls)
}

func TestSearchTickets_NameResolutionFailureDegrades(t *testing.T) {
	svc, fx := newTestSearchService(t, adminUser("a1"), endUser("u1", "Jane Doe"))
	fx.users.findErr = errors.New("directory down")
	fx.tickets.searchItems = []domain.Ticket{
		{ID: "tic-1", ActorType: domain.ActorTypeEndUser, ActorID: "u1"},
	}
	fx.tickets.searchTotal = 1

	result, err := svc.SearchTickets(context.Background(), "a1", TicketSearchInput{})
	require.NoError(t, err)
	require.Equal(t, "Unknown User", result.Items[0].ActorName)
}

func TestSearchTickets_FiltersPassThrough(t *testing.T) {
	svc, fx := newTestSearchService(t, adminUser("a1"))
	status := domain.TicketStatusOpen
	adminID := "a9"

	_, err := svc.SearchTickets(context.Background(), "a1", TicketSearchInput{
		Status:          &status,
		AssignedAdminID: &adminID,
	})
	require.NoError(t, err)
	require.Equal(t, status, *fx.tickets.lastSearch.Status)
	require.Equal(t, adminID, *fx.tickets.lastSearch.AssignedAdminID)
	require.Nil(t, fx.tickets.lastSearch.ActorIDs)
}

func TestSearchTickets_SortDefaultsAndValidation(t *testing.T) {
	svc, fx := newTestSearchService(t, adminUser("a1"))

	_, err := svc.SearchTickets(context.Background(), "a1", TicketSearchInput{})
	require.NoError(t, err)
	require.Equal(t, repository.SortByLastMessageAt, fx.tickets.lastSearch.SortKey)
	require.Equal(t, repository.SortDesc, fx.tickets.lastSearch.SortOrder)

	_, err = svc.SearchTickets(context.Background(), "a1", TicketSearchInput{
		SortKey:   repository.SortByCreatedAt,
		SortOrder: repository.SortAsc,
	})
	require.NoError(t, err)
	require.Equal(t, repository.SortByCreatedAt, fx.tickets.lastSearch.SortKey)
	require.Equal(t, repository.SortAsc, fx.tickets.lastSearch.SortOrder)

	_, err = svc.SearchTickets(context.Background(), "a1", TicketSearchInput{SortKey: "priority"})
	expectDomainError(t, err, apperrors.CodeValidation)

	_, err = svc.SearchTickets(context.Background(), "a1", TicketSearchInput{SortOrder: "sideways"})
	expectDomainError(t, err, apperrors.CodeValidation)

	badStatus := domain.TicketStatus("ARCHIVED")
	_, err = svc.SearchTickets(context.Background(), "a1", TicketSearchInput{Status: &badStatus})
	expectDomainError(t, err, apperrors.CodeValidation)

	badActor := domain.ActorType("ROBOT")
	_, err = svc.SearchTickets(context.Background(), "a1", TicketSearchInput{ActorType: &badActor})
	expectDomainError(t, err, apperrors.CodeValidation)
}
