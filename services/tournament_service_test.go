package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/minhkhoa23/npcnpm-final-sub001/models"
	"github.com/minhkhoa23/npcnpm-final-sub001/repositories"
)

// --- MatchRepository ---

type fakeMatchRepo struct {
	store   *fakeStore
	matches map[int]*models.Match
	nextID  int
}

func newFakeMatchRepo(store *fakeStore) *fakeMatchRepo {
	return &fakeMatchRepo{store: store, matches: make(map[int]*models.Match), nextID: 1}
}

func (r *fakeMatchRepo) Create(ctx context.Context, m *models.Match) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m.ID = r.nextID
	r.nextID++
	copied := *m
	r.matches[m.ID] = &copied
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMatchRepo) ListByTournament(ctx context.Context, tournamentID int, status *models.MatchStatus) ([]*models.Match, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []*models.Match
	for _, m := range r.matches {
		if m.TournamentID != tournamentID {
			continue
		}
		if status != nil && m.Status != *status {
			continue
		}
		copied := *m
		result = append(result, &copied)
	}
	return result, nil
}

func (r *fakeMatchRepo) UpdateScore(ctx context.Context, id int, scoreA, scoreB int, status models.MatchStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.ScoreA, m.ScoreB, m.Status = scoreA, scoreB, status
	return nil
}

func (r *fakeMatchRepo) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	count := 0
	for _, m := range r.matches {
		if m.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

func (r *fakeMatchRepo) Delete(ctx context.Context, id int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(r.matches, id)
	return nil
}

func (r *fakeMatchRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, m := range r.matches {
		if m.TournamentID == tournamentID {
			delete(r.matches, id)
		}
	}
	return nil
}

// --- NewsRepository ---

type fakeNewsRepo struct {
	store  *fakeStore
	items  map[int]*models.News
	nextID int
}

func newFakeNewsRepo(store *fakeStore) *fakeNewsRepo {
	return &fakeNewsRepo{store: store, items: make(map[int]*models.News), nextID: 1}
}

func (r *fakeNewsRepo) Create(ctx context.Context, n *models.News) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	n.ID = r.nextID
	r.nextID++
	copied := *n
	r.items[n.ID] = &copied
	return nil
}

func (r *fakeNewsRepo) GetByID(ctx context.Context, id int) (*models.News, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	n, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrNewsNotFound
	}
	copied := *n
	return &copied, nil
}

func (r *fakeNewsRepo) List(ctx context.Context, filter repositories.ListNewsFilter) ([]models.News, error) {
	return nil, nil
}

func (r *fakeNewsRepo) Update(ctx context.Context, n *models.News) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.items[n.ID]; !ok {
		return repositories.ErrNewsNotFound
	}
	copied := *n
	r.items[n.ID] = &copied
	return nil
}

func (r *fakeNewsRepo) UpdateImageKey(ctx context.Context, newsID int, imageKey *string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	n, ok := r.items[newsID]
	if !ok {
		return repositories.ErrNewsNotFound
	}
	n.ImageKey = imageKey
	return nil
}

func (r *fakeNewsRepo) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	count := 0
	for _, n := range r.items {
		if n.TournamentID != nil && *n.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

func (r *fakeNewsRepo) Delete(ctx context.Context, id int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repositories.ErrNewsNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeNewsRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, n := range r.items {
		if n.TournamentID != nil && *n.TournamentID == tournamentID {
			delete(r.items, id)
		}
	}
	return nil
}

// --- HighlightRepository ---

type fakeHighlightRepo struct {
	store  *fakeStore
	items  map[int]*models.Highlight
	nextID int

	failDeleteByTournament bool
}

func newFakeHighlightRepo(store *fakeStore) *fakeHighlightRepo {
	return &fakeHighlightRepo{store: store, items: make(map[int]*models.Highlight), nextID: 1}
}

func (r *fakeHighlightRepo) Create(ctx context.Context, h *models.Highlight) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	h.ID = r.nextID
	r.nextID++
	copied := *h
	r.items[h.ID] = &copied
	return nil
}

func (r *fakeHighlightRepo) GetByID(ctx context.Context, id int) (*models.Highlight, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	h, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrHighlightNotFound
	}
	copied := *h
	return &copied, nil
}

func (r *fakeHighlightRepo) ListByTournament(ctx context.Context, tournamentID int) ([]models.Highlight, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	result := make([]models.Highlight, 0)
	for _, h := range r.items {
		if h.TournamentID == tournamentID {
			result = append(result, *h)
		}
	}
	return result, nil
}

func (r *fakeHighlightRepo) Update(ctx context.Context, h *models.Highlight) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.items[h.ID]; !ok {
		return repositories.ErrHighlightNotFound
	}
	copied := *h
	r.items[h.ID] = &copied
	return nil
}

func (r *fakeHighlightRepo) UpdateThumbnailKey(ctx context.Context, highlightID int, thumbnailKey *string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	h, ok := r.items[highlightID]
	if !ok {
		return repositories.ErrHighlightNotFound
	}
	h.ThumbnailKey = thumbnailKey
	return nil
}

func (r *fakeHighlightRepo) Delete(ctx context.Context, id int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repositories.ErrHighlightNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeHighlightRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.failDeleteByTournament {
		return errors.New("injected highlight delete failure")
	}
	for id, h := range r.items {
		if h.TournamentID == tournamentID {
			delete(r.items, id)
		}
	}
	return nil
}

// --- Фикстуры ---

type tournamentFixture struct {
	store         *fakeStore
	service       TournamentService
	matchRepo     *fakeMatchRepo
	newsRepo      *fakeNewsRepo
	highlightRepo *fakeHighlightRepo
}

func newTournamentFixture() *tournamentFixture {
	store := newFakeStore()
	matchRepo := newFakeMatchRepo(store)
	newsRepo := newFakeNewsRepo(store)
	highlightRepo := newFakeHighlightRepo(store)

	service := NewTournamentService(
		store,
		&fakeTournamentRepo{store: store},
		&fakeCompetitorRepo{store: store},
		matchRepo,
		newsRepo,
		highlightRepo,
		&fakeUserRepo{store: store},
		nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return &tournamentFixture{
		store:         store,
		service:       service,
		matchRepo:     matchRepo,
		newsRepo:      newsRepo,
		highlightRepo: highlightRepo,
	}
}

// --- Создание ---

func TestTournamentCreateByOrganizer(t *testing.T) {
	fx := newTournamentFixture()
	seedUser(fx.store, 100, "Org Anna", "anna@example.com", models.RoleOrganizer)

	start := time.Now().Add(24 * time.Hour)
	end := start.Add(48 * time.Hour)
	tournament, err := fx.service.Create(context.Background(), 100, CreateTournamentInput{
		Name:       "  Summer Cup  ",
		GameName:   "CS2",
		Format:     "single elimination",
		StartDate:  &start,
		EndDate:    &end,
		MaxPlayers: intPtr(16),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tournament.Name != "Summer Cup" {
		t.Errorf("expected trimmed name, got %q", tournament.Name)
	}
	if tournament.Status != models.StatusUpcoming {
		t.Errorf("expected new tournament to start as upcoming, got %s", tournament.Status)
	}
	if tournament.PlayerCount != 0 {
		t.Errorf("expected zero player count, got %d", tournament.PlayerCount)
	}
}

func TestTournamentCreateValidation(t *testing.T) {
	now := time.Now()
	later := now.Add(time.Hour)

	tests := []struct {
		name    string
		role    models.UserRole
		input   CreateTournamentInput
		wantErr error
	}{
		{
			name:    "player cannot create",
			role:    models.RolePlayer,
			input:   CreateTournamentInput{Name: "Cup", GameName: "CS2"},
			wantErr: ErrForbiddenOperation,
		},
		{
			name:    "blank name",
			role:    models.RoleOrganizer,
			input:   CreateTournamentInput{Name: "   ", GameName: "CS2"},
			wantErr: ErrTournamentNameRequired,
		},
		{
			name:    "blank game name",
			role:    models.RoleOrganizer,
			input:   CreateTournamentInput{Name: "Cup", GameName: " "},
			wantErr: ErrValidationFailed,
		},
		{
			name:    "end before start",
			role:    models.RoleOrganizer,
			input:   CreateTournamentInput{Name: "Cup", GameName: "CS2", StartDate: &later, EndDate: &now},
			wantErr: ErrTournamentInvalidDateRange,
		},
		{
			name:    "zero capacity",
			role:    models.RoleOrganizer,
			input:   CreateTournamentInput{Name: "Cup", GameName: "CS2", MaxPlayers: intPtr(0)},
			wantErr: ErrTournamentInvalidCapacity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newTournamentFixture()
			seedUser(fx.store, 100, "Anna", "anna@example.com", tt.role)

			_, err := fx.service.Create(context.Background(), 100, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// --- Обновление ---

func TestTournamentUpdateCapacityBelowRegistered(t *testing.T) {
	fx := newTournamentFixture()
	seedUser(fx.store, 100, "Anna", "anna@example.com", models.RoleOrganizer)
	seedTournament(fx.store, 10, models.StatusUpcoming, intPtr(8))
	fx.store.tournaments[10].PlayerCount = 5

	_, err := fx.service.Update(context.Background(), 10, 100, models.RoleOrganizer, UpdateTournamentInput{
		MaxPlayers: intPtr(3),
	})
	if !errors.Is(err, ErrTournamentInvalidCapacity) {
		t.Fatalf("expected ErrTournamentInvalidCapacity, got %v", err)
	}

	// Лимит, равный числу участников, допустим.
	updated, err := fx.service.Update(context.Background(), 10, 100, models.RoleOrganizer, UpdateTournamentInput{
		MaxPlayers: intPtr(5),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.MaxPlayers == nil || *updated.MaxPlayers != 5 {
		t.Errorf("expected max players 5, got %v", updated.MaxPlayers)
	}
}

func TestTournamentUpdateStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		current models.TournamentStatus
		next    string
		wantErr bool
	}{
		{"upcoming to ongoing", models.StatusUpcoming, "ongoing", false},
		{"upcoming to completed", models.StatusUpcoming, "completed", false},
		{"ongoing to completed", models.StatusOngoing, "completed", false},
		{"ongoing back to upcoming", models.StatusOngoing, "upcoming", true},
		{"completed to ongoing", models.StatusCompleted, "ongoing", true},
		{"unknown status", models.StatusUpcoming, "cancelled", true},
		{"same status is a no-op", models.StatusOngoing, "ongoing", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newTournamentFixture()
			seedTournament(fx.store, 10, tt.current, nil)

			_, err := fx.service.Update(context.Background(), 10, 100, models.RoleOrganizer, UpdateTournamentInput{
				Status: strPtr(tt.next),
			})
			if tt.wantErr {
				if !errors.Is(err, ErrTournamentInvalidStatus) {
					t.Fatalf("expected ErrTournamentInvalidStatus, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestTournamentUpdateForeignOrganizerForbidden(t *testing.T) {
	fx := newTournamentFixture()
	seedTournament(fx.store, 10, models.StatusUpcoming, nil) // организатор 100

	_, err := fx.service.Update(context.Background(), 10, 200, models.RoleOrganizer, UpdateTournamentInput{
		Name: strPtr("Hijacked"),
	})
	if !errors.Is(err, ErrForbiddenOperation) {
		t.Fatalf("expected ErrForbiddenOperation, got %v", err)
	}

	// Администратору чужой турнир доступен.
	updated, err := fx.service.Update(context.Background(), 10, 200, models.RoleAdmin, UpdateTournamentInput{
		Name: strPtr("Renamed by admin"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Renamed by admin" {
		t.Errorf("expected admin rename to apply, got %q", updated.Name)
	}
}

// --- Каскадное удаление ---

func seedTournamentGraph(fx *tournamentFixture, tournamentID int) {
	seedUser(fx.store, 1, "Alice", "alice@example.com", models.RolePlayer)
	seedTournament(fx.store, tournamentID, models.StatusUpcoming, nil)
	fx.store.competitors[1] = &models.Competitor{ID: 1, TournamentID: tournamentID, UserID: 1, Name: "Alice"}
	fx.store.tournaments[tournamentID].PlayerCount = 1

	fx.matchRepo.matches[1] = &models.Match{ID: 1, TournamentID: tournamentID, Status: models.MatchStatusScheduled}
	fx.newsRepo.items[1] = &models.News{ID: 1, TournamentID: intPtr(tournamentID), AuthorID: 100, Title: "Opening"}
	fx.highlightRepo.items[1] = &models.Highlight{ID: 1, TournamentID: tournamentID, Title: "Best play"}
}

func TestTournamentDeleteCascades(t *testing.T) {
	fx := newTournamentFixture()
	seedTournamentGraph(fx, 10)

	if err := fx.service.Delete(context.Background(), 10, 100, models.RoleOrganizer); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, ok := fx.store.tournaments[10]; ok {
		t.Errorf("expected tournament removed")
	}
	if fx.store.totalCompetitors() != 0 {
		t.Errorf("expected competitors removed")
	}
	if len(fx.matchRepo.matches) != 0 {
		t.Errorf("expected matches removed")
	}
	if len(fx.newsRepo.items) != 0 {
		t.Errorf("expected news removed")
	}
	if len(fx.highlightRepo.items) != 0 {
		t.Errorf("expected highlights removed")
	}
}

func TestTournamentDeleteRollsBackOnFailure(t *testing.T) {
	fx := newTournamentFixture()
	seedTournamentGraph(fx, 10)
	fx.highlightRepo.failDeleteByTournament = true

	err := fx.service.Delete(context.Background(), 10, 100, models.RoleOrganizer)
	if err == nil {
		t.Fatal("expected error from injected failure")
	}

	if _, ok := fx.store.tournaments[10]; !ok {
		t.Errorf("expected tournament to survive failed delete")
	}
	if fx.store.totalCompetitors() != 1 {
		t.Errorf("expected competitor to survive failed delete")
	}
	if len(fx.highlightRepo.items) != 1 {
		t.Errorf("expected highlight to survive failed delete")
	}
}

// --- Планировщик статусов ---

func TestAutoUpdateStatusesByDates(t *testing.T) {
	fx := newTournamentFixture()
	now := time.Now()

	seedTournament(fx.store, 1, models.StatusUpcoming, nil)
	fx.store.tournaments[1].StartDate = timePtr(now.Add(-time.Hour))

	seedTournament(fx.store, 2, models.StatusOngoing, nil)
	fx.store.tournaments[2].EndDate = timePtr(now.Add(-time.Minute))

	seedTournament(fx.store, 3, models.StatusUpcoming, nil)
	fx.store.tournaments[3].StartDate = timePtr(now.Add(time.Hour))

	seedTournament(fx.store, 4, models.StatusUpcoming, nil) // без дат

	updated, err := fx.service.AutoUpdateStatusesByDates(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated != 2 {
		t.Errorf("expected 2 tournaments updated, got %d", updated)
	}
	if got := fx.store.tournaments[1].Status; got != models.StatusOngoing {
		t.Errorf("expected tournament 1 ongoing, got %s", got)
	}
	if got := fx.store.tournaments[2].Status; got != models.StatusCompleted {
		t.Errorf("expected tournament 2 completed, got %s", got)
	}
	if got := fx.store.tournaments[3].Status; got != models.StatusUpcoming {
		t.Errorf("expected future tournament untouched, got %s", got)
	}
	if got := fx.store.tournaments[4].Status; got != models.StatusUpcoming {
		t.Errorf("expected dateless tournament untouched, got %s", got)
	}
}

// --- Статистика ---

func TestTournamentStatsCounts(t *testing.T) {
	fx := newTournamentFixture()
	seedTournamentGraph(fx, 10)
	fx.store.tournaments[10].MaxPlayers = intPtr(4)

	stats := NewStatsService(
		&fakeTournamentRepo{store: fx.store},
		&fakeCompetitorRepo{store: fx.store},
		fx.matchRepo,
		fx.newsRepo,
	)

	result, err := stats.TournamentStats(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.CompetitorCount != 1 || result.MatchCount != 1 || result.NewsCount != 1 {
		t.Errorf("unexpected counts: %+v", result)
	}
	if result.SlotsLeft == nil || *result.SlotsLeft != 3 {
		t.Errorf("expected 3 slots left, got %v", result.SlotsLeft)
	}
}

func TestTournamentStatsUnknownTournament(t *testing.T) {
	fx := newTournamentFixture()
	stats := NewStatsService(
		&fakeTournamentRepo{store: fx.store},
		&fakeCompetitorRepo{store: fx.store},
		fx.matchRepo,
		fx.newsRepo,
	)

	_, err := stats.TournamentStats(context.Background(), 42)
	if !errors.Is(err, ErrTournamentNotFound) {
		t.Fatalf("expected ErrTournamentNotFound, got %v", err)
	}
}
