package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/minhkhoa23/npcnpm-final-sub001/models"
	"github.com/minhkhoa23/npcnpm-final-sub001/repositories"
)

// fakeStore — in-memory замена Postgres для тестов координаторов.
// txMu сериализует транзакции так же, как FOR UPDATE сериализует
// конкурирующие регистрации; mu защищает сами карты. WithinTx снимает
// слепок состояния и откатывает его при ошибке.
type fakeStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users       map[int]*models.User
	tournaments map[int]*models.Tournament
	competitors map[int]*models.Competitor

	nextCompetitorID int

	failAddToPlayerCount bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:            make(map[int]*models.User),
		tournaments:      make(map[int]*models.Tournament),
		competitors:      make(map[int]*models.Competitor),
		nextCompetitorID: 1,
	}
}

func (s *fakeStore) snapshot() (map[int]*models.Tournament, map[int]*models.Competitor, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tournaments := make(map[int]*models.Tournament, len(s.tournaments))
	for id, t := range s.tournaments {
		copied := *t
		tournaments[id] = &copied
	}
	competitors := make(map[int]*models.Competitor, len(s.competitors))
	for id, c := range s.competitors {
		copied := *c
		competitors[id] = &copied
	}
	return tournaments, competitors, s.nextCompetitorID
}

func (s *fakeStore) restore(tournaments map[int]*models.Tournament, competitors map[int]*models.Competitor, nextID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tournaments = tournaments
	s.competitors = competitors
	s.nextCompetitorID = nextID
}

func (s *fakeStore) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tournaments, competitors, nextID := s.snapshot()
	if err := fn(nil); err != nil {
		s.restore(tournaments, competitors, nextID)
		return err
	}
	return nil
}

func (s *fakeStore) playerCount(tournamentID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tournaments[tournamentID].PlayerCount
}

func (s *fakeStore) competitorRows(tournamentID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, c := range s.competitors {
		if c.TournamentID == tournamentID {
			count++
		}
	}
	return count
}

func (s *fakeStore) totalCompetitors() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.competitors)
}

// --- TournamentRepository ---

type fakeTournamentRepo struct{ store *fakeStore }

func (r *fakeTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *t
	r.store.tournaments[t.ID] = &copied
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTournamentRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeTournamentRepo) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	return nil, nil
}

func (r *fakeTournamentRepo) Update(ctx context.Context, t *models.Tournament) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	copied := *t
	r.store.tournaments[t.ID] = &copied
	return nil
}

func (r *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTournamentRepo) UpdateLogoKey(ctx context.Context, tournamentID int, logoKey *string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.tournaments[tournamentID]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.LogoKey = logoKey
	return nil
}

func (r *fakeTournamentRepo) AddToPlayerCount(ctx context.Context, exec repositories.SQLExecutor, id int, delta int) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failAddToPlayerCount {
		return 0, errors.New("injected player count failure")
	}
	t, ok := r.store.tournaments[id]
	if !ok {
		return 0, repositories.ErrTournamentNotFound
	}
	t.PlayerCount += delta
	if t.PlayerCount < 0 {
		t.PlayerCount = 0
	}
	return t.PlayerCount, nil
}

func (r *fakeTournamentRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.store.tournaments, id)
	return nil
}

func (r *fakeTournamentRepo) GetTournamentsForAutoStatusUpdate(ctx context.Context, currentTime time.Time) ([]*models.Tournament, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []*models.Tournament
	for _, t := range r.store.tournaments {
		switch {
		case t.Status == models.StatusUpcoming && t.StartDate != nil && !t.StartDate.After(currentTime):
			copied := *t
			result = append(result, &copied)
		case t.Status == models.StatusOngoing && t.EndDate != nil && !t.EndDate.After(currentTime):
			copied := *t
			result = append(result, &copied)
		}
	}
	return result, nil
}

// --- CompetitorRepository ---

type fakeCompetitorRepo struct{ store *fakeStore }

func (r *fakeCompetitorRepo) Create(ctx context.Context, exec repositories.SQLExecutor, c *models.Competitor) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.competitors {
		if existing.TournamentID == c.TournamentID && existing.UserID == c.UserID {
			return repositories.ErrCompetitorConflict
		}
	}
	c.ID = r.store.nextCompetitorID
	r.store.nextCompetitorID++
	c.CreatedAt = time.Now()
	copied := *c
	r.store.competitors[c.ID] = &copied
	return nil
}

func (r *fakeCompetitorRepo) FindByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Competitor, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.competitors[id]
	if !ok {
		return nil, repositories.ErrCompetitorNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCompetitorRepo) FindByTournamentAndUser(ctx context.Context, exec repositories.SQLExecutor, tournamentID, userID int) (*models.Competitor, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, c := range r.store.competitors {
		if c.TournamentID == tournamentID && c.UserID == userID {
			copied := *c
			return &copied, nil
		}
	}
	return nil, repositories.ErrCompetitorNotFound
}

func (r *fakeCompetitorRepo) ListByTournament(ctx context.Context, tournamentID int) ([]models.Competitor, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	result := make([]models.Competitor, 0)
	for _, c := range r.store.competitors {
		if c.TournamentID == tournamentID {
			copied := *c
			if u, ok := r.store.users[c.UserID]; ok {
				user := *u
				copied.User = &user
			}
			result = append(result, copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeCompetitorRepo) CountByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	count := 0
	for _, c := range r.store.competitors {
		if c.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

func (r *fakeCompetitorRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.competitors[id]; !ok {
		return repositories.ErrCompetitorNotFound
	}
	delete(r.store.competitors, id)
	return nil
}

func (r *fakeCompetitorRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, c := range r.store.competitors {
		if c.TournamentID == tournamentID {
			delete(r.store.competitors, id)
		}
	}
	return nil
}

// --- UserRepository ---

type fakeUserRepo struct{ store *fakeStore }

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.users {
		if existing.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	copied := *user
	r.store.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	copied := *user
	r.store.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) UpdateLogoKey(ctx context.Context, userID int, logoKey *string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.LogoKey = logoKey
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.users[id]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(r.store.users, id)
	return nil
}

// --- Фикстуры ---

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func timePtr(v time.Time) *time.Time { return &v }

func newRegistrationFixture() (*fakeStore, RegistrationService) {
	store := newFakeStore()
	service := NewRegistrationService(
		store,
		&fakeTournamentRepo{store: store},
		&fakeCompetitorRepo{store: store},
		&fakeUserRepo{store: store},
		nil,
	)
	return store, service
}

func seedUser(store *fakeStore, id int, name, email string, role models.UserRole) {
	store.users[id] = &models.User{
		ID:       id,
		FullName: name,
		Email:    email,
		Role:     role,
	}
}

func seedTournament(store *fakeStore, id int, status models.TournamentStatus, maxPlayers *int) {
	store.tournaments[id] = &models.Tournament{
		ID:          id,
		Name:        fmt.Sprintf("Tournament %d", id),
		GameName:    "Dota 2",
		OrganizerID: 100,
		Status:      status,
		MaxPlayers:  maxPlayers,
	}
}

// assertCountInvariant проверяет, что счётчик участников турнира совпадает
// с фактическим числом записей.
func assertCountInvariant(t *testing.T, store *fakeStore, tournamentID int) {
	t.Helper()
	if got, rows := store.playerCount(tournamentID), store.competitorRows(tournamentID); got != rows {
		t.Fatalf("player count invariant violated: counter=%d, rows=%d", got, rows)
	}
}

// --- Тесты регистрации ---

func TestRegisterSuccessWithDefaults(t *testing.T) {
	store, service := newRegistrationFixture()
	seedUser(store, 1, "Alice Johnson", "alice@example.com", models.RolePlayer)
	seedTournament(store, 10, models.StatusUpcoming, intPtr(8))

	result, err := service.Register(context.Background(), 10, 1, RegisterCompetitorInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Competitor.Name != "Alice Johnson" {
		t.Errorf("expected team name from user full name, got %q", result.Competitor.Name)
	}
	if result.Competitor.Mail == nil || *result.Competitor.Mail != "alice@example.com" {
		t.Errorf("expected mail default from user email, got %v", result.Competitor.Mail)
	}
	if result.Tournament.PlayerCount != 1 {
		t.Errorf("expected player count 1, got %d", result.Tournament.PlayerCount)
	}
	if len(result.Tournament.Competitors) != 1 {
		t.Errorf("expected 1 competitor in tournament view, got %d", len(result.Tournament.Competitors))
	}
	assertCountInvariant(t, store, 10)
}

func TestRegisterExplicitProfile(t *testing.T) {
	store, service := newRegistrationFixture()
	seedUser(store, 1, "Alice Johnson", "alice@example.com", models.RolePlayer)
	seedTournament(store, 10, models.StatusUpcoming, nil)

	input := RegisterCompetitorInput{
		Name:        strPtr("  Team Rocket  "),
		LogoURL:     strPtr("https://cdn.example.com/logo.png"),
		Description: strPtr("we blast off"),
		Mail:        strPtr("team@rocket.gg"),
	}

	result, err := service.Register(context.Background(), 10, 1, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Competitor.Name != "Team Rocket" {
		t.Errorf("expected trimmed explicit name, got %q", result.Competitor.Name)
	}
	if result.Competitor.Mail == nil || *result.Competitor.Mail != "team@rocket.gg" {
		t.Errorf("expected explicit mail, got %v", result.Competitor.Mail)
	}
}

func TestRegisterNameResolution(t *testing.T) {
	tests := []struct {
		name         string
		inputName    *string
		userFullName string
		wantName     string
		wantErr      error
	}{
		{"explicit name wins", strPtr("Team A"), "Alice", "Team A", nil},
		{"fallback to user name", nil, "Alice", "Alice", nil},
		{"blank explicit name becomes placeholder", strPtr("   "), "Alice", "Unnamed Team", nil},
		{"no name anywhere", nil, "", "", ErrTeamNameRequired},
		{"blank user name no input", nil, "   ", "", ErrTeamNameRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, service := newRegistrationFixture()
			seedUser(store, 1, tt.userFullName, "alice@example.com", models.RolePlayer)
			seedTournament(store, 10, models.StatusUpcoming, nil)

			result, err := service.Register(context.Background(), 10, 1, RegisterCompetitorInput{Name: tt.inputName})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				// Отказ не должен оставлять следов.
				if store.totalCompetitors() != 0 {
					t.Errorf("expected no competitors after failed registration")
				}
				assertCountInvariant(t, store, 10)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Competitor.Name != tt.wantName {
				t.Errorf("expected name %q, got %q", tt.wantName, result.Competitor.Name)
			}
		})
	}
}

func TestRegisterInputValidation(t *testing.T) {
	longName := make([]byte, 101)
	for i := range longName {
		longName[i] = 'x'
	}

	tests := []struct {
		name  string
		input RegisterCompetitorInput
	}{
		{"bad logo url scheme", RegisterCompetitorInput{LogoURL: strPtr("ftp://example.com/logo.png")}},
		{"logo url without host", RegisterCompetitorInput{LogoURL: strPtr("https://")}},
		{"invalid mail", RegisterCompetitorInput{Mail: strPtr("not-an-email")}},
		{"name too long", RegisterCompetitorInput{Name: strPtr(string(longName))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, service := newRegistrationFixture()
			seedUser(store, 1, "Alice", "alice@example.com", models.RolePlayer)
			seedTournament(store, 10, models.StatusUpcoming, nil)

			_, err := service.Register(context.Background(), 10, 1, tt.input)
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("expected ErrValidationFailed, got %v", err)
			}
			if store.totalCompetitors() != 0 {
				t.Errorf("expected no competitors after rejected input")
			}
		})
	}
}

func TestRegisterTournamentFull(t *testing.T) {
	store, service := newRegistrationFixture()
	seedTournament(store, 10, models.StatusUpcoming, intPtr(2))
	for i := 1; i <= 3; i++ {
		seedUser(store, i, fmt.Sprintf("Player %d", i), fmt.Sprintf("p%d@example.com", i), models.RolePlayer)
	}

	for i := 1; i <= 2; i++ {
		if _, err := service.Register(context.Background(), 10, i, RegisterCompetitorInput{}); err != nil {
			t.Fatalf("registration %d failed: %v", i, err)
		}
	}

	_, err := service.Register(context.Background(), 10, 3, RegisterCompetitorInput{})
	if !errors.Is(err, ErrTournamentFull) {
		t.Fatalf("expected ErrTournamentFull, got %v", err)
	}
	if store.playerCount(10) != 2 {
		t.Errorf("expected player count to stay at 2, got %d", store.playerCount(10))
	}
	assertCountInvariant(t, store, 10)
}

func TestRegisterDuplicate(t *testing.T) {
	store, service := newRegistrationFixture()
	seedUser(store, 1, "Alice", "alice@example.com", models.RolePlayer)
	seedTournament(store, 10, models.StatusUpcoming, nil)

	if _, err := service.Register(context.Background(), 10, 1, RegisterCompetitorInput{}); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	_, err := service.Register(context.Background(), 10, 1, RegisterCompetitorInput{})
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
	if store.playerCount(10) != 1 {
		t.Errorf("expected player count 1 after duplicate attempt, got %d", store.playerCount(10))
	}
	assertCountInvariant(t, store, 10)
}

func TestRegisterClosedTournament(t *testing.T) {
	for _, status := range []models.TournamentStatus{models.StatusOngoing, models.StatusCompleted} {
		t.Run(string(status), func(t *testing.T) {
			store, service := newRegistrationFixture()
			seedUser(store, 1, "Alice", "alice@example.com", models.RolePlayer)
			seedTournament(store, 10, status, nil)

			_, err := service.Register(context.Background(), 10, 1, RegisterCompetitorInput{})
			if !errors.Is(err, ErrRegistrationClosed) {
				t.Fatalf("expected ErrRegistrationClosed, got %v", err)
			}
		})
	}
}

func TestRegisterUnknownTournament(t *testing.T) {
	store, service := newRegistrationFixture()
	seedUser(store, 1, "Alice", "alice@example.com", models.RolePlayer)

	_, err := service.Register(context.Background(), 999, 1, RegisterCompetitorInput{})
	if !errors.Is(err, ErrTournamentNotFound) {
		t.Fatalf("expected ErrTournamentNotFound, got %v", err)
	}
}

func TestRegisterInvalidID(t *testing.T) {
	_, service := newRegistrationFixture()

	_, err := service.Register(context.Background(), 0, 1, RegisterCompetitorInput{})
	if !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

// Сбой на втором шаге транзакции не должен оставить запись участника.
func TestRegisterAtomicRollback(t *testing.T) {
	store, service := newRegistrationFixture()
	seedUser(store, 1, "Alice", "alice@example.com", models.RolePlayer)
	seedTournament(store, 10, models.StatusUpcoming, nil)
	store.failAddToPlayerCount = true

	_, err := service.Register(context.Background(), 10, 1, RegisterCompetitorInput{})
	if err == nil {
		t.Fatal("expected error from injected failure")
	}

	if store.totalCompetitors() != 0 {
		t.Errorf("expected competitor insert to be rolled back, found %d rows", store.totalCompetitors())
	}
	if store.playerCount(10) != 0 {
		t.Errorf("expected player count 0 after rollback, got %d", store.playerCount(10))
	}
	assertCountInvariant(t, store, 10)
}

// Два одновременных запроса на единственное место: ровно один проходит.
func TestRegisterConcurrentLastSlot(t *testing.T) {
	store, service := newRegistrationFixture()
	seedTournament(store, 10, models.StatusUpcoming, intPtr(1))
	seedUser(store, 1, "Alice", "alice@example.com", models.RolePlayer)
	seedUser(store, 2, "Bob", "bob@example.com", models.RolePlayer)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, results[idx] = service.Register(context.Background(), 10, idx+1, RegisterCompetitorInput{})
		}(i)
	}
	wg.Wait()

	successes, fulls := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrTournamentFull):
			fulls++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || fulls != 1 {
		t.Fatalf("expected exactly one success and one ErrTournamentFull, got %d/%d", successes, fulls)
	}
	if store.playerCount(10) != 1 {
		t.Errorf("expected player count 1, got %d", store.playerCount(10))
	}
	assertCountInvariant(t, store, 10)
}

// --- Тесты снятия с турнира ---

func TestWithdrawByOwner(t *testing.T) {
	store, service := newRegistrationFixture()
	seedUser(store, 1, "Alice", "alice@example.com", models.RolePlayer)
	seedTournament(store, 10, models.StatusUpcoming, nil)

	result, err := service.Register(context.Background(), 10, 1, RegisterCompetitorInput{})
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	if err := service.Withdraw(context.Background(), 10, result.Competitor.ID, 1); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if store.totalCompetitors() != 0 {
		t.Errorf("expected competitor record removed")
	}
	if store.playerCount(10) != 0 {
		t.Errorf("expected player count 0, got %d", store.playerCount(10))
	}
	assertCountInvariant(t, store, 10)
}

func TestWithdrawForeignCompetitorForbidden(t *testing.T) {
	store, service := newRegistrationFixture()
	seedUser(store, 1, "Alice", "alice@example.com", models.RolePlayer)
	seedUser(store, 2, "Bob", "bob@example.com", models.RolePlayer)
	seedTournament(store, 10, models.StatusUpcoming, nil)

	result, err := service.Register(context.Background(), 10, 1, RegisterCompetitorInput{})
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	err = service.Withdraw(context.Background(), 10, result.Competitor.ID, 2)
	if !errors.Is(err, ErrForbiddenOperation) {
		t.Fatalf("expected ErrForbiddenOperation, got %v", err)
	}
	// Запись осталась, владелец всё ещё может сняться сам.
	if err := service.Withdraw(context.Background(), 10, result.Competitor.ID, 1); err != nil {
		t.Fatalf("owner withdraw after foreign attempt failed: %v", err)
	}
	assertCountInvariant(t, store, 10)
}

func TestWithdrawByAdmin(t *testing.T) {
	store, service := newRegistrationFixture()
	seedUser(store, 1, "Alice", "alice@example.com", models.RolePlayer)
	seedUser(store, 99, "Root", "root@example.com", models.RoleAdmin)
	seedTournament(store, 10, models.StatusUpcoming, nil)

	result, err := service.Register(context.Background(), 10, 1, RegisterCompetitorInput{})
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	if err := service.Withdraw(context.Background(), 10, result.Competitor.ID, 99); err != nil {
		t.Fatalf("admin withdraw failed: %v", err)
	}
	assertCountInvariant(t, store, 10)
}

func TestWithdrawTournamentMismatch(t *testing.T) {
	store, service := newRegistrationFixture()
	seedUser(store, 1, "Alice", "alice@example.com", models.RolePlayer)
	seedTournament(store, 10, models.StatusUpcoming, nil)
	seedTournament(store, 11, models.StatusUpcoming, nil)

	result, err := service.Register(context.Background(), 10, 1, RegisterCompetitorInput{})
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	err = service.Withdraw(context.Background(), 11, result.Competitor.ID, 1)
	if !errors.Is(err, ErrOwnershipMismatch) {
		t.Fatalf("expected ErrOwnershipMismatch, got %v", err)
	}
	if store.playerCount(10) != 1 {
		t.Errorf("expected registration untouched, player count %d", store.playerCount(10))
	}
}

func TestWithdrawUnknownCompetitor(t *testing.T) {
	store, service := newRegistrationFixture()
	seedUser(store, 1, "Alice", "alice@example.com", models.RolePlayer)
	seedTournament(store, 10, models.StatusUpcoming, nil)

	err := service.Withdraw(context.Background(), 10, 555, 1)
	if !errors.Is(err, ErrCompetitorNotFound) {
		t.Fatalf("expected ErrCompetitorNotFound, got %v", err)
	}
}

func TestTxConflictMapped(t *testing.T) {
	err := mapStoreError(fmt.Errorf("wrapped: %w", repositories.ErrTxConflict))
	if !errors.Is(err, ErrTransactionConflict) {
		t.Fatalf("expected ErrTransactionConflict, got %v", err)
	}
}
