package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/movie-swipe/internal/domain"
	"github.com/Clark-Hu/movie-swipe/internal/pgtest"
)

type testEnv struct {
	ctx        context.Context
	repository *Repository
}

func newTestEnv(t testing.TB) *testEnv {
	t.Helper()
	return &testEnv{
		ctx:        context.Background(),
		repository: NewWithPool(pgtest.Start(t)),
	}
}

func mustCreateUser(t testing.TB, env *testEnv, externalID, name string) domain.User {
	t.Helper()
	user, _, err := env.repository.Users.Create(env.ctx, UserCreateParams{
		ExternalID: externalID,
		Name:       name,
		Nick:       domain.Nickname("", name),
	})
	require.NoError(t, err, "create user %s", externalID)
	return user
}

func mustCreateMovie(t testing.TB, env *testEnv, externalID, genre string, suggester int64) domain.Movie {
	t.Helper()
	movie, err := env.repository.Movies.Create(env.ctx, MovieCreateParams{
		NewMovie: domain.NewMovie{
			ExternalID: externalID,
			Title:      "Movie " + externalID,
			Year:       2020,
			Genre:      genre,
		},
		SuggesterID: suggester,
	})
	require.NoError(t, err, "create movie %s", externalID)
	return movie
}

func TestUsersRepository_CreateIsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	first, inserted, err := env.repository.Users.Create(env.ctx, UserCreateParams{ExternalID: "42", Name: "Ann Lee", Nick: "ann"})
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NotZero(t, first.ID)

	second, inserted, err := env.repository.Users.Create(env.ctx, UserCreateParams{ExternalID: "42", Name: "Other", Nick: "other"})
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, first, second, "existing record must be returned unchanged")

	got, err := env.repository.Users.GetByID(env.ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", got.Name)

	_, err = env.repository.Users.GetByExternalID(env.ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUsersRepository_ConcurrentCreate(t *testing.T) {
	env := newTestEnv(t)

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ids      = make(map[int64]struct{})
		inserts  int
		failures []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user, inserted, err := env.repository.Users.Create(env.ctx, UserCreateParams{ExternalID: "race", Name: "Racer", Nick: "racer"})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			ids[user.ID] = struct{}{}
			if inserted {
				inserts++
			}
		}()
	}
	wg.Wait()

	require.Empty(t, failures)
	assert.Len(t, ids, 1)
	assert.Equal(t, 1, inserts)
}

func TestMoviesRepository_CreateGetList(t *testing.T) {
	env := newTestEnv(t)

	ann := mustCreateUser(t, env, "1", "Ann")
	bob := mustCreateUser(t, env, "2", "Bob")

	drama := mustCreateMovie(t, env, "tt0000001", "Drama, Thriller", ann.ID)
	comedy := mustCreateMovie(t, env, "tt0000002", "Comedy", bob.ID)
	horror := mustCreateMovie(t, env, "tt0000003", "Horror, Thriller", ann.ID)

	got, err := env.repository.Movies.GetByExternalID(env.ctx, "tt0000002")
	require.NoError(t, err)
	assert.Equal(t, comedy.ID, got.ID)
	assert.Equal(t, bob.ID, got.SuggesterID)

	_, err = env.repository.Movies.GetByID(env.ctx, 999_999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	tests := []struct {
		name    string
		filters MovieListFilters
		want    []int64
	}{
		{name: "all", want: []int64{drama.ID, comedy.ID, horror.ID}},
		{name: "by suggester", filters: MovieListFilters{SuggesterID: &ann.ID}, want: []int64{drama.ID, horror.ID}},
		{name: "genre substring", filters: MovieListFilters{Genre: ptr("thrill")}, want: []int64{drama.ID, horror.ID}},
		{name: "genre case-insensitive", filters: MovieListFilters{Genre: ptr("COMEDY")}, want: []int64{comedy.ID}},
		{name: "genre all", filters: MovieListFilters{Genre: ptr("all")}, want: []int64{drama.ID, comedy.ID, horror.ID}},
		{name: "combined", filters: MovieListFilters{Genre: ptr("horror"), SuggesterID: &bob.ID}, want: []int64{}},
		{name: "underscore is literal", filters: MovieListFilters{Genre: ptr("_")}, want: []int64{}},
		{name: "percent is literal", filters: MovieListFilters{Genre: ptr("%")}, want: []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			movies, err := env.repository.Movies.List(env.ctx, tt.filters)
			require.NoError(t, err)
			assert.Equal(t, tt.want, movieIDs(movies))
		})
	}

	batch, err := env.repository.Movies.GetByIDs(env.ctx, []int64{horror.ID, 999_999, drama.ID})
	require.NoError(t, err)
	assert.Equal(t, []int64{horror.ID, drama.ID}, movieIDs(batch))
}

func TestMoviesRepository_DuplicateExternalID(t *testing.T) {
	env := newTestEnv(t)

	ann := mustCreateUser(t, env, "1", "Ann")
	mustCreateMovie(t, env, "tt0000001", "Drama", ann.ID)

	_, err := env.repository.Movies.Create(env.ctx, MovieCreateParams{
		NewMovie:    domain.NewMovie{ExternalID: "tt0000001", Title: "Again", Year: 2021},
		SuggesterID: ann.ID,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestMoviesRepository_UnknownSuggester(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.repository.Movies.Create(env.ctx, MovieCreateParams{
		NewMovie:    domain.NewMovie{ExternalID: "tt0000001", Title: "Orphan", Year: 2021},
		SuggesterID: 12345,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMoviesRepository_IncrementCounts(t *testing.T) {
	env := newTestEnv(t)

	ann := mustCreateUser(t, env, "1", "Ann")
	movie := mustCreateMovie(t, env, "tt0000001", "Drama", ann.ID)

	updated, err := env.repository.Movies.IncrementCounts(env.ctx, movie.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.LikesCount)
	assert.Equal(t, 0, updated.DislikesCount)

	updated, err = env.repository.Movies.IncrementCounts(env.ctx, movie.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.LikesCount)
	assert.Equal(t, 1, updated.DislikesCount)

	_, err = env.repository.Movies.IncrementCounts(env.ctx, 999_999, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLikesRepository_AppendListVoters(t *testing.T) {
	env := newTestEnv(t)

	ann := mustCreateUser(t, env, "1", "Ann")
	bob := mustCreateUser(t, env, "2", "Bob")
	movie := mustCreateMovie(t, env, "tt0000001", "Drama", ann.ID)
	other := mustCreateMovie(t, env, "tt0000002", "Drama", ann.ID)

	now := time.Now().UTC()
	appends := []LikeAppendParams{
		{UserID: ann.ID, MovieID: movie.ID, Positive: true, CreatedAt: now},
		{UserID: bob.ID, MovieID: movie.ID, Positive: false, CreatedAt: now},
		{UserID: bob.ID, MovieID: movie.ID, Positive: true, CreatedAt: now},
		{UserID: ann.ID, MovieID: other.ID, Positive: false},
	}
	for _, p := range appends {
		_, err := env.repository.Likes.Append(env.ctx, p)
		require.NoError(t, err)
	}

	all, err := env.repository.Likes.ListByUser(env.ctx, bob.ID, nil)
	require.NoError(t, err)
	require.Len(t, all, 2, "repeated ratings are kept as separate entries")
	assert.False(t, all[0].Positive)
	assert.True(t, all[1].Positive)
	assert.NotNil(t, all[0].CreatedAt)

	liked, err := env.repository.Likes.ListByUser(env.ctx, ann.ID, ptr(true))
	require.NoError(t, err)
	require.Len(t, liked, 1)
	assert.Equal(t, movie.ID, liked[0].MovieID)

	annAll, err := env.repository.Likes.ListByUser(env.ctx, ann.ID, nil)
	require.NoError(t, err)
	require.Len(t, annAll, 2)
	assert.Nil(t, annAll[1].CreatedAt, "zero time is stored as NULL")

	exists, err := env.repository.Likes.Exists(env.ctx, bob.ID, movie.ID)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = env.repository.Likes.Exists(env.ctx, bob.ID, other.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	voters, err := env.repository.Likes.Voters(env.ctx, []int64{movie.ID, other.ID})
	require.NoError(t, err)
	assert.Equal(t, []domain.Voter{{Name: "Ann"}, {Name: "Bob"}}, voters[movie.ID].Liked)
	assert.Equal(t, []domain.Voter{{Name: "Bob"}}, voters[movie.ID].Disliked)
	assert.Empty(t, voters[other.ID].Liked)
	assert.Equal(t, []domain.Voter{{Name: "Ann"}}, voters[other.ID].Disliked)

	_, err = env.repository.Likes.Append(env.ctx, LikeAppendParams{UserID: ann.ID, MovieID: 999_999, Positive: true})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepository_InTxRollsBack(t *testing.T) {
	env := newTestEnv(t)

	ann := mustCreateUser(t, env, "1", "Ann")
	boom := errors.New("boom")

	err := env.repository.InTx(env.ctx, func(tx *Repository) error {
		if _, err := tx.Movies.Create(env.ctx, MovieCreateParams{
			NewMovie:    domain.NewMovie{ExternalID: "tt0000001", Title: "Rolled back", Year: 2000},
			SuggesterID: ann.ID,
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = env.repository.Movies.GetByExternalID(env.ctx, "tt0000001")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = env.repository.InReadTx(env.ctx, func(tx *Repository) error {
		_, err := tx.Likes.Append(env.ctx, LikeAppendParams{UserID: ann.ID, MovieID: 1, Positive: true})
		return err
	})
	assert.Error(t, err, "read-only transaction must reject writes")
}

func BenchmarkLikesRepositoryAppend(b *testing.B) {
	env := newTestEnv(b)

	user := mustCreateUser(b, env, "bench", "Bench")
	movie := mustCreateMovie(b, env, "tt9999999", "Action", user.ID)
	for i := 0; i < b.N; i++ {
		_, err := env.repository.Likes.Append(env.ctx, LikeAppendParams{
			UserID:   user.ID,
			MovieID:  movie.ID,
			Positive: i%2 == 0,
		})
		if err != nil {
			b.Fatalf("append: %v", err)
		}
	}
}

func BenchmarkMoviesRepositoryCreate(b *testing.B) {
	env := newTestEnv(b)

	user := mustCreateUser(b, env, "bench", "Bench")
	for i := 0; i < b.N; i++ {
		_, err := env.repository.Movies.Create(env.ctx, MovieCreateParams{
			NewMovie:    domain.NewMovie{ExternalID: fmt.Sprintf("tt%07d", i), Title: "Bench", Year: 2020},
			SuggesterID: user.ID,
		})
		if err != nil {
			b.Fatalf("create movie: %v", err)
		}
	}
}

func movieIDs(movies []domain.Movie) []int64 {
	ids := make([]int64, 0, len(movies))
	for _, m := range movies {
		ids = append(ids, m.ID)
	}
	return ids
}

func ptr[T any](v T) *T { return &v }
