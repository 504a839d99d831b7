package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alimgiray/persons/internal/models"
	"github.com/alimgiray/persons/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *SQLPersonRepository {
	return NewPersonRepository(testutils.NewTestDB(t))
}

func seed(t *testing.T, repo *SQLPersonRepository, people ...*models.Person) []*models.Person {
	t.Helper()
	saved := make([]*models.Person, 0, len(people))
	for _, p := range people {
		s, err := repo.Save(context.Background(), p)
		require.NoError(t, err)
		saved = append(saved, s)
	}
	return saved
}

func TestSaveInsertAssignsIDAndCreatedAt(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	saved, err := repo.Save(ctx, &models.Person{Firstname: "Max", Lastname: "Mustermann"})
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	found, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, found.ID)
	assert.Equal(t, "Max", found.Firstname)
	assert.Equal(t, "Mustermann", found.Lastname)
	assert.Nil(t, found.Email)
	assert.True(t, saved.CreatedAt.Equal(found.CreatedAt))
}

func TestSaveInsertKeepsConstructionTime(t *testing.T) {
	repo := newTestRepository(t)
	created := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	saved, err := repo.Save(context.Background(), &models.Person{Firstname: "Max", Lastname: "Mustermann", CreatedAt: created})
	require.NoError(t, err)

	found, err := repo.FindByID(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.True(t, created.Equal(found.CreatedAt))
}

func TestSaveAssignsDistinctIDs(t *testing.T) {
	repo := newTestRepository(t)
	saved := seed(t, repo,
		&models.Person{Firstname: "Max", Lastname: "Mustermann"},
		&models.Person{Firstname: "Anna", Lastname: "Schmidt"},
	)

	assert.NotEqual(t, saved[0].ID, saved[1].ID)
}

func TestSaveRejectsMissingNames(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Save(context.Background(), &models.Person{Firstname: "Max"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	people, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, people)
}

func TestSaveUpdateReplacesFields(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	saved := seed(t, repo, &models.Person{Firstname: "Max", Lastname: "Mustermann", Email: testutils.StringPtr("max@example.com")})[0]
	createdAt := saved.CreatedAt

	saved.Firstname = "Moritz"
	saved.Email = nil
	_, err := repo.Save(ctx, saved)
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Moritz", found.Firstname)
	assert.Equal(t, "Mustermann", found.Lastname)
	assert.Nil(t, found.Email)
	assert.True(t, createdAt.Equal(found.CreatedAt))
}

func TestSaveUpdateUnknownID(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Save(context.Background(), &models.Person{ID: 999, Firstname: "Max", Lastname: "Mustermann"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindByIDMiss(t *testing.T) {
	repo := newTestRepository(t)

	person, err := repo.FindByID(context.Background(), 12345)
	assert.Nil(t, person)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindAll(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	people, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, people)
	assert.Empty(t, people)

	seed(t, repo,
		&models.Person{Firstname: "Max", Lastname: "Mustermann"},
		&models.Person{Firstname: "Anna", Lastname: "Schmidt"},
	)

	people, err = repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, people, 2)
	assert.Equal(t, "Max", people[0].Firstname)
	assert.Equal(t, "Anna", people[1].Firstname)
}

func TestFindPage(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	saved := seed(t, repo,
		&models.Person{Firstname: "A", Lastname: "One"},
		&models.Person{Firstname: "B", Lastname: "Two"},
		&models.Person{Firstname: "C", Lastname: "Three"},
		&models.Person{Firstname: "D", Lastname: "Four"},
		&models.Person{Firstname: "E", Lastname: "Five"},
	)

	testCases := []struct {
		name     string
		page     int
		size     int
		expected []int64
	}{
		{"first page", 0, 2, []int64{saved[0].ID, saved[1].ID}},
		{"second page", 1, 2, []int64{saved[2].ID, saved[3].ID}},
		{"partial last page", 2, 2, []int64{saved[4].ID}},
		{"past the end", 3, 2, []int64{}},
		{"page larger than collection", 0, 10, []int64{saved[0].ID, saved[1].ID, saved[2].ID, saved[3].ID, saved[4].ID}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			people, err := repo.FindPage(ctx, tc.page, tc.size)
			require.NoError(t, err)

			ids := []int64{}
			for _, p := range people {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tc.expected, ids)
		})
	}
}

func TestDelete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	saved := seed(t, repo, &models.Person{Firstname: "Max", Lastname: "Mustermann"})[0]

	require.NoError(t, repo.Delete(ctx, saved))

	_, err := repo.FindByID(ctx, saved.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing row is a no-op.
	assert.NoError(t, repo.Delete(ctx, saved))
}

func TestFindByEmail(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	saved := seed(t, repo,
		&models.Person{Firstname: "Max", Lastname: "Mustermann", Email: testutils.StringPtr("shared@example.com")},
		&models.Person{Firstname: "Anna", Lastname: "Schmidt", Email: testutils.StringPtr("shared@example.com")},
		&models.Person{Firstname: "Erika", Lastname: "Musterfrau", Email: testutils.StringPtr("erika@example.com")},
	)

	t.Run("duplicate email returns first match", func(t *testing.T) {
		person, err := repo.FindByEmail(ctx, "shared@example.com")
		require.NoError(t, err)
		assert.Equal(t, saved[0].ID, person.ID)
	})

	t.Run("exact match only", func(t *testing.T) {
		person, err := repo.FindByEmail(ctx, "erika@example.com")
		require.NoError(t, err)
		assert.Equal(t, saved[2].ID, person.ID)

		_, err = repo.FindByEmail(ctx, "ERIKA@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("miss", func(t *testing.T) {
		_, err := repo.FindByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSearchByName(t *testing.T) {
	repo := newTestRepository(t)
	saved := seed(t, repo,
		&models.Person{Firstname: "Max", Lastname: "Mustermann"},
		&models.Person{Firstname: "Maximilian", Lastname: "Schmidt"},
		&models.Person{Firstname: "Anna", Lastname: "Schmidt"},
	)
	maxID, maximilianID, annaID := saved[0].ID, saved[1].ID, saved[2].ID

	testCases := []struct {
		name      string
		firstname *string
		lastname  *string
		expected  []int64
	}{
		{"both nil matches all", nil, nil, []int64{maxID, maximilianID, annaID}},
		{"firstname is case insensitive", testutils.StringPtr("max"), nil, []int64{maxID, maximilianID}},
		{"firstname substring", testutils.StringPtr("IMI"), nil, []int64{maximilianID}},
		{"lastname only", nil, testutils.StringPtr("schm"), []int64{maximilianID, annaID}},
		{"both fields must match", testutils.StringPtr("max"), testutils.StringPtr("schmidt"), []int64{maximilianID}},
		{"empty fragment matches all", testutils.StringPtr(""), nil, []int64{maxID, maximilianID, annaID}},
		{"no match", testutils.StringPtr("zoe"), nil, []int64{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			people, err := repo.SearchByName(context.Background(), tc.firstname, tc.lastname)
			require.NoError(t, err)

			ids := []int64{}
			for _, p := range people {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tc.expected, ids)
		})
	}
}

func TestStoreFaultsPropagate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPersonRepository(db)
	storeErr := errors.New("disk I/O error")

	mock.ExpectQuery("SELECT (.+) FROM persons ORDER BY id").WillReturnError(storeErr)
	_, err = repo.FindAll(context.Background())
	assert.ErrorIs(t, err, storeErr)

	mock.ExpectQuery("SELECT (.+) FROM persons WHERE id = ?").WithArgs(int64(1)).WillReturnError(storeErr)
	_, err = repo.FindByID(context.Background(), 1)
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, ErrNotFound)

	mock.ExpectExec("INSERT INTO persons").WillReturnError(storeErr)
	_, err = repo.Save(context.Background(), &models.Person{Firstname: "Max", Lastname: "Mustermann"})
	assert.ErrorIs(t, err, storeErr)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchByNameFoldsNonASCII(t *testing.T) {
	repo := newTestRepository(t)
	saved := seed(t, repo,
		&models.Person{Firstname: "Ärger", Lastname: "Öztürk"},
		&models.Person{Firstname: "Max", Lastname: "Mustermann"},
	)

	people, err := repo.SearchByName(context.Background(), testutils.StringPtr("ärger"), nil)
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, saved[0].ID, people[0].ID)

	people, err = repo.SearchByName(context.Background(), nil, testutils.StringPtr("ZTÜR"))
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, saved[0].ID, people[0].ID)
}
