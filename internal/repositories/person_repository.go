package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/alimgiray/persons/internal/models"
)

// ErrNotFound is returned when a lookup by id or email matches no row
var ErrNotFound = errors.New("record not found")

// DBTX is satisfied by both *sql.DB and *sql.Tx
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type PersonRepository interface {
	FindAll(ctx context.Context) ([]*models.Person, error)
	FindPage(ctx context.Context, page, size int) ([]*models.Person, error)
	FindByID(ctx context.Context, id int64) (*models.Person, error)
	Save(ctx context.Context, person *models.Person) (*models.Person, error)
	Delete(ctx context.Context, person *models.Person) error
	FindByEmail(ctx context.Context, email string) (*models.Person, error)
	SearchByName(ctx context.Context, firstname, lastname *string) ([]*models.Person, error)
}

type SQLPersonRepository struct {
	db DBTX
}

func NewPersonRepository(db DBTX) *SQLPersonRepository {
	return &SQLPersonRepository{db: db}
}

const personColumns = `id, firstname, lastname, email, created_at`

// FindAll returns every person ordered by id
func (r *SQLPersonRepository) FindAll(ctx context.Context) ([]*models.Person, error) {
	query := `SELECT ` + personColumns + ` FROM persons ORDER BY id`
	return r.queryPeople(ctx, query)
}

// FindPage returns the zero-indexed page of the id ordered collection
func (r *SQLPersonRepository) FindPage(ctx context.Context, page, size int) ([]*models.Person, error) {
	query := `SELECT ` + personColumns + ` FROM persons ORDER BY id LIMIT ? OFFSET ?`
	return r.queryPeople(ctx, query, size, page*size)
}

// FindByID retrieves a person by id, returning ErrNotFound on a miss
func (r *SQLPersonRepository) FindByID(ctx context.Context, id int64) (*models.Person, error) {
	query := `SELECT ` + personColumns + ` FROM persons WHERE id = ?`
	return r.queryPerson(ctx, query, id)
}

// FindByEmail retrieves the first person (lowest id) with exactly this email.
// Emails are not unique, so later duplicates are never returned.
func (r *SQLPersonRepository) FindByEmail(ctx context.Context, email string) (*models.Person, error) {
	query := `SELECT ` + personColumns + ` FROM persons WHERE email = ? ORDER BY id LIMIT 1`
	return r.queryPerson(ctx, query, email)
}

// SearchByName matches persons whose names contain the given fragments, ignoring case.
// A nil fragment places no constraint on its field.
func (r *SQLPersonRepository) SearchByName(ctx context.Context, firstname, lastname *string) ([]*models.Person, error) {
	query := `
		SELECT ` + personColumns + `
		FROM persons
		WHERE (? IS NULL OR casefold(firstname) LIKE '%' || casefold(?) || '%')
		  AND (? IS NULL OR casefold(lastname) LIKE '%' || casefold(?) || '%')
		ORDER BY id
	`
	return r.queryPeople(ctx, query, firstname, firstname, lastname, lastname)
}

// Save inserts a person without id and assigns one, or replaces the row of a person with id
func (r *SQLPersonRepository) Save(ctx context.Context, person *models.Person) (*models.Person, error) {
	if person.ID == 0 {
		return r.insert(ctx, person)
	}
	return r.update(ctx, person)
}

func (r *SQLPersonRepository) insert(ctx context.Context, person *models.Person) (*models.Person, error) {
	if person.CreatedAt.IsZero() {
		person.CreatedAt = time.Now().UTC()
	}

	// Empty names become NULL so the table's NOT NULL constraint rejects them.
	query := `
		INSERT INTO persons (firstname, lastname, email, created_at)
		VALUES (NULLIF(?, ''), NULLIF(?, ''), ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, person.Firstname, person.Lastname, person.Email, person.CreatedAt)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	person.ID = id

	return person, nil
}

func (r *SQLPersonRepository) update(ctx context.Context, person *models.Person) (*models.Person, error) {
	query := `
		UPDATE persons SET
			firstname = NULLIF(?, ''), lastname = NULLIF(?, ''), email = ?, created_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		person.Firstname, person.Lastname, person.Email, nullTime(person.CreatedAt), person.ID,
	)
	if err != nil {
		return nil, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return person, nil
}

// Delete removes the row with the person's id. Deleting a missing row is a no-op.
func (r *SQLPersonRepository) Delete(ctx context.Context, person *models.Person) error {
	query := `DELETE FROM persons WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, person.ID)
	return err
}

func (r *SQLPersonRepository) queryPerson(ctx context.Context, query string, args ...interface{}) (*models.Person, error) {
	person, err := scanPerson(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return person, nil
}

func (r *SQLPersonRepository) queryPeople(ctx context.Context, query string, args ...interface{}) ([]*models.Person, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	people := []*models.Person{}
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		people = append(people, person)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return people, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPerson(row scanner) (*models.Person, error) {
	var (
		person    models.Person
		email     sql.NullString
		createdAt sql.NullTime
	)

	if err := row.Scan(&person.ID, &person.Firstname, &person.Lastname, &email, &createdAt); err != nil {
		return nil, err
	}

	if email.Valid {
		person.Email = &email.String
	}
	if createdAt.Valid {
		person.CreatedAt = createdAt.Time.UTC()
	}

	return &person, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
