package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/alimgiray/persons/internal/models"
	"github.com/alimgiray/persons/internal/repositories"
	"github.com/alimgiray/persons/pkg/logger"
	"github.com/sirupsen/logrus"
)

// ErrInvalidPageRequest is returned for a negative page index or a page size below one
var ErrInvalidPageRequest = errors.New("invalid page request")

type PersonService struct {
	store repositories.TxRunner
}

func NewPersonService(store repositories.TxRunner) *PersonService {
	return &PersonService{
		store: store,
	}
}

// GetAllPersons returns every person
func (s *PersonService) GetAllPersons(ctx context.Context) ([]*models.Person, error) {
	var people []*models.Person
	err := s.store.WithinTx(ctx, func(repo repositories.PersonRepository) error {
		var err error
		people, err = repo.FindAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return people, nil
}

// GetAllPersonsPage returns the zero-indexed page of the full collection
func (s *PersonService) GetAllPersonsPage(ctx context.Context, page, size int) ([]*models.Person, error) {
	if page < 0 || size < 1 {
		return nil, fmt.Errorf("%w: page=%d size=%d", ErrInvalidPageRequest, page, size)
	}
	// The offset would overflow int, so the page lies past any stored row.
	if page > math.MaxInt/size {
		return []*models.Person{}, nil
	}

	var people []*models.Person
	err := s.store.WithinTx(ctx, func(repo repositories.PersonRepository) error {
		var err error
		people, err = repo.FindPage(ctx, page, size)
		return err
	})
	if err != nil {
		return nil, err
	}
	return people, nil
}

// GetPersonByID returns the person or a *models.PersonNotFoundError
func (s *PersonService) GetPersonByID(ctx context.Context, id int64) (*models.Person, error) {
	var person *models.Person
	err := s.store.WithinTx(ctx, func(repo repositories.PersonRepository) error {
		var err error
		person, err = findExisting(ctx, repo, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return person, nil
}

// CreatePerson persists a new person. Required fields are enforced by the store only.
func (s *PersonService) CreatePerson(ctx context.Context, person *models.Person) (*models.Person, error) {
	var created *models.Person
	err := s.store.WithinTx(ctx, func(repo repositories.PersonRepository) error {
		var err error
		created, err = repo.Save(ctx, person)
		return err
	})
	if err != nil {
		logger.WithError(err).Error("Failed to create person")
		return nil, err
	}

	logger.WithField("person_id", created.ID).Info("Person created")
	return created, nil
}

// UpdatePerson overwrites firstname, lastname and email of an existing person.
// ID and CreatedAt of the stored record are kept whatever the patch carries.
func (s *PersonService) UpdatePerson(ctx context.Context, id int64, patch *models.Person) (*models.Person, error) {
	var updated *models.Person
	err := s.store.WithinTx(ctx, func(repo repositories.PersonRepository) error {
		person, err := findExisting(ctx, repo, id)
		if err != nil {
			return err
		}

		person.ApplyPatch(patch)

		updated, err = repo.Save(ctx, person)
		return err
	})
	if err != nil {
		logUnlessNotFound(err, id, "Failed to update person")
		return nil, err
	}

	logger.WithField("person_id", id).Info("Person updated")
	return updated, nil
}

// DeletePerson removes an existing person
func (s *PersonService) DeletePerson(ctx context.Context, id int64) error {
	err := s.store.WithinTx(ctx, func(repo repositories.PersonRepository) error {
		person, err := findExisting(ctx, repo, id)
		if err != nil {
			return err
		}
		return repo.Delete(ctx, person)
	})
	if err != nil {
		logUnlessNotFound(err, id, "Failed to delete person")
		return err
	}

	logger.WithField("person_id", id).Info("Person deleted")
	return nil
}

// Search falls back to the paged listing when neither name is given. With a name filter
// the full match list is returned and page/size are not applied.
func (s *PersonService) Search(ctx context.Context, firstname, lastname *string, page, size int) ([]*models.Person, error) {
	if firstname == nil && lastname == nil {
		return s.GetAllPersonsPage(ctx, page, size)
	}

	var people []*models.Person
	err := s.store.WithinTx(ctx, func(repo repositories.PersonRepository) error {
		var err error
		people, err = repo.SearchByName(ctx, firstname, lastname)
		return err
	})
	if err != nil {
		return nil, err
	}
	return people, nil
}

func findExisting(ctx context.Context, repo repositories.PersonRepository, id int64) (*models.Person, error) {
	person, err := repo.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, &models.PersonNotFoundError{ID: id}
	}
	if err != nil {
		return nil, err
	}
	return person, nil
}

func logUnlessNotFound(err error, id int64, msg string) {
	var notFound *models.PersonNotFoundError
	if errors.As(err, &notFound) {
		return
	}
	logger.WithFields(logrus.Fields{"person_id": id, "error": err.Error()}).Error(msg)
}
