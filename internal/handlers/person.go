package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/alimgiray/persons/internal/models"
	"github.com/alimgiray/persons/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	defaultPage = "0"
	defaultSize = "10"
)

// personRequest carries the client editable fields. id and createdAt in the body are
// dropped without being decoded.
type personRequest struct {
	Firstname string  `json:"firstname"`
	Lastname  string  `json:"lastname"`
	Email     *string `json:"email"`
}

// PersonHandler exposes the person resource. Handlers never write error bodies:
// failures are attached with c.Error and rendered by middleware.ErrorMapper.
type PersonHandler struct {
	personService *services.PersonService
}

func NewPersonHandler(personService *services.PersonService) *PersonHandler {
	return &PersonHandler{
		personService: personService,
	}
}

// RegisterRoutes mounts the /persons routes on the given group
func (h *PersonHandler) RegisterRoutes(rg *gin.RouterGroup) {
	persons := rg.Group("/persons")
	{
		persons.GET("", h.GetAllPersons)
		persons.GET("/search", h.Search)
		persons.GET("/flexible", h.GetAllFlexible)
		persons.GET("/:id", h.GetPersonByID)
		persons.POST("", h.CreatePerson)
		persons.PUT("/:id", h.UpdatePerson)
		persons.DELETE("/:id", h.DeletePerson)
	}
}

// GetAllPersons handles GET /persons
func (h *PersonHandler) GetAllPersons(c *gin.Context) {
	people, err := h.personService.GetAllPersons(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, people)
}

// GetPersonByID handles GET /persons/:id
func (h *PersonHandler) GetPersonByID(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	person, err := h.personService.GetPersonByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, person)
}

// Search handles GET /persons/search?firstname=&lastname=&page=0&size=10.
// An absent name parameter means no constraint; a present but empty one matches everything.
func (h *PersonHandler) Search(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", defaultPage))
	if err != nil {
		_ = c.Error(fmt.Errorf("invalid page parameter: %w", err))
		return
	}

	size, err := strconv.Atoi(c.DefaultQuery("size", defaultSize))
	if err != nil {
		_ = c.Error(fmt.Errorf("invalid size parameter: %w", err))
		return
	}

	people, err := h.personService.Search(c.Request.Context(), optionalQuery(c, "firstname"), optionalQuery(c, "lastname"), page, size)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, people)
}

// CreatePerson handles POST /persons. Client supplied id and createdAt are ignored.
func (h *PersonHandler) CreatePerson(c *gin.Context) {
	var input personRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(fmt.Errorf("invalid person payload: %w", err))
		return
	}

	created, err := h.personService.CreatePerson(c.Request.Context(), models.NewPerson(input.Firstname, input.Lastname, input.Email))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// UpdatePerson handles PUT /persons/:id
func (h *PersonHandler) UpdatePerson(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var patch personRequest
	if err := c.ShouldBindJSON(&patch); err != nil {
		_ = c.Error(fmt.Errorf("invalid person payload: %w", err))
		return
	}

	updated, err := h.personService.UpdatePerson(c.Request.Context(), id, &models.Person{
		Firstname: patch.Firstname,
		Lastname:  patch.Lastname,
		Email:     patch.Email,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeletePerson handles DELETE /persons/:id
func (h *PersonHandler) DeletePerson(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.personService.DeletePerson(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetAllFlexible handles GET /persons/flexible, rendering JSON or XML based on the Accept header
func (h *PersonHandler) GetAllFlexible(c *gin.Context) {
	people, err := h.personService.GetAllPersons(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Negotiate(http.StatusOK, gin.Negotiate{
		Offered:  []string{binding.MIMEJSON, binding.MIMEXML},
		JSONData: people,
		XMLData:  models.NewPersonList(people),
	})
}

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid person id %q: %w", c.Param("id"), err)
	}
	return id, nil
}

func optionalQuery(c *gin.Context, key string) *string {
	if value, ok := c.GetQuery(key); ok {
		return &value
	}
	return nil
}
