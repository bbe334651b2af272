package ginext

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fieldselector "github.com/AdrianRamiro/api-field-selector"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestSelector(t *testing.T) *fieldselector.Selector {
	t.Helper()
	s, err := fieldselector.New(fieldselector.Schema{
		Available: []string{"id", "name", "email", "phone"},
		Defaults:  []string{"id", "name"},
		Groups: map[string][]string{
			"contact": {"email", "phone"},
		},
	})
	require.NoError(t, err)
	return s
}

func newTestRouter(s *fieldselector.Selector) *gin.Engine {
	r := gin.New()
	r.Use(Middleware(s))
	r.GET("/users/:id", func(c *gin.Context) {
		sel, ok := SelectionFrom(c)
		if !ok {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		FilteredJSON(c, http.StatusOK, sel, map[string]any{
			"id":    c.Param("id"),
			"name":  "Ada",
			"email": "ada@example.com",
			"phone": "555-0100",
		})
	})
	return r
}

func TestMiddleware_QueryParam(t *testing.T) {
	t.Parallel()

	router := newTestRouter(newTestSelector(t))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users/7?fields=id,phone", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"7","phone":"555-0100"}`, rec.Body.String())
}

func TestMiddleware_Header(t *testing.T) {
	t.Parallel()

	router := newTestRouter(newTestSelector(t))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users/7", nil)
	req.Header.Set("x-fields", "@contact")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"email":"ada@example.com","phone":"555-0100"}`, rec.Body.String())
}

func TestMiddleware_Defaults(t *testing.T) {
	t.Parallel()

	router := newTestRouter(newTestSelector(t))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users/7", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"7","name":"Ada"}`, rec.Body.String())
}

func TestSelect_Direct(t *testing.T) {
	t.Parallel()

	s := newTestSelector(t)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?fields=email", nil)

	sel := Select(s, c)
	assert.Equal(t, []string{"email"}, sel.Fields())
}

func TestSelectionFrom_Absent(t *testing.T) {
	t.Parallel()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := SelectionFrom(c)
	assert.False(t, ok)
}
