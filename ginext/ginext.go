// Package ginext provides Gin middleware and helpers for field selection.
// It isolates the github.com/gin-gonic/gin dependency so that servers not
// built on Gin never import it.
package ginext

import (
	"github.com/gin-gonic/gin"

	fieldselector "github.com/AdrianRamiro/api-field-selector"
)

// selectionKey is the gin context key under which Middleware stores the
// resolved selection.
const selectionKey = "fieldselector.selection"

// FromContext converts the current request into the shape the selector reads.
func FromContext(c *gin.Context) fieldselector.Request {
	return fieldselector.Request{
		Query:  c.Request.URL.Query(),
		Header: c.Request.Header,
	}
}

// Select resolves the field selection for the current request.
func Select(s *fieldselector.Selector, c *gin.Context) fieldselector.Selection {
	return s.Select(FromContext(c))
}

// Middleware resolves the field selection once per request and stores it on
// the gin context for handlers to pick up via SelectionFrom.
func Middleware(s *fieldselector.Selector) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(selectionKey, Select(s, c))
		c.Next()
	}
}

// SelectionFrom returns the selection stored by Middleware. The second
// return value reports whether one was present.
func SelectionFrom(c *gin.Context) (fieldselector.Selection, bool) {
	v, ok := c.Get(selectionKey)
	if !ok {
		return fieldselector.Selection{}, false
	}
	sel, ok := v.(fieldselector.Selection)
	return sel, ok
}

// FilteredJSON writes obj projected down to sel as a JSON response.
func FilteredJSON(c *gin.Context, code int, sel fieldselector.Selection, obj map[string]any) {
	c.JSON(code, fieldselector.FilterMap(obj, sel))
}
