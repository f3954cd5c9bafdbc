package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/inkline-team/inkline/errors"
	"github.com/inkline-team/inkline/pkg/tabtoken"
)

// tabIDContextKey is the echo context key the verified tab id is stored
// under
const tabIDContextKey = "tab_id"

// TabAuth returns middleware that verifies the tab token and stores the tab
// id on the request context
func TabAuth(tokens *tabtoken.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := ExtractToken(c.Request())
			if token == "" {
				return RespondError(c, errors.ErrUnauthenticated())
			}

			tabID, err := tokens.Verify(token)
			if err != nil {
				return RespondError(c, errors.ErrInvalidTabToken())
			}

			c.Set(tabIDContextKey, tabID)
			return next(c)
		}
	}
}

// TabID returns the verified tab id stored by TabAuth
func TabID(c echo.Context) string {
	tabID, _ := c.Get(tabIDContextKey).(string)
	return tabID
}
