package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timesheet-api/internal/constants"
	apierrors "github.com/yukikurage/timesheet-api/internal/errors"
	"github.com/yukikurage/timesheet-api/internal/models"
	"github.com/yukikurage/timesheet-api/internal/services"
)

// RequireTicketAccess loads the ticket named by the :id parameter and
// stores it in the context. Tickets owned by someone else answer 404
// exactly like missing ones.
func RequireTicketAccess(ticketService *services.TicketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		ticket, err := ticketService.GetTicket(userID, c.Param("id"))
		if err != nil {
			if errors.Is(err, services.ErrTicketNotFound) {
				apierrors.NotFound(c, "Ticket not found")
			} else {
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTicket, *ticket)
		c.Next()
	}
}

// GetTicket retrieves the ticket loaded by RequireTicketAccess
func GetTicket(c *gin.Context) (models.Ticket, bool) {
	value, exists := c.Get(constants.ContextKeyTicket)
	if !exists {
		return models.Ticket{}, false
	}
	ticket, ok := value.(models.Ticket)
	return ticket, ok
}
