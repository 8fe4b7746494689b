package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkuznecov/ticketgate/internal/domain"
	"github.com/mkuznecov/ticketgate/internal/service/tickets"
)

type TicketHandler struct {
	service tickets.TicketUseCase
}

type purchaseRequest struct {
	FlightNumber    string `json:"flightNumber" binding:"required"`
	Price           int    `json:"price" binding:"required,gt=0"`
	PaidFromBalance bool   `json:"paidFromBalance"`
}

func NewTicketHandler(service tickets.TicketUseCase) *TicketHandler {
	return &TicketHandler{service: service}
}

func (h *TicketHandler) Register(router *gin.RouterGroup) {
	user := router.Group("", RequireUserName())
	user.GET("/tickets", h.list)
	user.GET("/tickets/:ticketUid", h.get)
	user.POST("/tickets", h.purchase)
	user.DELETE("/tickets/:ticketUid", h.refund)
	user.GET("/me", h.me)
	user.GET("/privilege", h.privilege)
}

func (h *TicketHandler) list(c *gin.Context) {
	result, err := h.service.ListUserTickets(c.Request.Context(), userName(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TicketHandler) get(c *gin.Context) {
	result, err := h.service.GetUserTicket(c.Request.Context(), userName(c), c.Param("ticketUid"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TicketHandler) purchase(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	result, err := h.service.Purchase(c.Request.Context(), userName(c), tickets.PurchaseInput{
		FlightNumber:    req.FlightNumber,
		Price:           req.Price,
		PaidFromBalance: req.PaidFromBalance,
	})
	if err != nil {
		// a rejected flight lookup on the purchase path is the caller's fault
		if errors.Is(err, domain.ErrFlightNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Flight not found"})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TicketHandler) refund(c *gin.Context) {
	if err := h.service.Refund(c.Request.Context(), userName(c), c.Param("ticketUid")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TicketHandler) me(c *gin.Context) {
	result, err := h.service.GetUserInfo(c.Request.Context(), userName(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TicketHandler) privilege(c *gin.Context) {
	result, err := h.service.GetPrivilege(c.Request.Context(), userName(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
