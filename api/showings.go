package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/showbooking/internal/domain"
	"github.com/Domenick1991/showbooking/internal/service/showings"
	"github.com/gin-gonic/gin"
)

type ShowingHandler struct {
	service showings.ShowingUseCase
}

type showingResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	StartsAt  string `json:"starts_at"`
	SeatsLeft int    `json:"seats_left"`
}

func NewShowingHandler(service showings.ShowingUseCase) *ShowingHandler {
	return &ShowingHandler{service: service}
}

func (h *ShowingHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
}

func (h *ShowingHandler) list(c *gin.Context) {
	list, err := h.service.ListBookable(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list showings"})
		return
	}

	out := make([]showingResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toShowingResponse(s))
	}
	c.JSON(http.StatusOK, out)
}

func (h *ShowingHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	showing, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrShowingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get showing"})
		return
	}
	c.JSON(http.StatusOK, toShowingResponse(*showing))
}

func toShowingResponse(s domain.Showing) showingResponse {
	return showingResponse{
		ID:        s.ID,
		Name:      s.Name,
		StartsAt:  s.StartsAt.Format(time.RFC3339),
		SeatsLeft: s.SeatsLeft,
	}
}
