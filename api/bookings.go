package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/Domenick1991/showbooking/internal/domain"
	"github.com/Domenick1991/showbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createReservationRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	ShowingID int64  `json:"showing_id" binding:"required"`
}

type reservationResponse struct {
	Ref       string `json:"ref"`
	UserID    string `json:"user_id"`
	ShowingID int64  `json:"showing_id"`
	Stage     string `json:"stage"`
	CreatedAt string `json:"created_at"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:ref", h.get)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reservation, err := h.service.Book(c.Request.Context(), booking.BookInput{
		UserID:    req.UserID,
		ShowingID: req.ShowingID,
	}, time.Now())
	if err != nil {
		status, msg := bookingErrorStatus(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusCreated, toReservationResponse(reservation))
}

func (h *BookingHandler) get(c *gin.Context) {
	reservation, err := h.service.GetByRef(c.Request.Context(), c.Param("ref"))
	if err != nil {
		if errors.Is(err, domain.ErrReservationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get reservation"})
		return
	}
	c.JSON(http.StatusOK, toReservationResponse(reservation))
}

// bookingErrorStatus maps expected denials to client statuses; anything else
// is a storage failure and hides behind a generic 500.
func bookingErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrShowingNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrSoldOut), errors.Is(err, domain.ErrSalesClosed):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, "booking failed"
	}
}

func toReservationResponse(r *domain.Reservation) reservationResponse {
	return reservationResponse{
		Ref:       r.Ref,
		UserID:    r.UserID,
		ShowingID: r.ShowingID,
		Stage:     string(r.Stage),
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
}
