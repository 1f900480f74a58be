package handlers

import (
	"tricy/internal/models"
	"tricy/internal/services"
	"tricy/internal/utils"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	bookingService services.BookingService
}

func NewBookingHandler(bookingService services.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
	}
}

// CreateBooking requests a ride
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var request models.CreateBookingRequest
	if !bindJSON(c, &request) {
		return
	}

	booking, err := h.bookingService.Create(c.Request.Context(), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Booking created successfully", booking)
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	booking, err := h.bookingService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking retrieved successfully", booking)
}

func (h *BookingHandler) ListBookings(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	bookings, err := h.bookingService.List(c.Request.Context(), params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Bookings retrieved successfully", bookings, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, len(bookings)),
	})
}

func (h *BookingHandler) ListBookingsByStatus(c *gin.Context) {
	bookings, err := h.bookingService.ListByStatus(c.Request.Context(), c.Param("status"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Bookings retrieved successfully", bookings, &utils.Meta{Count: len(bookings)})
}

func (h *BookingHandler) ListDriverBookings(c *gin.Context) {
	bookings, err := h.bookingService.ListForDriver(c.Request.Context(), c.Param("driver_id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Bookings retrieved successfully", bookings, &utils.Meta{Count: len(bookings)})
}

// AssignDriver attaches a driver and moves the booking to accepted
func (h *BookingHandler) AssignDriver(c *gin.Context) {
	booking, err := h.bookingService.Assign(c.Request.Context(), c.Param("id"), c.Param("driver_id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Driver assigned successfully", booking)
}

func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	booking, err := h.bookingService.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking completed successfully", booking)
}

// CancelBooking deletes the booking and returns what it looked like
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	booking, err := h.bookingService.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking cancelled successfully", booking)
}
