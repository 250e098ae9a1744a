package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"carpool/internal/domain"
)

// Ticket is the passenger's proof of a confirmed booking.
type Ticket struct {
	ID            string
	BookingID     string
	RideID        string
	PassengerID   string
	Source        string
	Destination   string
	DepartureTime time.Time
	Seats         int
	FareAmount    float64
	PaymentMethod domain.PaymentMethod
	PaymentStatus domain.PaymentStatus
	IssuedAt      time.Time
}

// TicketService issues tickets for confirmed bookings.
type TicketService struct {
	notificationService *NotificationService
}

// NewTicketService creates a new TicketService.
func NewTicketService(notificationService *NotificationService) *TicketService {
	return &TicketService{
		notificationService: notificationService,
	}
}

// Issue builds a ticket for a confirmed booking and notifies the passenger.
func (s *TicketService) Issue(ctx context.Context, booking *domain.Booking, ride *domain.Ride, payment *domain.Payment) (*Ticket, error) {
	if booking == nil {
		return nil, ErrInvalidBookingID
	}
	if ride == nil {
		return nil, ErrInvalidRideID
	}

	paymentStatus := booking.PaymentStatus
	if payment != nil {
		paymentStatus = payment.Status
	}

	ticket := &Ticket{
		ID:            uuid.New().String(),
		BookingID:     booking.ID,
		RideID:        ride.ID,
		PassengerID:   booking.PassengerID,
		Source:        ride.Source,
		Destination:   ride.Destination,
		DepartureTime: ride.DepartureTime,
		Seats:         booking.Seats,
		FareAmount:    booking.FareAmount,
		PaymentMethod: booking.PaymentMethod,
		PaymentStatus: paymentStatus,
		IssuedAt:      time.Now(),
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyTicketReady(ctx, ticket)
	}

	return ticket, nil
}

// FormatTicket formats the ticket as a string (for email/print).
func (s *TicketService) FormatTicket(ticket *Ticket) string {
	return `
=====================================
          RIDE TICKET
=====================================
Ticket ID:  ` + ticket.ID + `
Booking ID: ` + ticket.BookingID + `
Issued:     ` + ticket.IssuedAt.Format("Jan 02, 2006 3:04 PM") + `

TRIP DETAILS
-------------------------------------
From:      ` + ticket.Source + `
To:        ` + ticket.Destination + `
Departure: ` + ticket.DepartureTime.Format("Jan 02, 2006 3:04 PM") + `
Seats:     ` + fmt.Sprintf("%d", ticket.Seats) + `

PAYMENT
-------------------------------------
Fare:   ` + fmt.Sprintf("%.2f", ticket.FareAmount) + `
Method: ` + string(ticket.PaymentMethod) + `
Status: ` + string(ticket.PaymentStatus) + `

=====================================
    Thank you for riding with us!
=====================================
`
}
