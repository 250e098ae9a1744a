package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"carpool/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationNewBooking       NotificationType = "NEW_BOOKING"
	NotificationBookingApproved  NotificationType = "BOOKING_APPROVED"
	NotificationBookingRejected  NotificationType = "BOOKING_REJECTED"
	NotificationBookingCancelled NotificationType = "BOOKING_CANCELLED"
	NotificationPaymentSuccess   NotificationType = "PAYMENT_SUCCESS"
	NotificationRideCancelled    NotificationType = "RIDE_CANCELLED"
	NotificationRideCompleted    NotificationType = "RIDE_COMPLETED"
	NotificationTicketReady      NotificationType = "TICKET_READY"
)

// Notification represents a notification to be sent.
type Notification struct {
	Type        NotificationType
	RecipientID string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}

// NotificationService handles notification delivery. Delivery is
// fire-and-forget: a failed notification never rolls back the state
// transition that triggered it.
type NotificationService struct {
	// In a real deployment this would hold email/push/websocket clients.
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyNewBooking notifies the driver about a new booking on their ride.
func (s *NotificationService) NotifyNewBooking(ctx context.Context, booking *domain.Booking, ride *domain.Ride) error {
	return s.send(ctx, Notification{
		Type:        NotificationNewBooking,
		RecipientID: ride.DriverID,
		Message: fmt.Sprintf("New %s booking for %d seat(s) on your ride to %s",
			booking.PaymentMethod, booking.Seats, ride.Destination),
		Data: map[string]interface{}{
			"booking_id": booking.ID,
			"ride_id":    ride.ID,
			"seats":      booking.Seats,
			"fare":       booking.FareAmount,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyBookingDecision notifies the passenger of the driver's response.
func (s *NotificationService) NotifyBookingDecision(ctx context.Context, booking *domain.Booking, ride *domain.Ride, approved bool) error {
	typ := NotificationBookingApproved
	message := fmt.Sprintf("Your booking for the ride to %s was approved. Proceed to payment.", ride.Destination)
	if !approved {
		typ = NotificationBookingRejected
		message = fmt.Sprintf("Your booking for the ride to %s was rejected by the driver.", ride.Destination)
	}

	return s.send(ctx, Notification{
		Type:        typ,
		RecipientID: booking.PassengerID,
		Message:     message,
		Data: map[string]interface{}{
			"booking_id": booking.ID,
			"ride_id":    ride.ID,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyBookingCancelled notifies the driver that a passenger cancelled.
func (s *NotificationService) NotifyBookingCancelled(ctx context.Context, booking *domain.Booking, ride *domain.Ride) error {
	return s.send(ctx, Notification{
		Type:        NotificationBookingCancelled,
		RecipientID: ride.DriverID,
		Message: fmt.Sprintf("A passenger cancelled their booking of %d seat(s) on your ride to %s",
			booking.Seats, ride.Destination),
		Data: map[string]interface{}{
			"booking_id": booking.ID,
			"ride_id":    ride.ID,
			"seats":      booking.Seats,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyPaymentSuccess notifies the passenger of a successful payment.
func (s *NotificationService) NotifyPaymentSuccess(ctx context.Context, payment *domain.Payment, passengerID string) error {
	return s.send(ctx, Notification{
		Type:        NotificationPaymentSuccess,
		RecipientID: passengerID,
		Message:     fmt.Sprintf("Payment of %.2f successful", payment.Amount),
		Data: map[string]interface{}{
			"payment_id":      payment.ID,
			"amount":          payment.Amount,
			"transaction_ref": payment.TransactionRef,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyRideCancelled notifies a passenger that a ride they booked was
// cancelled by the driver.
func (s *NotificationService) NotifyRideCancelled(ctx context.Context, booking *domain.Booking, ride *domain.Ride) error {
	return s.send(ctx, Notification{
		Type:        NotificationRideCancelled,
		RecipientID: booking.PassengerID,
		Message: fmt.Sprintf("The ride you booked from %s to %s was cancelled by the driver.",
			ride.Source, ride.Destination),
		Data: map[string]interface{}{
			"booking_id": booking.ID,
			"ride_id":    ride.ID,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyRideCompleted notifies a passenger that their booking's ride is done.
func (s *NotificationService) NotifyRideCompleted(ctx context.Context, booking *domain.Booking, ride *domain.Ride) error {
	return s.send(ctx, Notification{
		Type:        NotificationRideCompleted,
		RecipientID: booking.PassengerID,
		Message: fmt.Sprintf("Your ride from %s to %s is complete.",
			ride.Source, ride.Destination),
		Data: map[string]interface{}{
			"booking_id": booking.ID,
			"ride_id":    ride.ID,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyTicketReady notifies the passenger that their ticket is ready.
func (s *NotificationService) NotifyTicketReady(ctx context.Context, ticket *Ticket) error {
	return s.send(ctx, Notification{
		Type:        NotificationTicketReady,
		RecipientID: ticket.PassengerID,
		Message:     fmt.Sprintf("Your ticket for the ride to %s is ready", ticket.Destination),
		Data: map[string]interface{}{
			"ticket_id":  ticket.ID,
			"booking_id": ticket.BookingID,
		},
		CreatedAt: time.Now(),
	})
}

// send delivers a notification (mock implementation).
func (s *NotificationService) send(ctx context.Context, notification Notification) error {
	log.Printf("[NOTIFICATION] Type=%s, Recipient=%s, Message=%s",
		notification.Type, notification.RecipientID, notification.Message)

	return nil
}
