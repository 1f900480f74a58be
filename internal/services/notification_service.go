package services

import (
	"context"
	"fmt"
	"time"

	"tricy/internal/models"
	"tricy/internal/repositories/interfaces"
	"tricy/internal/utils"
	"tricy/pkg/logger"
	"tricy/pkg/push"
	"tricy/pkg/sms"

	"github.com/google/uuid"
)

// NotificationSender is what other services use to reach a user.
type NotificationSender interface {
	Notify(ctx context.Context, userID, title, message, category string) (*models.Notification, error)
}

// DevicePusher delivers to a registered mobile device.
type DevicePusher interface {
	Push(ctx context.Context, platform string, msg *push.Message) (string, error)
}

type NotificationService interface {
	NotificationSender
	Create(ctx context.Context, req *models.CreateNotificationRequest) (*models.Notification, error)
	ListForUser(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkRead(ctx context.Context, notificationID string) (*models.Notification, error)
}

type notificationService struct {
	notificationRepo interfaces.NotificationRepository
	userRepo         interfaces.UserRepository
	realtime         RealtimeNotifier
	events           EventDispatcher
	smsProvider      sms.SMSProvider
	pusher           DevicePusher
	logger           *logger.Logger
	now              func() time.Time
}

// NewNotificationService wires the delivery channels. Every channel may be
// nil.
func NewNotificationService(
	notificationRepo interfaces.NotificationRepository,
	userRepo interfaces.UserRepository,
	realtime RealtimeNotifier,
	events EventDispatcher,
	smsProvider sms.SMSProvider,
	pusher DevicePusher,
	log *logger.Logger,
) NotificationService {
	if log == nil {
		log = logger.NewNop()
	}
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		realtime:         realtime,
		events:           events,
		smsProvider:      smsProvider,
		pusher:           pusher,
		logger:           log,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *notificationService) Create(ctx context.Context, req *models.CreateNotificationRequest) (*models.Notification, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return s.Notify(ctx, req.UserID, req.Title, req.Message, req.Type)
}

// Notify stores the notification and then pushes it over every configured
// channel. Only the store write can fail the call.
func (s *notificationService) Notify(ctx context.Context, userID, title, message, category string) (*models.Notification, error) {
	if category == "" {
		category = utils.NotificationInfo
	}

	notification, err := s.notificationRepo.Create(ctx, &models.Notification{
		NotificationID: uuid.NewString(),
		UserID:         userID,
		Title:          title,
		Message:        message,
		Type:           category,
		CreatedAt:      s.now(),
	})
	if err != nil {
		return nil, err
	}

	s.deliver(ctx, notification)
	return notification, nil
}

func (s *notificationService) deliver(ctx context.Context, n *models.Notification) {
	log := s.logger.WithUserID(n.UserID).WithField("notification_id", n.NotificationID)

	if s.realtime != nil {
		delivered := s.realtime.SendUserNotification(n.UserID, n.Type, map[string]interface{}{
			"notification_id": n.NotificationID,
			"title":           n.Title,
			"message":         n.Message,
			"created_at":      n.CreatedAt,
		})
		log.WithField("clients", delivered).Debug("Notification pushed to websocket clients")
	}

	if s.events != nil {
		s.events.Publish(ctx, "notification_"+n.Type, n)
	}

	wantSMS := s.smsProvider != nil && n.Type == utils.NotificationBooking
	if !wantSMS && s.pusher == nil {
		return
	}

	user, err := s.userRepo.GetByID(ctx, n.UserID)
	if err != nil {
		log.WithError(err).Warn("Failed to load recipient for delivery")
		return
	}

	if wantSMS && user.PhoneNumber != "" {
		if err := s.sendSMS(ctx, user, n); err != nil {
			log.WithError(err).Warn("Failed to send notification SMS")
		}
	}

	if s.pusher != nil && user.DeviceToken != "" {
		if err := s.sendPush(ctx, user, n); err != nil {
			log.WithError(err).WithField("platform", user.DevicePlatform).Warn("Failed to push notification to device")
		}
	}
}

func (s *notificationService) sendSMS(ctx context.Context, user *models.User, n *models.Notification) error {
	_, err := s.smsProvider.SendSMS(ctx, &sms.SMSRequest{
		To:      user.PhoneNumber,
		Message: fmt.Sprintf("%s: %s", n.Title, n.Message),
		Type:    "transactional",
	})
	return err
}

func (s *notificationService) sendPush(ctx context.Context, user *models.User, n *models.Notification) error {
	_, err := s.pusher.Push(ctx, user.DevicePlatform, &push.Message{
		Token:    user.DeviceToken,
		Title:    n.Title,
		Body:     n.Message,
		Category: n.Type,
		Data: map[string]string{
			"notification_id": n.NotificationID,
			"type":            n.Type,
		},
		HighPriority: n.Type == utils.NotificationBooking,
	})
	return err
}

func (s *notificationService) ListForUser(ctx context.Context, userID string) ([]*models.Notification, error) {
	return s.notificationRepo.ListByUser(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID string) (*models.Notification, error) {
	return s.notificationRepo.MarkRead(ctx, notificationID)
}
