package services

import (
	"errors"

	"gorm.io/gorm"

	"timesheet/apperr"
	"timesheet/models"
)

// NotificationService is the notification sink. Creation is best-effort
// from the caller's point of view: workflow operations log a failure and
// carry on.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

func (s *NotificationService) Create(userID uint, typ models.NotificationType, message string) error {
	n := models.Notification{UserID: userID, Type: typ, Message: message}
	return s.db.Create(&n).Error
}

// List returns the user's notifications, unread first, newest first.
func (s *NotificationService) List(userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.Where("user_id = ?", userID).
		Order("read asc").Order("created_at desc").
		Find(&notifications).Error
	return notifications, err
}

func (s *NotificationService) MarkRead(userID, id uint) (*models.Notification, error) {
	var n models.Notification
	err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("notification")
	}
	if err != nil {
		return nil, err
	}
	n.Read = true
	if err := s.db.Save(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *NotificationService) MarkAllRead(userID uint) error {
	return s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}
