package service

import (
	"context"

	"noq-clinic-queue/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

// NotificationPublisher hands a patient notification to the mail pipeline.
// messaging.RabbitMQPublisher is the production implementation.
type NotificationPublisher interface {
	PublishPatientNotification(ctx context.Context, notification entity.PatientNotification) error
}

type logNotificationPublisher struct {
	log *logrus.Logger
}

// NewLogNotificationPublisher only logs notifications. Used when no broker is configured.
func NewLogNotificationPublisher(log *logrus.Logger) NotificationPublisher {
	return &logNotificationPublisher{log: log}
}

func (p *logNotificationPublisher) PublishPatientNotification(ctx context.Context, notification entity.PatientNotification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.log.WithFields(logrus.Fields{
		"patient_id": notification.PatientID,
		"token":      notification.Token,
		"email":      notification.Email,
		"status":     notification.Status,
	}).Info("Broker not configured, notification not delivered")
	return nil
}
