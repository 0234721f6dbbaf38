package usecase

import (
	"context"
	"time"

	"noq-clinic-queue/config"
	"noq-clinic-queue/internal/converter"
	"noq-clinic-queue/internal/delivery/dto"
	"noq-clinic-queue/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

type StatusUsecase interface {
	CurrentStatus(ctx context.Context) (*dto.QueueStatusResponse, error)
}

type statusUsecase struct {
	log           *logrus.Logger
	patientRepo   repository.PatientRepository
	upcomingLimit int
	pollInterval  time.Duration
}

func NewStatusUsecase(log *logrus.Logger, patientRepo repository.PatientRepository, cfg config.QueueConfig) StatusUsecase {
	limit := cfg.UpcomingLimit
	if limit < 1 || limit > config.MaxUpcomingLimit {
		limit = config.MaxUpcomingLimit
	}
	return &statusUsecase{
		log:           log,
		patientRepo:   patientRepo,
		upcomingLimit: limit,
		pollInterval:  cfg.PollInterval,
	}
}

// CurrentStatus is the public "now serving / up next" view. Read only.
func (u *statusUsecase) CurrentStatus(ctx context.Context) (*dto.QueueStatusResponse, error) {
	snapshot, err := u.patientRepo.Snapshot(ctx, u.upcomingLimit)
	if err != nil {
		u.log.Warnf("Failed to read queue status: %+v", err)
		return nil, err
	}

	upcoming := make([]dto.QueueEntry, 0, len(snapshot.Upcoming))
	for i := range snapshot.Upcoming {
		upcoming = append(upcoming, *converter.PatientToQueueEntry(&snapshot.Upcoming[i]))
	}

	pollSeconds := int(u.pollInterval / time.Second)
	if pollSeconds < 1 {
		pollSeconds = 1
	}

	return &dto.QueueStatusResponse{
		Current:             converter.PatientToQueueEntry(snapshot.Current),
		Upcoming:            upcoming,
		PollIntervalSeconds: pollSeconds,
	}, nil
}
