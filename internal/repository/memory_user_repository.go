package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"noq-clinic-queue/internal/domain/entity"
	domainRepo "noq-clinic-queue/internal/domain/repository"

	"github.com/google/uuid"
)

type memoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]entity.User
	byEmail map[string]uuid.UUID
}

func NewMemoryUserRepository() domainRepo.UserRepository {
	return &memoryUserRepository{
		byID:    make(map[uuid.UUID]entity.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (r *memoryUserRepository) Create(ctx context.Context, user *entity.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, exists := r.byEmail[key]; exists {
		return domainRepo.ErrDuplicateEmail
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = entity.RoleDoctor
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.byID[user.ID] = *user
	r.byEmail[key] = user.ID
	return nil
}

func (r *memoryUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	user := r.byID[id]
	return &user, nil
}

func (r *memoryUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}
