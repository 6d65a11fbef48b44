package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"fisiocal/internal/domain"
	"fisiocal/internal/repository"
)

type TherapistServiceImpl struct {
	repo     repository.TherapistRepository
	userRepo repository.UserRepository
	logger   *zap.Logger
}

func NewTherapistService(repo repository.TherapistRepository, userRepo repository.UserRepository, logger *zap.Logger) *TherapistServiceImpl {
	return &TherapistServiceImpl{
		repo:     repo,
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *TherapistServiceImpl) Create(ctx context.Context, dto domain.CreateTherapistDTO) (int64, error) {
	user, err := s.userRepo.GetByID(ctx, dto.UserID)
	if err != nil {
		s.logger.Warn("user not found for therapist profile", zap.Int64("userId", dto.UserID), zap.Error(err))
		return 0, errors.New("user not found")
	}

	if user.Role != domain.UserRoleTherapist && user.Role != domain.UserRoleEducadorFisico {
		return 0, errors.New("user is not a therapist")
	}

	if existing, err := s.repo.GetByUserID(ctx, dto.UserID); err == nil && existing != nil {
		return 0, errors.New("therapist profile already exists")
	}

	id, err := s.repo.Create(ctx, dto)
	if err != nil {
		s.logger.Error("failed to create therapist", zap.Error(err))
		return 0, errors.New("failed to create therapist")
	}

	return id, nil
}

func (s *TherapistServiceImpl) GetByID(ctx context.Context, id int64) (*domain.Therapist, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *TherapistServiceImpl) GetByUserID(ctx context.Context, userID int64) (*domain.Therapist, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *TherapistServiceImpl) Update(ctx context.Context, id int64, dto domain.UpdateTherapistDTO) error {
	if err := s.repo.Update(ctx, id, dto); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		s.logger.Error("failed to update therapist", zap.Int64("id", id), zap.Error(err))
		return errors.New("failed to update therapist")
	}
	return nil
}

func (s *TherapistServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		s.logger.Error("failed to delete therapist", zap.Int64("id", id), zap.Error(err))
		return errors.New("failed to delete therapist")
	}
	return nil
}

func (s *TherapistServiceImpl) List(ctx context.Context, limit, offset int) ([]domain.Therapist, error) {
	return s.repo.List(ctx, limit, offset)
}
