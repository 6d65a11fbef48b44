package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"fisiocal/internal/domain"
	"fisiocal/internal/repository"
)

type PatientServiceImpl struct {
	repo     repository.PatientRepository
	userRepo repository.UserRepository
	logger   *zap.Logger
}

func NewPatientService(repo repository.PatientRepository, userRepo repository.UserRepository, logger *zap.Logger) *PatientServiceImpl {
	return &PatientServiceImpl{
		repo:     repo,
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *PatientServiceImpl) Create(ctx context.Context, dto domain.CreatePatientDTO) (int64, error) {
	user, err := s.userRepo.GetByID(ctx, dto.UserID)
	if err != nil {
		s.logger.Warn("user not found for patient profile", zap.Int64("userId", dto.UserID), zap.Error(err))
		return 0, errors.New("user not found")
	}

	if user.Role != domain.UserRolePatient {
		return 0, errors.New("user is not a patient")
	}

	if existing, err := s.repo.GetByUserID(ctx, dto.UserID); err == nil && existing != nil {
		return 0, errors.New("patient profile already exists")
	}

	id, err := s.repo.Create(ctx, dto)
	if err != nil {
		s.logger.Error("failed to create patient", zap.Error(err))
		return 0, errors.New("failed to create patient")
	}

	return id, nil
}

func (s *PatientServiceImpl) GetByID(ctx context.Context, id int64) (*domain.Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PatientServiceImpl) GetByUserID(ctx context.Context, userID int64) (*domain.Patient, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *PatientServiceImpl) Update(ctx context.Context, id int64, dto domain.UpdatePatientDTO) error {
	if err := s.repo.Update(ctx, id, dto); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		s.logger.Error("failed to update patient", zap.Int64("id", id), zap.Error(err))
		return errors.New("failed to update patient")
	}
	return nil
}

func (s *PatientServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		s.logger.Error("failed to delete patient", zap.Int64("id", id), zap.Error(err))
		return errors.New("failed to delete patient")
	}
	return nil
}

func (s *PatientServiceImpl) List(ctx context.Context, limit, offset int) ([]domain.Patient, error) {
	return s.repo.List(ctx, limit, offset)
}
