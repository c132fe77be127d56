package service

import (
	"github.com/vdsasi/NoteSharingApp/internal/domain"
	"github.com/vdsasi/NoteSharingApp/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetProfile(userID string) (domain.UserProfile, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return domain.UserProfile{}, err
	}
	return user.Profile(), nil
}
