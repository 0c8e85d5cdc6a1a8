package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"foodgram-backend/domain"
	"foodgram-backend/entities"
	"foodgram-backend/internal/utils"
	"foodgram-backend/internal/utils/mailing"
	"foodgram-backend/internal/utils/storage"
	"foodgram-backend/pkg/jwt"
	"foodgram-backend/pkg/recipe"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResponse, error)
		Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
		SendVerificationEmail(ctx context.Context, email string) error
		VerifyEmail(ctx context.Context, token string) error
		ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error
		ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error
		Me(ctx context.Context, userID string) (domain.UserResponse, error)
		UpdateAvatar(ctx context.Context, userID string, req domain.UpdateAvatarRequest) (domain.UserResponse, error)
		GetProfile(ctx context.Context, targetID, viewerID string) (domain.UserResponse, error)

		Subscribe(ctx context.Context, userID, targetID string) (domain.SubscriptionProfileResponse, error)
		Unsubscribe(ctx context.Context, userID, targetID string) error
		GetSubscriptions(ctx context.Context, userID string, page, limit, recipesLimit int) (domain.SubscriptionListResponse, error)
	}

	userService struct {
		userRepository   UserRepository
		recipeRepository recipe.RecipeRepository
		jwtService       jwt.JWTService
		s3               storage.AwsS3
	}
)

func NewUserService(userRepository UserRepository, recipeRepository recipe.RecipeRepository, jwtService jwt.JWTService, s3 storage.AwsS3) UserService {
	return &userService{
		userRepository:   userRepository,
		recipeRepository: recipeRepository,
		jwtService:       jwtService,
		s3:               s3,
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResponse, error) {
	if _, err := s.userRepository.GetUserByEmail(ctx, req.Email); err == nil {
		return domain.RegisterResponse{}, domain.ErrEmailAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.RegisterResponse{}, err
	}

	username := req.Username
	if username == "" {
		username = strings.SplitN(req.Email, "@", 2)[0]
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.RegisterResponse{}, err
	}

	user := &entities.User{
		ID:        uuid.New(),
		Email:     req.Email,
		Username:  username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashed),
		Role:      domain.RoleUser,
		AvatarURL: s.s3.DefaultImageURL("avatar-icon.png"),
	}

	if err := s.userRepository.CreateUser(ctx, user); err != nil {
		return domain.RegisterResponse{}, err
	}

	return domain.RegisterResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}, nil
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.LoginResponse{}, domain.ErrCredentialsInvalid
		}
		return domain.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return domain.LoginResponse{}, domain.ErrCredentialsInvalid
	}

	token := s.jwtService.GenerateTokenUser(user.ID.String(), user.Role)
	return domain.LoginResponse{Token: token, Role: user.Role}, nil
}

func (s *userService) SendVerificationEmail(ctx context.Context, email string) error {
	user, err := s.userRepository.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	token, err := s.jwtService.GenerateMailToken(map[string]any{"email": user.Email}, time.Hour*24)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/api/v1/users/verify?token=%s", utils.GetConfig("APP_URL"), token)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Please confirm your email address by clicking <a href=%q>this link</a>.</p>",
		user.FirstName, link,
	)
	return mailing.SendMail(user.Email, "Verify your account", body)
}

func (s *userService) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.jwtService.ValidateMailToken(token)
	if err != nil {
		return err
	}

	email, ok := claims["email"].(string)
	if !ok {
		return domain.ErrTokenInvalid
	}

	user, err := s.userRepository.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	user.IsVerified = true
	return s.userRepository.UpdateUser(ctx, user)
}

func (s *userService) ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	token, err := s.jwtService.GenerateMailToken(map[string]any{"user_id": user.ID.String()}, time.Minute*15)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", utils.GetConfig("APP_URL"), token)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Reset your password by clicking <a href=%q>this link</a>. The link expires in 15 minutes.</p>",
		user.FirstName, link,
	)
	return mailing.SendMail(user.Email, "Reset your password", body)
}

func (s *userService) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	claims, err := s.jwtService.ValidateMailToken(req.Token)
	if err != nil {
		return err
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return domain.ErrTokenInvalid
	}

	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.Password = string(hashed)
	return s.userRepository.UpdateUser(ctx, user)
}

func (s *userService) Me(ctx context.Context, userID string) (domain.UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return domain.UserResponse{}, err
	}
	return toUserResponse(user, false), nil
}

func (s *userService) UpdateAvatar(ctx context.Context, userID string, req domain.UpdateAvatarRequest) (domain.UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return domain.UserResponse{}, err
	}

	url, err := s.s3.UploadBase64Image(ctx, fmt.Sprintf("avatars/%s", user.ID), req.Avatar)
	if err != nil {
		return domain.UserResponse{}, domain.ErrInvalidImagePayload
	}

	user.AvatarURL = url
	if err := s.userRepository.UpdateUser(ctx, user); err != nil {
		return domain.UserResponse{}, err
	}
	return toUserResponse(user, false), nil
}

func (s *userService) GetProfile(ctx context.Context, targetID, viewerID string) (domain.UserResponse, error) {
	user, err := s.getUser(ctx, targetID)
	if err != nil {
		return domain.UserResponse{}, err
	}

	subscribed := false
	if viewerID != "" && viewerID != targetID {
		subscribed, err = s.userRepository.IsFollowing(ctx, viewerID, targetID)
		if err != nil {
			return domain.UserResponse{}, err
		}
	}
	return toUserResponse(user, subscribed), nil
}

func (s *userService) Subscribe(ctx context.Context, userID, targetID string) (domain.SubscriptionProfileResponse, error) {
	if userID == targetID {
		return domain.SubscriptionProfileResponse{}, domain.ErrSelfSubscribe
	}

	target, err := s.getUser(ctx, targetID)
	if err != nil {
		return domain.SubscriptionProfileResponse{}, err
	}

	following, err := s.userRepository.IsFollowing(ctx, userID, targetID)
	if err != nil {
		return domain.SubscriptionProfileResponse{}, err
	}
	if following {
		return domain.SubscriptionProfileResponse{}, domain.ErrAlreadySubscribed
	}

	if err := s.userRepository.CreateFollow(ctx, userID, targetID); err != nil {
		return domain.SubscriptionProfileResponse{}, err
	}

	return s.buildSubscriptionProfile(ctx, target, 0)
}

func (s *userService) Unsubscribe(ctx context.Context, userID, targetID string) error {
	if _, err := s.getUser(ctx, targetID); err != nil {
		return err
	}

	rows, err := s.userRepository.DeleteFollow(ctx, userID, targetID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotSubscribed
	}
	return nil
}

func (s *userService) GetSubscriptions(ctx context.Context, userID string, page, limit, recipesLimit int) (domain.SubscriptionListResponse, error) {
	if page < 1 || limit < 1 {
		return domain.SubscriptionListResponse{}, domain.ErrInvalidPagination
	}
	if recipesLimit < 0 {
		return domain.SubscriptionListResponse{}, domain.ErrInvalidRecipeLimit
	}

	users, count, err := s.userRepository.GetFollowing(ctx, userID, page, limit)
	if err != nil {
		return domain.SubscriptionListResponse{}, err
	}

	results := make([]domain.SubscriptionProfileResponse, 0, len(users))
	for _, followed := range users {
		profile, err := s.buildSubscriptionProfile(ctx, followed, recipesLimit)
		if err != nil {
			return domain.SubscriptionListResponse{}, err
		}
		results = append(results, profile)
	}

	return domain.SubscriptionListResponse{
		PageMeta: domain.NewPageMeta(count, page, limit),
		Results:  results,
	}, nil
}

func (s *userService) buildSubscriptionProfile(ctx context.Context, followed *entities.User, recipesLimit int) (domain.SubscriptionProfileResponse, error) {
	recipes, err := s.recipeRepository.GetRecipesByAuthor(ctx, followed.ID.String(), recipesLimit)
	if err != nil {
		return domain.SubscriptionProfileResponse{}, err
	}
	count, err := s.recipeRepository.CountRecipesByAuthor(ctx, followed.ID.String())
	if err != nil {
		return domain.SubscriptionProfileResponse{}, err
	}

	shorts := make([]domain.ShortRecipeResponse, 0, len(recipes))
	for _, item := range recipes {
		shorts = append(shorts, domain.ShortRecipeResponse{
			ID:          item.ID.String(),
			Name:        item.Name,
			Image:       item.ImageURL,
			CookingTime: item.CookingTime,
		})
	}

	return domain.SubscriptionProfileResponse{
		UserResponse: toUserResponse(followed, true),
		Recipes:      shorts,
		RecipesCount: count,
	}, nil
}

func (s *userService) getUser(ctx context.Context, userID string) (*entities.User, error) {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func toUserResponse(user *entities.User, subscribed bool) domain.UserResponse {
	return domain.UserResponse{
		ID:           user.ID.String(),
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: subscribed,
		Avatar:       user.AvatarURL,
	}
}
