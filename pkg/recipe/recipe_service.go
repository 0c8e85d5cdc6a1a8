package recipe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"foodgram-backend/domain"
	"foodgram-backend/entities"
	"foodgram-backend/internal/utils"
	"foodgram-backend/internal/utils/storage"
	"foodgram-backend/pkg/catalog"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	// FollowChecker reports whether a viewer follows an author. Implemented
	// by the user repository; declared here to keep the dependency one-way.
	FollowChecker interface {
		IsFollowing(ctx context.Context, userID, targetID string) (bool, error)
	}

	RecipeService interface {
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID string) (domain.RecipeListResponse, error)
		GetRecipeDetail(ctx context.Context, recipeID string, viewerID string) (domain.RecipeResponse, error)
		CreateRecipe(ctx context.Context, req domain.SaveRecipeRequest, userID string) (domain.RecipeResponse, error)
		UpdateRecipe(ctx context.Context, recipeID string, req domain.SaveRecipeRequest, userID string) (domain.RecipeResponse, error)
		DeleteRecipe(ctx context.Context, recipeID string, userID string) error
		GetShortLink(ctx context.Context, recipeID string) (domain.ShortLinkResponse, error)

		GetFavoriteStatus(ctx context.Context, recipeID, userID string) (domain.FavoriteStatusResponse, error)
		FavoriteRecipe(ctx context.Context, recipeID, userID string) (domain.ShortRecipeResponse, error)
		UnfavoriteRecipe(ctx context.Context, recipeID, userID string) error
		GetShoppingCartStatus(ctx context.Context, recipeID, userID string) (domain.CartStatusResponse, error)
		AddRecipeToShoppingCart(ctx context.Context, recipeID, userID string) (domain.ShortRecipeResponse, error)
		RemoveRecipeFromShoppingCart(ctx context.Context, recipeID, userID string) error
		BuildShoppingList(ctx context.Context, userID string) (string, error)
	}

	recipeService struct {
		recipeRepository  RecipeRepository
		catalogRepository catalog.CatalogRepository
		follows           FollowChecker
		s3                storage.AwsS3
	}
)

func NewRecipeService(recipeRepository RecipeRepository, catalogRepository catalog.CatalogRepository, follows FollowChecker, s3 storage.AwsS3) RecipeService {
	return &recipeService{
		recipeRepository:  recipeRepository,
		catalogRepository: catalogRepository,
		follows:           follows,
		s3:                s3,
	}
}

func (s *recipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID string) (domain.RecipeListResponse, error) {
	if filter.Page < 1 || filter.Limit < 1 {
		return domain.RecipeListResponse{}, domain.ErrInvalidPagination
	}

	recipes, count, err := s.recipeRepository.GetRecipes(ctx, filter, viewerID)
	if err != nil {
		return domain.RecipeListResponse{}, err
	}

	results := make([]domain.RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		res, err := s.toRecipeResponse(ctx, recipe, viewerID)
		if err != nil {
			return domain.RecipeListResponse{}, err
		}
		results = append(results, res)
	}

	return domain.RecipeListResponse{
		PageMeta: domain.NewPageMeta(count, filter.Page, filter.Limit),
		Results:  results,
	}, nil
}

func (s *recipeService) GetRecipeDetail(ctx context.Context, recipeID string, viewerID string) (domain.RecipeResponse, error) {
	recipe, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	return s.toRecipeResponse(ctx, recipe, viewerID)
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.SaveRecipeRequest, userID string) (domain.RecipeResponse, error) {
	if err := validateSaveRecipeRequest(req); err != nil {
		return domain.RecipeResponse{}, err
	}

	tags, err := s.resolveTags(ctx, req.Tags)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	if _, err := s.resolveIngredients(ctx, req.Ingredients); err != nil {
		return domain.RecipeResponse{}, err
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.RecipeResponse{}, domain.ErrParseUUID
	}

	recipeID := uuid.New()
	imageURL, err := s.resolveImageURL(ctx, recipeID, req.Image, "")
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe := &entities.Recipe{
		ID:          recipeID,
		UserID:      userUUID,
		Name:        req.Name,
		Text:        req.Text,
		ImageURL:    imageURL,
		CookingTime: req.CookingTime,
	}
	lines, err := buildIngredientLines(recipeID, req.Ingredients)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	if err := s.recipeRepository.CreateRecipe(ctx, recipe, tags, lines); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RecipeResponse{}, domain.ErrDuplicateIngredient
		}
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeDetail(ctx, recipeID.String(), userID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, recipeID string, req domain.SaveRecipeRequest, userID string) (domain.RecipeResponse, error) {
	recipe, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	if recipe.UserID.String() != userID {
		return domain.RecipeResponse{}, domain.ErrUnauthorizedRecipeAccess
	}

	if err := validateSaveRecipeRequest(req); err != nil {
		return domain.RecipeResponse{}, err
	}

	tags, err := s.resolveTags(ctx, req.Tags)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	if _, err := s.resolveIngredients(ctx, req.Ingredients); err != nil {
		return domain.RecipeResponse{}, err
	}

	imageURL, err := s.resolveImageURL(ctx, recipe.ID, req.Image, recipe.ImageURL)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe.Name = req.Name
	recipe.Text = req.Text
	recipe.ImageURL = imageURL
	recipe.CookingTime = req.CookingTime
	recipe.Tags = nil
	recipe.RecipeIngredients = nil

	lines, err := buildIngredientLines(recipe.ID, req.Ingredients)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	if err := s.recipeRepository.UpdateRecipe(ctx, recipe, tags, lines); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RecipeResponse{}, domain.ErrDuplicateIngredient
		}
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeDetail(ctx, recipeID, userID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, recipeID string, userID string) error {
	recipe, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return err
	}
	if recipe.UserID.String() != userID {
		return domain.ErrUnauthorizedRecipeAccess
	}
	return s.recipeRepository.DeleteRecipe(ctx, recipe)
}

func (s *recipeService) GetShortLink(ctx context.Context, recipeID string) (domain.ShortLinkResponse, error) {
	recipe, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return domain.ShortLinkResponse{}, err
	}
	return domain.ShortLinkResponse{
		ShortLink: fmt.Sprintf("%s/recipes/%s/", utils.GetConfig("APP_URL"), recipe.ID),
	}, nil
}

func (s *recipeService) GetFavoriteStatus(ctx context.Context, recipeID, userID string) (domain.FavoriteStatusResponse, error) {
	if _, err := s.getRecipe(ctx, recipeID); err != nil {
		return domain.FavoriteStatusResponse{}, err
	}
	favorited, err := s.recipeRepository.IsFavorited(ctx, userID, recipeID)
	if err != nil {
		return domain.FavoriteStatusResponse{}, err
	}
	return domain.FavoriteStatusResponse{IsFavorited: favorited}, nil
}

func (s *recipeService) FavoriteRecipe(ctx context.Context, recipeID, userID string) (domain.ShortRecipeResponse, error) {
	recipe, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return domain.ShortRecipeResponse{}, err
	}

	favorited, err := s.recipeRepository.IsFavorited(ctx, userID, recipeID)
	if err != nil {
		return domain.ShortRecipeResponse{}, err
	}
	if favorited {
		return domain.ShortRecipeResponse{}, domain.ErrAlreadyFavorited
	}

	if err := s.recipeRepository.AddFavorite(ctx, userID, recipeID); err != nil {
		return domain.ShortRecipeResponse{}, err
	}
	return toShortRecipeResponse(recipe), nil
}

func (s *recipeService) UnfavoriteRecipe(ctx context.Context, recipeID, userID string) error {
	if _, err := s.getRecipe(ctx, recipeID); err != nil {
		return err
	}
	rows, err := s.recipeRepository.RemoveFavorite(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFavorited
	}
	return nil
}

func (s *recipeService) GetShoppingCartStatus(ctx context.Context, recipeID, userID string) (domain.CartStatusResponse, error) {
	if _, err := s.getRecipe(ctx, recipeID); err != nil {
		return domain.CartStatusResponse{}, err
	}
	inCart, err := s.recipeRepository.IsInShoppingCart(ctx, userID, recipeID)
	if err != nil {
		return domain.CartStatusResponse{}, err
	}
	return domain.CartStatusResponse{IsInShoppingCart: inCart}, nil
}

func (s *recipeService) AddRecipeToShoppingCart(ctx context.Context, recipeID, userID string) (domain.ShortRecipeResponse, error) {
	recipe, err := s.getRecipe(ctx, recipeID)
	if err != nil {
		return domain.ShortRecipeResponse{}, err
	}

	inCart, err := s.recipeRepository.IsInShoppingCart(ctx, userID, recipeID)
	if err != nil {
		return domain.ShortRecipeResponse{}, err
	}
	if inCart {
		return domain.ShortRecipeResponse{}, domain.ErrAlreadyInShoppingCart
	}

	if err := s.recipeRepository.AddToShoppingCart(ctx, userID, recipeID); err != nil {
		return domain.ShortRecipeResponse{}, err
	}
	return toShortRecipeResponse(recipe), nil
}

func (s *recipeService) RemoveRecipeFromShoppingCart(ctx context.Context, recipeID, userID string) error {
	if _, err := s.getRecipe(ctx, recipeID); err != nil {
		return err
	}
	rows, err := s.recipeRepository.RemoveFromShoppingCart(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotInShoppingCart
	}
	return nil
}

// BuildShoppingList renders the aggregated cart report: one line per
// (ingredient name, unit) group with amounts summed across recipes. An
// empty cart yields the header alone.
func (s *recipeService) BuildShoppingList(ctx context.Context, userID string) (string, error) {
	items, err := s.recipeRepository.GetShoppingListItems(ctx, userID)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s: %d %s", item.Name, item.TotalAmount, item.MeasurementUnit))
	}

	return "Shopping list:\n\n" + strings.Join(lines, "\n"), nil
}

func (s *recipeService) getRecipe(ctx context.Context, recipeID string) (*entities.Recipe, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, err
	}
	return recipe, nil
}

func validateSaveRecipeRequest(req domain.SaveRecipeRequest) error {
	if req.CookingTime < domain.MinCookingTime || req.CookingTime > domain.MaxCookingTime {
		return domain.ErrCookingTimeOutOfRange
	}

	if len(req.Tags) == 0 {
		return domain.ErrEmptyTags
	}
	seenTags := make(map[string]struct{}, len(req.Tags))
	for _, id := range req.Tags {
		if _, ok := seenTags[id]; ok {
			return domain.ErrDuplicateTag
		}
		seenTags[id] = struct{}{}
	}

	if len(req.Ingredients) == 0 {
		return domain.ErrEmptyIngredients
	}
	seenIngredients := make(map[string]struct{}, len(req.Ingredients))
	for _, line := range req.Ingredients {
		if _, ok := seenIngredients[line.ID]; ok {
			return domain.ErrDuplicateIngredient
		}
		seenIngredients[line.ID] = struct{}{}
		if line.Amount < domain.MinAmount || line.Amount > domain.MaxAmount {
			return domain.ErrAmountOutOfRange
		}
	}

	return nil
}

func (s *recipeService) resolveTags(ctx context.Context, ids []string) ([]*entities.Tag, error) {
	tags, err := s.catalogRepository.GetTagsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, domain.ErrTagNotFound
	}
	return tags, nil
}

func (s *recipeService) resolveIngredients(ctx context.Context, lines []domain.RecipeIngredientRequest) ([]*entities.Ingredient, error) {
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ID)
	}

	ingredients, err := s.catalogRepository.GetIngredientsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(ingredients) != len(ids) {
		return nil, domain.ErrIngredientNotFound
	}
	return ingredients, nil
}

func (s *recipeService) resolveImageURL(ctx context.Context, recipeID uuid.UUID, payload, current string) (string, error) {
	if payload == "" {
		if current != "" {
			return current, nil
		}
		return s.s3.DefaultImageURL("recipe-placeholder.png"), nil
	}
	url, err := s.s3.UploadBase64Image(ctx, fmt.Sprintf("recipes/%s", recipeID), payload)
	if err != nil {
		return "", domain.ErrInvalidImagePayload
	}
	return url, nil
}

func buildIngredientLines(recipeID uuid.UUID, lines []domain.RecipeIngredientRequest) ([]*entities.RecipeIngredient, error) {
	result := make([]*entities.RecipeIngredient, 0, len(lines))
	for _, line := range lines {
		ingredientUUID, err := uuid.Parse(line.ID)
		if err != nil {
			return nil, domain.ErrParseUUID
		}
		result = append(result, &entities.RecipeIngredient{
			ID:           uuid.New(),
			RecipeID:     recipeID,
			IngredientID: ingredientUUID,
			Amount:       line.Amount,
		})
	}
	return result, nil
}

func (s *recipeService) toRecipeResponse(ctx context.Context, recipe *entities.Recipe, viewerID string) (domain.RecipeResponse, error) {
	tags := make([]domain.TagResponse, 0, len(recipe.Tags))
	for _, tag := range recipe.Tags {
		tags = append(tags, domain.TagResponse{
			ID:   tag.ID.String(),
			Name: tag.Name,
			Slug: tag.Slug,
		})
	}

	ingredients := make([]domain.RecipeIngredientResponse, 0, len(recipe.RecipeIngredients))
	for _, line := range recipe.RecipeIngredients {
		res := domain.RecipeIngredientResponse{
			ID:     line.IngredientID.String(),
			Amount: line.Amount,
		}
		if line.Ingredient != nil {
			res.Name = line.Ingredient.Name
			res.MeasurementUnit = line.Ingredient.MeasurementUnit
		}
		ingredients = append(ingredients, res)
	}

	var author domain.UserResponse
	if recipe.User != nil {
		author = domain.UserResponse{
			ID:        recipe.User.ID.String(),
			Email:     recipe.User.Email,
			Username:  recipe.User.Username,
			FirstName: recipe.User.FirstName,
			LastName:  recipe.User.LastName,
			Avatar:    recipe.User.AvatarURL,
		}
		if viewerID != "" && viewerID != author.ID {
			subscribed, err := s.follows.IsFollowing(ctx, viewerID, author.ID)
			if err != nil {
				return domain.RecipeResponse{}, err
			}
			author.IsSubscribed = subscribed
		}
	}

	var isFavorited, isInCart bool
	if viewerID != "" {
		var err error
		isFavorited, err = s.recipeRepository.IsFavorited(ctx, viewerID, recipe.ID.String())
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		isInCart, err = s.recipeRepository.IsInShoppingCart(ctx, viewerID, recipe.ID.String())
		if err != nil {
			return domain.RecipeResponse{}, err
		}
	}

	return domain.RecipeResponse{
		ID:               recipe.ID.String(),
		Tags:             tags,
		Author:           author,
		Ingredients:      ingredients,
		IsFavorited:      isFavorited,
		IsInShoppingCart: isInCart,
		Name:             recipe.Name,
		Image:            recipe.ImageURL,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
		CreatedAt:        recipe.CreatedAt,
	}, nil
}

func toShortRecipeResponse(recipe *entities.Recipe) domain.ShortRecipeResponse {
	return domain.ShortRecipeResponse{
		ID:          recipe.ID.String(),
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}
}
