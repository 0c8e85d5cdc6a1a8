package recipe

import (
	"context"
	"fmt"
	"testing"

	"foodgram-backend/domain"
	"foodgram-backend/entities"
	"foodgram-backend/pkg/catalog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeStorage struct{}

func (fakeStorage) UploadBase64Image(_ context.Context, key, _ string) (string, error) {
	return "https://cdn.test/" + key, nil
}

func (fakeStorage) DefaultImageURL(name string) string {
	return "https://cdn.test/defaults/" + name
}

type fakeFollows struct{}

func (fakeFollows) IsFollowing(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Follow{},
		&entities.Tag{},
		&entities.Ingredient{},
		&entities.Recipe{},
		&entities.RecipeIngredient{},
		&entities.Favorite{},
		&entities.ShoppingCart{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	return db
}

type testFixture struct {
	db      *gorm.DB
	service RecipeService

	author *entities.User
	viewer *entities.User

	breakfast *entities.Tag
	dinner    *entities.Tag

	salt  *entities.Ingredient
	flour *entities.Ingredient
	sugar *entities.Ingredient
}

func newFixture(t *testing.T) *testFixture {
	db := setupTestDB(t)

	f := &testFixture{
		db:        db,
		author:    &entities.User{ID: uuid.New(), Email: "author@example.com", Username: "author", FirstName: "Anna", LastName: "Author"},
		viewer:    &entities.User{ID: uuid.New(), Email: "viewer@example.com", Username: "viewer", FirstName: "Vic", LastName: "Viewer"},
		breakfast: &entities.Tag{ID: uuid.New(), Name: "Breakfast", Slug: "breakfast"},
		dinner:    &entities.Tag{ID: uuid.New(), Name: "Dinner", Slug: "dinner"},
		salt:      &entities.Ingredient{ID: uuid.New(), Name: "salt", MeasurementUnit: "g"},
		flour:     &entities.Ingredient{ID: uuid.New(), Name: "flour", MeasurementUnit: "g"},
		sugar:     &entities.Ingredient{ID: uuid.New(), Name: "sugar", MeasurementUnit: "kg"},
	}
	db.Create(f.author)
	db.Create(f.viewer)
	db.Create(f.breakfast)
	db.Create(f.dinner)
	db.Create(f.salt)
	db.Create(f.flour)
	db.Create(f.sugar)

	recipeRepository := NewRecipeRepository(db)
	catalogRepository := catalog.NewCatalogRepository(db)
	f.service = NewRecipeService(recipeRepository, catalogRepository, fakeFollows{}, fakeStorage{})
	return f
}

func (f *testFixture) saveRequest() domain.SaveRecipeRequest {
	return domain.SaveRecipeRequest{
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		CookingTime: 20,
		Tags:        []string{f.breakfast.ID.String()},
		Ingredients: []domain.RecipeIngredientRequest{
			{ID: f.flour.ID.String(), Amount: 200},
			{ID: f.salt.ID.String(), Amount: 3},
		},
	}
}

func TestCreateRecipe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		res, err := f.service.CreateRecipe(ctx, f.saveRequest(), f.author.ID.String())
		assert.NoError(t, err)
		assert.Equal(t, "Pancakes", res.Name)
		assert.Equal(t, 20, res.CookingTime)
		assert.Equal(t, f.author.ID.String(), res.Author.ID)
		assert.False(t, res.IsFavorited)

		assert.Len(t, res.Tags, 1)
		assert.Equal(t, "breakfast", res.Tags[0].Slug)

		amounts := map[string]int{}
		for _, line := range res.Ingredients {
			amounts[line.Name] = line.Amount
		}
		assert.Equal(t, map[string]int{"flour": 200, "salt": 3}, amounts)
	})

	t.Run("EmptyIngredients", func(t *testing.T) {
		req := f.saveRequest()
		req.Ingredients = nil
		_, err := f.service.CreateRecipe(ctx, req, f.author.ID.String())
		assert.ErrorIs(t, err, domain.ErrEmptyIngredients)
	})

	t.Run("DuplicateIngredient", func(t *testing.T) {
		req := f.saveRequest()
		req.Ingredients = append(req.Ingredients, domain.RecipeIngredientRequest{ID: f.flour.ID.String(), Amount: 50})
		_, err := f.service.CreateRecipe(ctx, req, f.author.ID.String())
		assert.ErrorIs(t, err, domain.ErrDuplicateIngredient)
	})

	t.Run("AmountOutOfRange", func(t *testing.T) {
		for _, amount := range []int{0, 32001} {
			req := f.saveRequest()
			req.Ingredients[0].Amount = amount
			_, err := f.service.CreateRecipe(ctx, req, f.author.ID.String())
			assert.ErrorIs(t, err, domain.ErrAmountOutOfRange)
		}
	})

	t.Run("CookingTimeOutOfRange", func(t *testing.T) {
		req := f.saveRequest()
		req.CookingTime = 0
		_, err := f.service.CreateRecipe(ctx, req, f.author.ID.String())
		assert.ErrorIs(t, err, domain.ErrCookingTimeOutOfRange)
	})

	t.Run("EmptyTags", func(t *testing.T) {
		req := f.saveRequest()
		req.Tags = nil
		_, err := f.service.CreateRecipe(ctx, req, f.author.ID.String())
		assert.ErrorIs(t, err, domain.ErrEmptyTags)
	})

	t.Run("DuplicateTag", func(t *testing.T) {
		req := f.saveRequest()
		req.Tags = []string{f.breakfast.ID.String(), f.breakfast.ID.String()}
		_, err := f.service.CreateRecipe(ctx, req, f.author.ID.String())
		assert.ErrorIs(t, err, domain.ErrDuplicateTag)
	})

	t.Run("UnknownTag", func(t *testing.T) {
		req := f.saveRequest()
		req.Tags = []string{uuid.NewString()}
		_, err := f.service.CreateRecipe(ctx, req, f.author.ID.String())
		assert.ErrorIs(t, err, domain.ErrTagNotFound)
	})

	t.Run("UnknownIngredient", func(t *testing.T) {
		req := f.saveRequest()
		req.Ingredients = []domain.RecipeIngredientRequest{{ID: uuid.NewString(), Amount: 5}}
		_, err := f.service.CreateRecipe(ctx, req, f.author.ID.String())
		assert.ErrorIs(t, err, domain.ErrIngredientNotFound)
	})

	t.Run("NothingPersistedOnFailure", func(t *testing.T) {
		var before, after int64
		f.db.Model(&entities.RecipeIngredient{}).Count(&before)

		req := f.saveRequest()
		req.Ingredients = []domain.RecipeIngredientRequest{
			{ID: f.flour.ID.String(), Amount: 10},
			{ID: uuid.NewString(), Amount: 10},
		}
		_, err := f.service.CreateRecipe(ctx, req, f.author.ID.String())
		assert.Error(t, err)

		f.db.Model(&entities.RecipeIngredient{}).Count(&after)
		assert.Equal(t, before, after)
	})
}

func TestUpdateRecipe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateRecipe(ctx, f.saveRequest(), f.author.ID.String())
	assert.NoError(t, err)

	t.Run("ReplacesIngredientLines", func(t *testing.T) {
		req := f.saveRequest()
		req.Name = "Sweet pancakes"
		req.Tags = []string{f.dinner.ID.String()}
		req.Ingredients = []domain.RecipeIngredientRequest{{ID: f.sugar.ID.String(), Amount: 1}}

		res, err := f.service.UpdateRecipe(ctx, created.ID, req, f.author.ID.String())
		assert.NoError(t, err)
		assert.Equal(t, "Sweet pancakes", res.Name)
		assert.Len(t, res.Ingredients, 1)
		assert.Equal(t, "sugar", res.Ingredients[0].Name)
		assert.Len(t, res.Tags, 1)
		assert.Equal(t, "dinner", res.Tags[0].Slug)

		var lines int64
		f.db.Model(&entities.RecipeIngredient{}).Where("recipe_id = ?", created.ID).Count(&lines)
		assert.EqualValues(t, 1, lines)
	})

	t.Run("NotOwner", func(t *testing.T) {
		_, err := f.service.UpdateRecipe(ctx, created.ID, f.saveRequest(), f.viewer.ID.String())
		assert.ErrorIs(t, err, domain.ErrUnauthorizedRecipeAccess)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := f.service.UpdateRecipe(ctx, uuid.NewString(), f.saveRequest(), f.author.ID.String())
		assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
	})
}

func TestDeleteRecipe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateRecipe(ctx, f.saveRequest(), f.author.ID.String())
	assert.NoError(t, err)

	t.Run("NotOwner", func(t *testing.T) {
		err := f.service.DeleteRecipe(ctx, created.ID, f.viewer.ID.String())
		assert.ErrorIs(t, err, domain.ErrUnauthorizedRecipeAccess)
	})

	t.Run("Success", func(t *testing.T) {
		err := f.service.DeleteRecipe(ctx, created.ID, f.author.ID.String())
		assert.NoError(t, err)

		_, err = f.service.GetRecipeDetail(ctx, created.ID, "")
		assert.ErrorIs(t, err, domain.ErrRecipeNotFound)

		var lines int64
		f.db.Model(&entities.RecipeIngredient{}).Where("recipe_id = ?", created.ID).Count(&lines)
		assert.EqualValues(t, 0, lines)
	})
}

func TestGetRecipes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	breakfastReq := f.saveRequest()
	breakfast, err := f.service.CreateRecipe(ctx, breakfastReq, f.author.ID.String())
	assert.NoError(t, err)

	dinnerReq := f.saveRequest()
	dinnerReq.Name = "Soup"
	dinnerReq.Tags = []string{f.dinner.ID.String()}
	_, err = f.service.CreateRecipe(ctx, dinnerReq, f.viewer.ID.String())
	assert.NoError(t, err)

	t.Run("All", func(t *testing.T) {
		res, err := f.service.GetRecipes(ctx, domain.RecipeFilter{Page: 1, Limit: 10}, "")
		assert.NoError(t, err)
		assert.EqualValues(t, 2, res.Count)
		assert.Len(t, res.Results, 2)
	})

	t.Run("ByAuthor", func(t *testing.T) {
		res, err := f.service.GetRecipes(ctx, domain.RecipeFilter{Author: f.author.ID.String(), Page: 1, Limit: 10}, "")
		assert.NoError(t, err)
		assert.EqualValues(t, 1, res.Count)
		assert.Equal(t, "Pancakes", res.Results[0].Name)
	})

	t.Run("ByTagSlug", func(t *testing.T) {
		res, err := f.service.GetRecipes(ctx, domain.RecipeFilter{Tags: []string{"dinner"}, Page: 1, Limit: 10}, "")
		assert.NoError(t, err)
		assert.EqualValues(t, 1, res.Count)
		assert.Equal(t, "Soup", res.Results[0].Name)
	})

	t.Run("ByFavorited", func(t *testing.T) {
		_, err := f.service.FavoriteRecipe(ctx, breakfast.ID, f.viewer.ID.String())
		assert.NoError(t, err)

		res, err := f.service.GetRecipes(ctx, domain.RecipeFilter{IsFavorited: true, Page: 1, Limit: 10}, f.viewer.ID.String())
		assert.NoError(t, err)
		assert.EqualValues(t, 1, res.Count)
		assert.Equal(t, "Pancakes", res.Results[0].Name)
		assert.True(t, res.Results[0].IsFavorited)
	})

	t.Run("FavoritedFilterIgnoredForAnonymous", func(t *testing.T) {
		res, err := f.service.GetRecipes(ctx, domain.RecipeFilter{IsFavorited: true, Page: 1, Limit: 10}, "")
		assert.NoError(t, err)
		assert.EqualValues(t, 2, res.Count)
	})

	t.Run("Pagination", func(t *testing.T) {
		res, err := f.service.GetRecipes(ctx, domain.RecipeFilter{Page: 1, Limit: 1}, "")
		assert.NoError(t, err)
		assert.EqualValues(t, 2, res.Count)
		assert.Len(t, res.Results, 1)
		if assert.NotNil(t, res.Next) {
			assert.Equal(t, 2, *res.Next)
		}
		assert.Nil(t, res.Previous)
	})

	t.Run("InvalidPage", func(t *testing.T) {
		_, err := f.service.GetRecipes(ctx, domain.RecipeFilter{Page: 0, Limit: 10}, "")
		assert.ErrorIs(t, err, domain.ErrInvalidPagination)

		_, err = f.service.GetRecipes(ctx, domain.RecipeFilter{Page: 1, Limit: 0}, "")
		assert.ErrorIs(t, err, domain.ErrInvalidPagination)
	})
}

func TestFavorites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateRecipe(ctx, f.saveRequest(), f.author.ID.String())
	assert.NoError(t, err)
	viewerID := f.viewer.ID.String()

	t.Run("Favorite", func(t *testing.T) {
		short, err := f.service.FavoriteRecipe(ctx, created.ID, viewerID)
		assert.NoError(t, err)
		assert.Equal(t, created.ID, short.ID)
		assert.Equal(t, "Pancakes", short.Name)

		status, err := f.service.GetFavoriteStatus(ctx, created.ID, viewerID)
		assert.NoError(t, err)
		assert.True(t, status.IsFavorited)
	})

	t.Run("FavoriteTwice", func(t *testing.T) {
		_, err := f.service.FavoriteRecipe(ctx, created.ID, viewerID)
		assert.ErrorIs(t, err, domain.ErrAlreadyFavorited)
	})

	t.Run("Unfavorite", func(t *testing.T) {
		err := f.service.UnfavoriteRecipe(ctx, created.ID, viewerID)
		assert.NoError(t, err)

		status, err := f.service.GetFavoriteStatus(ctx, created.ID, viewerID)
		assert.NoError(t, err)
		assert.False(t, status.IsFavorited)
	})

	t.Run("UnfavoriteWithoutFavorite", func(t *testing.T) {
		err := f.service.UnfavoriteRecipe(ctx, created.ID, viewerID)
		assert.ErrorIs(t, err, domain.ErrNotFavorited)
	})

	t.Run("UnknownRecipe", func(t *testing.T) {
		_, err := f.service.FavoriteRecipe(ctx, uuid.NewString(), viewerID)
		assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
	})
}

func TestShoppingCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.CreateRecipe(ctx, f.saveRequest(), f.author.ID.String())
	assert.NoError(t, err)
	viewerID := f.viewer.ID.String()

	t.Run("Add", func(t *testing.T) {
		short, err := f.service.AddRecipeToShoppingCart(ctx, created.ID, viewerID)
		assert.NoError(t, err)
		assert.Equal(t, created.ID, short.ID)

		status, err := f.service.GetShoppingCartStatus(ctx, created.ID, viewerID)
		assert.NoError(t, err)
		assert.True(t, status.IsInShoppingCart)
	})

	t.Run("AddTwice", func(t *testing.T) {
		_, err := f.service.AddRecipeToShoppingCart(ctx, created.ID, viewerID)
		assert.ErrorIs(t, err, domain.ErrAlreadyInShoppingCart)
	})

	t.Run("Remove", func(t *testing.T) {
		err := f.service.RemoveRecipeFromShoppingCart(ctx, created.ID, viewerID)
		assert.NoError(t, err)

		err = f.service.RemoveRecipeFromShoppingCart(ctx, created.ID, viewerID)
		assert.ErrorIs(t, err, domain.ErrNotInShoppingCart)
	})
}

func TestBuildShoppingList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	viewerID := f.viewer.ID.String()

	t.Run("EmptyCart", func(t *testing.T) {
		report, err := f.service.BuildShoppingList(ctx, viewerID)
		assert.NoError(t, err)
		assert.Equal(t, "Shopping list:\n\n", report)
	})

	t.Run("SumsSharedIngredients", func(t *testing.T) {
		first := f.saveRequest()
		first.Ingredients = []domain.RecipeIngredientRequest{
			{ID: f.salt.ID.String(), Amount: 3},
			{ID: f.flour.ID.String(), Amount: 200},
		}
		firstRes, err := f.service.CreateRecipe(ctx, first, f.author.ID.String())
		assert.NoError(t, err)

		second := f.saveRequest()
		second.Name = "Bread"
		second.Ingredients = []domain.RecipeIngredientRequest{
			{ID: f.salt.ID.String(), Amount: 5},
			{ID: f.sugar.ID.String(), Amount: 1},
		}
		secondRes, err := f.service.CreateRecipe(ctx, second, f.author.ID.String())
		assert.NoError(t, err)

		_, err = f.service.AddRecipeToShoppingCart(ctx, firstRes.ID, viewerID)
		assert.NoError(t, err)
		_, err = f.service.AddRecipeToShoppingCart(ctx, secondRes.ID, viewerID)
		assert.NoError(t, err)

		report, err := f.service.BuildShoppingList(ctx, viewerID)
		assert.NoError(t, err)

		expected := fmt.Sprintf("Shopping list:\n\n%s\n%s\n%s",
			"flour: 200 g",
			"salt: 8 g",
			"sugar: 1 kg",
		)
		assert.Equal(t, expected, report)
	})
}
