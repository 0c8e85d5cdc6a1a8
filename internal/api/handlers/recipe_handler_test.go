package handlers

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"foodgram-backend/entities"
	"foodgram-backend/internal/utils"
	"foodgram-backend/pkg/catalog"
	"foodgram-backend/pkg/recipe"

	"github.com/gofiber/fiber/v2"
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

func setupApp(t *testing.T, userID string) (*fiber.App, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	err = db.AutoMigrate(
		&entities.User{},
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

	utils.InitValidator()
	recipeRepository := recipe.NewRecipeRepository(db)
	catalogRepository := catalog.NewCatalogRepository(db)
	recipeService := recipe.NewRecipeService(recipeRepository, catalogRepository, fakeFollows{}, fakeStorage{})
	handler := NewRecipeHandler(recipeService, utils.Validate)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	})
	app.Get("/api/v1/recipes/download_shopping_cart", handler.DownloadShoppingCart)

	return app, db
}

func TestDownloadShoppingCart(t *testing.T) {
	userID := uuid.New()
	app, db := setupApp(t, userID.String())

	salt := &entities.Ingredient{ID: uuid.New(), Name: "salt", MeasurementUnit: "g"}
	db.Create(salt)

	item := &entities.Recipe{ID: uuid.New(), UserID: userID, Name: "Soup", Text: "Boil.", CookingTime: 30}
	db.Create(item)
	db.Create(&entities.RecipeIngredient{ID: uuid.New(), RecipeID: item.ID, IngredientID: salt.ID, Amount: 4})
	db.Create(&entities.ShoppingCart{ID: uuid.New(), UserID: userID, RecipeID: item.ID})

	req := httptest.NewRequest("GET", "/api/v1/recipes/download_shopping_cart", nil)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, `attachment; filename="shopping_list.txt"`, resp.Header.Get(fiber.HeaderContentDisposition))

	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.Equal(t, "Shopping list:\n\nsalt: 4 g", string(body))
}

func TestDownloadShoppingCartEmpty(t *testing.T) {
	app, _ := setupApp(t, uuid.NewString())

	req := httptest.NewRequest("GET", "/api/v1/recipes/download_shopping_cart", nil)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.Equal(t, "Shopping list:\n\n", string(body))
}
