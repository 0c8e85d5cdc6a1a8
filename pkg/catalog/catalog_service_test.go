package catalog

import (
	"context"
	"testing"

	"foodgram-backend/domain"
	"foodgram-backend/entities"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(&entities.Tag{}, &entities.Ingredient{})
	if err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	return db
}

func newService(t *testing.T) (CatalogService, *gorm.DB) {
	db := setupTestDB(t)
	return NewCatalogService(NewCatalogRepository(db)), db
}

func TestTags(t *testing.T) {
	service, db := newService(t)
	ctx := context.Background()

	breakfast := &entities.Tag{ID: uuid.New(), Name: "Breakfast", Slug: "breakfast"}
	dinner := &entities.Tag{ID: uuid.New(), Name: "Dinner", Slug: "dinner"}
	db.Create(breakfast)
	db.Create(dinner)

	t.Run("List", func(t *testing.T) {
		res, err := service.GetTags(ctx)
		assert.NoError(t, err)
		assert.Len(t, res, 2)
	})

	t.Run("Detail", func(t *testing.T) {
		res, err := service.GetTagByID(ctx, breakfast.ID.String())
		assert.NoError(t, err)
		assert.Equal(t, "Breakfast", res.Name)
		assert.Equal(t, "breakfast", res.Slug)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := service.GetTagByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrTagNotFound)
	})
}

func TestIngredients(t *testing.T) {
	service, db := newService(t)
	ctx := context.Background()

	salt := &entities.Ingredient{ID: uuid.New(), Name: "salt", MeasurementUnit: "g"}
	sugar := &entities.Ingredient{ID: uuid.New(), Name: "sugar", MeasurementUnit: "kg"}
	pepper := &entities.Ingredient{ID: uuid.New(), Name: "pepper", MeasurementUnit: "g"}
	db.Create(salt)
	db.Create(sugar)
	db.Create(pepper)

	t.Run("List", func(t *testing.T) {
		res, err := service.GetIngredients(ctx, "")
		assert.NoError(t, err)
		assert.Len(t, res, 3)
	})

	t.Run("PrefixFilter", func(t *testing.T) {
		res, err := service.GetIngredients(ctx, "s")
		assert.NoError(t, err)
		assert.Len(t, res, 2)
		assert.Equal(t, "salt", res[0].Name)
		assert.Equal(t, "sugar", res[1].Name)
	})

	t.Run("PrefixFilterCaseInsensitive", func(t *testing.T) {
		res, err := service.GetIngredients(ctx, "SA")
		assert.NoError(t, err)
		assert.Len(t, res, 1)
		assert.Equal(t, "salt", res[0].Name)
	})

	t.Run("NoMatch", func(t *testing.T) {
		res, err := service.GetIngredients(ctx, "z")
		assert.NoError(t, err)
		assert.Empty(t, res)
	})

	t.Run("Detail", func(t *testing.T) {
		res, err := service.GetIngredientByID(ctx, salt.ID.String())
		assert.NoError(t, err)
		assert.Equal(t, "salt", res.Name)
		assert.Equal(t, "g", res.MeasurementUnit)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := service.GetIngredientByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrIngredientNotFound)
	})
}
