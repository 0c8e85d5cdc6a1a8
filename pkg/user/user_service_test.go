package user

import (
	"context"
	"fmt"
	"testing"

	"foodgram-backend/domain"
	"foodgram-backend/entities"
	"foodgram-backend/pkg/jwt"
	"foodgram-backend/pkg/recipe"

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

func newService(t *testing.T) (UserService, *gorm.DB) {
	db := setupTestDB(t)
	userRepository := NewUserRepository(db)
	recipeRepository := recipe.NewRecipeRepository(db)
	service := NewUserService(userRepository, recipeRepository, jwt.NewJWTService(), fakeStorage{})
	return service, db
}

func seedAuthor(t *testing.T, db *gorm.DB, username string, recipes int) *entities.User {
	author := &entities.User{
		ID:        uuid.New(),
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Test",
		LastName:  "Author",
	}
	if err := db.Create(author).Error; err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}

	for i := 0; i < recipes; i++ {
		item := &entities.Recipe{
			ID:          uuid.New(),
			UserID:      author.ID,
			Name:        fmt.Sprintf("%s recipe %d", username, i),
			Text:        "Cook it.",
			CookingTime: 10 + i,
		}
		if err := db.Create(item).Error; err != nil {
			t.Fatalf("Failed to seed recipe: %v", err)
		}
	}
	return author
}

func TestRegister(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		res, err := service.Register(ctx, domain.RegisterRequest{
			Email:     "anna@example.com",
			FirstName: "Anna",
			LastName:  "Smith",
			Password:  "supersecret",
		})
		assert.NoError(t, err)
		assert.NotEmpty(t, res.ID)
		assert.Equal(t, "anna", res.Username)
	})

	t.Run("ExplicitUsername", func(t *testing.T) {
		res, err := service.Register(ctx, domain.RegisterRequest{
			Email:     "bob@example.com",
			Username:  "bobcooks",
			FirstName: "Bob",
			LastName:  "Jones",
			Password:  "supersecret",
		})
		assert.NoError(t, err)
		assert.Equal(t, "bobcooks", res.Username)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		_, err := service.Register(ctx, domain.RegisterRequest{
			Email:     "anna@example.com",
			FirstName: "Anna",
			LastName:  "Smith",
			Password:  "supersecret",
		})
		assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	})
}

func TestLogin(t *testing.T) {
	service, _ := newService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, domain.RegisterRequest{
		Email:     "anna@example.com",
		FirstName: "Anna",
		LastName:  "Smith",
		Password:  "supersecret",
	})
	assert.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		res, err := service.Login(ctx, domain.LoginRequest{Email: "anna@example.com", Password: "supersecret"})
		assert.NoError(t, err)
		assert.NotEmpty(t, res.Token)
		assert.Equal(t, domain.RoleUser, res.Role)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, err := service.Login(ctx, domain.LoginRequest{Email: "anna@example.com", Password: "nope"})
		assert.ErrorIs(t, err, domain.ErrCredentialsInvalid)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		_, err := service.Login(ctx, domain.LoginRequest{Email: "ghost@example.com", Password: "supersecret"})
		assert.ErrorIs(t, err, domain.ErrCredentialsInvalid)
	})
}

func TestSubscribe(t *testing.T) {
	service, db := newService(t)
	ctx := context.Background()

	follower := seedAuthor(t, db, "follower", 0)
	author := seedAuthor(t, db, "chef", 2)

	t.Run("Self", func(t *testing.T) {
		_, err := service.Subscribe(ctx, follower.ID.String(), follower.ID.String())
		assert.ErrorIs(t, err, domain.ErrSelfSubscribe)
	})

	t.Run("UnknownTarget", func(t *testing.T) {
		_, err := service.Subscribe(ctx, follower.ID.String(), uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("Success", func(t *testing.T) {
		profile, err := service.Subscribe(ctx, follower.ID.String(), author.ID.String())
		assert.NoError(t, err)
		assert.Equal(t, "chef", profile.Username)
		assert.True(t, profile.IsSubscribed)
		assert.EqualValues(t, 2, profile.RecipesCount)
	})

	t.Run("Twice", func(t *testing.T) {
		_, err := service.Subscribe(ctx, follower.ID.String(), author.ID.String())
		assert.ErrorIs(t, err, domain.ErrAlreadySubscribed)
	})

	t.Run("ReflectedInProfile", func(t *testing.T) {
		profile, err := service.GetProfile(ctx, author.ID.String(), follower.ID.String())
		assert.NoError(t, err)
		assert.True(t, profile.IsSubscribed)
	})

	t.Run("Unsubscribe", func(t *testing.T) {
		err := service.Unsubscribe(ctx, follower.ID.String(), author.ID.String())
		assert.NoError(t, err)

		err = service.Unsubscribe(ctx, follower.ID.String(), author.ID.String())
		assert.ErrorIs(t, err, domain.ErrNotSubscribed)
	})
}

func TestGetSubscriptions(t *testing.T) {
	service, db := newService(t)
	ctx := context.Background()

	follower := seedAuthor(t, db, "follower", 0)
	alice := seedAuthor(t, db, "alice", 3)
	bob := seedAuthor(t, db, "bob", 1)

	for _, author := range []*entities.User{alice, bob} {
		_, err := service.Subscribe(ctx, follower.ID.String(), author.ID.String())
		assert.NoError(t, err)
	}

	t.Run("OrderedByUsername", func(t *testing.T) {
		res, err := service.GetSubscriptions(ctx, follower.ID.String(), 1, 10, 0)
		assert.NoError(t, err)
		assert.EqualValues(t, 2, res.Count)
		assert.Len(t, res.Results, 2)
		assert.Equal(t, "alice", res.Results[0].Username)
		assert.Equal(t, "bob", res.Results[1].Username)
		assert.EqualValues(t, 3, res.Results[0].RecipesCount)
		assert.Len(t, res.Results[0].Recipes, 3)
	})

	t.Run("RecipesLimit", func(t *testing.T) {
		res, err := service.GetSubscriptions(ctx, follower.ID.String(), 1, 10, 2)
		assert.NoError(t, err)
		assert.Len(t, res.Results[0].Recipes, 2)
		assert.EqualValues(t, 3, res.Results[0].RecipesCount)
	})

	t.Run("Pagination", func(t *testing.T) {
		res, err := service.GetSubscriptions(ctx, follower.ID.String(), 2, 1, 0)
		assert.NoError(t, err)
		assert.EqualValues(t, 2, res.Count)
		assert.Len(t, res.Results, 1)
		assert.Equal(t, "bob", res.Results[0].Username)
		if assert.NotNil(t, res.Previous) {
			assert.Equal(t, 1, *res.Previous)
		}
		assert.Nil(t, res.Next)
	})

	t.Run("InvalidPagination", func(t *testing.T) {
		_, err := service.GetSubscriptions(ctx, follower.ID.String(), 0, 10, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidPagination)
	})

	t.Run("InvalidRecipesLimit", func(t *testing.T) {
		_, err := service.GetSubscriptions(ctx, follower.ID.String(), 1, 10, -1)
		assert.ErrorIs(t, err, domain.ErrInvalidRecipeLimit)
	})
}

func TestUpdateAvatar(t *testing.T) {
	service, db := newService(t)
	ctx := context.Background()

	author := seedAuthor(t, db, "avatar", 0)

	res, err := service.UpdateAvatar(ctx, author.ID.String(), domain.UpdateAvatarRequest{
		Avatar: "data:image/png;base64,aGVsbG8=",
	})
	assert.NoError(t, err)
	assert.Equal(t, "https://cdn.test/avatars/"+author.ID.String(), res.Avatar)
}
