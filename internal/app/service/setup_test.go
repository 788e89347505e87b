package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/ikkim/catalog-backend/internal/app/model"
	"github.com/ikkim/catalog-backend/internal/app/repository"
	"github.com/ikkim/catalog-backend/internal/db"
	"github.com/ikkim/catalog-backend/internal/events"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	recorder *events.Recorder
	uploader *fakeUploader

	categories CategoryService
	filters    FilterService
	products   ProductService
}

func setupServices(t *testing.T) *testEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	categoryRepo := repository.NewCategoryRepository(testDB)
	filterRepo := repository.NewFilterRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)

	env := &testEnv{
		db:       testDB,
		recorder: events.NewRecorder(),
		uploader: &fakeUploader{},
	}
	env.categories = NewCategoryService(categoryRepo, nil, env.recorder)
	env.filters = NewFilterService(filterRepo, categoryRepo, productRepo, env.recorder)
	env.products = NewProductService(productRepo, env.uploader, env.recorder)
	return env
}

type fakeUploader struct {
	uploaded []string
	err      error
}

func (u *fakeUploader) Upload(_ context.Context, filename, _ string, body io.Reader) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	u.uploaded = append(u.uploaded, filename)
	return "https://cdn.example.com/images/" + filename, nil
}

func fileImage(name string) ImageSource {
	return ImageSource{Filename: name, ContentType: "image/png", Body: bytes.NewReader([]byte("png"))}
}

// leaf creates a Main > Sub > SubSub chain and returns it.
func (env *testEnv) leaf(t *testing.T, name string) (*model.MainCategory, *model.SubCategory, *model.SubSubCategory) {
	t.Helper()
	ctx := context.Background()

	main, err := env.categories.CreateMainCategory(ctx, name)
	require.NoError(t, err)
	sub, err := env.categories.CreateSubCategory(ctx, name+" sub", main.ID)
	require.NoError(t, err)
	leaf, err := env.categories.CreateSubSubCategory(ctx, name+" leaf", sub.ID)
	require.NoError(t, err)
	return main, sub, leaf
}

func (env *testEnv) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.db.Model(m).Count(&n).Error)
	return n
}

var errBroker = errors.New("broker unavailable")

func uintPtr(v uint) *uint {
	return &v
}

func strPtr(v string) *string {
	return &v
}
