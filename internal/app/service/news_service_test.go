package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupNewsServiceTest(t *testing.T) (NewsService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	return NewNewsService(repository.NewNewsRepository(testDB)), testDB
}

func TestNewsService_CreateAndGet(t *testing.T) {
	newsService, testDB := setupNewsServiceTest(t)
	author := createTestUser(t, testDB, "editor", model.RoleStaff)

	news, err := newsService.Create(author, NewsInput{
		Title: strPtr(" Summer Sale "),
		Body:  strPtr("Everything is 20% off."),
		Image: strPtr(" news/sale.png "),
	})
	require.NoError(t, err)
	assert.Equal(t, "Summer Sale", news.Title)
	assert.Equal(t, "summer-sale", news.Slug)
	assert.Equal(t, "news/sale.png", news.Image)
	require.NotNil(t, news.Author)
	assert.Equal(t, "editor", news.Author.Username)

	again, err := newsService.Create(nil, NewsInput{Title: strPtr("Summer sale")})
	require.NoError(t, err)
	assert.Equal(t, "summer-sale-1", again.Slug)
	assert.Nil(t, again.AuthorID)

	_, err = newsService.Create(author, NewsInput{Title: strPtr("  ")})
	assert.ErrorIs(t, err, ErrTitleRequired)

	found, err := newsService.Get("summer-sale")
	require.NoError(t, err)
	assert.Equal(t, news.ID, found.ID)

	_, err = newsService.Get("missing")
	assert.ErrorIs(t, err, ErrNewsNotFound)
}

func TestNewsService_UpdateDeleteAndList(t *testing.T) {
	newsService, _ := setupNewsServiceTest(t)

	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	var ids []uint
	for i := 0; i < NewsPerPage+2; i++ {
		published := base.Add(time.Duration(i) * time.Hour)
		news, err := newsService.Create(nil, NewsInput{
			Title:       strPtr(fmt.Sprintf("Post %d", i)),
			PublishedAt: &published,
		})
		require.NoError(t, err)
		ids = append(ids, news.ID)
	}

	page, err := newsService.List("")
	require.NoError(t, err)
	assert.Len(t, page.News, NewsPerPage)
	assert.Equal(t, "Post 13", page.News[0].Title)

	page, err = newsService.List("2")
	require.NoError(t, err)
	assert.Len(t, page.News, 2)

	updated, err := newsService.Update(ids[0], NewsInput{Title: strPtr("Renamed"), Body: strPtr("new body")})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Slug)
	assert.Equal(t, "new body", updated.Body)

	_, err = newsService.Update(ids[0], NewsInput{Title: strPtr("")})
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = newsService.Update(9999, NewsInput{})
	assert.ErrorIs(t, err, ErrNewsNotFound)

	require.NoError(t, newsService.Delete(ids[0]))
	assert.ErrorIs(t, newsService.Delete(ids[0]), ErrNewsNotFound)
	_, err = newsService.GetByID(ids[0])
	assert.ErrorIs(t, err, ErrNewsNotFound)
}
