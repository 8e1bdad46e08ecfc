package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/service"
)

type NewsController struct {
	newsService service.NewsService
	users       UserLoader
}

func NewNewsController(newsService service.NewsService, users UserLoader) *NewsController {
	return &NewsController{
		newsService: newsService,
		users:       users,
	}
}

type NewsRequest struct {
	Title       *string    `json:"title" binding:"omitempty,max=255"`
	Body        *string    `json:"body"`
	Image       *string    `json:"image" binding:"omitempty,max=500"`
	PublishedAt *time.Time `json:"published_at"`
}

func (r NewsRequest) input() service.NewsInput {
	return service.NewsInput{
		Title:       r.Title,
		Body:        r.Body,
		Image:       r.Image,
		PublishedAt: r.PublishedAt,
	}
}

// List
// GET /api/v1/news?page=
func (ctrl *NewsController) List(c *gin.Context) {
	result, err := ctrl.newsService.List(c.Query("page"))
	if err != nil {
		respondError(c, err, "list news")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Get
// GET /api/v1/news/:slug
func (ctrl *NewsController) Get(c *gin.Context) {
	news, err := ctrl.newsService.Get(c.Param("slug"))
	if err != nil {
		respondError(c, err, "get news")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"news": news,
	})
}

// StaffGet
// GET /api/v1/staff/news/:id
func (ctrl *NewsController) StaffGet(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	news, err := ctrl.newsService.GetByID(id)
	if err != nil {
		respondError(c, err, "get news")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"news": news,
	})
}

// Create publishes an article authored by the current user
// POST /api/v1/staff/news
func (ctrl *NewsController) Create(c *gin.Context) {
	author, ok := currentStaff(c, ctrl.users)
	if !ok {
		return
	}
	var req NewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	news, err := ctrl.newsService.Create(author, req.input())
	if err != nil {
		respondError(c, err, "create news")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"news": news,
	})
}

// Update
// PUT /api/v1/staff/news/:id
func (ctrl *NewsController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req NewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	news, err := ctrl.newsService.Update(id, req.input())
	if err != nil {
		respondError(c, err, "update news")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"news": news,
	})
}

// Delete
// DELETE /api/v1/staff/news/:id
func (ctrl *NewsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.newsService.Delete(id); err != nil {
		respondError(c, err, "delete news")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Article deleted",
	})
}
