package service

import (
	"errors"
	"strings"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/ikkim/storefront-backend/pkg/util"
	"gorm.io/gorm"
)

const NewsPerPage = 12

var (
	ErrNewsNotFound  = errors.New("news not found")
	ErrTitleRequired = errors.New("title is required")
)

type NewsInput struct {
	Title       *string
	Body        *string
	Image       *string
	PublishedAt *time.Time
}

type NewsPage struct {
	News []model.News `json:"news"`
	util.Page
}

type NewsService interface {
	List(page string) (*NewsPage, error)
	Get(slug string) (*model.News, error)
	GetByID(id uint) (*model.News, error)
	Create(author *model.User, input NewsInput) (*model.News, error)
	Update(id uint, input NewsInput) (*model.News, error)
	Delete(id uint) error
}

type newsService struct {
	newsRepo repository.NewsRepository
}

func NewNewsService(newsRepo repository.NewsRepository) NewsService {
	return &newsService{newsRepo: newsRepo}
}

func (s *newsService) List(page string) (*NewsPage, error) {
	_, total, err := s.newsRepo.List(0, 1)
	if err != nil {
		return nil, err
	}
	p := util.Paginate(page, NewsPerPage, total)
	items, _, err := s.newsRepo.List(p.Offset(), p.PerPage)
	if err != nil {
		return nil, err
	}
	return &NewsPage{News: items, Page: p}, nil
}

func (s *newsService) Get(slug string) (*model.News, error) {
	news, err := s.newsRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNewsNotFound
		}
		return nil, err
	}
	return news, nil
}

func (s *newsService) GetByID(id uint) (*model.News, error) {
	news, err := s.newsRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNewsNotFound
		}
		return nil, err
	}
	return news, nil
}

func (s *newsService) Create(author *model.User, input NewsInput) (*model.News, error) {
	if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
		return nil, ErrTitleRequired
	}
	title := strings.TrimSpace(*input.Title)

	slug, err := s.slugFor(title, 0)
	if err != nil {
		return nil, err
	}

	news := &model.News{
		Title:       title,
		Slug:        slug,
		PublishedAt: time.Now(),
	}
	if author != nil {
		authorID := author.ID
		news.AuthorID = &authorID
	}
	if input.Body != nil {
		news.Body = *input.Body
	}
	if input.Image != nil {
		news.Image = strings.TrimSpace(*input.Image)
	}
	if input.PublishedAt != nil && !input.PublishedAt.IsZero() {
		news.PublishedAt = *input.PublishedAt
	}

	if err := s.newsRepo.Create(news); err != nil {
		return nil, err
	}
	logger.Info("News created", map[string]interface{}{
		"news_id": news.ID,
		"slug":    news.Slug,
	})
	return s.GetByID(news.ID)
}

// Update edits a news item. A new title regenerates the slug.
func (s *newsService) Update(id uint, input NewsInput) (*model.News, error) {
	news, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		if title != news.Title {
			slug, err := s.slugFor(title, id)
			if err != nil {
				return nil, err
			}
			fields["title"] = title
			fields["slug"] = slug
		}
	}
	if input.Body != nil {
		fields["body"] = *input.Body
	}
	if input.Image != nil {
		fields["image"] = strings.TrimSpace(*input.Image)
	}
	if input.PublishedAt != nil && !input.PublishedAt.IsZero() {
		fields["published_at"] = *input.PublishedAt
	}
	if len(fields) > 0 {
		if err := s.newsRepo.Update(id, fields); err != nil {
			return nil, err
		}
	}
	return s.GetByID(id)
}

func (s *newsService) Delete(id uint) error {
	if err := s.newsRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNewsNotFound
		}
		return err
	}
	return nil
}

func (s *newsService) slugFor(title string, excludeID uint) (string, error) {
	return util.UniqueSlug(util.Slugify(title), func(candidate string) (bool, error) {
		return s.newsRepo.SlugExists(candidate, excludeID)
	})
}
