package service

import (
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
)

type PageVisit struct {
	SessionKey string
	IP         string
	UserAgent  string
	Path       string
	UserID     *uint
}

type PageViewService interface {
	// Record stores at most one view per session per calendar day and
	// reports whether a row was written.
	Record(visit PageVisit) (bool, error)
}

type pageViewService struct {
	repo repository.PageViewRepository
	loc  *time.Location
	now  func() time.Time
}

func NewPageViewService(repo repository.PageViewRepository, loc *time.Location) PageViewService {
	if loc == nil {
		loc = time.Local
	}
	return &pageViewService{repo: repo, loc: loc, now: time.Now}
}

func (s *pageViewService) Record(visit PageVisit) (bool, error) {
	if visit.SessionKey == "" {
		return false, nil
	}
	now := s.now().In(s.loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)

	seen, err := s.repo.ExistsSince(visit.SessionKey, dayStart)
	if err != nil {
		return false, err
	}
	if seen {
		return false, nil
	}

	view := &model.PageView{
		SessionKey: visit.SessionKey,
		IP:         visit.IP,
		UserAgent:  truncateRunes(visit.UserAgent, model.PageViewUserAgentMaxLen),
		Path:       truncateRunes(visit.Path, model.PageViewPathMaxLen),
		UserID:     visit.UserID,
		CreatedAt:  now,
	}
	if err := s.repo.Create(view); err != nil {
		return false, err
	}
	return true, nil
}

// truncateRunes cuts s to at most limit characters without splitting a
// multi-byte rune. Column limits count characters, not bytes.
func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
