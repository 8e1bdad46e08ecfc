package service

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/shopspring/decimal"
)

const (
	GroupByDay   = "day"
	GroupByWeek  = "week"
	GroupByMonth = "month"

	DefaultReportDays = 30

	unknownSupplier = "(unknown)"
	otherCategory   = "(other)"
	unassignedStaff = "(unassigned)"
)

var ErrInvalidReportRange = errors.New("invalid report date range")

var reportTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ReportParams are the filters shared by every dataset. The range is [From, To).
type ReportParams struct {
	From       time.Time
	To         time.Time
	GroupBy    string
	Supplier   string
	CategoryID *uint
}

// ReportQuery is the raw query string form of ReportParams.
type ReportQuery struct {
	DateFrom   string `form:"date_from"`
	DateTo     string `form:"date_to"`
	GroupBy    string `form:"group_by"`
	Supplier   string `form:"supplier"`
	CategoryID string `form:"category_id"`
}

type PeriodCount struct {
	Period string `json:"period"`
	Count  int64  `json:"count"`
}

type VisitPeriod struct {
	Period   string `json:"period"`
	Views    int64  `json:"views"`
	Sessions int64  `json:"sessions"`
}

type SupplierSales struct {
	Supplier string           `json:"supplier"`
	Orders   int64            `json:"orders"`
	Quantity int64            `json:"quantity"`
	Revenue  *decimal.Decimal `json:"revenue"`
}

type CategorySales struct {
	Category string           `json:"category"`
	Orders   int64            `json:"orders"`
	Quantity int64            `json:"quantity"`
	Revenue  *decimal.Decimal `json:"revenue"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type StaffCount struct {
	Staff string `json:"staff"`
	Count int64  `json:"count"`
}

type ConsultPeriod struct {
	Period     string   `json:"period"`
	Total      int64    `json:"total"`
	Done       int64    `json:"done"`
	AvgSeconds *float64 `json:"avg_seconds"`
}

type Report struct {
	UsersByPeriod    []PeriodCount   `json:"users_by_period"`
	VisitsByPeriod   []VisitPeriod   `json:"visits_by_period"`
	OrdersBySupplier []SupplierSales `json:"orders_by_supplier"`
	OrdersByCategory []CategorySales `json:"orders_by_category"`
	ConsultByStatus  []StatusCount   `json:"consult_by_status"`
	ConsultByStaff   []StaffCount    `json:"consult_by_staff"`
	ConsultByPeriod  []ConsultPeriod `json:"consult_by_period"`
	CanSeeRevenue    bool            `json:"can_see_revenue"`
}

type ReportService interface {
	ParseParams(q ReportQuery) (ReportParams, error)
	Build(params ReportParams, viewer *model.User) (*Report, error)
	Export(params ReportParams, viewer *model.User, kind, format string) (*ExportFile, error)
}

type reportService struct {
	reportRepo repository.ReportRepository
	loc        *time.Location
	now        func() time.Time
}

// NewReportService buckets periods in loc; nil means time.Local.
func NewReportService(reportRepo repository.ReportRepository, loc *time.Location) ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &reportService{reportRepo: reportRepo, loc: loc, now: time.Now}
}

// CanSeeRevenue reports whether viewer may see money columns: any staff
// account, admins included.
func CanSeeRevenue(viewer *model.User) bool {
	return viewer != nil && viewer.Role.IsStaff()
}

func (s *reportService) ParseParams(q ReportQuery) (ReportParams, error) {
	now := s.now().In(s.loc)
	params := ReportParams{
		To:       now,
		From:     now.AddDate(0, 0, -DefaultReportDays),
		GroupBy:  GroupByDay,
		Supplier: strings.TrimSpace(q.Supplier),
	}

	if raw := strings.TrimSpace(q.DateFrom); raw != "" {
		t, err := s.parseTime(raw)
		if err != nil {
			return params, err
		}
		params.From = t
	}
	if raw := strings.TrimSpace(q.DateTo); raw != "" {
		t, err := s.parseTime(raw)
		if err != nil {
			return params, err
		}
		params.To = t
	}
	if !params.From.Before(params.To) {
		return params, ErrInvalidReportRange
	}

	switch g := strings.ToLower(strings.TrimSpace(q.GroupBy)); g {
	case "", GroupByDay:
	case GroupByWeek, GroupByMonth:
		params.GroupBy = g
	default:
		params.GroupBy = GroupByDay
	}

	if raw := strings.TrimSpace(q.CategoryID); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err == nil && id > 0 {
			categoryID := uint(id)
			params.CategoryID = &categoryID
		}
	}
	return params, nil
}

func (s *reportService) parseTime(raw string) (time.Time, error) {
	for _, layout := range reportTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, s.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidReportRange
}

func (s *reportService) Build(params ReportParams, viewer *model.User) (*Report, error) {
	report := &Report{CanSeeRevenue: CanSeeRevenue(viewer)}

	periods := repository.PeriodQuery{
		From:     params.From,
		To:       params.To,
		GroupBy:  params.GroupBy,
		Location: s.loc,
	}

	users, err := s.reportRepo.UsersByPeriod(periods)
	if err != nil {
		return nil, err
	}
	report.UsersByPeriod = make([]PeriodCount, 0, len(users))
	for _, row := range users {
		report.UsersByPeriod = append(report.UsersByPeriod, PeriodCount{Period: row.Period, Count: row.Count})
	}

	visits, err := s.reportRepo.VisitsByPeriod(periods)
	if err != nil {
		return nil, err
	}
	report.VisitsByPeriod = make([]VisitPeriod, 0, len(visits))
	for _, row := range visits {
		report.VisitsByPeriod = append(report.VisitsByPeriod, VisitPeriod{Period: row.Period, Views: row.Views, Sessions: row.Sessions})
	}

	filter := repository.SalesFilter{
		From:       params.From,
		To:         params.To,
		Supplier:   params.Supplier,
		CategoryID: params.CategoryID,
	}
	bySupplier, err := s.reportRepo.SalesBySupplier(filter)
	if err != nil {
		return nil, err
	}
	report.OrdersBySupplier = make([]SupplierSales, 0, len(bySupplier))
	for _, row := range bySupplier {
		label := row.Label
		if label == "" {
			label = unknownSupplier
		}
		report.OrdersBySupplier = append(report.OrdersBySupplier, SupplierSales{
			Supplier: label,
			Orders:   row.Orders,
			Quantity: row.Quantity,
			Revenue:  revenueFor(row.Revenue, report.CanSeeRevenue),
		})
	}

	byCategory, err := s.reportRepo.SalesByCategory(filter)
	if err != nil {
		return nil, err
	}
	report.OrdersByCategory = make([]CategorySales, 0, len(byCategory))
	for _, row := range byCategory {
		label := row.Label
		if label == "" {
			label = otherCategory
		}
		report.OrdersByCategory = append(report.OrdersByCategory, CategorySales{
			Category: label,
			Orders:   row.Orders,
			Quantity: row.Quantity,
			Revenue:  revenueFor(row.Revenue, report.CanSeeRevenue),
		})
	}

	byStatus, err := s.reportRepo.ConsultByStatus(params.From, params.To)
	if err != nil {
		return nil, err
	}
	report.ConsultByStatus = make([]StatusCount, 0, len(byStatus))
	for _, row := range byStatus {
		report.ConsultByStatus = append(report.ConsultByStatus, StatusCount{Status: row.Label, Count: row.Count})
	}

	byStaff, err := s.reportRepo.ConsultByStaff(params.From, params.To)
	if err != nil {
		return nil, err
	}
	report.ConsultByStaff = make([]StaffCount, 0, len(byStaff))
	for _, row := range byStaff {
		label := row.Label
		if label == "" {
			label = unassignedStaff
		}
		report.ConsultByStaff = append(report.ConsultByStaff, StaffCount{Staff: label, Count: row.Count})
	}

	byPeriod, err := s.reportRepo.ConsultByPeriod(periods)
	if err != nil {
		return nil, err
	}
	report.ConsultByPeriod = make([]ConsultPeriod, 0, len(byPeriod))
	for _, row := range byPeriod {
		report.ConsultByPeriod = append(report.ConsultByPeriod, ConsultPeriod{
			Period:     row.Period,
			Total:      row.Total,
			Done:       row.Done,
			AvgSeconds: row.AvgSeconds,
		})
	}

	return report, nil
}

func revenueFor(revenue decimal.Decimal, visible bool) *decimal.Decimal {
	if !visible {
		return nil
	}
	r := revenue.Round(2)
	return &r
}
