package repository

import (
	"fmt"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalesFilter narrows the order line aggregates. The range is [From, To).
type SalesFilter struct {
	From       time.Time
	To         time.Time
	Supplier   string
	CategoryID *uint
}

type SalesRow struct {
	Label    string
	Orders   int64
	Quantity int64
	Revenue  decimal.Decimal
}

type LabelCount struct {
	Label string
	Count int64
}

// PeriodCount is one calendar bucket. Period is the bucket start as
// YYYY-MM-DD in the report time zone.
type PeriodCount struct {
	Period string
	Count  int64
}

type VisitPeriodRow struct {
	Period   string
	Views    int64
	Sessions int64
}

type ConsultPeriodRow struct {
	Period     string
	Total      int64
	Done       int64
	AvgSeconds *float64
}

// PeriodQuery is a [From, To) range bucketed by GroupBy ("day", "week" or
// "month") in Location.
type PeriodQuery struct {
	From     time.Time
	To       time.Time
	GroupBy  string
	Location *time.Location
}

// ReportRepository runs the read-only aggregates behind the staff dashboard.
// Every dataset is grouped in SQL.
type ReportRepository interface {
	UsersByPeriod(q PeriodQuery) ([]PeriodCount, error)
	VisitsByPeriod(q PeriodQuery) ([]VisitPeriodRow, error)
	SalesBySupplier(filter SalesFilter) ([]SalesRow, error)
	SalesByCategory(filter SalesFilter) ([]SalesRow, error)
	ConsultByStatus(from, to time.Time) ([]LabelCount, error)
	ConsultByStaff(from, to time.Time) ([]LabelCount, error)
	ConsultByPeriod(q PeriodQuery) ([]ConsultPeriodRow, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// periodExpr truncates column to the start of its day, Monday based week or
// month in q.Location and formats it as YYYY-MM-DD.
func (r *reportRepository) periodExpr(column string, q PeriodQuery) (string, []interface{}) {
	loc := q.Location
	if loc == nil {
		loc = time.Local
	}

	if r.db.Dialector.Name() == "postgres" {
		unit := "day"
		switch q.GroupBy {
		case "week", "month":
			unit = q.GroupBy
		}
		if zone := loc.String(); zone != "" && zone != "Local" {
			return fmt.Sprintf("to_char(date_trunc('%s', %s AT TIME ZONE ?), 'YYYY-MM-DD')", unit, column),
				[]interface{}{zone}
		}
		// "Local" is not a postgres zone name; shift by the current offset
		return fmt.Sprintf("to_char(date_trunc('%s', (%s AT TIME ZONE 'UTC') + make_interval(secs => ?)), 'YYYY-MM-DD')", unit, column),
			[]interface{}{zoneOffset(q.From, loc)}
	}

	// sqlite: datetime text is normalised to UTC, then shifted to local time
	shift := fmt.Sprintf("%+d seconds", zoneOffset(q.From, loc))
	switch q.GroupBy {
	case "week":
		return fmt.Sprintf("date(%s, ?, 'weekday 0', '-6 days')", column), []interface{}{shift}
	case "month":
		return fmt.Sprintf("strftime('%%Y-%%m-01', %s, ?)", column), []interface{}{shift}
	}
	return fmt.Sprintf("date(%s, ?)", column), []interface{}{shift}
}

func zoneOffset(at time.Time, loc *time.Location) int {
	_, offset := at.In(loc).Zone()
	return offset
}

// handleSecondsExpr is handled_at - created_at in seconds, NULL while unhandled.
func (r *reportRepository) handleSecondsExpr() string {
	if r.db.Dialector.Name() == "postgres" {
		return "EXTRACT(EPOCH FROM (handled_at - created_at))::float8"
	}
	return "CAST(strftime('%s', handled_at) AS INTEGER) - CAST(strftime('%s', created_at) AS INTEGER)"
}

func (r *reportRepository) UsersByPeriod(q PeriodQuery) ([]PeriodCount, error) {
	period, args := r.periodExpr("created_at", q)

	var rows []PeriodCount
	err := r.db.Model(&model.User{}).
		Select(period+" AS period, COUNT(*) AS count", args...).
		Where("created_at >= ? AND created_at < ?", q.From, q.To).
		Group("period").
		Order("period ASC").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to aggregate users by period", err, map[string]interface{}{
			"group_by": q.GroupBy,
		})
	}
	return rows, err
}

// VisitsByPeriod counts a session as a distinct ip and user agent pair.
func (r *reportRepository) VisitsByPeriod(q PeriodQuery) ([]VisitPeriodRow, error) {
	period, args := r.periodExpr("created_at", q)

	var rows []VisitPeriodRow
	err := r.db.Model(&model.PageView{}).
		Select(period+" AS period, COUNT(*) AS views, COUNT(DISTINCT ip || '|' || user_agent) AS sessions", args...).
		Where("created_at >= ? AND created_at < ?", q.From, q.To).
		Group("period").
		Order("period ASC").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to aggregate page views by period", err, map[string]interface{}{
			"group_by": q.GroupBy,
		})
	}
	return rows, err
}

// salesBase joins order lines to their order and product. Cancelled orders
// are left out.
func (r *reportRepository) salesBase(filter SalesFilter) *gorm.DB {
	query := r.db.Table("order_items").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("orders.created_at >= ? AND orders.created_at < ?", filter.From, filter.To).
		Where("orders.status <> ?", model.OrderStatusCancelled)
	if filter.Supplier != "" {
		query = query.Where("LOWER(products.supplier) = LOWER(?)", filter.Supplier)
	}
	if filter.CategoryID != nil {
		query = query.Where("products.category_id = ?", *filter.CategoryID)
	}
	return query
}

const salesAggregates = "COUNT(DISTINCT order_items.order_id) AS orders, " +
	"COALESCE(SUM(order_items.quantity), 0) AS quantity, " +
	"COALESCE(SUM(order_items.price * order_items.quantity), 0) AS revenue"

func (r *reportRepository) SalesBySupplier(filter SalesFilter) ([]SalesRow, error) {
	var rows []SalesRow
	err := r.salesBase(filter).
		Select("COALESCE(products.supplier, '') AS label, " + salesAggregates).
		Group("products.supplier").
		Order("products.supplier ASC").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to aggregate sales by supplier", err)
	}
	return rows, err
}

func (r *reportRepository) SalesByCategory(filter SalesFilter) ([]SalesRow, error) {
	var rows []SalesRow
	err := r.salesBase(filter).
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Select("COALESCE(categories.name, '') AS label, " + salesAggregates).
		Group("categories.name").
		Order("categories.name ASC").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to aggregate sales by category", err)
	}
	return rows, err
}

func (r *reportRepository) ConsultByStatus(from, to time.Time) ([]LabelCount, error) {
	var rows []LabelCount
	err := r.db.Model(&model.ConsultationRequest{}).
		Select("status AS label, COUNT(*) AS count").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("status").
		Order("status ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepository) ConsultByStaff(from, to time.Time) ([]LabelCount, error) {
	var rows []LabelCount
	err := r.db.Table("consultation_requests").
		Joins("LEFT JOIN users ON users.id = consultation_requests.handled_by_id").
		Select("COALESCE(users.username, '') AS label, COUNT(*) AS count").
		Where("consultation_requests.created_at >= ? AND consultation_requests.created_at < ?", from, to).
		Group("users.username").
		Order("users.username ASC").
		Scan(&rows).Error
	return rows, err
}

// ConsultByPeriod averages the handling time over handled requests only.
func (r *reportRepository) ConsultByPeriod(q PeriodQuery) ([]ConsultPeriodRow, error) {
	period, args := r.periodExpr("created_at", q)
	args = append(args, model.ConsultationDone)

	var rows []ConsultPeriodRow
	err := r.db.Model(&model.ConsultationRequest{}).
		Select(period+" AS period, COUNT(*) AS total, "+
			"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS done, "+
			"AVG(CASE WHEN handled_at IS NOT NULL THEN "+r.handleSecondsExpr()+" END) AS avg_seconds", args...).
		Where("created_at >= ? AND created_at < ?", q.From, q.To).
		Group("period").
		Order("period ASC").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to aggregate consultations by period", err, map[string]interface{}{
			"group_by": q.GroupBy,
		})
	}
	return rows, err
}
