package repository

import (
	"testing"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func reportTime(d, h int) time.Time {
	return time.Date(2026, 3, d, h, 0, 0, 0, time.UTC)
}

func setupReportTest(t *testing.T) (*gorm.DB, ReportRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB, NewReportRepository(testDB)
}

func marchQuery(groupBy string, loc *time.Location) PeriodQuery {
	return PeriodQuery{
		From:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		GroupBy:  groupBy,
		Location: loc,
	}
}

func TestReportRepository_VisitsByPeriod(t *testing.T) {
	testDB, repo := setupReportTest(t)

	// 2026-03-04 is a Wednesday, 2026-03-08 a Sunday
	views := []model.PageView{
		{SessionKey: "a", IP: "10.0.0.1", UserAgent: "ua", Path: "/", CreatedAt: reportTime(2, 9)},
		{SessionKey: "b", IP: "10.0.0.1", UserAgent: "ua", Path: "/", CreatedAt: reportTime(2, 10)},
		{SessionKey: "c", IP: "10.0.0.2", UserAgent: "ua", Path: "/", CreatedAt: reportTime(2, 11)},
		{SessionKey: "d", IP: "10.0.0.1", UserAgent: "ua", Path: "/", CreatedAt: reportTime(4, 8)},
		{SessionKey: "e", IP: "10.0.0.3", UserAgent: "ua", Path: "/", CreatedAt: reportTime(8, 23)},
		{SessionKey: "f", IP: "10.0.0.9", UserAgent: "ua", Path: "/", CreatedAt: time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC)},
	}
	require.NoError(t, testDB.Create(&views).Error)

	tests := []struct {
		name string
		q    PeriodQuery
		want []VisitPeriodRow
	}{
		{
			name: "Day",
			q:    marchQuery("day", time.UTC),
			want: []VisitPeriodRow{
				{Period: "2026-03-02", Views: 3, Sessions: 2},
				{Period: "2026-03-04", Views: 1, Sessions: 1},
				{Period: "2026-03-08", Views: 1, Sessions: 1},
			},
		},
		{
			name: "Week starts on Monday",
			q:    marchQuery("week", time.UTC),
			want: []VisitPeriodRow{{Period: "2026-03-02", Views: 5, Sessions: 3}},
		},
		{
			name: "Month",
			q:    marchQuery("month", time.UTC),
			want: []VisitPeriodRow{{Period: "2026-03-01", Views: 5, Sessions: 3}},
		},
		{
			name: "Week in a zone east of UTC",
			q:    marchQuery("week", time.FixedZone("ICT", 7*3600)),
			want: []VisitPeriodRow{
				{Period: "2026-03-02", Views: 4, Sessions: 2},
				{Period: "2026-03-09", Views: 1, Sessions: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := repo.VisitsByPeriod(tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows)
		})
	}
}

func TestReportRepository_UsersByPeriod(t *testing.T) {
	testDB, repo := setupReportTest(t)

	for i, joined := range []time.Time{reportTime(2, 9), reportTime(4, 9), reportTime(9, 9)} {
		user := newTestUser([]string{"ann", "ben", "cid"}[i])
		user.CreatedAt = joined
		require.NoError(t, testDB.Create(user).Error)
	}

	rows, err := repo.UsersByPeriod(marchQuery("week", time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []PeriodCount{{Period: "2026-03-02", Count: 2}, {Period: "2026-03-09", Count: 1}}, rows)
}

func TestReportRepository_ConsultByPeriod(t *testing.T) {
	testDB, repo := setupReportTest(t)

	customer := newTestUser("customer")
	require.NoError(t, testDB.Create(customer).Error)
	category := seedCategory(t, testDB, "Hosting", "hosting")
	product := &model.Product{CategoryID: category.ID, Name: "VPS", Slug: "vps", IsActive: true}
	require.NoError(t, testDB.Create(product).Error)

	handled := reportTime(2, 11)
	requests := []model.ConsultationRequest{
		{UserID: customer.ID, ProductID: product.ID, Status: model.ConsultationDone, HandledAt: &handled, CreatedAt: reportTime(2, 9)},
		{UserID: customer.ID, ProductID: product.ID, Status: model.ConsultationNew, CreatedAt: reportTime(2, 10)},
		{UserID: customer.ID, ProductID: product.ID, Status: model.ConsultationNew, CreatedAt: reportTime(3, 10)},
	}
	require.NoError(t, testDB.Create(&requests).Error)

	rows, err := repo.ConsultByPeriod(marchQuery("day", time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "2026-03-02", rows[0].Period)
	assert.Equal(t, int64(2), rows[0].Total)
	assert.Equal(t, int64(1), rows[0].Done)
	require.NotNil(t, rows[0].AvgSeconds)
	assert.InDelta(t, 7200.0, *rows[0].AvgSeconds, 0.001)

	assert.Equal(t, "2026-03-03", rows[1].Period)
	assert.Equal(t, int64(1), rows[1].Total)
	assert.Equal(t, int64(0), rows[1].Done)
	assert.Nil(t, rows[1].AvgSeconds)
}
