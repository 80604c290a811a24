package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"feedback-backend/internal/models"
)

// memStore is an in-memory stand-in for the feedback repository.
type memStore struct {
	records []models.Feedback
	clock   time.Time
	err     error
}

func newMemStore() *memStore {
	return &memStore{clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memStore) Create(_ context.Context, f *models.Feedback) error {
	if m.err != nil {
		return m.err
	}
	m.clock = m.clock.Add(time.Second)
	f.ID = bson.NewObjectID()
	f.CreatedAt = m.clock
	m.records = append(m.records, *f)
	return nil
}

func (m *memStore) scoped(includeDeleted bool) []models.Feedback {
	var out []models.Feedback
	for _, f := range m.records {
		if includeDeleted || f.DeletedAt == nil {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memStore) ListLive(_ context.Context, skip, limit int64) ([]models.Feedback, error) {
	if m.err != nil {
		return nil, m.err
	}
	live := m.scoped(false)
	if skip >= int64(len(live)) {
		return nil, nil
	}
	end := skip + limit
	if end > int64(len(live)) {
		end = int64(len(live))
	}
	return live[skip:end], nil
}

func (m *memStore) Count(_ context.Context, includeDeleted bool) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.scoped(includeDeleted))), nil
}

func (m *memStore) Averages(_ context.Context, includeDeleted bool) (models.RatingAverages, error) {
	if m.err != nil {
		return models.RatingAverages{}, m.err
	}
	rows := m.scoped(includeDeleted)
	if len(rows) == 0 {
		return models.RatingAverages{}, nil
	}
	mean := func(get func(models.Feedback) int) *float64 {
		var sum int
		for _, r := range rows {
			sum += get(r)
		}
		v := float64(sum) / float64(len(rows))
		return &v
	}
	return models.RatingAverages{
		ToolBuildQuality:    mean(func(f models.Feedback) int { return f.ToolBuildQuality }),
		Packaging:           mean(func(f models.Feedback) int { return f.Packaging }),
		OnTimeDelivery:      mean(func(f models.Feedback) int { return f.OnTimeDelivery }),
		AfterSalesSupport:   mean(func(f models.Feedback) int { return f.AfterSalesSupport }),
		ProductUsability:    mean(func(f models.Feedback) int { return f.ProductUsability }),
		RecommendationScore: mean(func(f models.Feedback) int { return f.RecommendationScore }),
	}, nil
}

func (m *memStore) Recent(_ context.Context, n int64, includeDeleted bool) ([]models.FeedbackSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.FeedbackSummary
	for i, f := range m.scoped(includeDeleted) {
		if int64(i) >= n {
			break
		}
		out = append(out, models.FeedbackSummary{
			ID:                  f.ID,
			ContactName:         f.ContactName,
			CompanyName:         f.CompanyName,
			RecommendationScore: f.RecommendationScore,
			CreatedAt:           f.CreatedAt,
		})
	}
	return out, nil
}

func matchesEmail(email string, emails, domains []string) bool {
	email = strings.ToLower(email)
	for _, e := range emails {
		if strings.ToLower(e) == email {
			return true
		}
	}
	for _, d := range domains {
		if strings.HasSuffix(email, "@"+strings.ToLower(strings.TrimPrefix(d, "@"))) {
			return true
		}
	}
	return false
}

func (m *memStore) FindLiveByEmail(_ context.Context, emails, domains []string) ([]models.Feedback, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Feedback
	for _, f := range m.scoped(false) {
		if matchesEmail(f.Email, emails, domains) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memStore) SoftDeleteByEmail(_ context.Context, emails, domains []string, at time.Time) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for i := range m.records {
		f := &m.records[i]
		if f.DeletedAt == nil && matchesEmail(f.Email, emails, domains) {
			t := at
			f.DeletedAt = &t
			n++
		}
	}
	return n, nil
}
