package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"feedback-backend/internal/apperr"
	"feedback-backend/internal/metrics"
	"feedback-backend/internal/models"
	"feedback-backend/internal/notify"
	"feedback-backend/internal/validation"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10

	notifyTimeout = 5 * time.Second
)

// FeedbackStore is the persistence the ingestion service needs.
type FeedbackStore interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	ListLive(ctx context.Context, skip, limit int64) ([]models.Feedback, error)
	Count(ctx context.Context, includeDeleted bool) (int64, error)
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// Page is one slice of live feedback plus paging metadata.
type Page struct {
	Data       []models.Feedback `json:"data"`
	Pagination Pagination        `json:"pagination"`
}

type FeedbackService struct {
	store    FeedbackStore
	notifier notify.Notifier
	log      zerolog.Logger
}

func NewFeedbackService(store FeedbackStore, notifier notify.Notifier, log zerolog.Logger) *FeedbackService {
	return &FeedbackService{
		store:    store,
		notifier: notifier,
		log:      log.With().Str("component", "feedback").Logger(),
	}
}

// Submit validates in, stores it as a new live record and returns its id.
func (s *FeedbackService) Submit(ctx context.Context, in validation.FeedbackInput) (string, error) {
	if errs := validation.ValidateFeedback(in); len(errs) > 0 {
		metrics.IncFeedback(metrics.ResultInvalid)
		return "", &apperr.ValidationError{Fields: errs}
	}

	feedback := toFeedback(in)
	if err := s.store.Create(ctx, feedback); err != nil {
		metrics.IncFeedback(metrics.ResultError)
		return "", apperr.Persistence("create feedback", err)
	}
	metrics.IncFeedback(metrics.ResultCreated)

	id := feedback.ID.Hex()
	s.log.Info().Str("feedback_id", id).Str("company", feedback.CompanyName).Msg("feedback created")
	s.publish(ctx, feedback)
	return id, nil
}

// publish tells the notifier about a new record. Notification failures are
// logged and never fail the submission.
func (s *FeedbackService) publish(ctx context.Context, feedback *models.Feedback) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err := s.notifier.Publish(ctx, formatNotification(feedback)); err != nil {
		s.log.Warn().Err(err).Str("feedback_id", feedback.ID.Hex()).Msg("feedback notification failed")
	}
}

// List returns live records newest first. page and pageSize must be positive.
func (s *FeedbackService) List(ctx context.Context, page, pageSize int) (*Page, error) {
	if errs := validation.ValidatePage(page, pageSize); len(errs) > 0 {
		return nil, &apperr.ValidationError{Fields: errs}
	}

	skip := int64(page-1) * int64(pageSize)
	feedbacks, err := s.store.ListLive(ctx, skip, int64(pageSize))
	if err != nil {
		return nil, apperr.Persistence("list feedback", err)
	}
	total, err := s.store.Count(ctx, false)
	if err != nil {
		return nil, apperr.Persistence("count feedback", err)
	}
	if feedbacks == nil {
		feedbacks = []models.Feedback{}
	}

	size := int64(pageSize)
	return &Page{
		Data: feedbacks,
		Pagination: Pagination{
			Page:       page,
			Limit:      pageSize,
			Total:      total,
			TotalPages: (total + size - 1) / size,
		},
	}, nil
}

// toFeedback converts an accepted input; ratings are whole numbers by now.
func toFeedback(in validation.FeedbackInput) *models.Feedback {
	f := &models.Feedback{
		Email:               in.Email,
		Date:                in.Date,
		ContactName:         in.ContactName,
		CompanyName:         in.CompanyName,
		Country:             in.Country,
		SalesOrderNumber:    in.SalesOrderNumber,
		ToolBuildQuality:    int(*in.ToolBuildQuality),
		Packaging:           int(*in.Packaging),
		OnTimeDelivery:      int(*in.OnTimeDelivery),
		AfterSalesSupport:   int(*in.AfterSalesSupport),
		ProductUsability:    int(*in.ProductUsability),
		RecommendationScore: int(*in.RecommendationScore),
	}
	if in.Suggestions != nil && *in.Suggestions != "" {
		s := *in.Suggestions
		f.Suggestions = &s
	}
	return f
}

func formatNotification(f *models.Feedback) notify.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s (%s)\n", f.CompanyName, f.Country)
	fmt.Fprintf(&b, "Contact: %s <%s>\n", f.ContactName, f.Email)
	fmt.Fprintf(&b, "Sales order: %s, date %s\n", f.SalesOrderNumber, f.Date)
	fmt.Fprintf(&b, "Tool build quality: %d\n", f.ToolBuildQuality)
	fmt.Fprintf(&b, "Packaging: %d\n", f.Packaging)
	fmt.Fprintf(&b, "On-time delivery: %d\n", f.OnTimeDelivery)
	fmt.Fprintf(&b, "After-sales support: %d\n", f.AfterSalesSupport)
	fmt.Fprintf(&b, "Product usability: %d\n", f.ProductUsability)
	fmt.Fprintf(&b, "Recommendation: %d (%s)\n", f.RecommendationScore, CategorizeNPS(f.RecommendationScore))
	if f.Suggestions != nil {
		fmt.Fprintf(&b, "Suggestions: %s\n", *f.Suggestions)
	}
	return notify.Message{
		Subject: fmt.Sprintf("New feedback from %s", f.CompanyName),
		Text:    b.String(),
	}
}
