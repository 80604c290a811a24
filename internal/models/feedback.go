package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Feedback is one customer satisfaction survey. A non-nil DeletedAt marks it
// soft-deleted: it stays in storage but is left out of listings.
type Feedback struct {
	ID               bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Email            string        `bson:"email" json:"email"`
	Date             string        `bson:"date" json:"date"`
	ContactName      string        `bson:"contact_name" json:"contactName"`
	CompanyName      string        `bson:"company_name" json:"companyName"`
	Country          string        `bson:"country" json:"country"`
	SalesOrderNumber string        `bson:"sales_order_number" json:"salesOrderNumber"`

	ToolBuildQuality    int `bson:"tool_build_quality" json:"toolBuildQuality"`
	Packaging           int `bson:"packaging" json:"packaging"`
	OnTimeDelivery      int `bson:"on_time_delivery" json:"onTimeDelivery"`
	AfterSalesSupport   int `bson:"after_sales_support" json:"afterSalesSupport"`
	ProductUsability    int `bson:"product_usability" json:"productUsability"`
	RecommendationScore int `bson:"recommendation_score" json:"recommendationScore"`

	Suggestions *string    `bson:"suggestions,omitempty" json:"suggestions"`
	CreatedAt   time.Time  `bson:"created_at" json:"createdAt"`
	DeletedAt   *time.Time `bson:"deleted_at,omitempty" json:"deletedAt"`
}

// FeedbackSummary is the projection shown in the "recent submissions" list.
type FeedbackSummary struct {
	ID                  bson.ObjectID `bson:"_id" json:"id"`
	ContactName         string        `bson:"contact_name" json:"contactName"`
	CompanyName         string        `bson:"company_name" json:"companyName"`
	RecommendationScore int           `bson:"recommendation_score" json:"recommendationScore"`
	CreatedAt           time.Time     `bson:"created_at" json:"createdAt"`
}

// RatingAverages holds the mean of each rating dimension. A nil field means
// there were no records to average.
type RatingAverages struct {
	ToolBuildQuality    *float64 `bson:"tool_build_quality" json:"toolBuildQuality"`
	Packaging           *float64 `bson:"packaging" json:"packaging"`
	OnTimeDelivery      *float64 `bson:"on_time_delivery" json:"onTimeDelivery"`
	AfterSalesSupport   *float64 `bson:"after_sales_support" json:"afterSalesSupport"`
	ProductUsability    *float64 `bson:"product_usability" json:"productUsability"`
	RecommendationScore *float64 `bson:"recommendation_score" json:"recommendationScore"`
}
