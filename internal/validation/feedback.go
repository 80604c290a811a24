// Package validation holds the one feedback schema used by the JSON endpoint
// and the HTML form alike.
package validation

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"feedback-backend/internal/apperr"
)

const (
	MinRating = 1
	MaxRating = 10

	DateLayout = "2006-01-02"
)

// FeedbackInput is a customer submission before it is accepted. Ratings are
// numbers rather than ints so that 7.5 is reported as a field error instead of
// failing the whole decode.
type FeedbackInput struct {
	Email            string `json:"email" label:"Email" validate:"required,email"`
	Date             string `json:"date" label:"Date" validate:"required,datetime=2006-01-02"`
	ContactName      string `json:"contactName" label:"Contact name" validate:"required"`
	CompanyName      string `json:"companyName" label:"Company name" validate:"required"`
	Country          string `json:"country" label:"Country" validate:"required"`
	SalesOrderNumber string `json:"salesOrderNumber" label:"Sales order number" validate:"required"`

	ToolBuildQuality    *float64 `json:"toolBuildQuality" label:"Tool build quality" validate:"required,wholenumber,min=1,max=10"`
	Packaging           *float64 `json:"packaging" label:"Packaging" validate:"required,wholenumber,min=1,max=10"`
	OnTimeDelivery      *float64 `json:"onTimeDelivery" label:"On-time delivery" validate:"required,wholenumber,min=1,max=10"`
	AfterSalesSupport   *float64 `json:"afterSalesSupport" label:"After-sales support" validate:"required,wholenumber,min=1,max=10"`
	ProductUsability    *float64 `json:"productUsability" label:"Product usability" validate:"required,wholenumber,min=1,max=10"`
	RecommendationScore *float64 `json:"recommendationScore" label:"Recommendation score" validate:"required,wholenumber,min=1,max=10"`

	Suggestions *string `json:"suggestions,omitempty" label:"Suggestions"`
}

// RatingFields lists the six rating dimensions in schema order.
var RatingFields = []string{
	"toolBuildQuality",
	"packaging",
	"onTimeDelivery",
	"afterSalesSupport",
	"productUsability",
	"recommendationScore",
}

var (
	validate = newValidator()
	labels   = fieldLabels(reflect.TypeOf(FeedbackInput{}))
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("wholenumber", func(fl validator.FieldLevel) bool {
		x := fl.Field().Float()
		return !math.IsNaN(x) && x == math.Trunc(x)
	}); err != nil {
		panic(err)
	}
	return v
}

func fieldLabels(t reflect.Type) map[string]string {
	out := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		out[name] = f.Tag.Get("label")
	}
	return out
}

// ValidateFeedback checks in against the schema. The result is empty when the
// input is accepted, otherwise it lists every rejected field in schema order.
func ValidateFeedback(in FeedbackInput) []apperr.FieldError {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []apperr.FieldError{{Field: "", Message: err.Error()}}
	}

	out := make([]apperr.FieldError, 0, len(verrs))
	seen := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		if seen[fe.Field()] {
			continue
		}
		seen[fe.Field()] = true
		out = append(out, apperr.FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	label := labels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Invalid email address"
	case "datetime":
		return label + " must be a date in YYYY-MM-DD format"
	case "wholenumber":
		return label + " must be a whole number"
	case "min", "max":
		return fmt.Sprintf("%s must be between %d and %d", label, MinRating, MaxRating)
	default:
		return label + " is invalid"
	}
}

// FromForm reads an HTML form post into the schema input. Unparseable ratings
// become NaN so they are reported as invalid rather than missing.
func FromForm(form url.Values) FeedbackInput {
	in := FeedbackInput{
		Email:            strings.TrimSpace(form.Get("email")),
		Date:             strings.TrimSpace(form.Get("date")),
		ContactName:      form.Get("contactName"),
		CompanyName:      form.Get("companyName"),
		Country:          form.Get("country"),
		SalesOrderNumber: form.Get("salesOrderNumber"),

		ToolBuildQuality:    formNumber(form, "toolBuildQuality"),
		Packaging:           formNumber(form, "packaging"),
		OnTimeDelivery:      formNumber(form, "onTimeDelivery"),
		AfterSalesSupport:   formNumber(form, "afterSalesSupport"),
		ProductUsability:    formNumber(form, "productUsability"),
		RecommendationScore: formNumber(form, "recommendationScore"),
	}
	if s := form.Get("suggestions"); s != "" {
		in.Suggestions = &s
	}
	return in
}

func formNumber(form url.Values, key string) *float64 {
	raw := strings.TrimSpace(form.Get(key))
	if raw == "" {
		return nil
	}
	x, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		x = math.NaN()
	}
	return &x
}

// ValidatePage rejects non-positive pagination values.
func ValidatePage(page, limit int) []apperr.FieldError {
	var out []apperr.FieldError
	if page < 1 {
		out = append(out, apperr.FieldError{Field: "page", Message: "Page must be a positive integer"})
	}
	if limit < 1 {
		out = append(out, apperr.FieldError{Field: "limit", Message: "Limit must be a positive integer"})
	}
	return out
}
