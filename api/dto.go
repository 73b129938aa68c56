package api

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/realslimshanky/Pricy/models"
)

// PredictRequest is the body of POST /predict_price. Pointer fields let the
// validator tell a missing field from a zero value.
type PredictRequest struct {
	Neighbourhood              *string `json:"neighbourhood" validate:"required"`
	NeighbourhoodCleansed      *string `json:"neighbourhood_cleansed" validate:"required"`
	NeighbourhoodGroupCleansed *string `json:"neighbourhood_group_cleansed" validate:"required"`
	PropertyType               *string `json:"property_type" validate:"required"`
	RoomType                   *string `json:"room_type" validate:"required"`

	HostResponseRate     *int     `json:"host_response_rate" validate:"required,min=0,max=100"`
	HostAcceptanceRate   *int     `json:"host_acceptance_rate" validate:"required,min=0,max=100"`
	HostIsSuperhost      *int     `json:"host_is_superhost" validate:"required,oneof=0 1"`
	HostHasProfilePic    *int     `json:"host_has_profile_pic" validate:"required,oneof=0 1"`
	HostIdentityVerified *int     `json:"host_identity_verified" validate:"required,oneof=0 1"`
	Latitude             *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude            *float64 `json:"longitude" validate:"required,min=-180,max=180"`
	Accommodates         *int     `json:"accommodates" validate:"required,min=0"`
	Bathrooms            *float64 `json:"bathrooms" validate:"required,min=0"`
	Bedrooms             *int     `json:"bedrooms" validate:"required,min=0"`
	Beds                 *int     `json:"beds" validate:"required,min=0"`
	MinimumNights        *int     `json:"minimum_nights" validate:"required,min=0"`
	MaximumNights        *int     `json:"maximum_nights" validate:"required,min=0"`
	IsLicensed           *int     `json:"is_licensed" validate:"required,oneof=0 1"`

	AmenitiesText *string `json:"amenities_text" validate:"required"`
}

// PredictResponse is the body of a successful prediction.
type PredictResponse struct {
	PredictedPrice float64 `json:"predicted_price"`
}

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  string       `json:"error"`
	Fields []FieldError `json:"fields,omitempty"`
}

// Record converts a validated request into a feature record.
func (p *PredictRequest) Record() models.Record {
	return models.Record{
		Neighbourhood:              *p.Neighbourhood,
		NeighbourhoodCleansed:      *p.NeighbourhoodCleansed,
		NeighbourhoodGroupCleansed: *p.NeighbourhoodGroupCleansed,
		PropertyType:               *p.PropertyType,
		RoomType:                   *p.RoomType,
		HostResponseRate:           float64(*p.HostResponseRate),
		HostAcceptanceRate:         float64(*p.HostAcceptanceRate),
		HostIsSuperhost:            float64(*p.HostIsSuperhost),
		HostHasProfilePic:          float64(*p.HostHasProfilePic),
		HostIdentityVerified:       float64(*p.HostIdentityVerified),
		Latitude:                   *p.Latitude,
		Longitude:                  *p.Longitude,
		Accommodates:               float64(*p.Accommodates),
		Bathrooms:                  *p.Bathrooms,
		Bedrooms:                   float64(*p.Bedrooms),
		Beds:                       float64(*p.Beds),
		MinimumNights:              float64(*p.MinimumNights),
		MaximumNights:              float64(*p.MaximumNights),
		IsLicensed:                 float64(*p.IsLicensed),
		AmenitiesText:              *p.AmenitiesText,
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// validateRequest checks value ranges and returns one FieldError per violation.
func validateRequest(req *PredictRequest) []FieldError {
	err := getValidator().Struct(req)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "(body)", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: formatFieldError(fe)})
	}
	return out
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
