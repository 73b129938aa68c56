package models

// RawListing represents one row of the listings dataset exactly as read from the CSV file.
// An empty string marks a missing cell.
type RawListing struct {
	ID string

	Neighbourhood              string
	NeighbourhoodCleansed      string
	NeighbourhoodGroupCleansed string
	PropertyType               string
	RoomType                   string

	HostIsSuperhost      string // "t" / "f"
	HostHasProfilePic    string
	HostIdentityVerified string
	License              string

	HostResponseRate   string // e.g. "95%"
	HostAcceptanceRate string

	RawPrice  string // e.g. "€120.00"
	Amenities string // e.g. ["Wifi", "Kitchen"]

	Latitude      string
	Longitude     string
	Accommodates  string
	Bathrooms     string
	Bedrooms      string
	Beds          string
	MinimumNights string
	MaximumNights string
}

// Listing represents a cleaned listing with typed fields.
// Nil pointers mark values that were missing or could not be parsed.
type Listing struct {
	ID string

	Neighbourhood              string
	NeighbourhoodCleansed      string
	NeighbourhoodGroupCleansed string
	PropertyType               string
	RoomType                   string

	HostIsSuperhost      int
	HostHasProfilePic    int
	HostIdentityVerified int
	IsLicensed           int

	HostResponseRate   *int
	HostAcceptanceRate *int

	Latitude      *float64
	Longitude     *float64
	Accommodates  *float64
	Bathrooms     *float64
	Bedrooms      *float64
	Beds          *float64
	MinimumNights *float64
	MaximumNights *float64

	AmenitiesText string
	Price         float64
}

// Record is a fully populated listing, the input of the feature transformer.
// Training frame rows and prediction requests share this shape.
type Record struct {
	Neighbourhood              string
	NeighbourhoodCleansed      string
	NeighbourhoodGroupCleansed string
	PropertyType               string
	RoomType                   string

	HostResponseRate     float64
	HostAcceptanceRate   float64
	HostIsSuperhost      float64
	HostHasProfilePic    float64
	HostIdentityVerified float64
	Latitude             float64
	Longitude            float64
	Accommodates         float64
	Bathrooms            float64
	Bedrooms             float64
	Beds                 float64
	MinimumNights        float64
	MaximumNights        float64
	IsLicensed           float64

	AmenitiesText string
}

// CategoricalColumns lists the one-hot encoded columns in feature order.
var CategoricalColumns = []string{
	"neighbourhood",
	"neighbourhood_cleansed",
	"neighbourhood_group_cleansed",
	"property_type",
	"room_type",
}

// NumericColumns lists the scaled columns in feature order.
var NumericColumns = []string{
	"host_response_rate",
	"host_acceptance_rate",
	"host_is_superhost",
	"host_has_profile_pic",
	"host_identity_verified",
	"latitude",
	"longitude",
	"accommodates",
	"bathrooms",
	"bedrooms",
	"beds",
	"minimum_nights",
	"maximum_nights",
	"is_licensed",
}

// TextColumn is the free-text column fed to the TF-IDF vectorizer.
const TextColumn = "amenities_text"

// Categorical returns the categorical values in CategoricalColumns order.
func (r Record) Categorical() []string {
	return []string{
		r.Neighbourhood,
		r.NeighbourhoodCleansed,
		r.NeighbourhoodGroupCleansed,
		r.PropertyType,
		r.RoomType,
	}
}

// Numeric returns the numeric values in NumericColumns order.
func (r Record) Numeric() []float64 {
	return []float64{
		r.HostResponseRate,
		r.HostAcceptanceRate,
		r.HostIsSuperhost,
		r.HostHasProfilePic,
		r.HostIdentityVerified,
		r.Latitude,
		r.Longitude,
		r.Accommodates,
		r.Bathrooms,
		r.Bedrooms,
		r.Beds,
		r.MinimumNights,
		r.MaximumNights,
		r.IsLicensed,
	}
}

// Record converts a cleaned listing into a feature record.
// It reports false when any numeric column is missing.
func (l *Listing) Record() (Record, bool) {
	if l.HostResponseRate == nil || l.HostAcceptanceRate == nil {
		return Record{}, false
	}
	for _, v := range []*float64{
		l.Latitude, l.Longitude, l.Accommodates, l.Bathrooms,
		l.Bedrooms, l.Beds, l.MinimumNights, l.MaximumNights,
	} {
		if v == nil {
			return Record{}, false
		}
	}

	return Record{
		Neighbourhood:              l.Neighbourhood,
		NeighbourhoodCleansed:      l.NeighbourhoodCleansed,
		NeighbourhoodGroupCleansed: l.NeighbourhoodGroupCleansed,
		PropertyType:               l.PropertyType,
		RoomType:                   l.RoomType,
		HostResponseRate:           float64(*l.HostResponseRate),
		HostAcceptanceRate:         float64(*l.HostAcceptanceRate),
		HostIsSuperhost:            float64(l.HostIsSuperhost),
		HostHasProfilePic:          float64(l.HostHasProfilePic),
		HostIdentityVerified:       float64(l.HostIdentityVerified),
		Latitude:                   *l.Latitude,
		Longitude:                  *l.Longitude,
		Accommodates:               *l.Accommodates,
		Bathrooms:                  *l.Bathrooms,
		Bedrooms:                   *l.Bedrooms,
		Beds:                       *l.Beds,
		MinimumNights:              *l.MinimumNights,
		MaximumNights:              *l.MaximumNights,
		IsLicensed:                 float64(l.IsLicensed),
		AmenitiesText:              l.AmenitiesText,
	}, true
}

// InsightReport holds computed analytics from the cleaned dataset
type InsightReport struct {
	RawListings             int
	TotalListings           int
	DroppedListings         int
	AveragePrice            float64
	MedianPrice             float64
	MinPrice                float64
	MaxPrice                float64
	MostExpensive           *Listing
	LicensedShare           float64
	ListingsByNeighbourhood map[string]int
}

// EvaluationReport holds regression metrics for one data split
type EvaluationReport struct {
	Split string
	Rows  int
	MAE   float64
	RMSE  float64
	R2    float64
}
