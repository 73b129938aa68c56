package features

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/realslimshanky/Pricy/models"
)

func sampleRecord(i int) models.Record {
	hoods := []string{"Mitte", "Pankow", "Neukölln"}
	rooms := []string{"Entire home/apt", "Private room"}
	amenities := []string{
		"Wifi Kitchen Heating Washer",
		"Wifi Kitchen Hair dryer",
		"Wifi Heating Dedicated workspace",
		"Kitchen Washer Hot water",
	}
	return models.Record{
		Neighbourhood:              hoods[i%len(hoods)],
		NeighbourhoodCleansed:      hoods[i%len(hoods)],
		NeighbourhoodGroupCleansed: hoods[i%len(hoods)],
		PropertyType:               "Apartment",
		RoomType:                   rooms[i%len(rooms)],
		HostResponseRate:           float64(80 + i%20),
		HostAcceptanceRate:         float64(90 + i%10),
		HostIsSuperhost:            float64(i % 2),
		HostHasProfilePic:          1,
		HostIdentityVerified:       float64((i + 1) % 2),
		Latitude:                   52.5 + float64(i)/1000,
		Longitude:                  13.4 + float64(i)/1000,
		Accommodates:               float64(1 + i%6),
		Bathrooms:                  1,
		Bedrooms:                   float64(1 + i%3),
		Beds:                       float64(1 + i%4),
		MinimumNights:              2,
		MaximumNights:              30,
		IsLicensed:                 float64(i % 2),
		AmenitiesText:              amenities[i%len(amenities)],
	}
}

func sampleRecords(n int) []models.Record {
	out := make([]models.Record, n)
	for i := range out {
		out[i] = sampleRecord(i)
	}
	return out
}

func TestStandardScaler(t *testing.T) {
	s := NewStandardScaler()
	require.NoError(t, s.Fit([][]float64{{1, 5}, {3, 5}}))

	assert.Equal(t, []float64{2, 5}, s.Mean)
	assert.Equal(t, []float64{1, 1}, s.Std, "constant column gets unit scale")

	dst := make([]float64, 2)
	s.TransformRow(dst, []float64{3, 5})
	assert.Equal(t, []float64{1, 0}, dst)

	assert.ErrorIs(t, NewStandardScaler().Fit(nil), ErrEmptyInput)
}

func TestOneHotEncoder(t *testing.T) {
	e := NewOneHotEncoder()
	require.NoError(t, e.Fit([][]string{{"b", "x"}, {"a", "x"}, {"", "y"}}))

	assert.Equal(t, [][]string{{"", "a", "b"}, {"x", "y"}}, e.Categories)
	assert.Equal(t, 5, e.Width())

	dst := make([]float64, e.Width())
	e.TransformRow(dst, []string{"b", "y"})
	assert.Equal(t, []float64{0, 0, 1, 0, 1}, dst)

	unseen := make([]float64, e.Width())
	e.TransformRow(unseen, []string{"zzz", "x"})
	assert.Equal(t, []float64{0, 0, 0, 1, 0}, unseen)
}

func TestTfidfTerms(t *testing.T) {
	v := NewTfidfVectorizer()
	terms := v.Terms("Free WIFI and a Hot tub")
	assert.Equal(t, []string{"free", "wifi", "hot", "tub", "free wifi", "wifi hot", "hot tub"}, terms)
}

func TestTfidfFit(t *testing.T) {
	docs := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		switch {
		case i < 6:
			docs = append(docs, "wifi kitchen")
		default:
			docs = append(docs, "wifi heating")
		}
	}
	v := NewTfidfVectorizer()
	require.NoError(t, v.Fit(docs))

	// "wifi" is in every document (above max_df); "heating" is below min_df.
	assert.Equal(t, []string{"kitchen", "wifi kitchen"}, v.Vocabulary)
	wantIDF := math.Log(11.0/7.0) + 1
	assert.InDelta(t, wantIDF, v.IDF[0], 1e-12)

	dst := make([]float64, v.Width())
	v.TransformRow(dst, "Wifi KITCHEN sauna")
	assert.InDelta(t, 1.0, floats.Norm(dst, 2), 1e-12)
	assert.InDelta(t, dst[0], dst[1], 1e-12)

	empty := make([]float64, v.Width())
	v.TransformRow(empty, "sauna")
	assert.Equal(t, []float64{0, 0}, empty)
}

func TestTfidfMaxFeatures(t *testing.T) {
	docs := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		if i < 5 {
			docs = append(docs, "alpha alpha beta")
		} else {
			docs = append(docs, "gamma delta")
		}
	}
	v := NewTfidfVectorizer()
	v.NGramMax = 1
	v.MaxFeatures = 2
	require.NoError(t, v.Fit(docs))

	// alpha has the highest count; beta, delta, gamma tie and beta wins alphabetically.
	assert.Equal(t, []string{"alpha", "beta"}, v.Vocabulary)
}

func TestTransformerFitTransform(t *testing.T) {
	records := sampleRecords(40)
	tr := NewTransformer()

	X, err := tr.FitTransform(records)
	require.NoError(t, err)
	require.Len(t, X, len(records))
	for i, row := range X {
		assert.Len(t, row, tr.Width(), "row %d", i)
	}
	assert.Len(t, tr.FeatureNames(), tr.Width())

	_, err = tr.FitTransform(records)
	assert.ErrorIs(t, err, ErrAlreadyFitted)

	again, err := tr.Transform(records)
	require.NoError(t, err)
	assert.Equal(t, X, again, "transform is deterministic")
}

func TestTransformerUnseenValuesKeepWidth(t *testing.T) {
	tr := NewTransformer()
	_, err := tr.FitTransform(sampleRecords(40))
	require.NoError(t, err)

	r := sampleRecord(0)
	r.Neighbourhood = "Atlantis"
	r.RoomType = "Castle"
	r.AmenitiesText = "moat drawbridge"
	row, err := tr.TransformOne(r)
	require.NoError(t, err)
	assert.Len(t, row, tr.Width())
}

func TestTransformerErrors(t *testing.T) {
	tr := NewTransformer()
	_, err := tr.Transform(sampleRecords(1))
	assert.ErrorIs(t, err, ErrNotFitted)

	_, err = tr.FitTransform(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = tr.MarshalBinary()
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestTransformerBinaryRoundTrip(t *testing.T) {
	records := sampleRecords(40)
	tr := NewTransformer()
	X, err := tr.FitTransform(records)
	require.NoError(t, err)

	data, err := tr.MarshalBinary()
	require.NoError(t, err)

	restored := &Transformer{}
	require.NoError(t, restored.UnmarshalBinary(data))
	assert.True(t, restored.Fitted())
	assert.Equal(t, tr.Width(), restored.Width())

	Y, err := restored.Transform(records)
	require.NoError(t, err)
	for i := range X {
		assert.InDeltaSlice(t, X[i], Y[i], 1e-12, fmt.Sprintf("row %d", i))
	}
}
