package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realslimshanky/Pricy/utils"
)

const datasetHeader = "id,neighbourhood,neighbourhood_cleansed,neighbourhood_group_cleansed,property_type,room_type," +
	"host_is_superhost,host_has_profile_pic,host_identity_verified,license,host_response_rate,host_acceptance_rate," +
	"price,amenities,latitude,longitude,accommodates,bathrooms,bedrooms,beds,minimum_nights,maximum_nights"

func TestParseRawListings_ReadsRows(t *testing.T) {
	data := datasetHeader + "\n" +
		`42,Mitte,Mitte,Mitte,Apartment,Entire home/apt,t,t,f,LIC-1,95%,N/A,€120.00,"[""Wifi"", ""Kitchen""]",52.52,13.405,4,1.0,1,2,2,30` + "\n" +
		`43,,Pankow,Pankow,Room,Private room,f,t,t,,nan,100%,€55.00,[],52.56,13.40,2,,1,1,1,10` + "\n"

	listings, err := ParseRawListings(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, listings, 2)

	first := listings[0]
	assert.Equal(t, "42", first.ID)
	assert.Equal(t, "Mitte", first.Neighbourhood)
	assert.Equal(t, "Entire home/apt", first.RoomType)
	assert.Equal(t, "LIC-1", first.License)
	assert.Equal(t, "95%", first.HostResponseRate)
	assert.Equal(t, "", first.HostAcceptanceRate, "N/A is a missing marker")
	assert.Equal(t, "€120.00", first.RawPrice)
	assert.Equal(t, `["Wifi", "Kitchen"]`, first.Amenities)
	assert.Equal(t, "30", first.MaximumNights)

	second := listings[1]
	assert.Equal(t, "", second.Neighbourhood)
	assert.Equal(t, "", second.License)
	assert.Equal(t, "", second.HostResponseRate, "nan is a missing marker")
	assert.Equal(t, "", second.Bathrooms)
}

func TestParseRawListings_MissingColumn(t *testing.T) {
	header := strings.Replace(datasetHeader, ",bathrooms", "", 1)
	_, err := ParseRawListings(strings.NewReader(header + "\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "bathrooms")
}

func TestParseRawListings_EmptyFile(t *testing.T) {
	_, err := ParseRawListings(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestParseRawListings_ShortRowTreatedAsMissing(t *testing.T) {
	data := datasetHeader + "\n" + "7,Mitte,Mitte\n"
	listings, err := ParseRawListings(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "Mitte", listings[0].NeighbourhoodCleansed)
	assert.Equal(t, "", listings[0].RawPrice)
}

func TestCSVReader_ReadRawListings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.csv")
	data := datasetHeader + "\n" +
		`1,Mitte,Mitte,Mitte,Apartment,Entire home/apt,t,t,t,,90%,90%,€80.00,[],52.5,13.4,2,1,1,1,1,5` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	reader := NewCSVReader(path, utils.NewNopLogger())
	listings, err := reader.ReadRawListings()
	require.NoError(t, err)
	assert.Len(t, listings, 1)
}

func TestCSVReader_MissingFile(t *testing.T) {
	reader := NewCSVReader(filepath.Join(t.TempDir(), "nope.csv"), utils.NewNopLogger())
	_, err := reader.ReadRawListings()
	assert.Error(t, err)
}
