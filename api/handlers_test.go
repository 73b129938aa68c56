package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realslimshanky/Pricy/models"
	"github.com/realslimshanky/Pricy/utils"
)

const validBody = `{
  "neighbourhood": "Mitte",
  "neighbourhood_cleansed": "Mitte",
  "neighbourhood_group_cleansed": "Mitte",
  "property_type": "Apartment",
  "room_type": "Entire home/apt",
  "host_response_rate": 95,
  "host_acceptance_rate": 98,
  "host_is_superhost": 1,
  "host_has_profile_pic": 1,
  "host_identity_verified": 1,
  "latitude": 52.52,
  "longitude": 13.405,
  "accommodates": 4,
  "bathrooms": 1.0,
  "bedrooms": 1,
  "beds": 2,
  "minimum_nights": 2,
  "maximum_nights": 30,
  "is_licensed": 1,
  "amenities_text": "wifi kitchen heating washer"
}`

type fakePredictor struct {
	mu    sync.Mutex
	got   []models.Record
	price float64
	err   error
}

func (f *fakePredictor) Predict(_ context.Context, r models.Record) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, r)
	return f.price, f.err
}

func newTestRouter(t *testing.T, p PricePredictor) http.Handler {
	t.Helper()
	h, err := NewHandler(p, utils.NewNopLogger())
	require.NoError(t, err)
	return NewRouter(h, utils.NewNopLogger())
}

func post(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/predict_price", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func withField(t *testing.T, key string, value interface{}) string {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(validBody), &m))
	if value == nil {
		delete(m, key)
	} else {
		m[key] = value
	}
	out, err := json.Marshal(m)
	require.NoError(t, err)
	return string(out)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestPredictPrice_OK(t *testing.T) {
	p := &fakePredictor{price: 123.45}
	rec := post(newTestRouter(t, p), validBody)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(TraceHeader))
	assert.JSONEq(t, `{"predicted_price": 123.45}`, rec.Body.String())

	require.Len(t, p.got, 1)
	r := p.got[0]
	assert.Equal(t, "Mitte", r.Neighbourhood)
	assert.Equal(t, 95.0, r.HostResponseRate)
	assert.Equal(t, 52.52, r.Latitude)
	assert.Equal(t, 2.0, r.Beds)
	assert.Equal(t, "wifi kitchen heating washer", r.AmenitiesText)
}

func TestPredictPrice_EchoesTraceID(t *testing.T) {
	router := newTestRouter(t, &fakePredictor{price: 1})
	req := httptest.NewRequest(http.MethodPost, "/predict_price", strings.NewReader(validBody))
	req.Header.Set(TraceHeader, "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(TraceHeader))
}

func TestPredictPrice_MalformedJSON(t *testing.T) {
	p := &fakePredictor{}
	rec := post(newTestRouter(t, p), `{"neighbourhood": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, p.got)
}

func TestPredictPrice_SchemaViolations(t *testing.T) {
	cases := map[string]string{
		"missing field":     withField(t, "bathrooms", nil),
		"string for int":    withField(t, "beds", "two"),
		"float for int":     withField(t, "bedrooms", 1.5),
		"number for string": withField(t, "room_type", 3),
		"not an object":     `[1, 2, 3]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			p := &fakePredictor{}
			rec := post(newTestRouter(t, p), body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.NotEmpty(t, decodeError(t, rec).Fields)
			assert.Empty(t, p.got, "predictor is not called")
		})
	}
}

func TestPredictPrice_RangeViolations(t *testing.T) {
	cases := map[string]struct {
		body  string
		field string
	}{
		"rate above 100":  {withField(t, "host_response_rate", 101), "host_response_rate"},
		"boolean not 0/1": {withField(t, "is_licensed", 2), "is_licensed"},
		"latitude":        {withField(t, "latitude", 91.5), "latitude"},
		"negative beds":   {withField(t, "beds", -1), "beds"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := post(newTestRouter(t, &fakePredictor{}), tc.body)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			resp := decodeError(t, rec)
			require.Len(t, resp.Fields, 1)
			assert.Equal(t, tc.field, resp.Fields[0].Field)
		})
	}
}

func TestPredictPrice_PredictorError(t *testing.T) {
	rec := post(newTestRouter(t, &fakePredictor{err: errors.New("boom")}), validBody)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPredictPrice_WrongMethod(t *testing.T) {
	router := newTestRouter(t, &fakePredictor{})
	req := httptest.NewRequest(http.MethodGet, "/predict_price", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPredictPrice_Concurrent(t *testing.T) {
	p := &fakePredictor{price: 10}
	router := newTestRouter(t, p)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := post(router, validBody)
			assert.Equal(t, http.StatusOK, rec.Code)
		}()
	}
	wg.Wait()
	assert.Len(t, p.got, 20)
}

func TestSanitizeTraceID(t *testing.T) {
	assert.Equal(t, "abc", sanitizeTraceID(" abc "))
	assert.Equal(t, "", sanitizeTraceID("bad\nid"))
	assert.Equal(t, "", sanitizeTraceID(strings.Repeat("x", 65)))
}

func TestServer_GracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer(ServerConfig{ReadTimeout: time.Second, ShutdownTimeout: time.Second},
		newTestRouter(t, &fakePredictor{price: 42}), utils.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Post("http://"+ln.Addr().String()+"/predict_price", "application/json",
		strings.NewReader(validBody))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
