package itinerary

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-tourist-guide/internal/types"
)

// MockService is a mock implementation of Service
type MockService struct {
	mock.Mock
}

func (m *MockService) LoadItineraries(ctx context.Context, token string) (types.Result[[]types.Itinerary], error) {
	args := m.Called(ctx, token)
	return args.Get(0).(types.Result[[]types.Itinerary]), args.Error(1)
}

func (m *MockService) SaveItinerary(ctx context.Context, token string, it types.Itinerary) (types.Result[types.Itinerary], error) {
	args := m.Called(ctx, token, it)
	return args.Get(0).(types.Result[types.Itinerary]), args.Error(1)
}

func (m *MockService) Generate(ctx context.Context, token string, req types.GenerateItineraryRequest) (types.GeneratedItinerary, error) {
	args := m.Called(ctx, token, req)
	return args.Get(0).(types.GeneratedItinerary), args.Error(1)
}

func TestItineraryHandler_GetItineraries(t *testing.T) {
	svc := new(MockService)
	svc.On("LoadItineraries", mock.Anything, "").
		Return(types.Result[[]types.Itinerary]{Data: []types.Itinerary{warangalTrip()}, Source: types.SourceLocal}, nil).Once()

	rr := httptest.NewRecorder()
	NewHandlerImpl(svc, testLogger()).GetItineraries(rr, httptest.NewRequest(http.MethodGet, "/api/v1/itineraries", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var body types.Result[[]types.Itinerary]
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, types.Interests{"History", "Nature"}, body.Data[0].Interests)
}

func TestItineraryHandler_GenerateItinerary(t *testing.T) {
	t.Run("accepts comma separated interests", func(t *testing.T) {
		svc := new(MockService)
		want := types.GenerateItineraryRequest{Start: "Warangal", Days: 2, Interests: types.Interests{"History", "Nature"}, Budget: "Low", Save: true}
		svc.On("Generate", mock.Anything, "", want).Return(types.GeneratedItinerary{
			Itinerary: warangalTrip(), Strategy: "template", Saved: true, Source: types.SourceLocal,
		}, nil).Once()

		rr := httptest.NewRecorder()
		body := `{"start":"Warangal","days":2,"interests":"History, Nature","budget":"Low","save":true}`
		NewHandlerImpl(svc, testLogger()).GenerateItinerary(rr, httptest.NewRequest(http.MethodPost, "/api/v1/itineraries/generate", strings.NewReader(body)))

		assert.Equal(t, http.StatusOK, rr.Code)
		var out types.GeneratedItinerary
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
		assert.Equal(t, "template", out.Strategy)
		assert.True(t, out.Saved)
		svc.AssertExpectations(t)
	})

	t.Run("invalid arguments are 400", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Generate", mock.Anything, mock.Anything, mock.Anything).
			Return(types.GeneratedItinerary{}, types.ErrInvalidArgument).Once()

		rr := httptest.NewRecorder()
		NewHandlerImpl(svc, testLogger()).GenerateItinerary(rr, httptest.NewRequest(http.MethodPost, "/api/v1/itineraries/generate", strings.NewReader(`{"days":0}`)))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestItineraryHandler_CreateItinerary(t *testing.T) {
	svc := new(MockService)
	svc.On("SaveItinerary", mock.Anything, "", warangalTrip()).
		Return(types.Result[types.Itinerary]{Data: warangalTrip(), Source: types.SourceRemote}, nil).Once()

	rr := httptest.NewRecorder()
	body := `{"start":"Warangal","days":2,"interests":["History","Nature"],"budget":"Low","plan":"Day 1: fort"}`
	NewHandlerImpl(svc, testLogger()).CreateItinerary(rr, httptest.NewRequest(http.MethodPost, "/api/v1/itineraries", strings.NewReader(body)))

	assert.Equal(t, http.StatusCreated, rr.Code)
	svc.AssertExpectations(t)
}
