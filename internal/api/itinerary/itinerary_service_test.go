package itinerary

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-tourist-guide/internal/api/corpus"
	generativeAI "github.com/FACorreiaa/go-tourist-guide/internal/api/generative_ai"
	"github.com/FACorreiaa/go-tourist-guide/internal/types"
)

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListItineraries(ctx context.Context) ([]types.Itinerary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Itinerary), args.Error(1)
}

func (m *MockRepository) SaveItinerary(ctx context.Context, it types.Itinerary) (types.Itinerary, error) {
	args := m.Called(ctx, it)
	return args.Get(0).(types.Itinerary), args.Error(1)
}

// MockAPI is a mock implementation of corpus.API
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) Get(ctx context.Context, endpoint, token string, query url.Values) (json.RawMessage, error) {
	args := m.Called(ctx, endpoint, token, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockAPI) Post(ctx context.Context, endpoint, token string, data any) (json.RawMessage, error) {
	args := m.Called(ctx, endpoint, token, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

// MockAIService is a mock implementation of generativeAI.Service
type MockAIService struct {
	mock.Mock
}

func (m *MockAIService) GenerateItinerary(ctx context.Context, req generativeAI.Request) (generativeAI.Generation, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(generativeAI.Generation), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func warangalTrip() types.Itinerary {
	return types.Itinerary{
		Start:     "Warangal",
		Days:      2,
		Interests: types.Interests{"History", "Nature"},
		Budget:    "Low",
		Plan:      "Day 1: fort",
	}
}

func setupItineraryServiceTest(withRemote bool) (*ServiceImpl, *MockRepository, *MockAPI, *MockAIService) {
	repo := new(MockRepository)
	remote := new(MockAPI)
	ai := new(MockAIService)
	var api corpus.API
	if withRemote {
		api = remote
	}
	return NewServiceImpl(repo, api, "collections/itineraries", ai, testLogger()), repo, remote, ai
}

func TestItineraryService_LoadItineraries(t *testing.T) {
	ctx := context.Background()

	t.Run("remote records with string interests", func(t *testing.T) {
		svc, _, remote, _ := setupItineraryServiceTest(true)
		remote.On("Get", mock.Anything, "collections/itineraries", "tok", url.Values(nil)).
			Return(json.RawMessage(`{"results":[{"id":4,"start":"Warangal","days":2,"interests":"History,Nature","budget":"Low","plan":"p"}]}`), nil).Once()

		res, err := svc.LoadItineraries(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, types.SourceRemote, res.Source)
		require.Len(t, res.Data, 1)
		assert.Equal(t, types.Interests{"History", "Nature"}, res.Data[0].Interests)
		assert.Equal(t, 2, res.Data[0].Days)
	})

	t.Run("local failure yields empty list", func(t *testing.T) {
		svc, repo, _, _ := setupItineraryServiceTest(false)
		repo.On("ListItineraries", mock.Anything).Return(nil, errors.New("no such table")).Once()

		res, err := svc.LoadItineraries(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, types.SourceLocal, res.Source)
		assert.Empty(t, res.Data)
	})
}

func TestItineraryService_SaveItinerary(t *testing.T) {
	ctx := context.Background()

	t.Run("missing interests fails before I/O", func(t *testing.T) {
		svc, repo, remote, _ := setupItineraryServiceTest(true)
		it := warangalTrip()
		it.Interests = nil

		_, err := svc.SaveItinerary(ctx, "", it)
		assert.ErrorIs(t, err, types.ErrValidation)
		assert.ErrorIs(t, err, types.ErrMissingField)
		remote.AssertNotCalled(t, "Post", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "SaveItinerary", mock.Anything, mock.Anything)
	})

	t.Run("remote failure saves locally", func(t *testing.T) {
		svc, repo, remote, _ := setupItineraryServiceTest(true)
		remote.On("Post", mock.Anything, "collections/itineraries", "", warangalTrip()).
			Return(nil, types.ErrRequestFailed).Once()
		saved := warangalTrip()
		saved.ID = 1
		repo.On("SaveItinerary", mock.Anything, warangalTrip()).Return(saved, nil).Once()

		res, err := svc.SaveItinerary(ctx, "", warangalTrip())
		require.NoError(t, err)
		assert.Equal(t, types.SourceLocal, res.Source)
		assert.Equal(t, int64(1), res.Data.ID)
		assert.NotEmpty(t, res.Notice)
	})
}

func TestItineraryService_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects bad arguments", func(t *testing.T) {
		svc, _, _, ai := setupItineraryServiceTest(false)

		_, err := svc.Generate(ctx, "", types.GenerateItineraryRequest{Start: " ", Days: 2})
		assert.ErrorIs(t, err, types.ErrInvalidArgument)

		_, err = svc.Generate(ctx, "", types.GenerateItineraryRequest{Start: "Hyderabad", Days: 0})
		assert.ErrorIs(t, err, types.ErrInvalidArgument)

		_, err = svc.Generate(ctx, "", types.GenerateItineraryRequest{Start: "Hyderabad", Days: 31})
		assert.ErrorIs(t, err, types.ErrInvalidArgument)
		ai.AssertNotCalled(t, "GenerateItinerary", mock.Anything, mock.Anything)
	})

	t.Run("generates without saving", func(t *testing.T) {
		svc, repo, _, ai := setupItineraryServiceTest(false)
		ai.On("GenerateItinerary", mock.Anything, mock.MatchedBy(func(r generativeAI.Request) bool {
			return r.Location == "Hyderabad" && r.Days == 3 && r.Budget == defaultBudget && r.Season == defaultSeason &&
				r.Prompt != ""
		})).Return(generativeAI.Generation{Text: "Day 1: Charminar", Strategy: generativeAI.StrategyTemplate}, nil).Once()

		out, err := svc.Generate(ctx, "", types.GenerateItineraryRequest{Start: "Hyderabad", Days: 3, Interests: types.Interests{"Food"}})
		require.NoError(t, err)
		assert.Equal(t, "Day 1: Charminar", out.Itinerary.Plan)
		assert.Equal(t, generativeAI.StrategyTemplate, out.Strategy)
		assert.False(t, out.Saved)
		repo.AssertNotCalled(t, "SaveItinerary", mock.Anything, mock.Anything)
	})

	t.Run("generates and saves", func(t *testing.T) {
		svc, repo, _, ai := setupItineraryServiceTest(false)
		ai.On("GenerateItinerary", mock.Anything, mock.Anything).
			Return(generativeAI.Generation{Text: "Day 1: fort", Strategy: generativeAI.StrategyHostedInference}, nil).Once()
		saved := warangalTrip()
		saved.ID = 7
		repo.On("SaveItinerary", mock.Anything, warangalTrip()).Return(saved, nil).Once()

		out, err := svc.Generate(ctx, "", types.GenerateItineraryRequest{
			Start: "Warangal", Days: 2, Interests: types.Interests{"History", "Nature"}, Budget: "Low", Season: "Winter", Save: true,
		})
		require.NoError(t, err)
		assert.True(t, out.Saved)
		assert.Equal(t, int64(7), out.Itinerary.ID)
		assert.Equal(t, types.SourceLocal, out.Source)
		assert.Equal(t, generativeAI.StrategyHostedInference, out.Strategy)
	})

	t.Run("save failure keeps the plan", func(t *testing.T) {
		svc, repo, _, ai := setupItineraryServiceTest(false)
		ai.On("GenerateItinerary", mock.Anything, mock.Anything).
			Return(generativeAI.Generation{Text: "Day 1: fort", Strategy: generativeAI.StrategyTemplate}, nil).Once()
		repo.On("SaveItinerary", mock.Anything, mock.Anything).Return(types.Itinerary{}, types.ErrPersistence).Once()

		out, err := svc.Generate(ctx, "", types.GenerateItineraryRequest{
			Start: "Warangal", Days: 2, Interests: types.Interests{"History"}, Save: true,
		})
		require.NoError(t, err)
		assert.False(t, out.Saved)
		assert.Equal(t, "Day 1: fort", out.Itinerary.Plan)
		assert.Contains(t, out.Notice, "not saved")
	})

	t.Run("cancelled context", func(t *testing.T) {
		svc, _, _, ai := setupItineraryServiceTest(false)
		ai.On("GenerateItinerary", mock.Anything, mock.Anything).
			Return(generativeAI.Generation{}, context.Canceled).Once()

		_, err := svc.Generate(ctx, "", types.GenerateItineraryRequest{Start: "Warangal", Days: 1})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
