package generativeAI

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-tourist-guide/config"
)

type MockStrategy struct {
	mock.Mock
	name string
}

func (m *MockStrategy) Name() string { return m.name }

func (m *MockStrategy) Generate(ctx context.Context, req Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRequest() Request {
	return NewRequest("Hyderabad", 3, []string{"Heritage", "Food"}, "Medium", "Winter")
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("Warangal", 2, nil, "Low", "Summer")
	assert.Equal(t, "Plan a detailed 2-day trip from Warangal in Summer season. Interests: general. Budget: Low. "+
		"Include day-wise schedule with morning, afternoon, and evening activities. "+
		"Provide restaurant recommendations and travel tips.", p)
	assert.Contains(t, BuildPrompt("Warangal", 2, []string{"Heritage", "Nature"}, "Low", "Summer"), "Interests: Heritage, Nature.")
}

func TestTemplateItinerary(t *testing.T) {
	text := TemplateItinerary("Hyderabad", 3, []string{"Heritage"}, "Medium")

	blocks := strings.Split(text, "\n\n")
	require.Len(t, blocks, 3)
	for i, block := range blocks {
		assert.True(t, strings.HasPrefix(block, "Day "+string(rune('1'+i))+":"), block)
		assert.Contains(t, block, "Morning")
		assert.Contains(t, block, "Afternoon")
		assert.Contains(t, block, "Evening")
	}
	assert.Contains(t, blocks[0], "- Morning: Suggested activity based on Heritage interests")
	assert.Contains(t, blocks[0], "- Afternoon: Lunch recommendation for Medium budget")
	assert.Contains(t, blocks[0], "- Evening: Leisure activity in Hyderabad")
}

func TestGenerateItinerary_FallsThroughToTemplate(t *testing.T) {
	hosted := &MockStrategy{name: StrategyHostedInference}
	hosted.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("503")).Once()
	local := &MockStrategy{name: StrategyLocalModel}
	local.On("Generate", mock.Anything, mock.Anything).Return("", ErrUnavailable).Once()

	svc := NewServiceImpl([]Strategy{hosted, local}, time.Minute, 0, testLogger())
	gen, err := svc.GenerateItinerary(context.Background(), testRequest())

	require.NoError(t, err)
	assert.Equal(t, StrategyTemplate, gen.Strategy)
	assert.Equal(t, 3, strings.Count(gen.Text, "Day "))
	hosted.AssertExpectations(t)
	local.AssertExpectations(t)
}

func TestGenerateItinerary_FirstSuccessWinsAndIsCached(t *testing.T) {
	hosted := &MockStrategy{name: StrategyHostedInference}
	hosted.On("Generate", mock.Anything, mock.MatchedBy(func(r Request) bool {
		return strings.Contains(r.Prompt, "3-day trip from Hyderabad")
	})).Return("Day 1: Charminar", nil).Once()
	local := &MockStrategy{name: StrategyLocalModel}

	svc := NewServiceImpl([]Strategy{hosted, local}, time.Minute, 0, testLogger())

	gen, err := svc.GenerateItinerary(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, Generation{Text: "Day 1: Charminar", Strategy: StrategyHostedInference}, gen)

	again, err := svc.GenerateItinerary(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, gen, again)

	hosted.AssertExpectations(t)
	local.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerateItinerary_TemplateNotCached(t *testing.T) {
	hosted := &MockStrategy{name: StrategyHostedInference}
	hosted.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("down")).Once()
	hosted.On("Generate", mock.Anything, mock.Anything).Return("fresh plan", nil).Once()

	svc := NewServiceImpl([]Strategy{hosted}, time.Minute, 0, testLogger())

	first, err := svc.GenerateItinerary(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, StrategyTemplate, first.Strategy)

	second, err := svc.GenerateItinerary(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, StrategyHostedInference, second.Strategy)
	hosted.AssertExpectations(t)
}

func TestNewServiceFromConfig_LocalFallbackOffSkipsLocal(t *testing.T) {
	var modelCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		modelCalls++
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"llama3.2:latest","object":"model"}]}`))
	}))
	defer srv.Close()

	cfg := config.AIConfig{
		UseHFInference: true,
		HFBaseURL:      "http://127.0.0.1:0",
		ModelName:      "google/flan-t5-small",
		LocalFallback:  false,
		LocalBaseURL:   srv.URL,
		LocalModel:     "llama3.2",
	}
	svc, err := NewServiceFromConfig(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{StrategyHostedInference, StrategyTemplate}, svc.Strategies())

	gen, err := svc.GenerateItinerary(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, StrategyTemplate, gen.Strategy)
	assert.Zero(t, modelCalls)
}

func TestNewServiceFromConfig_LoadsLocalModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/models":
			_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"llama3.2:latest","object":"model"}]}`))
		case "/v1/chat/completions":
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "llama3.2", body["model"])
			_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Day 1: Golconda Fort"},"finish_reason":"stop"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	cfg := config.AIConfig{LocalFallback: true, LocalBaseURL: srv.URL + "/v1", LocalModel: "llama3.2"}
	svc, err := NewServiceFromConfig(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{StrategyLocalModel, StrategyTemplate}, svc.Strategies())

	gen, err := svc.GenerateItinerary(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, Generation{Text: "Day 1: Golconda Fort", Strategy: StrategyLocalModel}, gen)
}

func TestNewServiceFromConfig_LocalProbeFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := config.AIConfig{LocalFallback: true, LocalBaseURL: srv.URL + "/v1", LocalModel: "llama3.2"}
	svc, err := NewServiceFromConfig(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{StrategyTemplate}, svc.Strategies())
}

func TestLocalModel_NotLoadedIsUnavailable(t *testing.T) {
	m := NewLocalModel("http://127.0.0.1:0/v1", "llama3.2")
	_, err := m.Generate(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrUnavailable)
}

// hangingStrategy blocks until its context is done.
type hangingStrategy struct{ name string }

func (h hangingStrategy) Name() string { return h.name }

func (h hangingStrategy) Generate(ctx context.Context, _ Request) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestGenerateItinerary_HungTierTimesOutToNextTier(t *testing.T) {
	local := &MockStrategy{name: StrategyLocalModel}
	local.On("Generate", mock.Anything, mock.Anything).Return("Day 1: Ramappa Temple", nil).Once()

	svc := NewServiceImpl([]Strategy{hangingStrategy{name: StrategyHostedInference}, local}, time.Minute, 20*time.Millisecond, testLogger())

	start := time.Now()
	gen, err := svc.GenerateItinerary(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, Generation{Text: "Day 1: Ramappa Temple", Strategy: StrategyLocalModel}, gen)
	assert.Less(t, time.Since(start), 5*time.Second)
	local.AssertExpectations(t)
}

func TestGenerateItinerary_ExpiredRequestStillGetsTemplate(t *testing.T) {
	svc := NewServiceImpl([]Strategy{hangingStrategy{name: StrategyHostedInference}}, time.Minute, time.Minute, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	gen, err := svc.GenerateItinerary(ctx, testRequest())
	require.NoError(t, err)
	assert.Equal(t, StrategyTemplate, gen.Strategy)
	assert.Equal(t, 3, strings.Count(gen.Text, "Day "))
}

func TestGenerateItinerary_DoneContextSkipsModelTiers(t *testing.T) {
	hosted := &MockStrategy{name: StrategyHostedInference}

	svc := NewServiceImpl([]Strategy{hosted}, time.Minute, 0, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen, err := svc.GenerateItinerary(ctx, testRequest())
	require.NoError(t, err)
	assert.Equal(t, StrategyTemplate, gen.Strategy)
	hosted.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}
