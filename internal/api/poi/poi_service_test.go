package poi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-tourist-guide/internal/api/corpus"
	"github.com/FACorreiaa/go-tourist-guide/internal/types"
)

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListPlaces(ctx context.Context) ([]types.Place, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Place), args.Error(1)
}

func (m *MockRepository) SavePlace(ctx context.Context, place types.Place) (types.Place, error) {
	args := m.Called(ctx, place)
	return args.Get(0).(types.Place), args.Error(1)
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

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupPlaceServiceTest(withRemote bool) (*ServiceImpl, *MockRepository, *MockAPI) {
	repo := new(MockRepository)
	remote := new(MockAPI)
	var api corpus.API
	if withRemote {
		api = remote
	}
	return NewServiceImpl(repo, api, "collections/places", 5*1024*1024, testLogger()), repo, remote
}

func charminar() types.Place {
	lat, lon := 17.3616, 78.4747
	return types.Place{
		Name:        "Charminar",
		District:    "Hyderabad",
		Category:    "Monument",
		Season:      "Winter",
		Description: "16th century mosque",
		Latitude:    &lat,
		Longitude:   &lon,
	}
}

func TestPlaceService_LoadPlaces(t *testing.T) {
	ctx := context.Background()

	t.Run("remote disabled reads local", func(t *testing.T) {
		svc, repo, _ := setupPlaceServiceTest(false)
		repo.On("ListPlaces", mock.Anything).Return([]types.Place{charminar()}, nil).Once()

		res, err := svc.LoadPlaces(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, types.SourceLocal, res.Source)
		require.Len(t, res.Data, 1)
		assert.Equal(t, "Charminar", res.Data[0].Name)
		repo.AssertExpectations(t)
	})

	t.Run("remote list is normalized", func(t *testing.T) {
		svc, repo, remote := setupPlaceServiceTest(true)
		remote.On("Get", mock.Anything, "collections/places", "tok", url.Values(nil)).
			Return(json.RawMessage(`{"items":[{"name":"Golconda Fort","district":"Hyderabad","category":"Fort","description":"Citadel"}]}`), nil).Once()

		res, err := svc.LoadPlaces(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, types.SourceRemote, res.Source)
		require.Len(t, res.Data, 1)
		assert.Equal(t, "Golconda Fort", res.Data[0].Name)
		assert.Equal(t, types.DefaultSeason, res.Data[0].Season)
		repo.AssertNotCalled(t, "ListPlaces", mock.Anything)
		remote.AssertExpectations(t)
	})

	t.Run("remote failure falls back to local", func(t *testing.T) {
		svc, repo, remote := setupPlaceServiceTest(true)
		remote.On("Get", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, types.ErrRequestFailed).Once()
		repo.On("ListPlaces", mock.Anything).Return([]types.Place{charminar()}, nil).Once()

		res, err := svc.LoadPlaces(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, types.SourceLocal, res.Source)
		assert.NotEmpty(t, res.Notice)
		assert.Len(t, res.Data, 1)
	})

	t.Run("local read failure is an empty list", func(t *testing.T) {
		svc, repo, _ := setupPlaceServiceTest(false)
		repo.On("ListPlaces", mock.Anything).Return(nil, errors.New("no such table: places")).Once()

		res, err := svc.LoadPlaces(ctx, "")
		require.NoError(t, err)
		assert.NotNil(t, res.Data)
		assert.Empty(t, res.Data)
	})
}

func TestPlaceService_SavePlace(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid place is rejected before any I/O", func(t *testing.T) {
		svc, repo, remote := setupPlaceServiceTest(true)
		p := charminar()
		p.Category = ""

		_, err := svc.SavePlace(ctx, "", p)
		assert.ErrorIs(t, err, types.ErrValidation)
		assert.ErrorIs(t, err, types.ErrMissingField)
		repo.AssertNotCalled(t, "SavePlace", mock.Anything, mock.Anything)
		remote.AssertNotCalled(t, "Post", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("remote post", func(t *testing.T) {
		svc, _, remote := setupPlaceServiceTest(true)
		remote.On("Post", mock.Anything, "collections/places", "tok", charminar()).Return(json.RawMessage(`{"ok":true}`), nil).Once()

		res, err := svc.SavePlace(ctx, "tok", charminar())
		require.NoError(t, err)
		assert.Equal(t, types.SourceRemote, res.Source)
		assert.Equal(t, "charminar", res.Data.ID)
		remote.AssertExpectations(t)
	})

	t.Run("remote failure saves locally", func(t *testing.T) {
		svc, repo, remote := setupPlaceServiceTest(true)
		saved := charminar()
		saved.ID = "charminar"
		remote.On("Post", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, types.ErrRequestFailed).Once()
		repo.On("SavePlace", mock.Anything, charminar()).Return(saved, nil).Once()

		res, err := svc.SavePlace(ctx, "", charminar())
		require.NoError(t, err)
		assert.Equal(t, types.SourceLocal, res.Source)
		assert.Equal(t, "charminar", res.Data.ID)
		repo.AssertExpectations(t)
	})

	t.Run("local persistence error surfaces", func(t *testing.T) {
		svc, repo, _ := setupPlaceServiceTest(false)
		repo.On("SavePlace", mock.Anything, mock.Anything).Return(types.Place{}, types.ErrPersistence).Once()

		_, err := svc.SavePlace(ctx, "", charminar())
		assert.ErrorIs(t, err, types.ErrPersistence)
	})

	t.Run("missing season defaults", func(t *testing.T) {
		svc, repo, _ := setupPlaceServiceTest(false)
		p := charminar()
		p.Season = ""
		repo.On("SavePlace", mock.Anything, mock.MatchedBy(func(p types.Place) bool {
			return p.Season == types.DefaultSeason
		})).Return(charminar(), nil).Once()

		_, err := svc.SavePlace(ctx, "", p)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestPlaceService_InspectImage(t *testing.T) {
	svc, _, _ := setupPlaceServiceTest(false)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 12, 9))))

	info, err := svc.InspectImage("data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, types.ImageInfo{Width: 12, Height: 9, Format: "png", Bytes: buf.Len()}, info)

	_, err = svc.InspectImage(base64.StdEncoding.EncodeToString([]byte("plain text")))
	assert.ErrorIs(t, err, types.ErrUnsupportedFormat)
}
