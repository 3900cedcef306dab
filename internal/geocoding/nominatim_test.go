package geocoding_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/UnknownOlympus/quizmap/internal/geocoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockHTTPClient is a mock implementation of HTTPClient for testing.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func respondWith(status int, body string) *mockHTTPClient {
	return &mockHTTPClient{
		doFunc: func(_ *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: status,
				Body:       io.NopCloser(bytes.NewBufferString(body)),
			}, nil
		},
	}
}

func TestNominatimProvider_Geocode(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("successful geocoding", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, http.MethodGet, req.Method)
				assert.Contains(t, req.URL.String(), "nominatim.openstreetmap.org")
				assert.Equal(t, "Denia", req.URL.Query().Get("q"))
				assert.Equal(t, "json", req.URL.Query().Get("format"))
				assert.Equal(t, "1", req.URL.Query().Get("limit"))
				assert.Contains(t, req.Header.Get("User-Agent"), "Quizmap-Editor/1.0")

				body := `[{"lat":"38.8407","lon":"0.1057","display_name":"Dénia, Marina Alta"}]`
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(body)),
				}, nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		coords, err := provider.Geocode(ctx, "Denia")

		require.NoError(t, err)
		require.NotNil(t, coords)
		assert.InEpsilon(t, 38.8407, coords.Lat, 0.0001)
		assert.InEpsilon(t, 0.1057, coords.Lng, 0.0001)
	})

	t.Run("empty response from API", func(t *testing.T) {
		provider := geocoding.NewNominatimProviderWithClient(respondWith(http.StatusOK, `[]`), logger)

		coords, err := provider.Geocode(ctx, "Atlantis")

		require.Nil(t, coords)
		assert.ErrorIs(t, err, geocoding.ErrNominatimEmptyResponse)
	})

	t.Run("HTTP error status", func(t *testing.T) {
		provider := geocoding.NewNominatimProviderWithClient(
			respondWith(http.StatusTooManyRequests, `{"error":"Rate limit exceeded"}`), logger,
		)

		coords, err := provider.Geocode(ctx, "Denia")

		require.Nil(t, coords)
		assert.ErrorContains(t, err, "nominatim API returned status 429")
	})

	t.Run("invalid JSON response", func(t *testing.T) {
		provider := geocoding.NewNominatimProviderWithClient(respondWith(http.StatusOK, `invalid json`), logger)

		coords, err := provider.Geocode(ctx, "Denia")

		require.Nil(t, coords)
		assert.ErrorContains(t, err, "failed to decode nominatim response")
	})

	t.Run("invalid latitude in response", func(t *testing.T) {
		provider := geocoding.NewNominatimProviderWithClient(
			respondWith(http.StatusOK, `[{"lat":"north","lon":"0.1057"}]`), logger,
		)

		coords, err := provider.Geocode(ctx, "Denia")

		require.Nil(t, coords)
		assert.ErrorIs(t, err, geocoding.ErrNominatimInvalidCoords)
		assert.ErrorContains(t, err, "invalid latitude")
	})

	t.Run("invalid longitude in response", func(t *testing.T) {
		provider := geocoding.NewNominatimProviderWithClient(
			respondWith(http.StatusOK, `[{"lat":"38.8407","lon":"east"}]`), logger,
		)

		_, err := provider.Geocode(ctx, "Denia")

		assert.ErrorIs(t, err, geocoding.ErrNominatimInvalidCoords)
		assert.ErrorContains(t, err, "invalid longitude")
	})

	t.Run("transport error", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return nil, assert.AnError
			},
		}
		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)

		_, err := provider.Geocode(ctx, "Denia")

		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		provider := geocoding.NewNominatimProvider(logger)

		_, err := provider.Geocode(cctx, "Denia")

		assert.Error(t, err)
	})
}
