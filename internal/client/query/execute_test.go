package query

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Amawers/idmsystem-sub001/internal/client/api"
	"github.com/Amawers/idmsystem-sub001/internal/logging"
)

type staticTokens struct{}

func (staticTokens) AccessToken() string { return "" }

func newExecFixture(t *testing.T, handler http.HandlerFunc) *api.Pipeline {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return api.NewPipeline(srv.URL, time.Second, staticTokens{}, logging.NewNop())
}

func jsonResponse(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(body))
}

func TestExecutePostsCompiledEnvelope(t *testing.T) {
	var path string
	var env Envelope
	pipe := newExecFixture(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&env))
		jsonResponse(w, `{"data": []}`)
	})

	_, err := NewBuilder(pipe, logging.NewNop(), "programs").
		Select("id,name").
		Eq("status", "active").
		Order("name", true).
		Execute(context.Background())
	require.NoError(t, err)

	require.Equal(t, "/query", path)
	require.Equal(t, "select", env.Action)
	require.Equal(t, "programs", env.Table)
	require.Equal(t, []string{"id", "name"}, env.Columns)
	require.Equal(t, []Filter{{Column: "status", Operator: "eq", Value: "active"}}, env.Filters)
	require.Equal(t, []Order{{Column: "name", Direction: "asc"}}, env.Order)
}

func TestExecuteReturnsRows(t *testing.T) {
	pipe := newExecFixture(t, func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, `{"data": [{"id": 1.0}, {"id": 2.0}], "meta": {"count": 2}}`)
	})

	result, err := NewBuilder(pipe, logging.NewNop(), "t").Execute(context.Background())
	require.NoError(t, err)

	rows, ok := result.Data.([]map[string]any)
	require.True(t, ok)
	require.Len(t, rows, 2)
	require.NotNil(t, result.Count)
	require.EqualValues(t, 2, *result.Count)
}

func TestExecuteCoercesObjectDataToOneRow(t *testing.T) {
	pipe := newExecFixture(t, func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, `{"data": {"id": 9.0}}`)
	})

	result, err := NewBuilder(pipe, logging.NewNop(), "t").Execute(context.Background())
	require.NoError(t, err)

	rows := result.Data.([]map[string]any)
	require.Len(t, rows, 1)
	require.Equal(t, 9.0, rows[0]["id"])
}

func TestSingleZeroRowsFails(t *testing.T) {
	pipe := newExecFixture(t, func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, `{"data": []}`)
	})

	_, err := NewBuilder(pipe, logging.NewNop(), "t").Single().Execute(context.Background())
	require.ErrorIs(t, err, api.ErrNoRows)
	require.EqualError(t, err, "no rows found")
}

func TestMaybeSingleZeroRowsResolvesNil(t *testing.T) {
	pipe := newExecFixture(t, func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, `{"data": []}`)
	})

	result, err := NewBuilder(pipe, logging.NewNop(), "t").MaybeSingle().Execute(context.Background())
	require.NoError(t, err)
	require.Nil(t, result.Data)
}

func TestSingleOneRowReturnsRow(t *testing.T) {
	pipe := newExecFixture(t, func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, `{"data": [{"id": 1.0}]}`)
	})

	result, err := NewBuilder(pipe, logging.NewNop(), "t").Single().Execute(context.Background())
	require.NoError(t, err)

	row, ok := result.Data.(map[string]any)
	require.True(t, ok)
	require.Equal(t, 1.0, row["id"])
}

func TestMaybeSingleTwoRowsFirstWinsKeepsFullCount(t *testing.T) {
	pipe := newExecFixture(t, func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, `{"data": [{"id": 1.0}, {"id": 2.0}], "meta": {"count": 2}}`)
	})

	result, err := NewBuilder(pipe, logging.NewNop(), "t").
		Count("exact").
		MaybeSingle().
		Execute(context.Background())
	require.NoError(t, err)

	row := result.Data.(map[string]any)
	require.Equal(t, 1.0, row["id"])
	require.NotNil(t, result.Count)
	require.EqualValues(t, 2, *result.Count)
}

func TestExecuteTwiceSendsTwoRequests(t *testing.T) {
	var hits int
	pipe := newExecFixture(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		jsonResponse(w, `{"data": []}`)
	})

	b := NewBuilder(pipe, logging.NewNop(), "t").Eq("a", 1)
	_, err := b.Execute(context.Background())
	require.NoError(t, err)
	_, err = b.Execute(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, hits)
}

func TestExecutePropagatesStatusError(t *testing.T) {
	pipe := newExecFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := NewBuilder(pipe, logging.NewNop(), "t").Execute(context.Background())
	var se *api.StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusBadRequest, se.Status)
}

func TestResultDecode(t *testing.T) {
	pipe := newExecFixture(t, func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, `{"data": [{"id": 1, "name": "x"}]}`)
	})

	result, err := NewBuilder(pipe, logging.NewNop(), "t").Execute(context.Background())
	require.NoError(t, err)

	var rows []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, result.Decode(&rows))
	require.Len(t, rows, 1)
	require.Equal(t, "x", rows[0].Name)
}
