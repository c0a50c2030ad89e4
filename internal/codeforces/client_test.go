package codeforces_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/cftracker/internal/codeforces"
	"github.com/vytor/cftracker/internal/errors"
	"github.com/vytor/cftracker/internal/models"
)

const (
	userInfoBody = `{"status":"OK","result":[{"handle":"tourist","rank":"legendary grandmaster","rating":3800,"maxRank":"legendary grandmaster","maxRating":4000,"friendOfCount":1000,"avatar":"a.jpg","titlePhoto":"t.jpg","contribution":100,"lastOnlineTimeSeconds":1,"registrationTimeSeconds":2}]}`
	statusBody   = `{"status":"OK","result":[
		{"id":2,"contestId":1500,"creationTimeSeconds":200,"problem":{"contestId":1500,"index":"C","name":"Matrix","type":"PROGRAMMING","rating":1500,"tags":["dp","greedy"]},"author":{"contestId":1500,"members":[{"handle":"tourist"}],"participantType":"CONTESTANT","ghost":false},"programmingLanguage":"C++17","verdict":"OK","testset":"TESTS","passedTestCount":40,"timeConsumedMillis":15,"memoryConsumedBytes":1024},
		{"id":1,"contestId":1500,"creationTimeSeconds":100,"problem":{"contestId":1500,"index":"C","name":"Matrix","type":"PROGRAMMING","rating":1500,"tags":["dp","greedy"]},"author":{"contestId":1500,"members":[{"handle":"tourist"}],"participantType":"CONTESTANT","ghost":false},"programmingLanguage":"C++17","verdict":"WRONG_ANSWER","testset":"TESTS","passedTestCount":3,"timeConsumedMillis":15,"memoryConsumedBytes":1024},
		{"id":3,"contestId":1501,"creationTimeSeconds":300,"problem":{"contestId":1501,"index":"A","name":"Testing","type":"PROGRAMMING","tags":[]},"author":{"contestId":1501,"members":[{"handle":"tourist"}],"participantType":"PRACTICE","ghost":false},"programmingLanguage":"C++17","testset":"TESTS","passedTestCount":0,"timeConsumedMillis":0,"memoryConsumedBytes":0}
	]}`
	ratingBody = `{"status":"OK","result":[{"contestId":1500,"contestName":"Codeforces Round 707","handle":"tourist","rank":1,"ratingUpdateTimeSeconds":1000,"oldRating":3700,"newRating":3800}]}`
)

type fakeAPI struct {
	mu       sync.Mutex
	requests []*http.Request
	handlers map[string]http.HandlerFunc
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	api := &fakeAPI{handlers: map[string]http.HandlerFunc{
		"/user.info":   respond(http.StatusOK, userInfoBody),
		"/user.status": respond(http.StatusOK, statusBody),
		"/user.rating": respond(http.StatusOK, ratingBody),
	}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.requests = append(api.requests, r)
		h, ok := api.handlers[r.URL.Path]
		api.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return api, srv
}

func (a *fakeAPI) set(path string, h http.HandlerFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handlers[path] = h
}

func (a *fakeAPI) requestFor(path string) *http.Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, r := range a.requests {
		if r.URL.Path == path {
			return r
		}
	}
	return nil
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}
}

func newClient(srv *httptest.Server, opts ...codeforces.Option) *codeforces.Client {
	base := []codeforces.Option{codeforces.WithBaseURL(srv.URL + "/"), codeforces.WithDelay(0)}
	return codeforces.New(append(base, opts...)...)
}

func TestFetchAll(t *testing.T) {
	api, srv := newFakeAPI(t)
	client := newClient(srv, codeforces.WithSubmissionCount(500))

	data, err := client.FetchAll(context.Background(), "tourist")
	require.NoError(t, err)

	assert.Equal(t, "tourist", data.UserInfo.Handle)
	assert.Equal(t, 4000, data.UserInfo.MaxRating)
	require.Len(t, data.Submissions, 3)
	assert.Equal(t, models.VerdictOK, data.Submissions[0].Verdict)
	assert.Equal(t, 1500, data.Submissions[0].Problem.RatingValue())
	assert.Equal(t, []string{"dp", "greedy"}, data.Submissions[0].Problem.Tags)
	assert.Equal(t, models.VerdictUnknown, data.Submissions[2].Verdict, "missing verdict decodes as absent")
	assert.Nil(t, data.Submissions[2].Problem.Rating)
	require.Len(t, data.RatingHistory, 1)
	assert.Equal(t, 3800, data.RatingHistory[0].NewRating)

	status := api.requestFor("/user.status")
	require.NotNil(t, status)
	assert.Equal(t, "tourist", status.URL.Query().Get("handle"))
	assert.Equal(t, "1", status.URL.Query().Get("from"))
	assert.Equal(t, "500", status.URL.Query().Get("count"))
	info := api.requestFor("/user.info")
	require.NotNil(t, info)
	assert.Equal(t, "tourist", info.URL.Query().Get("handles"))
}

func TestFetchAll_UpstreamRejection(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.set("/user.info", respond(http.StatusBadRequest, `{"status":"FAILED","comment":"handles: User with handle nobody not found"}`))
	client := newClient(srv)

	data, err := client.FetchAll(context.Background(), "nobody")
	require.Error(t, err)
	assert.Nil(t, data)
	assert.True(t, errors.HasCode(err, errors.ErrCodeUpstreamRejection))
	assert.Equal(t, "handles: User with handle nobody not found", errors.Message(err, ""))
}

func TestFetchAll_HTTPFailure(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.set("/user.rating", respond(http.StatusServiceUnavailable, `<html>down</html>`))
	client := newClient(srv)

	_, err := client.FetchAll(context.Background(), "tourist")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNetworkFailure))
	assert.Equal(t, "Failed to fetch rating history: Service Unavailable", errors.Message(err, ""))
}

func TestFetchAll_MalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"status":"OK","result":[`},
		{"wrong shape", `{"status":"OK","result":{"id":1}}`},
		{"unknown status", `{"status":"MAYBE","result":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, srv := newFakeAPI(t)
			api.set("/user.status", respond(http.StatusOK, tt.body))
			client := newClient(srv)

			_, err := client.FetchAll(context.Background(), "tourist")
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeMalformedResponse))
		})
	}
}

func TestUserInfo_EmptyResult(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.set("/user.info", respond(http.StatusOK, `{"status":"OK","result":[]}`))

	_, err := newClient(srv).UserInfo(context.Background(), "tourist")
	assert.True(t, errors.HasCode(err, errors.ErrCodeMalformedResponse))
}

func TestRatingHistory_NullResult(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.set("/user.rating", respond(http.StatusOK, `{"status":"OK","result":null}`))

	changes, err := newClient(srv).RatingHistory(context.Background(), "tourist")
	require.NoError(t, err)
	assert.NotNil(t, changes)
	assert.Empty(t, changes)
}

func TestFetchAll_Unreachable(t *testing.T) {
	_, srv := newFakeAPI(t)
	client := newClient(srv)
	srv.Close()

	_, err := client.FetchAll(context.Background(), "tourist")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNetworkFailure))
}

func TestFetchAll_DelayRespectsContext(t *testing.T) {
	_, srv := newFakeAPI(t)
	client := codeforces.New(codeforces.WithBaseURL(srv.URL), codeforces.WithDelay(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchAll(ctx, "tourist")
	assert.ErrorIs(t, err, context.Canceled)
}

type memCache struct {
	mu   sync.Mutex
	data map[string]any
}

func (m *memCache) Get(_ context.Context, endpoint, handle string, dst any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[endpoint+":"+handle]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *[]models.UserInfo:
		*d = v.([]models.UserInfo)
	case *[]models.Submission:
		*d = v.([]models.Submission)
	case *[]models.RatingChange:
		*d = v.([]models.RatingChange)
	}
	return true, nil
}

func (m *memCache) Set(_ context.Context, endpoint, handle string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch d := v.(type) {
	case *[]models.UserInfo:
		m.data[endpoint+":"+handle] = *d
	case *[]models.Submission:
		m.data[endpoint+":"+handle] = *d
	case *[]models.RatingChange:
		m.data[endpoint+":"+handle] = *d
	}
	return nil
}

func TestFetchAll_UsesCacheAndObserver(t *testing.T) {
	api, srv := newFakeAPI(t)
	cache := &memCache{data: map[string]any{}}

	var mu sync.Mutex
	outcomes := map[string]int{}
	observer := func(endpoint, outcome string, _ time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		outcomes[outcome]++
	}
	client := newClient(srv, codeforces.WithCache(cache), codeforces.WithObserver(observer))

	_, err := client.FetchAll(context.Background(), "tourist")
	require.NoError(t, err)

	api.set("/user.status", respond(http.StatusInternalServerError, "broken"))
	data, err := client.FetchAll(context.Background(), "tourist")
	require.NoError(t, err, "second fetch is served from cache")
	assert.Len(t, data.Submissions, 3)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, outcomes["ok"])
	assert.Equal(t, 3, outcomes["hit"])
}

func TestFetchAll_FreshSkipsCache(t *testing.T) {
	api, srv := newFakeAPI(t)
	client := newClient(srv, codeforces.WithCache(&memCache{data: map[string]any{}}))
	ctx := context.Background()

	_, err := client.FetchAll(ctx, "tourist")
	require.NoError(t, err)

	api.set("/user.status", respond(http.StatusOK, `{"status":"OK","result":[
		{"id":9,"contestId":1600,"creationTimeSeconds":900,"problem":{"contestId":1600,"index":"B","name":"New","tags":[]},"verdict":"OK"}
	]}`))

	cached, err := client.FetchAll(ctx, "tourist")
	require.NoError(t, err)
	assert.Len(t, cached.Submissions, 3)

	fresh, err := client.FetchAll(codeforces.Fresh(ctx), "tourist")
	require.NoError(t, err)
	require.Len(t, fresh.Submissions, 1)
	assert.Equal(t, int64(9), fresh.Submissions[0].ID)

	after, err := client.FetchAll(ctx, "tourist")
	require.NoError(t, err)
	assert.Len(t, after.Submissions, 1, "fresh results replace the cached ones")
}

func TestIsFresh(t *testing.T) {
	assert.False(t, codeforces.IsFresh(context.Background()))
	assert.True(t, codeforces.IsFresh(codeforces.Fresh(context.Background())))
}
