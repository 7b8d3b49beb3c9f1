package rsvpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weddingrsvp/pkg/cache"
)

func fakeService(t *testing.T, status int, body string, seen func(Form)) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, DefaultPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if seen != nil {
			var f Form
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&f))
			seen(f)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func ashaForm() Form {
	return Form{
		FullName:       "Asha Rao",
		EventSlug:      "haldi",
		WillAttend:     "yes",
		NumberOfGuests: 2,
		NumberOfKids:   1,
		Email:          "asha@example.com",
		Phone:          "555-0100",
	}
}

func TestSubmit_LocalChecksSkipNetwork(t *testing.T) {
	srv, hits := fakeService(t, http.StatusOK, `{"success":true,"message":"ok"}`, nil)
	c := New(srv.URL, nil)

	cases := []struct {
		mutate func(f *Form)
		want   string
	}{
		{func(f *Form) { f.FullName = "  " }, MsgFullNameRequired},
		{func(f *Form) { f.EventSlug = "" }, MsgEventMissing},
		{func(f *Form) { f.WillAttend = "" }, MsgAttendanceMissing},
	}
	for _, tc := range cases {
		f := ashaForm()
		tc.mutate(&f)
		res, err := c.Submit(context.Background(), f)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, tc.want, res.Message)
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestSubmit_SuccessWritesCaches(t *testing.T) {
	var sent Form
	srv, _ := fakeService(t, http.StatusOK, `{"success":true,"message":"Thank you! We can't wait to celebrate with you!"}`, func(f Form) { sent = f })
	store := cache.NewMemoryStore()
	c := New(srv.URL, store)

	res, err := c.Submit(context.Background(), ashaForm())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Thank you! We can't wait to celebrate with you!", res.Message)
	assert.NotEmpty(t, sent.Timestamp)
	assert.Equal(t, 2, sent.NumberOfGuests)

	marker, ok := c.AlreadyRSVPd(context.Background(), "haldi")
	require.True(t, ok)
	assert.Equal(t, Marker{Email: "asha@example.com", WillAttend: "yes"}, marker)

	_, ok = c.AlreadyRSVPd(context.Background(), "sangeeth")
	assert.False(t, ok)

	form, ok := c.Prefill(context.Background(), "sangeeth")
	require.True(t, ok)
	assert.Equal(t, "sangeeth", form.EventSlug)
	assert.Equal(t, "Asha Rao", form.FullName)
	assert.Equal(t, "555-0100", form.Phone)
	assert.Equal(t, 2, form.NumberOfGuests)
	assert.Empty(t, form.Message)
	assert.Empty(t, form.RSVPSide)
}

func TestSubmit_ZeroGuestsSentAsOne(t *testing.T) {
	var sent Form
	srv, _ := fakeService(t, http.StatusOK, `{"success":true,"message":"ok"}`, func(f Form) { sent = f })

	f := ashaForm()
	f.NumberOfGuests = 0
	_, err := New(srv.URL, nil).Submit(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 1, sent.NumberOfGuests)
}

func TestSubmit_ServerMessageVerbatim(t *testing.T) {
	msg := "It looks like you've already RSVP'd for this event. If you need to update your response, please contact us directly."
	srv, _ := fakeService(t, http.StatusConflict, `{"success":false,"message":"`+msg+`"}`, nil)
	store := cache.NewMemoryStore()
	c := New(srv.URL, store)

	res, err := c.Submit(context.Background(), ashaForm())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, msg, res.Message)

	_, ok := c.AlreadyRSVPd(context.Background(), "haldi")
	assert.False(t, ok)
}

func TestSubmit_ServerFailureWithoutMessage(t *testing.T) {
	srv, _ := fakeService(t, http.StatusInternalServerError, `{"success":false}`, nil)

	res, err := New(srv.URL, nil).Submit(context.Background(), ashaForm())
	require.NoError(t, err)
	assert.Equal(t, MsgServerFallback, res.Message)
}

func TestSubmit_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res, err := New(url, nil).Submit(context.Background(), ashaForm())
	assert.Error(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, MsgNetworkFailure, res.Message)
}

func TestSubmit_NonJSONResponse(t *testing.T) {
	srv, _ := fakeService(t, http.StatusBadGateway, `<html>bad gateway</html>`, nil)

	res, err := New(srv.URL, nil).Submit(context.Background(), ashaForm())
	assert.Error(t, err)
	assert.Equal(t, MsgNetworkFailure, res.Message)
}

func TestCachesNeverGateSubmit(t *testing.T) {
	srv, hits := fakeService(t, http.StatusOK, `{"success":true,"message":"ok"}`, nil)
	store := cache.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), EventsKey, map[string]Marker{"haldi": {Email: "asha@example.com", WillAttend: "yes"}}, 0))

	res, err := New(srv.URL, store).Submit(context.Background(), ashaForm())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestPrefill_EmptyCache(t *testing.T) {
	form, ok := New("http://localhost", cache.NewMemoryStore()).Prefill(context.Background(), "haldi")
	assert.False(t, ok)
	assert.Equal(t, Form{EventSlug: "haldi", WillAttend: "yes", NumberOfGuests: 1}, form)
}
