package persist

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}
}

func TestSave(t *testing.T) {
	var gotOption, gotValue, gotNonce string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOption = r.PostFormValue("option_id")
		gotValue = r.PostFormValue("value")
		gotNonce = r.PostFormValue("nonce")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"message":"saved"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "woow_save_option", "tok-1", fastPolicy(), nil)
	res, err := c.Save(context.Background(), "accent_color", "#112233")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "accent_color", gotOption)
	assert.Equal(t, "#112233", gotValue)
	assert.Equal(t, "tok-1", gotNonce)
}

func TestSaveRetriesThenFails(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "woow_save_option", "tok-1", fastPolicy(), nil)
	_, err := c.Save(context.Background(), "accent_color", "#112233")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotSaved)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestSaveRecoversOnRetry(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			http.Error(w, "nope", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "woow_save_option", "tok-1", fastPolicy(), nil)
	res, err := c.Save(context.Background(), "accent_color", "#112233")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestSaveRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"bad nonce"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "woow_save_option", "tok-1", fastPolicy(), nil)
	_, err := c.Save(context.Background(), "accent_color", "#112233")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotSaved)
	assert.Contains(t, err.Error(), "bad nonce")
}

type saveLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *saveLog) save(optionID, value string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, optionID+"="+value)
}

func (l *saveLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.calls))
	copy(out, l.calls)
	return out
}

func TestDebouncerCoalesces(t *testing.T) {
	var lg saveLog
	d := NewDebouncer(20*time.Millisecond, lg.save)
	defer d.Close()

	// A burst of edits to the same option collapses to the last value.
	d.Trigger("menu_width", "200")
	d.Trigger("menu_width", "210")
	d.Trigger("menu_width", "220")

	require.Eventually(t, func() bool { return len(lg.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"menu_width=220"}, lg.snapshot())
}

func TestDebouncerIndependentOptions(t *testing.T) {
	var lg saveLog
	d := NewDebouncer(10*time.Millisecond, lg.save)
	defer d.Close()

	d.Trigger("menu_width", "200")
	d.Trigger("accent_color", "#112233")

	require.Eventually(t, func() bool { return len(lg.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	assert.ElementsMatch(t, []string{"menu_width=200", "accent_color=#112233"}, lg.snapshot())
}

func TestDebouncerClose(t *testing.T) {
	var lg saveLog
	d := NewDebouncer(10*time.Millisecond, lg.save)

	d.Trigger("menu_width", "200")
	d.Close()

	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, lg.snapshot())
}
