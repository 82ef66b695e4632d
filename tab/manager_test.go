package tab

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// answer replies to every request arriving on out using fn.
func answer(t *Tab, out chan Frame, fn func(Frame) Frame) {
	go func() {
		for f := range out {
			resp := fn(f)
			resp.Type = TypeResponse
			resp.ID = f.ID
			t.Resolve(resp)
		}
	}()
}

func TestConnectAndGet(t *testing.T) {
	m := NewManager()
	tb, _, _ := m.Connect("tab-1")
	assert.Equal(t, "tab-1", tb.ID)

	got, ok := m.Get("tab-1")
	require.True(t, ok)
	assert.Same(t, tb, got)
}

func TestConnectGeneratesID(t *testing.T) {
	m := NewManager()
	a, _, _ := m.Connect("")
	b, _, _ := m.Connect("")
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, m.List(), 2)
}

func TestDisconnectForgetsTab(t *testing.T) {
	m := NewManager()
	tb, out, _ := m.Connect("tab-1")
	m.Disconnect(tb, out)

	_, ok := m.Get("tab-1")
	assert.False(t, ok)
	assert.Empty(t, m.List())
}

func TestReconnectDisplacesOlderConnection(t *testing.T) {
	m := NewManager()
	tb, out1, kick1 := m.Connect("tab-1")
	_, out2, _ := m.Connect("tab-1")

	select {
	case <-kick1:
	case <-time.After(time.Second):
		t.Fatal("first connection was not kicked")
	}

	// The displaced connection ending must not drop the tab.
	m.Disconnect(tb, out1)
	_, ok := m.Get("tab-1")
	assert.True(t, ok)

	m.Disconnect(tb, out2)
	_, ok = m.Get("tab-1")
	assert.False(t, ok)
}

func TestRequestRoundTrip(t *testing.T) {
	m := NewManager()
	tb, out, _ := m.Connect("tab-1")
	answer(tb, out, func(f Frame) Frame {
		assert.Equal(t, TypeRequest, f.Type)
		assert.Equal(t, ActionGetCurrentURL, f.Action)
		return Frame{URL: "https://www.upwork.com/nx/find-work/"}
	})

	u, err := m.CurrentURL(context.Background(), "tab-1")
	require.NoError(t, err)
	assert.Equal(t, "https://www.upwork.com/nx/find-work/", u)
	assert.Equal(t, u, tb.Snapshot().URL)
}

func TestRequestErrorFromTab(t *testing.T) {
	m := NewManager()
	tb, out, _ := m.Connect("tab-1")
	answer(tb, out, func(Frame) Frame { return Frame{Error: "no search box"} })

	_, err := m.Request(context.Background(), "tab-1", Frame{Action: ActionGetCurrentURL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no search box")
}

func TestRequestTimeout(t *testing.T) {
	m := NewManager(WithTimeout(20 * time.Millisecond))
	m.Connect("tab-1")

	_, err := m.CurrentURL(context.Background(), "tab-1")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestRequestFailsWhenTabLeaves(t *testing.T) {
	m := NewManager()
	tb, out, _ := m.Connect("tab-1")

	go func() {
		<-out
		m.Disconnect(tb, out)
	}()

	_, err := m.CurrentURL(context.Background(), "tab-1")
	assert.ErrorIs(t, err, ErrTabGone)
}

func TestRequestUnknownTab(t *testing.T) {
	m := NewManager()
	_, err := m.CurrentURL(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.UpdateSearch(context.Background(), "nope", "go"), ErrNotFound)
}

func TestUpdateSearchFrame(t *testing.T) {
	m := NewManager()
	_, out, _ := m.Connect("tab-1")

	require.NoError(t, m.UpdateSearch(context.Background(), "tab-1", "golang, grpc"))
	f := <-out
	assert.Equal(t, ActionUpdateSearch, f.Action)
	assert.Equal(t, "golang, grpc", f.Keywords)
	assert.NotEmpty(t, f.ID)
}

func TestSendBusy(t *testing.T) {
	m := NewManager()
	m.Connect("tab-1")
	var err error
	for i := 0; i <= outboxSize; i++ {
		err = m.UpdateSearch(context.Background(), "tab-1", "x")
	}
	assert.ErrorIs(t, err, ErrBusy)
}

func TestFocusedTabPicksLatestFocus(t *testing.T) {
	m := NewManager()
	ctx := context.Background()

	_, err := m.FocusedTab(ctx)
	assert.ErrorIs(t, err, ErrNoFocusedTab)

	a, _, _ := m.Connect("a")
	b, _, _ := m.Connect("b")
	a.Report("https://www.upwork.com/", true)
	time.Sleep(2 * time.Millisecond)
	b.Report("https://example.com/", true)

	got, err := m.FocusedTab(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", got.ID)
	assert.Equal(t, "https://example.com/", got.URL)

	b.Report("", false)
	got, err = m.FocusedTab(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)
}

func TestUpdateSendsNavigate(t *testing.T) {
	m := NewManager()
	_, out, _ := m.Connect("tab-1")

	require.NoError(t, m.Update(context.Background(), "tab-1", "https://www.upwork.com/nx/search/jobs/?q=go"))
	f := <-out
	assert.Equal(t, ActionNavigate, f.Action)
	assert.Equal(t, "https://www.upwork.com/nx/search/jobs/?q=go", f.URL)
}

func TestCreateUsesOpener(t *testing.T) {
	var opened string
	m := NewManager(WithOpener(func(u string) error {
		opened = u
		return nil
	}))
	require.NoError(t, m.Create(context.Background(), "https://www.upwork.com"))
	assert.Equal(t, "https://www.upwork.com", opened)
}
