package slots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"dokta/client"
	"dokta/models"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogDay(available bool) *Day {
	slots := make([]models.TimeSlot, len(models.SlotCatalog))
	for i, h := range models.SlotCatalog {
		slots[i] = models.TimeSlot{Heure: h, Disponible: available}
	}
	return &Day{DoctorID: "d1", Date: "2025-03-12", Slots: slots, Source: SourceBackend}
}

func TestSelectAllFalseOnCatalog(t *testing.T) {
	d := catalogDay(true)
	d.SelectAll(false)
	require.Len(t, d.Slots, 13)
	for _, s := range d.Slots {
		assert.False(t, s.Disponible, s.Heure)
	}
	assert.Empty(t, d.Available())
}

func TestPresets(t *testing.T) {
	d := catalogDay(false)
	require.NoError(t, d.ApplyPreset(PresetFullDay))
	first := d.Clone()
	require.NoError(t, d.ApplyPreset(PresetFullDay))
	assert.Equal(t, first.Slots, d.Slots)

	require.NoError(t, d.ApplyPreset(PresetMorningOnly))
	assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30"}, d.Available())

	require.NoError(t, d.ApplyPreset(PresetAfternoonOnly))
	assert.Len(t, d.Available(), 7)
	assert.False(t, d.IsAvailable("11:30"))
	assert.True(t, d.IsAvailable("17:00"))

	assert.Error(t, d.ApplyPreset("night"))
}

func TestToggle(t *testing.T) {
	d := catalogDay(false)
	require.NoError(t, d.Toggle("14:30"))
	assert.True(t, d.IsAvailable("14:30"))
	require.NoError(t, d.Toggle("14:30"))
	assert.False(t, d.IsAvailable("14:30"))

	var ve *client.ValidationError
	assert.ErrorAs(t, d.Toggle("13:00"), &ve)
}

func TestWeekTuples(t *testing.T) {
	slots := []models.TimeSlot{{Heure: "09:00", Disponible: true}, {Heure: "14:00", Disponible: false}}

	// 2025-03-12 is a Wednesday.
	tuples, err := WeekTuples("2025-03-12", slots)
	require.NoError(t, err)
	require.Len(t, tuples, 7*len(slots))
	assert.Equal(t, "2025-03-10", tuples[0].Date)
	assert.Equal(t, "2025-03-16", tuples[len(tuples)-1].Date)
	for i, tup := range tuples {
		assert.Equal(t, slots[i%2].Heure, tup.Heure)
		assert.Equal(t, slots[i%2].Disponible, tup.Disponible)
	}

	// A Sunday anchor belongs to the week that started the previous Monday.
	tuples, err = WeekTuples("2025-03-16", slots)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", tuples[0].Date)

	_, err = WeekTuples("12/03/2025", slots)
	assert.Error(t, err)
}

type backend struct {
	mu      sync.Mutex
	fail    bool
	status  int
	puts    [][]map[string]any
	release chan struct{}
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	fail, status := b.fail, b.status
	b.mu.Unlock()
	if fail {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	switch r.Method {
	case http.MethodGet:
		_, _ = w.Write([]byte(`[{"heure":"09:00","disponible":false},{"heure":"09:30","disponible":true}]`))
	case http.MethodPut:
		if b.release != nil {
			<-b.release
		}
		var body []map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		b.puts = append(b.puts, body)
		b.mu.Unlock()
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}
}

func (b *backend) setStatus(code int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = code
}

func (b *backend) saved() [][]map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]map[string]any(nil), b.puts...)
}

func newManager(t *testing.T, b *backend) *Manager {
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	return New(client.New(srv.URL), WithRand(func() float64 { return 0.9 }))
}

func TestFetch(t *testing.T) {
	b := &backend{}
	m := newManager(t, b)

	day, err := m.Fetch(context.Background(), "d1", "2025-03-12")
	require.NoError(t, err)
	assert.False(t, day.Fallback())
	assert.Len(t, day.Slots, 2)

	_, err = m.Fetch(context.Background(), "d1", "tomorrow")
	var ve *client.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestFetchFallbackCoversCatalog(t *testing.T) {
	m := newManager(t, &backend{fail: true})

	day, err := m.Fetch(context.Background(), "d1", "2025-03-12")
	require.Error(t, err)
	require.NotNil(t, day)
	assert.True(t, day.Fallback())
	require.Len(t, day.Slots, len(models.SlotCatalog))
	for i, s := range day.Slots {
		assert.Equal(t, models.SlotCatalog[i], s.Heure)
		assert.True(t, s.Disponible)
	}
}

func TestSaveAndApplyToWeek(t *testing.T) {
	b := &backend{}
	m := newManager(t, b)
	d := catalogDay(true)

	require.NoError(t, m.Save(context.Background(), "d1", d.Date, d.Slots))
	require.NoError(t, m.ApplyToWeek(context.Background(), "d1", d.Date, d.Slots))
	puts := b.saved()
	require.Len(t, puts, 2)
	assert.Len(t, puts[0], 13)
	assert.Len(t, puts[1], 7*13)
	assert.Equal(t, "2025-03-12", puts[0][0]["date"])

	b.setStatus(http.StatusBadRequest)
	err := m.Save(context.Background(), "d1", d.Date, d.Slots)
	var se *client.SaveError
	require.ErrorAs(t, err, &se)
	assert.Len(t, d.Slots, 13)
	assert.True(t, d.Slots[0].Disponible)
}

func TestEditorBusyGuard(t *testing.T) {
	b := &backend{release: make(chan struct{})}
	m := newManager(t, b)
	e := NewEditor(m, "d1")

	assert.ErrorIs(t, e.Save(context.Background()), ErrNoDay)

	_, err := e.Load(context.Background(), "2025-03-12")
	require.NoError(t, err)
	require.NoError(t, e.SelectAll(true))

	done := make(chan error, 1)
	go func() { done <- e.Save(context.Background()) }()
	require.Eventually(t, e.Saving, testTimeout, testTick)

	assert.ErrorIs(t, e.Save(context.Background()), ErrBusy)
	assert.ErrorIs(t, e.ApplyToWeek(context.Background()), ErrBusy)

	close(b.release)
	require.NoError(t, <-done)
	assert.False(t, e.Saving())
	assert.Len(t, b.saved(), 1)
}

func TestEditorDropsStaleLoad(t *testing.T) {
	gate := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("date") == "2025-03-12" {
			<-gate
		}
		_, _ = w.Write([]byte(`[{"heure":"10:00","disponible":true}]`))
	}))
	t.Cleanup(srv.Close)
	e := NewEditor(New(client.New(srv.URL)), "d1")

	first := make(chan error, 1)
	go func() {
		_, err := e.Load(context.Background(), "2025-03-12")
		first <- err
	}()
	require.Eventually(t, func() bool {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.generation == 1
	}, testTimeout, testTick)

	_, err := e.Load(context.Background(), "2025-03-13")
	require.NoError(t, err)
	close(gate)

	assert.ErrorIs(t, <-first, ErrStale)
	assert.Equal(t, "2025-03-13", e.Day().Date)
}
