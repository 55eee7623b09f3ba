package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Lee_Meetup/internal/model"
	"Lee_Meetup/internal/pkg"
)

func eventFields(title string, capacity Capacity) EventFields {
	return EventFields{
		Title:        title,
		Description:  "An evening of talks",
		Date:         "2026-11-01",
		Time:         "18:00",
		Location:     "Berlin",
		Category:     "tech",
		MaxAttendees: capacity,
	}
}

func TestEventCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.events.Create(ctx, "a", eventFields("Go night", CapacityOf(2)))
	require.NoError(t, err)
	assert.Equal(t, "a", e.OrganizerID)
	assert.Empty(t, e.Attendees)
	require.NotNil(t, e.MaxAttendees)
	assert.Equal(t, 2, *e.MaxAttendees)

	open, err := f.events.Create(ctx, "a", eventFields("Open", Capacity{}))
	require.NoError(t, err)
	assert.Nil(t, open.MaxAttendees)

	missing := eventFields("", Capacity{})
	_, err = f.events.Create(ctx, "a", missing)
	assert.ErrorIs(t, err, pkg.ErrValidation)
}

func TestCapacityCoercion(t *testing.T) {
	cases := []struct {
		raw     string
		want    *int
		wantErr bool
	}{
		{raw: ``, want: nil},
		{raw: `null`, want: nil},
		{raw: `0`, want: nil},
		{raw: `""`, want: nil},
		{raw: `5`, want: ptr(5)},
		{raw: `"12"`, want: ptr(12)},
		{raw: `3.9`, want: ptr(3)},
		{raw: `1e3`, want: ptr(1000)},
		{raw: `-1`, wantErr: true},
		{raw: `"abc"`, wantErr: true},
		{raw: `true`, wantErr: true},
		{raw: `[]`, wantErr: true},
	}
	for _, tc := range cases {
		var c Capacity
		if tc.raw != "" {
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &c), tc.raw)
		}
		got, err := c.Value()
		if tc.wantErr {
			assert.ErrorIs(t, err, pkg.ErrValidation, tc.raw)
			continue
		}
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}

func TestEventCapacityScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "a")
	b := f.register(t, "b")
	c := f.register(t, "c")
	d := f.register(t, "d")

	e, err := f.events.Create(ctx, a.ID, eventFields("Small", CapacityOf(2)))
	require.NoError(t, err)

	_, err = f.events.Register(ctx, b.ID, e.ID)
	require.NoError(t, err)
	got, err := f.events.Register(ctx, c.ID, e.ID)
	require.NoError(t, err)
	assert.Len(t, got.Attendees, 2)
	assert.Equal(t, *got.MaxAttendees, len(got.Attendees))

	_, err = f.events.Register(ctx, d.ID, e.ID)
	assert.ErrorIs(t, err, pkg.ErrCapacity)
	assert.Equal(t, "Event is full", pkg.Message(err))

	// 已报名的人重复报名报 Conflict，而不是 Capacity
	_, err = f.events.Register(ctx, b.ID, e.ID)
	assert.ErrorIs(t, err, pkg.ErrConflict)
}

func TestEventConcurrentRegisterRespectsCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const capacity = 7
	e, err := f.events.Create(ctx, "org", eventFields("Race", CapacityOf(capacity)))
	require.NoError(t, err)

	var wg sync.WaitGroup
	var ok, full atomic.Int32
	start := make(chan struct{})
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := f.events.Register(ctx, fmt.Sprintf("u%d", i), e.ID)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, pkg.ErrCapacity):
				full.Add(1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, capacity, ok.Load())
	assert.EqualValues(t, 100-capacity, full.Load())

	got, err := f.events.Get(e.ID)
	require.NoError(t, err)
	assert.Len(t, got.Attendees, capacity)
}

func TestEventCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e, err := f.events.Create(ctx, "a", eventFields("Go night", CapacityOf(1)))
	require.NoError(t, err)

	_, err = f.events.Cancel(ctx, "b", e.ID)
	assert.ErrorIs(t, err, pkg.ErrConflict)
	assert.Equal(t, "You have not RSVP'd to this event", pkg.Message(err))

	_, err = f.events.Register(ctx, "b", e.ID)
	require.NoError(t, err)
	got, err := f.events.Cancel(ctx, "b", e.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Attendees)

	// 取消后名额释放
	_, err = f.events.Register(ctx, "c", e.ID)
	assert.NoError(t, err)

	_, err = f.events.Cancel(ctx, "b", "missing")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
	_, err = f.events.Register(ctx, "b", "missing")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestEventListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mk := func(title, desc, category string) {
		fields := eventFields(title, Capacity{})
		fields.Description = desc
		fields.Category = category
		_, err := f.events.Create(ctx, "a", fields)
		require.NoError(t, err)
	}
	mk("Go Night", "talks about GOLANG", "tech")
	mk("Board games", "dice and cards", "social")
	mk("Rust meetup", "systems programming, some go too", "tech")

	titles := func(seq func(func(*model.Event) bool)) []string {
		var out []string
		for e := range seq {
			out = append(out, e.Title)
		}
		return out
	}

	assert.Equal(t, []string{"Go Night", "Board games", "Rust meetup"}, titles(f.events.List(EventFilter{})))
	assert.Equal(t, []string{"Go Night", "Rust meetup"}, titles(f.events.List(EventFilter{Category: "tech"})))
	assert.Equal(t, []string{"Go Night", "Rust meetup"}, titles(f.events.List(EventFilter{Search: "GO"})))
	assert.Equal(t, []string{"Board games"}, titles(f.events.List(EventFilter{Search: "DICE"})))
	assert.Empty(t, titles(f.events.List(EventFilter{Category: "Tech"})))
	assert.Equal(t, []string{"Rust meetup"}, titles(f.events.List(EventFilter{Category: "tech", Search: "systems"})))
}

func TestEventListIsLazyAndReadOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seq := f.events.List(EventFilter{Category: "tech"})

	// 迭代前创建的活动也能看到
	e, err := f.events.Create(ctx, "a", eventFields("Late", Capacity{}))
	require.NoError(t, err)

	list := slices.Collect(seq)
	require.Len(t, list, 1)
	list[0].Attendees = append(list[0].Attendees, "mallory")
	list[0].Title = "changed"

	stored, err := f.events.Get(e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Late", stored.Title)
	assert.Empty(t, stored.Attendees)

	// 提前结束迭代
	_, err = f.events.Create(ctx, "a", eventFields("Second", Capacity{}))
	require.NoError(t, err)
	n := 0
	for range f.events.List(EventFilter{}) {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func ptr(n int) *int { return &n }
