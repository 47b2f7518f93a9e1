package instrument

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testTable() []Entry {
	return []Entry{
		{Name: "Church Organ", Preset: 19, Bank: 0},
		{Name: "Grand Piano", Preset: 0, Bank: 0},
		{Name: "Trumpet", Preset: 56, Bank: 0},
		{Name: "Violin", Preset: 40, Bank: 0},
	}
}

func TestSelectWrapsAround(t *testing.T) {
	s := NewSelector(testTable(), nil)

	require.NoError(t, s.Select(4)) // == len, wraps to 0
	require.Equal(t, 0, s.Index())

	require.NoError(t, s.Select(-1)) // wraps to last
	require.Equal(t, 3, s.Index())

	require.NoError(t, s.Select(9)) // 9 mod 4
	require.Equal(t, 1, s.Index())
}

func TestSelectAppliesEntry(t *testing.T) {
	var applied []Entry
	s := NewSelector(testTable(), func(e Entry) { applied = append(applied, e) })

	require.NoError(t, s.Select(1))
	require.NoError(t, s.Next(1))
	require.NoError(t, s.Prev(2))

	require.Equal(t, []Entry{
		{Name: "Grand Piano", Preset: 0, Bank: 0},
		{Name: "Trumpet", Preset: 56, Bank: 0},
		{Name: "Grand Piano", Preset: 0, Bank: 0},
	}, applied)
}

func TestSelectNameSubstring(t *testing.T) {
	s := NewSelector(testTable(), nil)

	require.NoError(t, s.SelectName("pian"))
	e, ok := s.Current()
	require.True(t, ok)
	require.Equal(t, "Grand Piano", e.Name)

	// First match in table order wins.
	require.NoError(t, s.SelectName("o"))
	require.Equal(t, 0, s.Index())
}

func TestSelectNameNotFound(t *testing.T) {
	s := NewSelector(testTable(), nil)
	s.Strict = true

	err := s.SelectName("zzz-nomatch")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorContains(t, err, "zzz-nomatch")
}

func TestNonStrictMissKeepsCurrent(t *testing.T) {
	s := NewSelector(testTable(), nil)
	require.NoError(t, s.Select(2))

	require.NoError(t, s.SelectName("zzz-nomatch"))
	require.Equal(t, 2, s.Index())
}

func TestStepWrapsAround(t *testing.T) {
	s := NewSelector(testTable(), nil)

	require.NoError(t, s.Prev(1))
	require.Equal(t, 3, s.Index())
	require.NoError(t, s.Next(2))
	require.Equal(t, 1, s.Index())
}

func TestEmptyTable(t *testing.T) {
	s := NewSelector(nil, nil)
	require.NoError(t, s.Select(0))
	_, ok := s.Current()
	require.False(t, ok)

	s.Strict = true
	require.ErrorIs(t, s.Select(0), ErrNotFound)
}
