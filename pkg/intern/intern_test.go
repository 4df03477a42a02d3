package intern

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertReturnsSameID(t *testing.T) {
	in := New()

	a, err := in.InsertString("alpha")
	require.NoError(t, err)
	b, err := in.InsertString("beta")
	require.NoError(t, err)
	again, err := in.InsertString("alpha")
	require.NoError(t, err)

	assert.Equal(t, a, again)
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, in.Len())
	assert.Equal(t, "alpha", in.String(a))
	assert.Equal(t, "beta", in.String(b))
}

func TestIDsAreDense(t *testing.T) {
	in := New()
	for i := 0; i < 1000; i++ {
		id, err := in.InsertString(fmt.Sprintf("name%d", i))
		require.NoError(t, err)
		require.Equal(t, uint16(i), id)
	}
	for i := 0; i < 1000; i++ {
		assert.Equal(t, fmt.Sprintf("name%d", i), in.String(uint16(i)))
	}
}

func TestDeterministicAcrossInstances(t *testing.T) {
	words := strings.Fields("fn let x y Point add x fn Point vector len")

	run := func() []uint16 {
		in := New()
		ids := make([]uint16, 0, len(words))
		for _, w := range words {
			id, err := in.InsertString(w)
			require.NoError(t, err)
			ids = append(ids, id)
		}
		return ids
	}

	assert.Equal(t, run(), run())
}

func TestSearch(t *testing.T) {
	in := New()
	_, ok := in.SearchString("missing")
	assert.False(t, ok)

	id, err := in.InsertString("present")
	require.NoError(t, err)

	got, ok := in.SearchString("present")
	require.True(t, ok)
	assert.Equal(t, id, got)
	assert.Equal(t, 1, in.Len(), "search never inserts")
}

func TestEmptyString(t *testing.T) {
	in := New()
	id, err := in.InsertString("")
	require.NoError(t, err)
	assert.Equal(t, "", in.String(id))

	again, err := in.Insert(nil)
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestStringTooLong(t *testing.T) {
	in := New()

	_, err := in.InsertString(strings.Repeat("a", MaxLength))
	require.NoError(t, err)

	id, err := in.InsertString(strings.Repeat("b", MaxLength+1))
	require.ErrorIs(t, err, ErrStringTooLong)
	assert.Equal(t, NoID, id)
	assert.Equal(t, 1, in.Len())
	assert.Equal(t, MaxLength, in.Stats().Bytes)
}

func TestTooManyStrings(t *testing.T) {
	in := New()
	for i := 0; i < MaxStrings; i++ {
		_, err := in.InsertString(fmt.Sprintf("%x", i))
		require.NoError(t, err)
	}
	require.Equal(t, MaxStrings, in.Len())

	before := in.Stats()
	id, err := in.InsertString("one-too-many")
	require.ErrorIs(t, err, ErrTooManyStrings)
	assert.Equal(t, NoID, id)
	assert.Equal(t, before, in.Stats())

	// existing strings are still found when the table is full
	id, err = in.InsertString("ff")
	require.NoError(t, err)
	assert.Equal(t, uint16(0xff), id)
}

func TestGrowthKeepsIDs(t *testing.T) {
	in := New()
	start := in.Stats().Buckets

	ids := make(map[string]uint16)
	for i := 0; i < 5000; i++ {
		s := fmt.Sprintf("ident_%d", i)
		id, err := in.InsertString(s)
		require.NoError(t, err)
		ids[s] = id
	}

	st := in.Stats()
	assert.Greater(t, st.Buckets, start)
	assert.LessOrEqual(t, st.Strings*4, st.Buckets*3, "load factor stays at or under 3/4")

	for s, id := range ids {
		got, ok := in.SearchString(s)
		require.True(t, ok, s)
		require.Equal(t, id, got, s)
	}
}

func TestInsertUniqueKeepsOrder(t *testing.T) {
	in := New()
	for i, w := range []string{"fn", "let", "var"} {
		id, err := in.InsertUnique([]byte(w))
		require.NoError(t, err)
		assert.Equal(t, uint16(i), id)
	}

	id, ok := in.SearchString("let")
	require.True(t, ok)
	assert.Equal(t, uint16(1), id)
}

func TestHashFitsSixteenBits(t *testing.T) {
	assert.Equal(t, Hash([]byte("abc")), Hash([]byte("abc")))
	assert.NotEqual(t, Hash([]byte("abc")), Hash([]byte("abd")))
}

func TestBytesUnknownID(t *testing.T) {
	in := New()
	assert.Nil(t, in.Bytes(7))
	assert.Equal(t, "", in.String(NoID))
}

func TestSharedHashIsRefused(t *testing.T) {
	seed := Hash([]byte("seed"))
	var names []string
	buf := make([]byte, 0, 16)
	for i := 0; len(names) < 300; i++ {
		buf = strconv.AppendInt(append(buf[:0], 'n'), int64(i), 10)
		if Hash(buf) == seed {
			names = append(names, string(buf))
		}
	}

	in := New()
	for i, name := range names[:maxDist] {
		id, err := in.InsertString(name)
		require.NoError(t, err, name)
		require.Equal(t, uint16(i), id)
	}

	before := in.Stats()
	for _, name := range names[maxDist:] {
		id, err := in.InsertString(name)
		require.ErrorIs(t, err, ErrHashCrowded, name)
		assert.Equal(t, NoID, id)
	}
	assert.Equal(t, before, in.Stats(), "a refused insert leaves the table unchanged")
	assert.Equal(t, maxDist, in.Len())

	for i, name := range names[:maxDist] {
		id, ok := in.SearchString(name)
		require.True(t, ok, name)
		assert.Equal(t, uint16(i), id)
	}
	_, ok := in.SearchString(names[maxDist])
	assert.False(t, ok)

	id, err := in.InsertString("unrelated")
	require.NoError(t, err)
	assert.Equal(t, "unrelated", in.String(id))
}
