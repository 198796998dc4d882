package rcslice

import (
	"math"
	"testing"

	"github.com/hupe1980/rcslice/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow(t *testing.T) {
	t.Run("local", testWindow[localRefs, *localRefs])
	t.Run("atomic", testWindow[atomicRefs, *atomicRefs])
}

func testWindow[R any, PR refs[R]](t *testing.T) {
	newWindow := func() window[int, R, PR] {
		return wholeWindow[int, R, PR]([]int{10, 20, 30, 40, 50}, options{})
	}

	t.Run("scenario", func(t *testing.T) {
		v := newWindow()

		f, err := v.splitOffBefore(2)
		require.NoError(t, err)
		assert.Equal(t, []int{10, 20}, f.slice())
		assertBounds(t, 0, 2, &f)
		assert.Equal(t, []int{30, 40, 50}, v.slice())
		assertBounds(t, 2, 5, &v)

		cut, err := v.advance(1)
		require.NoError(t, err)
		assert.Equal(t, []int{30}, cut)
		assert.Equal(t, []int{40, 50}, v.slice())
		assertBounds(t, 3, 5, &v)

		cut, err = v.retract(1)
		require.NoError(t, err)
		assert.Equal(t, []int{50}, cut)
		assert.Equal(t, []int{40}, v.slice())
		assertBounds(t, 3, 4, &v)

		cut, err = v.advance(5)
		require.ErrorIs(t, err, ErrOutOfBounds)
		assert.Nil(t, cut)
		assert.Equal(t, []int{40}, v.slice())
		assertBounds(t, 3, 4, &v)

		assert.Equal(t, int64(2), v.refCount())
		f.release()
		assert.Equal(t, int64(1), v.refCount())
		v.release()
	})

	t.Run("failures leave bounds untouched", func(t *testing.T) {
		tests := []struct {
			name string
			op   func(w *window[int, R, PR]) error
			want error
		}{
			{"advance past end", func(w *window[int, R, PR]) error { _, err := w.advance(4); return err }, ErrOutOfBounds},
			{"advance negative", func(w *window[int, R, PR]) error { _, err := w.advance(-1); return err }, ErrOutOfBounds},
			{"advance overflow", func(w *window[int, R, PR]) error { _, err := w.advance(math.MaxInt); return err }, ErrOverflow},
			{"retract past start", func(w *window[int, R, PR]) error { _, err := w.retract(4); return err }, ErrOutOfBounds},
			{"retract negative", func(w *window[int, R, PR]) error { _, err := w.retract(-1); return err }, ErrOutOfBounds},
			{"retract underflow", func(w *window[int, R, PR]) error { _, err := w.retract(5); return err }, ErrOverflow},
			{"split before past end", func(w *window[int, R, PR]) error { _, err := w.splitOffBefore(4); return err }, ErrOutOfBounds},
			{"split before overflow", func(w *window[int, R, PR]) error { _, err := w.splitOffBefore(math.MaxInt); return err }, ErrOverflow},
			{"split after past end", func(w *window[int, R, PR]) error { _, err := w.splitOffAfter(4); return err }, ErrOutOfBounds},
			{"split after overflow", func(w *window[int, R, PR]) error { _, err := w.splitOffAfter(math.MaxInt); return err }, ErrOverflow},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := newWindow()
				defer w.release()
				_, err := w.advance(1)
				require.NoError(t, err)
				_, err = w.retract(1)
				require.NoError(t, err)

				err = tt.op(&w)
				require.ErrorIs(t, err, tt.want)

				var be *BoundsError
				require.ErrorAs(t, err, &be)
				assert.Equal(t, 1, be.Start)
				assert.Equal(t, 4, be.End)

				assertBounds(t, 1, 4, &w)
				assert.Equal(t, []int{20, 30, 40}, w.slice())
				assert.Equal(t, int64(1), w.refCount())
			})
		}
	})

	t.Run("split after keeps front", func(t *testing.T) {
		v := newWindow()
		defer v.release()

		back, err := v.splitOffAfter(2)
		require.NoError(t, err)
		defer back.release()

		assert.Equal(t, []int{10, 20}, v.slice())
		assert.Equal(t, []int{30, 40, 50}, back.slice())
		assertBounds(t, 0, 2, &v)
		assertBounds(t, 2, 5, &back)
	})

	t.Run("split at edges", func(t *testing.T) {
		v := newWindow()
		defer v.release()

		empty, err := v.splitOffBefore(0)
		require.NoError(t, err)
		defer empty.release()
		assert.Empty(t, empty.slice())
		assert.Equal(t, []int{10, 20, 30, 40, 50}, v.slice())

		rest, err := v.splitOffAfter(5)
		require.NoError(t, err)
		defer rest.release()
		assert.Empty(t, rest.slice())
		assertBounds(t, 5, 5, &rest)
		assert.Equal(t, []int{10, 20, 30, 40, 50}, v.slice())
	})

	t.Run("cut-off slices are capacity capped", func(t *testing.T) {
		v := newWindow()
		defer v.release()

		cut, err := v.advance(2)
		require.NoError(t, err)
		assert.Equal(t, 2, cap(cut))

		_ = append(cut, 99)
		assert.Equal(t, []int{30, 40, 50}, v.slice())
		assert.Equal(t, 3, cap(v.slice()))
	})

	t.Run("released window", func(t *testing.T) {
		v := newWindow()
		v.release()
		v.release()

		assertBounds(t, 0, 0, &v)
		assert.Nil(t, v.slice())
		assert.Equal(t, int64(0), v.refCount())

		_, err := v.advance(0)
		assert.ErrorIs(t, err, ErrReleased)
		_, err = v.retract(0)
		assert.ErrorIs(t, err, ErrReleased)
		_, err = v.splitOffBefore(0)
		assert.ErrorIs(t, err, ErrReleased)
		_, err = v.splitOffAfter(0)
		assert.ErrorIs(t, err, ErrReleased)

		c := v.clone()
		assert.Nil(t, c.buf)
	})

	t.Run("random operations keep the invariant", func(t *testing.T) {
		data := make([]int, 64)
		for i := range data {
			data[i] = i
		}
		rng := testutil.NewRNG(4711)

		root := wholeWindow[int, R, PR](data, options{})
		views := []window[int, R, PR]{root}

		for i := 0; i < 2000; i++ {
			j := rng.Intn(len(views))
			w := &views[j]
			s, e := w.bounds()
			n := rng.Intn(e-s+3) - 1

			switch rng.Intn(4) {
			case 0:
				cut, err := w.advance(n)
				if err == nil {
					assert.Equal(t, data[s:s+n], cut)
				} else {
					assertBounds(t, s, e, w)
				}
			case 1:
				cut, err := w.retract(n)
				if err == nil {
					assert.Equal(t, data[e-n:e], cut)
				} else {
					assertBounds(t, s, e, w)
				}
			case 2:
				front, err := w.splitOffBefore(n)
				if err == nil {
					assert.Equal(t, data[s:e], append(append([]int{}, front.slice()...), w.slice()...))
					views = append(views, front)
				} else {
					assertBounds(t, s, e, w)
				}
			case 3:
				back, err := w.splitOffAfter(n)
				if err == nil {
					assert.Equal(t, data[s:e], append(append([]int{}, w.slice()...), back.slice()...))
					views = append(views, back)
				} else {
					assertBounds(t, s, e, w)
				}
			}

			for k := range views {
				vs, ve := views[k].bounds()
				require.True(t, 0 <= vs && vs <= ve && ve <= len(data), "bounds [%d, %d)", vs, ve)
				require.Equal(t, data[vs:ve], views[k].slice())
			}
		}

		assert.Equal(t, int64(len(views)), views[0].refCount())
		for k := range views {
			views[k].release()
		}
	})
}

func TestShared_ReleaseRunsHookOnce(t *testing.T) {
	calls := 0
	w := wholeWindow[byte, localRefs, *localRefs]([]byte("abc"), options{
		onRelease: func() { calls++ },
	})
	c := w.clone()

	w.release()
	assert.Equal(t, 0, calls)
	c.release()
	assert.Equal(t, 1, calls)
	c.release()
	assert.Equal(t, 1, calls)
}

func TestShared_UnderflowPanics(t *testing.T) {
	s := newShared[int, localRefs, *localRefs]([]int{1}, options{})
	require.True(t, s.release())
	assert.Panics(t, func() { s.release() })
}

func assertBounds[T any, R any, PR refs[R]](t *testing.T, start, end int, w *window[T, R, PR]) {
	t.Helper()
	s, e := w.bounds()
	assert.Equal(t, start, s, "start")
	assert.Equal(t, end, e, "end")
}
