package calendar

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu      sync.Mutex
	sources []System
	errs    []error
}

func (r *recordingObserver) ObserveNormalization(source System, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, source)
	r.errs = append(r.errs, err)
}

func TestNormalizeToLunarHijri(t *testing.T) {
	svc := NewService()
	cases := []struct {
		in   string
		want string
	}{
		{"2025-01-01", "1446-07-01"},
		{"2024-07-08", "1446-01-01"},
		{"1400-01-01", "1442-08-07"},
		{"1701-01-01", "1112-07-21"},
		{"1299-03-15", "1299-03-15"},
		{"0900-2-3", "0900-02-03"},
		{"۱۴۰۰-۰۱-۰۱", "1442-08-07"},
		{"٢٠٢٥-٠١-٠١", "1446-07-01"},
		{"  2025-01-01  ", "1446-07-01"},
		{"2025-01-01 11:37:03", "1446-07-01 11:37:03"},
	}
	for _, tc := range cases {
		got, err := svc.NormalizeToLunarHijri(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestNormalizeIsIdempotentForLunarInput(t *testing.T) {
	svc := NewService()
	for _, in := range []string{"1850-01-01", "1800-06-15", "1701-01-01"} {
		once, err := svc.NormalizeToLunarHijri(in)
		require.NoError(t, err)
		twice, err := svc.NormalizeToLunarHijri(once)
		require.NoError(t, err)
		require.Equal(t, once, twice, in)
	}
	for _, in := range []string{"1446-07-01", "1299-12-29"} {
		out, err := svc.NormalizeFrom(LunarHijri, in)
		require.NoError(t, err)
		require.Equal(t, in, out)
	}
}

func TestCurrentEraLunarOutputIsNotReDetectedAsLunar(t *testing.T) {
	svc := NewService()

	once, err := svc.NormalizeToLunarHijri("2025-01-01")
	require.NoError(t, err)
	require.Equal(t, "1446-07-01", once)

	det, err := svc.Detect(once)
	require.NoError(t, err)
	require.Equal(t, SolarHijri, det.System)
	require.Equal(t, "solar_hijri_era", det.Rule)

	twice, err := svc.NormalizeToLunarHijri(once)
	require.NoError(t, err)
	require.Equal(t, "1490-07-14", twice)

	pinned, err := svc.NormalizeFrom(LunarHijri, once)
	require.NoError(t, err)
	require.Equal(t, once, pinned)
}

func TestNormalizeErrors(t *testing.T) {
	svc := NewService()

	_, err := svc.NormalizeToLunarHijri("2025-13-01")
	require.ErrorIs(t, err, ErrInvalidDate)
	var invalid *InvalidDateError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, Gregorian, invalid.Date.System)

	for _, in := range []string{"2025/01/01", "2025-01", "2025-01-01-02", "2025-aa-01", "", "2025--01", "-2025-01-01", "2025-+1-01"} {
		_, err := svc.NormalizeToLunarHijri(in)
		require.ErrorIs(t, err, ErrParse, in)
		require.False(t, errors.Is(err, ErrInvalidDate), in)
	}

	_, err = svc.NormalizeToLunarHijri("1402-12-30")
	require.ErrorIs(t, err, ErrInvalidDate, "1402 is a common solar year")

	_, err = svc.NormalizeToLunarHijri("2025-02-29")
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestNormalizeBoundsYears(t *testing.T) {
	svc := NewService()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, in := range []string{"99999-01-01", "1000000000000000-03-01", "9000000000000000000-01-01", "3000000000000000000-12-31", "2025-001-01", "2025-01-001"} {
			_, err := svc.NormalizeToLunarHijri(in)
			if !errors.Is(err, ErrParse) {
				t.Errorf("%s: expected parse error, got %v", in, err)
			}
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("normalization of oversized years did not return")
	}

	got, err := svc.NormalizeToLunarHijri("9999-12-31")
	require.NoError(t, err)
	require.Equal(t, "9666-04-02", got)

	_, err = NewDate(Gregorian, MaxYear+1, 1, 1)
	require.ErrorIs(t, err, ErrInvalidDate)

	_, err = svc.Convert(Date{System: LunarHijri, Year: 9999, Month: 1, Day: 1}, Gregorian)
	require.ErrorIs(t, err, ErrInvalidDate)
	_, err = svc.SolarHijriToGregorian(9999, 1, 1)
	require.ErrorIs(t, err, ErrInvalidDate)

	s, err := svc.GregorianToSolarHijri(Date{Year: 9999, Month: 12, Day: 31})
	require.NoError(t, err)
	require.Equal(t, "9378-10-10", s)
}

func TestSolarGregorianBridge(t *testing.T) {
	svc := NewService()

	g, err := svc.SolarHijriToGregorian(1400, 1, 1)
	require.NoError(t, err)
	require.Equal(t, Date{System: Gregorian, Year: 2021, Month: 3, Day: 21}, g)

	s, err := svc.GregorianToSolarHijri(Date{Year: 2021, Month: 3, Day: 21})
	require.NoError(t, err)
	require.Equal(t, "1400-01-01", s)

	_, err = svc.SolarHijriToGregorian(1400, 12, 30)
	require.ErrorIs(t, err, ErrInvalidDate)

	_, err = svc.GregorianToSolarHijri(Date{System: LunarHijri, Year: 1446, Month: 1, Day: 1})
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestConvertBeforeEpoch(t *testing.T) {
	svc := NewService()
	_, err := svc.Convert(Date{System: Gregorian, Year: 600, Month: 1, Day: 1}, LunarHijri)
	require.ErrorIs(t, err, ErrInvalidDate)

	got, err := svc.Convert(Date{System: Gregorian, Year: 600, Month: 1, Day: 1}, Gregorian)
	require.NoError(t, err)
	require.Equal(t, 600, got.Year)
}

func TestDetectRawString(t *testing.T) {
	svc := NewService()
	det, err := svc.Detect("1600-01-01")
	require.NoError(t, err)
	require.Equal(t, LunarHijri, det.System)
	require.True(t, det.Ambiguous)

	_, err = svc.Detect("16000101")
	require.ErrorIs(t, err, ErrParse)
}

func TestLunarTimestamp(t *testing.T) {
	svc := NewService()
	ts := time.Date(2025, time.January, 1, 11, 37, 3, 0, time.UTC)
	require.Equal(t, "1446-07-01 11:37:03", svc.LunarTimestamp(ts))
}

func TestObserverSeesOutcomes(t *testing.T) {
	obs := &recordingObserver{}
	svc := NewService(WithObserver(obs))

	_, _ = svc.NormalizeToLunarHijri("2025-01-01")
	_, _ = svc.NormalizeToLunarHijri("1402-12-30")
	_, _ = svc.NormalizeToLunarHijri("bad")

	require.Equal(t, []System{Gregorian, SolarHijri, 0}, obs.sources)
	require.NoError(t, obs.errs[0])
	require.ErrorIs(t, obs.errs[1], ErrInvalidDate)
	require.ErrorIs(t, obs.errs[2], ErrParse)
}

func TestServiceIsSafeForConcurrentUse(t *testing.T) {
	svc := NewService()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				out, err := svc.NormalizeToLunarHijri("2025-01-01")
				if err != nil || out != "1446-07-01" {
					t.Errorf("unexpected result %q, %v", out, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestDateTime(t *testing.T) {
	d := Date{System: SolarHijri, Year: 1400, Month: 1, Day: 1}
	tm, err := d.Time()
	require.NoError(t, err)
	require.Equal(t, time.Date(2021, time.March, 21, 0, 0, 0, 0, time.UTC), tm)
	require.Equal(t, Date{System: Gregorian, Year: 2021, Month: 3, Day: 21}, GregorianDate(tm))
}
