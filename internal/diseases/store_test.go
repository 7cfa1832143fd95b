package diseases

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func writeCache(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "disease_data_cache.json")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestPromptContextFormatsTopEntries(t *testing.T) {
	p := writeCache(t, `[
		{"disease":"Dengue","outbreaks":123456,"year":2024},
		{"disease":"Malaria","outbreaks":"15000","year":"2023"},
		{"disease":"","outbreaks":12}
	]`)
	s := NewStore(p, zerolog.Nop())

	got := s.PromptContext(context.Background())
	want := "Current Disease Trends in India:\n" +
		"1. Dengue: 123,456 cases (2024)\n" +
		"2. Malaria: 15,000 cases (2023)\n" +
		"3. Unknown: 12 cases (N/A)\n"
	require.Equal(t, want, got)
}

func TestTopKeepsFileOrderAndLimits(t *testing.T) {
	body := "["
	for i := 0; i < 12; i++ {
		if i > 0 {
			body += ","
		}
		body += `{"disease":"d` + string(rune('a'+i)) + `","outbreaks":` + string(rune('1'+i%9)) + `}`
	}
	body += "]"
	s := NewStore(writeCache(t, body), zerolog.Nop())

	top, err := s.Top(context.Background(), TopN)
	require.NoError(t, err)
	require.Len(t, top, 10)
	require.Equal(t, "da", top[0].Disease)
	require.Equal(t, "dj", top[9].Disease)
}

func TestMissingStoreIsUnavailable(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "missing.json"), zerolog.Nop())
	require.Equal(t, UnavailableContext, s.PromptContext(context.Background()))
	view := s.View(context.Background())
	require.False(t, view.Success)

	_, err := s.Snapshot(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestReloadSwapsAtomically(t *testing.T) {
	p := writeCache(t, `[{"disease":"Dengue","outbreaks":1,"year":2024}]`)
	s := NewStore(p, zerolog.Nop())
	first, err := s.Snapshot(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(p, []byte(`[{"disease":"Cholera","outbreaks":2,"year":2025}]`), 0o644))
	require.NoError(t, s.Reload(context.Background()))
	second, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Dengue", first.Entries[0].Disease)
	require.Equal(t, "Cholera", second.Entries[0].Disease)

	require.NoError(t, os.WriteFile(p, []byte(`not json`), 0o644))
	require.Error(t, s.Reload(context.Background()))
	third, _ := s.Snapshot(context.Background())
	require.Same(t, second, third)
}

func TestConcurrentFirstUseLoadsOnce(t *testing.T) {
	s := NewStore(writeCache(t, `[{"disease":"Typhoid","outbreaks":50000,"year":2024}]`), zerolog.Nop())
	var wg sync.WaitGroup
	snaps := make([]*Snapshot, 16)
	for i := range snaps {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snaps[i], _ = s.Snapshot(context.Background())
		}(i)
	}
	wg.Wait()
	for _, snap := range snaps {
		require.NotNil(t, snap)
		require.Same(t, snaps[0], snap)
	}
}

func TestViewRiskLevels(t *testing.T) {
	s := NewStaticStore([]Entry{
		{Disease: "A", Outbreaks: 100001, Year: "2024"},
		{Disease: "B", Outbreaks: 100000, Year: "2024"},
		{Disease: "C", Outbreaks: 10000, Year: "2024"},
	})
	view := s.View(context.Background())
	require.True(t, view.Success)
	require.Equal(t, "High", view.Diseases[0].RiskLevel)
	require.Equal(t, "Medium", view.Diseases[1].RiskLevel)
	require.Equal(t, "Low", view.Diseases[2].RiskLevel)
}
