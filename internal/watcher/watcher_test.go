package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supervision/internal/loader"
	"supervision/internal/model"
)

func TestSlotFromName(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		slot model.Slot
		ok   bool
	}{
		"/data/snapshot_morning.csv":   {model.SlotMorning, true},
		"snapshot_afternoon.XLSX":      {model.SlotAfternoon, true},
		"snapshot_afternoon.txt":       {model.SlotAfternoon, true},
		".upload-123.csv":              {"", false},
		"snapshot_morning.csv.tmp":     {"", false},
		"snapshot_evening.csv":         {"", false},
		"/data/supervision.db-journal": {"", false},
	}
	for name, want := range cases {
		slot, ok := slotFromName(name)
		assert.Equal(t, want.ok, ok, name)
		assert.Equal(t, want.slot, slot, name)
	}
}

func TestWatcherWarmsCache(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	l := loader.New(nil, nil)
	w := New(dir, l, 20*time.Millisecond)

	reloaded := make(chan model.Slot, 8)
	w.OnReload(func(slot model.Slot, err error) {
		if err == nil {
			reloaded <- slot
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	t.Cleanup(func() { _ = w.Close() })

	body := "Setor;CodigoRevendedor;ValorPraticado;Tipo\n14210 FVC;100;10;Venda\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "snapshot_morning.csv"), []byte(body), 0644))

	select {
	case slot := <-reloaded:
		assert.Equal(t, model.SlotMorning, slot)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "timed out waiting for cache warm-up")
	}

	_, ok := l.Cache().ModTime(model.SlotMorning)
	assert.True(t, ok)
}
