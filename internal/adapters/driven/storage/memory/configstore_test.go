package memory

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudstore/pagesmith/internal/core/ports/driven"
)

func TestConfigStore_InterfaceCompliance(t *testing.T) {
	var _ driven.ConfigStore = NewConfigStore()
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("storage.driver", "postgres"))
	require.NoError(t, store.Set("storage.driver", "sqlite"))

	val, ok := store.Get("storage.driver")
	assert.True(t, ok)
	assert.Equal(t, "sqlite", val)

	_, ok = store.Get("storage.dsn")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("pagination.docx_mode", "fixed"))
	require.NoError(t, store.Set("pagination.txt_lines_per_page", int64(30)))
	require.NoError(t, store.Set("ocr.enabled", true))
	require.NoError(t, store.Set("ocr.languages", []any{"eng", 7, "rus"}))
	require.NoError(t, store.Set("conversion.max_launches_per_second", 2.5))

	assert.Equal(t, "fixed", store.GetString("pagination.docx_mode"))
	assert.Equal(t, 30, store.GetInt("pagination.txt_lines_per_page"))
	assert.True(t, store.GetBool("ocr.enabled"))
	assert.Equal(t, []string{"eng", "rus"}, store.GetStringSlice("ocr.languages"))
	assert.InDelta(t, 2.5, store.GetFloat("conversion.max_launches_per_second"), 0.0001)

	// Wrong types read as zero values.
	assert.Empty(t, store.GetString("ocr.enabled"))
	assert.Zero(t, store.GetInt("pagination.docx_mode"))
	assert.False(t, store.GetBool("pagination.docx_mode"))
	assert.Nil(t, store.GetStringSlice("ocr.enabled"))
	assert.Zero(t, store.GetFloat("ocr.enabled"))
}

func TestConfigStore_GetFloat_WidensIntegers(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("a", 3))
	require.NoError(t, store.Set("b", int64(4)))

	assert.InDelta(t, 3.0, store.GetFloat("a"), 0)
	assert.InDelta(t, 4.0, store.GetFloat("b"), 0)
	assert.Zero(t, store.GetFloat("missing"))
}

func TestConfigStore_GetDuration(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  time.Duration
	}{
		{"duration string", "90s", 90 * time.Second},
		{"padded string", " 10m ", 10 * time.Minute},
		{"int seconds", 120, 120 * time.Second},
		{"int64 seconds", int64(5), 5 * time.Second},
		{"native duration", 3 * time.Millisecond, 3 * time.Millisecond},
		{"bad string", "soon", 0},
		{"wrong type", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewConfigStore()
			require.NoError(t, store.Set("jobs.timeout", tt.value))
			assert.Equal(t, tt.want, store.GetDuration("jobs.timeout"))
		})
	}
}

func TestConfigStore_PersistenceNoOps(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("k", "v"))

	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
	assert.Equal(t, "v", store.GetString("k"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set(fmt.Sprintf("key.%d", n), n)
		}(i)
		go func(n int) {
			defer wg.Done()
			_ = store.GetInt(fmt.Sprintf("key.%d", n))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 20; i++ {
		assert.Equal(t, i, store.GetInt(fmt.Sprintf("key.%d", i)))
	}
}
