package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("missing_file_uses_defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.json")

		store, err := Load(path, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, Settings{}, store.Get())
		assert.Equal(t, path, store.Path())
	})

	t.Run("partial_file_merges_over_defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"bucket":"notes","baseUrl":"https://cdn.example.com","extra":42}`), 0600))

		store, err := Load(path, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, Settings{Bucket: "notes", BaseURL: "https://cdn.example.com"}, store.Get())
	})

	t.Run("schema_violation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"bucket":123}`), 0600))

		_, err := Load(path, zerolog.Nop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "settings file is not valid")
	})

	t.Run("not_json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.json")
		require.NoError(t, os.WriteFile(path, []byte(`bucket = "x"`), 0600))

		_, err := Load(path, zerolog.Nop())
		assert.Error(t, err)
	})
}

func TestStore_Set(t *testing.T) {
	t.Run("trims_and_persists", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "data.json")
		store, err := Load(path, zerolog.Nop())
		require.NoError(t, err)

		require.NoError(t, store.Set(FieldBucket, "  notes-assets \n"))
		require.NoError(t, store.Set(FieldBaseURL, " https://cdn.example.com/// "))
		require.NoError(t, store.Set(FieldPath, " {year}/{uuid}.{ext} "))

		want := Settings{
			Bucket:  "notes-assets",
			BaseURL: "https://cdn.example.com",
			Path:    "{year}/{uuid}.{ext}",
		}
		assert.Equal(t, want, store.Get())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var onDisk Settings
		require.NoError(t, json.Unmarshal(data, &onDisk))
		assert.Equal(t, want, onDisk)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

		reloaded, err := Load(path, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, want, reloaded.Get())
	})

	t.Run("no_validation_at_write_time", func(t *testing.T) {
		store := NewMemoryStore(Settings{Bucket: "b"})
		require.NoError(t, store.Set(FieldBucket, "   "))
		assert.Equal(t, "", store.Get().Bucket)
	})

	t.Run("only_base_url_strips_slashes", func(t *testing.T) {
		store := NewMemoryStore(Settings{})
		require.NoError(t, store.Set(FieldEndpoint, "https://acct.r2.cloudflarestorage.com/"))
		require.NoError(t, store.Set(FieldPath, "/uploads/{uuid}/"))
		assert.Equal(t, "https://acct.r2.cloudflarestorage.com/", store.Get().Endpoint)
		assert.Equal(t, "/uploads/{uuid}/", store.Get().Path)
	})

	t.Run("unknown_field", func(t *testing.T) {
		store := NewMemoryStore(Settings{})
		before := store.Version()
		assert.Error(t, store.Set(Field("region"), "auto"))
		assert.Equal(t, before, store.Version())
	})
}

func TestStore_Version(t *testing.T) {
	store := NewMemoryStore(Settings{})
	v1 := store.Version()

	require.NoError(t, store.Set(FieldAccessKeyID, "AKID"))
	v2 := store.Version()
	assert.Greater(t, v2, v1)

	require.NoError(t, store.Set(FieldAccessKeyID, "AKID"))
	settings, v3 := store.Snapshot()
	assert.Greater(t, v3, v2, "every set invalidates, even with the same value")
	assert.Equal(t, "AKID", settings.AccessKeyID)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore(Settings{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set(FieldBucket, "bucket")
		}()
		go func() {
			defer wg.Done()
			_, _ = store.Snapshot()
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(21), store.Version())
}

func TestParseField(t *testing.T) {
	f, err := ParseField("baseurl")
	require.NoError(t, err)
	assert.Equal(t, FieldBaseURL, f)

	f, err = ParseField("accessKeyId")
	require.NoError(t, err)
	assert.Equal(t, FieldAccessKeyID, f)

	_, err = ParseField("region")
	assert.Error(t, err)
}

func TestSettings_Get(t *testing.T) {
	s := Settings{
		AccessKeyID: "a", SecretKey: "b", Bucket: "c",
		Endpoint: "d", BaseURL: "e", Path: "f",
	}
	got := make([]string, 0, len(Fields))
	for _, info := range Fields {
		got = append(got, s.Get(info.Field))
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, got)
}

func TestFields(t *testing.T) {
	require.Len(t, Fields, 6)
	for _, info := range Fields {
		assert.Equal(t, info.Field == FieldSecretKey, info.Secret, info.Name)
	}
	assert.Contains(t, Fields[5].Description, "{mdParentPath}")
}

func TestMask(t *testing.T) {
	assert.Equal(t, "", Mask(""))
	assert.Equal(t, "***", Mask("abc"))
	assert.Equal(t, "******wxyz", Mask("abcdefwxyz"))
}
