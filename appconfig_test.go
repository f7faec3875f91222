package appconf

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeFixture(t *testing.T, content string) *StoreProvider {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, content)
	provider, err := NewStoreProvider(path)
	require.NoError(t, err)
	return provider
}

func TestAppConfigPrecedence(t *testing.T) {
	t.Run("ArgumentWinsOverStore", func(t *testing.T) {
		store := storeFixture(t, "server:\n  port: 8080\n")
		cfg, err := New(NewNamespace(map[string]any{"port": 9090}), store)
		require.NoError(t, err)
		require.NoError(t, cfg.RegisterBind("port", NewBind("server.port")))

		got, err := cfg.Get("port")
		require.NoError(t, err)
		assert.Equal(t, 9090, got)
	})

	t.Run("NilArgumentFallsToStore", func(t *testing.T) {
		store := storeFixture(t, "server:\n  port: 8080\n")
		cfg, err := New(NewNamespace(map[string]any{"port": nil}), store)
		require.NoError(t, err)
		require.NoError(t, cfg.RegisterBind("port", NewBind("server.port")))

		got, err := cfg.Get("port")
		require.NoError(t, err)
		assert.Equal(t, 8080, got)
	})

	t.Run("StaticDefaultWhenNoSourceAnswers", func(t *testing.T) {
		store := storeFixture(t, "server:\n  host: localhost\n")
		cfg, err := New(NewNamespace(map[string]any{}), store)
		require.NoError(t, err)
		require.NoError(t, cfg.RegisterBind("port", NewBind("server.port", WithDefault(3000))))

		got, err := cfg.Get("port")
		require.NoError(t, err)
		assert.Equal(t, 3000, got)
	})

	t.Run("BindDefaultsBeatStaticDefault", func(t *testing.T) {
		store := storeFixture(t, "server:\n  host: localhost\n")
		cfg, err := New(store)
		require.NoError(t, err)
		require.NoError(t, cfg.RegisterBind("port", NewBind("server.port", WithDefault(3000))))
		cfg.SetBindDefaults(map[string]any{"port": 5000})

		got, err := cfg.Get("port")
		require.NoError(t, err)
		assert.Equal(t, 5000, got)
	})

	t.Run("NilWhenNothingMatches", func(t *testing.T) {
		store := storeFixture(t, "server:\n  host: localhost\n")
		cfg, err := New(store)
		require.NoError(t, err)
		require.NoError(t, cfg.RegisterBind("port", NewBind("server.port")))

		got, err := cfg.Get("port")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("AppendMergesArgAndStore", func(t *testing.T) {
		store := storeFixture(t, "extra:\n  - from_config\n")
		cfg, err := New(NewNamespace(map[string]any{"items": []any{"from_arg"}}), store)
		require.NoError(t, err)
		require.NoError(t, cfg.RegisterBind("items", NewBind("extra", WithAppend())))

		got, err := cfg.Get("items")
		require.NoError(t, err)
		assert.Equal(t, []any{"from_arg", "from_config"}, got)
	})
}

func TestAppConfigWriteThrough(t *testing.T) {
	t.Run("SetThenGetRoundTrip", func(t *testing.T) {
		store := storeFixture(t, "server:\n  port: 8080\n")
		// A flag-style provider that would otherwise win every read.
		cfg, err := New(NewNamespace(map[string]any{"port": 5000}), store)
		require.NoError(t, err)
		require.NoError(t, cfg.RegisterBind("port", NewBind("server.port")))

		require.NoError(t, cfg.Set("port", 9090))

		got, err := cfg.Get("port")
		require.NoError(t, err)
		assert.Equal(t, 9090, got)

		// The write went through to the store at the bind's path.
		assert.Equal(t, 9090, store.Get("server.port"))
	})

	t.Run("CacheSurvivesStoreMutation", func(t *testing.T) {
		store := storeFixture(t, "server:\n  port: 8080\n")
		cfg, err := New(store)
		require.NoError(t, err)
		require.NoError(t, cfg.RegisterBind("port", NewBind("server.port")))

		require.NoError(t, cfg.Set("port", 9090))
		require.NoError(t, store.Set("server.port", 1234))

		got, err := cfg.Get("port")
		require.NoError(t, err)
		assert.Equal(t, 9090, got)
	})

	t.Run("CachedNilReturned", func(t *testing.T) {
		store := storeFixture(t, "server:\n  port: 8080\n")
		cfg, err := New(store)
		require.NoError(t, err)
		require.NoError(t, cfg.RegisterBind("port", NewBind("server.port")))

		require.NoError(t, cfg.Set("port", nil))

		got, err := cfg.Get("port")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("UnboundKeyWritesDirectly", func(t *testing.T) {
		store := storeFixture(t, "server:\n  port: 8080\n")
		cfg, err := New(store)
		require.NoError(t, err)

		require.NoError(t, cfg.Set("server.name", "edge"))
		got, err := cfg.Get("server.name")
		require.NoError(t, err)
		assert.Equal(t, "edge", got)
	})

	t.Run("AddressingErrorSurfaces", func(t *testing.T) {
		store := storeFixture(t, "tags:\n  - a\n")
		cfg, err := New(store)
		require.NoError(t, err)

		err = cfg.Set("tags.7", "b")
		var pathErr *PathError
		assert.ErrorAs(t, err, &pathErr)
	})
}

func TestAppConfigNoBackingStore(t *testing.T) {
	cfg, err := New(NewNamespace(map[string]any{"port": 9090}))
	require.NoError(t, err)
	require.NoError(t, cfg.RegisterBind("port", NewBind("server.port")))

	t.Run("ReadsStillResolve", func(t *testing.T) {
		got, err := cfg.Get("port")
		require.NoError(t, err)
		assert.Equal(t, 9090, got)
	})

	t.Run("UnboundReadIsNil", func(t *testing.T) {
		got, err := cfg.Get("anything.else")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("WriteFails", func(t *testing.T) {
		assert.ErrorIs(t, cfg.Set("port", 1), ErrNoBackingStore)
	})

	t.Run("SaveFails", func(t *testing.T) {
		assert.ErrorIs(t, cfg.Save(""), ErrNoBackingStore)
	})
}

func TestAppConfigConstruction(t *testing.T) {
	t.Run("MultipleBackingStoresRejected", func(t *testing.T) {
		a := NewStoreProviderFromTree(map[string]any{})
		b := NewStoreProviderFromTree(map[string]any{})
		_, err := New(a, b)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "multiple backing stores")
	})

	t.Run("DuplicateBindRejected", func(t *testing.T) {
		cfg, err := New()
		require.NoError(t, err)
		require.NoError(t, cfg.RegisterBind("port", NewBind("server.port")))
		err = cfg.RegisterBind("port", NewBind("server.port"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already registered")
	})

	t.Run("EmptyBindNameRejected", func(t *testing.T) {
		cfg, err := New()
		require.NoError(t, err)
		assert.Error(t, cfg.RegisterBind("", NewBind("server.port")))
	})
}

func TestAppConfigSave(t *testing.T) {
	store := storeFixture(t, "server:\n  port: 8080\n")
	cfg, err := New(store)
	require.NoError(t, err)
	require.NoError(t, cfg.RegisterBind("port", NewBind("server.port")))

	require.NoError(t, cfg.Set("port", 9090))
	require.NoError(t, cfg.Save(""))

	reloaded, err := NewStoreProvider(store.Path())
	require.NoError(t, err)
	assert.Equal(t, 9090, reloaded.Get("server.port"))
}

func TestAppConfigTypedGetters(t *testing.T) {
	store := storeFixture(t, "server:\n  port: \"8080\"\n  debug: true\n  ratio: 0.5\n  name: edge\n  timeout: 30s\ntags:\n  - a\n  - b\n")
	cfg, err := New(store)
	require.NoError(t, err)
	require.NoError(t, cfg.RegisterBind("port", NewBind("server.port")))
	require.NoError(t, cfg.RegisterBind("debug", NewBind("server.debug")))
	require.NoError(t, cfg.RegisterBind("ratio", NewBind("server.ratio")))
	require.NoError(t, cfg.RegisterBind("name", NewBind("server.name")))
	require.NoError(t, cfg.RegisterBind("tags", NewBind("tags")))

	port, err := cfg.Int64("port")
	require.NoError(t, err)
	assert.Equal(t, int64(8080), port)

	debug, err := cfg.Bool("debug")
	require.NoError(t, err)
	assert.True(t, debug)

	ratio, err := cfg.Float64("ratio")
	require.NoError(t, err)
	assert.Equal(t, 0.5, ratio)

	name, err := cfg.String("name")
	require.NoError(t, err)
	assert.Equal(t, "edge", name)

	tags, err := cfg.Strings("tags")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tags)

	require.NoError(t, cfg.RegisterBind("timeout", NewBind("server.timeout")))
	timeout, err := cfg.Duration("timeout")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)

	t.Run("NilConversions", func(t *testing.T) {
		require.NoError(t, cfg.RegisterBind("missing", NewBind("no.such.key")))

		s, err := cfg.String("missing")
		require.NoError(t, err)
		assert.Empty(t, s)

		_, err = cfg.Int64("missing")
		assert.Error(t, err)
		_, err = cfg.Bool("missing")
		assert.Error(t, err)
		_, err = cfg.Float64("missing")
		assert.Error(t, err)
	})
}

func TestAppConfigIntrospection(t *testing.T) {
	store := storeFixture(t, "server:\n  port: 8080\n")
	cfg, err := New(NewNamespace(map[string]any{}), store)
	require.NoError(t, err)
	require.NoError(t, cfg.RegisterBind("port", NewBind("server.port")))
	require.NoError(t, cfg.RegisterBind("host", NewBind("server.host", WithDefault("localhost"))))

	assert.Equal(t, []string{"host", "port"}, cfg.BindNames())
	assert.Same(t, cfg.Bind("port"), cfg.binds["port"])
	assert.Nil(t, cfg.Bind("missing"))

	assert.True(t, cfg.Contains("server.port"))
	assert.False(t, cfg.Contains("server.missing"))

	require.NoError(t, cfg.Set("port", 9999))
	debug := cfg.Debug()
	assert.Contains(t, debug, "port")
	assert.Contains(t, debug, "server.port")
	assert.Contains(t, debug, "cached:     9999")
	assert.Contains(t, debug, "localhost")
}
