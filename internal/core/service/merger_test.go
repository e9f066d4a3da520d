package service

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/yndnr/modi-go/internal/core/domain"
	"github.com/yndnr/modi-go/internal/infra/confloader"
)

const testHome = "/opt/modi"

var testSystem = domain.SystemProperties{"modi.home": testHome}

func newTestMerger(t *testing.T, fsys afero.Fs, specs ...domain.SourceSpec) *Merger {
	t.Helper()
	classpath := fstest.MapFS{
		"kernel.properties": {Data: []byte("kernel.key=kernel\nshared=kernel\n")},
	}
	reader := confloader.NewSourceReader(confloader.WithFs(fsys), confloader.WithClasspath(classpath))
	m := NewMerger(testSystem, WithReader(reader))
	for _, spec := range specs {
		require.NoError(t, m.Register(spec))
	}
	return m
}

func TestMerger_Merge(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, testHome+"/modi.properties", "shared=install\ninstall.key=${kernel.key}-install\nhome.dir=${modi.home}/data\n")
	writeFile(t, fsys, testHome+"/local.properties", "shared=local\n")

	m := newTestMerger(t, fsys,
		domain.SourceSpec{Name: "install", Location: "${modi.home}/modi.properties", Rank: 20},
		domain.SourceSpec{Name: "kernel", Location: "classpath:kernel.properties", Rank: 0},
		domain.SourceSpec{Name: "local", Location: "${modi.home}/local.properties", Rank: 20},
	)

	cfg, err := m.Merge(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"kernel", "install", "local"}, cfg.SourceNames())
	assert.Equal(t, "local", cfg.GetString("shared", ""), "later source of equal rank wins")
	assert.Equal(t, "kernel-install", cfg.GetString("install.key", ""))
	assert.Equal(t, "/opt/modi/data", cfg.GetString("home.dir", ""))
	assert.Empty(t, cfg.Unresolved())

	install, ok := cfg.Source("install")
	require.True(t, ok)
	assert.Equal(t, "${kernel.key}-install", install["install.key"], "named views stay raw")
	assert.Equal(t, "${kernel.key}-install", cfg.Raw()["install.key"])
}

func TestMerger_SystemPropertiesWin(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/etc/app.properties", "modi.home=/elsewhere\npath=${modi.home}/x\n")

	m := newTestMerger(t, fsys, domain.SourceSpec{Name: "app", Location: "/etc/app.properties"})

	cfg, err := m.Merge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/opt/modi/x", cfg.GetString("path", ""))
}

func TestMerger_Defaults(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/etc/a.properties", "port=${server.port:8080}\nlate=${set.later:early}\n")
	writeFile(t, fsys, "/etc/b.properties", "set.later=late\n")

	m := newTestMerger(t, fsys,
		domain.SourceSpec{Name: "a", Location: "/etc/a.properties"},
		domain.SourceSpec{Name: "b", Location: "/etc/b.properties"},
	)

	cfg, err := m.Merge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.GetString("port", ""))
	assert.Equal(t, "late", cfg.GetString("late", ""), "defaults apply only after every source is merged")
}

func TestMerger_UnresolvedLeftLiteral(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/etc/a.properties", "url=http://${no.such.host}/\n")

	m := newTestMerger(t, fsys, domain.SourceSpec{Name: "a", Location: "/etc/a.properties"})

	cfg, err := m.Merge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://${no.such.host}/", cfg.GetString("url", ""))
	assert.Equal(t, []string{"no.such.host"}, cfg.Unresolved())
}

func TestMerger_MissingSources(t *testing.T) {
	fsys := afero.NewMemMapFs()

	t.Run("optional skipped", func(t *testing.T) {
		m := newTestMerger(t, fsys,
			domain.SourceSpec{Name: "kernel", Location: "classpath:kernel.properties"},
			domain.SourceSpec{Name: "local", Location: "${modi.home}/local.properties", Optional: true},
		)
		cfg, err := m.Merge(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"kernel"}, cfg.SourceNames())
	})

	t.Run("required fails", func(t *testing.T) {
		m := newTestMerger(t, fsys, domain.SourceSpec{Name: "local", Location: "${modi.home}/local.properties"})
		cfg, err := m.Merge(context.Background())
		assert.Nil(t, cfg)
		assert.True(t, errors.Is(err, domain.ErrMergeRead))
	})

	t.Run("unresolved location", func(t *testing.T) {
		m := newTestMerger(t, fsys, domain.SourceSpec{Name: "x", Location: "${undefined.dir}/x.properties"})
		_, err := m.Merge(context.Background())
		assert.True(t, errors.Is(err, domain.ErrMergeRead))

		m = newTestMerger(t, fsys, domain.SourceSpec{Name: "x", Location: "${undefined.dir}/x.properties", Optional: true})
		_, err = m.Merge(context.Background())
		assert.NoError(t, err)
	})
}

func TestMerger_ParseFailure(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/etc/bad.yaml", "key: [unterminated\n")

	m := newTestMerger(t, fsys, domain.SourceSpec{Name: "bad", Location: "/etc/bad.yaml", Optional: true})

	cfg, err := m.Merge(context.Background())
	assert.Nil(t, cfg)
	assert.True(t, errors.Is(err, domain.ErrMergeRead), "a present but broken source fails even when optional")
}

func TestMerger_CanceledContext(t *testing.T) {
	m := newTestMerger(t, afero.NewMemMapFs())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Merge(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMerger_RegisterErrors(t *testing.T) {
	m := newTestMerger(t, afero.NewMemMapFs(), domain.SourceSpec{Name: "a", Location: "/a"})

	err := m.Register(domain.SourceSpec{Name: "a", Location: "/b"})
	assert.True(t, errors.Is(err, domain.ErrDuplicateSource))

	err = m.Register(domain.SourceSpec{Name: "", Location: "/b"})
	assert.True(t, errors.Is(err, domain.ErrInvalidSource))

	err = m.SetRank("nope", 1)
	assert.True(t, errors.Is(err, domain.ErrSourceNotFound))
}

func TestMerger_SetRankReorders(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/etc/a.properties", "k=a\n")
	writeFile(t, fsys, "/etc/b.properties", "k=b\n")

	m := newTestMerger(t, fsys,
		domain.SourceSpec{Name: "a", Location: "/etc/a.properties"},
		domain.SourceSpec{Name: "b", Location: "/etc/b.properties"},
	)
	require.NoError(t, m.SetRank("a", 5))

	cfg, err := m.Merge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", cfg.GetString("k", ""))
	assert.Equal(t, []string{"b", "a"}, cfg.SourceNames())
}

func TestMerger_Finalize(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/etc/a.properties", "k=a\n")
	writeFile(t, fsys, "/etc/b.properties", "k=b\n")

	m := newTestMerger(t, fsys,
		domain.SourceSpec{Name: "a", Location: "/etc/a.properties"},
		domain.SourceSpec{Name: "b", Location: "/etc/b.properties"},
	)
	before, err := m.Merge(context.Background())
	require.NoError(t, err)

	require.NoError(t, m.Finalize())
	assert.True(t, m.Finalized())

	err = m.Finalize()
	assert.True(t, errors.Is(err, domain.ErrPostInitMutation), "second finalize must fail")

	err = m.SetRank("a", 100)
	assert.True(t, errors.Is(err, domain.ErrPostInitMutation))
	err = m.Register(domain.SourceSpec{Name: "c", Location: "/etc/c.properties"})
	assert.True(t, errors.Is(err, domain.ErrPostInitMutation))

	after, err := m.Merge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before.Values(), after.Values(), "rejected mutations leave the configuration unchanged")
	assert.Equal(t, before.SourceNames(), after.SourceNames())
}

func TestMerger_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		keys := []string{"a", "b", "c", "d"}
		fsys := afero.NewMemMapFs()
		classpath := fstest.MapFS{}
		reader := confloader.NewSourceReader(confloader.WithFs(fsys), confloader.WithClasspath(classpath))
		m := NewMerger(testSystem, WithReader(reader))

		n := rapid.IntRange(1, 4).Draw(t, "sources")
		for i := range n {
			path := "/etc/s" + string(rune('0'+i)) + ".properties"
			content := ""
			for _, k := range keys {
				if rapid.Bool().Draw(t, "has") {
					content += k + "=" + valueGen(keys).Draw(t, "value") + "\n"
				}
			}
			writeFile(t, fsys, path, content)
			spec := domain.SourceSpec{
				Name:     "s" + string(rune('0'+i)),
				Location: path,
				Rank:     rapid.IntRange(0, 2).Draw(t, "rank"),
			}
			if err := m.Register(spec); err != nil {
				t.Fatalf("register: %v", err)
			}
		}

		first, err := m.Merge(context.Background())
		if err != nil {
			t.Fatalf("merge: %v", err)
		}
		second, err := m.Merge(context.Background())
		if err != nil {
			t.Fatalf("merge again: %v", err)
		}
		if first.Fingerprint() != second.Fingerprint() {
			t.Fatalf("merge not repeatable: %v vs %v", first.Values(), second.Values())
		}

		// The highest-ranked, last-declared source holding a key wins it.
		specs := m.Specs()
		for _, k := range keys {
			want, found := "", false
			for _, spec := range specs {
				if v, ok := first.Sources()[spec.Name][k]; ok {
					want, found = v, true
				}
			}
			got, ok := first.Raw()[k]
			if ok != found || got != want {
				t.Fatalf("raw[%q] = %q (%v), want %q (%v)", k, got, ok, want, found)
			}
		}
	})
}
