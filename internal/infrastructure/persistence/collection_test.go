package persistence

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Tags []string `json:"tags,omitempty"`
}

func (r testRecord) RecordID() string { return r.ID }

func (r testRecord) Clone() testRecord {
	out := r
	out.Tags = append([]string(nil), r.Tags...)
	return out
}

func newTestCollection(t *testing.T) (*Collection[testRecord], string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.json")
	return NewCollection[testRecord](path, zap.NewNop()), path
}

func readFileRecords(t *testing.T, path string) []testRecord {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var out []testRecord
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestCollectionLoad(t *testing.T) {
	t.Run("missing file yields empty collection", func(t *testing.T) {
		c, _ := newTestCollection(t)
		require.NoError(t, c.Load())
		assert.Empty(t, c.GetAll())
	})

	t.Run("empty file yields empty collection", func(t *testing.T) {
		c, path := newTestCollection(t)
		require.NoError(t, os.WriteFile(path, nil, 0o644))
		require.NoError(t, c.Load())
		assert.Empty(t, c.GetAll())
	})

	t.Run("malformed file degrades without destroying it", func(t *testing.T) {
		c, path := newTestCollection(t)
		corrupt := []byte(`[{"id": "a", "name": `)
		require.NoError(t, os.WriteFile(path, corrupt, 0o644))

		err := c.Load()
		assert.Error(t, err)
		assert.Empty(t, c.GetAll())

		// The corrupt file must be left exactly as it was.
		raw, readErr := os.ReadFile(path)
		require.NoError(t, readErr)
		assert.Equal(t, corrupt, raw)
	})

	t.Run("lazy load on first access", func(t *testing.T) {
		c, path := newTestCollection(t)
		seed := []byte(`[{"id":"a","name":"first"}]`)
		require.NoError(t, os.WriteFile(path, seed, 0o644))

		all := c.GetAll()
		require.Len(t, all, 1)
		assert.Equal(t, "first", all[0].Name)
	})
}

func TestCollectionAdd(t *testing.T) {
	c, path := newTestCollection(t)

	all, err := c.Add(testRecord{ID: "a", Name: "one"})
	require.NoError(t, err)
	require.Len(t, all, 1)

	all, err = c.Add(testRecord{ID: "b", Name: "two"})
	require.NoError(t, err)
	require.Len(t, all, 2)

	onDisk := readFileRecords(t, path)
	assert.Equal(t, []testRecord{{ID: "a", Name: "one"}, {ID: "b", Name: "two"}}, onDisk)
}

func TestCollectionUpdate(t *testing.T) {
	t.Run("persists the mutated copy", func(t *testing.T) {
		c, path := newTestCollection(t)
		_, err := c.Add(testRecord{ID: "a", Name: "before"})
		require.NoError(t, err)

		updated, err := c.Update("a", func(r *testRecord) error {
			r.Name = "after"
			return nil
		})
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, "after", updated.Name)

		onDisk := readFileRecords(t, path)
		assert.Equal(t, "after", onDisk[0].Name)
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		c, _ := newTestCollection(t)
		updated, err := c.Update("ghost", func(r *testRecord) error {
			t.Fatal("mutator must not run for unknown id")
			return nil
		})
		assert.NoError(t, err)
		assert.Nil(t, updated)
	})

	t.Run("failing mutator persists nothing", func(t *testing.T) {
		c, path := newTestCollection(t)
		_, err := c.Add(testRecord{ID: "a", Name: "original"})
		require.NoError(t, err)

		boom := errors.New("mutation rejected")
		updated, err := c.Update("a", func(r *testRecord) error {
			r.Name = "half-applied"
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, updated)

		live, found := c.Find("a")
		require.True(t, found)
		assert.Equal(t, "original", live.Name)
		assert.Equal(t, "original", readFileRecords(t, path)[0].Name)
	})

	t.Run("mutator gets a copy, not the live record", func(t *testing.T) {
		c, _ := newTestCollection(t)
		_, err := c.Add(testRecord{ID: "a", Name: "original", Tags: []string{"x"}})
		require.NoError(t, err)

		var seen *testRecord
		_, err = c.Update("a", func(r *testRecord) error {
			seen = r
			return errors.New("abort")
		})
		require.Error(t, err)

		seen.Name = "scribbled"
		seen.Tags[0] = "scribbled"

		live, _ := c.Find("a")
		assert.Equal(t, "original", live.Name)
		assert.Equal(t, "x", live.Tags[0])
	})
}

func TestCollectionDelete(t *testing.T) {
	c, path := newTestCollection(t)
	_, err := c.Add(testRecord{ID: "a"})
	require.NoError(t, err)
	_, err = c.Add(testRecord{ID: "b"})
	require.NoError(t, err)

	t.Run("removes and persists", func(t *testing.T) {
		removed, err := c.Delete("a")
		require.NoError(t, err)
		assert.True(t, removed)

		for _, r := range c.GetAll() {
			assert.NotEqual(t, "a", r.ID)
		}
		assert.Len(t, readFileRecords(t, path), 1)
	})

	t.Run("unknown id returns false, length unchanged", func(t *testing.T) {
		removed, err := c.Delete("ghost")
		require.NoError(t, err)
		assert.False(t, removed)
		assert.Len(t, c.GetAll(), 1)
	})
}

func TestCollectionAtomicSave(t *testing.T) {
	t.Run("stale temp file from a crashed save does not shadow the data", func(t *testing.T) {
		c, path := newTestCollection(t)
		_, err := c.Add(testRecord{ID: "a", Name: "committed"})
		require.NoError(t, err)

		// Simulate a crash after the temp write but before the rename.
		require.NoError(t, os.WriteFile(path+".tmp", []byte(`[{"id":"a","name":"torn wri`), 0o644))

		// The real file is fully intact.
		onDisk := readFileRecords(t, path)
		require.Len(t, onDisk, 1)
		assert.Equal(t, "committed", onDisk[0].Name)

		// The next successful save replaces the temp file and the data file
		// ends up fully intact again.
		_, err = c.Add(testRecord{ID: "b", Name: "second"})
		require.NoError(t, err)
		assert.Len(t, readFileRecords(t, path), 2)
		_, statErr := os.Stat(path + ".tmp")
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("write failure preserves the previous file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "records.json")
		c := NewCollection[testRecord](path, zap.NewNop())
		_, err := c.Add(testRecord{ID: "a", Name: "safe"})
		require.NoError(t, err)

		// Occupy the temp path with a directory so the temp write fails.
		require.NoError(t, os.Mkdir(path+".tmp", 0o755))
		t.Cleanup(func() { _ = os.Remove(path + ".tmp") })

		_, err = c.Add(testRecord{ID: "b", Name: "doomed"})
		assert.Error(t, err)

		onDisk := readFileRecords(t, path)
		require.Len(t, onDisk, 1)
		assert.Equal(t, "safe", onDisk[0].Name)
	})
}

func TestCollectionBackup(t *testing.T) {
	t.Run("writes a timestamped copy", func(t *testing.T) {
		c, path := newTestCollection(t)
		_, err := c.Add(testRecord{ID: "a"})
		require.NoError(t, err)

		require.NoError(t, c.Backup())

		matches, err := filepath.Glob(path + ".*.bak")
		require.NoError(t, err)
		require.Len(t, matches, 1)

		original, err := os.ReadFile(path)
		require.NoError(t, err)
		backup, err := os.ReadFile(matches[0])
		require.NoError(t, err)
		assert.Equal(t, original, backup)
	})

	t.Run("missing backing file is not an error", func(t *testing.T) {
		c, _ := newTestCollection(t)
		assert.NoError(t, c.Backup())
	})
}

func TestCollectionSnapshotIsolation(t *testing.T) {
	c, _ := newTestCollection(t)
	_, err := c.Add(testRecord{ID: "a", Name: "original"})
	require.NoError(t, err)

	snapshot := c.GetAll()
	snapshot[0].Name = "scribbled"

	live, _ := c.Find("a")
	assert.Equal(t, "original", live.Name)
}
