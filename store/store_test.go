package store_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptctx/promptctx/schema"
	"github.com/promptctx/promptctx/store"
)

func TestAddItem(t *testing.T) {
	t.Run("assigns ids and increasing sequence", func(t *testing.T) {
		s := store.New()

		id1, err := s.AddItem(schema.CategoryAction, "ran migration", []string{"database"})
		require.NoError(t, err)
		id2, err := s.AddItem(schema.CategoryDecision, "kept sqlite", []string{"database"})
		require.NoError(t, err)

		require.NotEmpty(t, id1)
		require.NotEmpty(t, id2)
		assert.Less(t, id1, id2, "ULIDs must sort by insertion order")

		items := s.Items()
		require.Len(t, items, 2)
		assert.Less(t, items[0].Seq, items[1].Seq)
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		s := store.New()
		_, err := s.AddItem(schema.Category("bogus"), "x", nil)
		assert.ErrorIs(t, err, store.ErrInvalidCategory)
	})

	t.Run("item options are applied", func(t *testing.T) {
		s := store.New()
		vec := []float32{0.1, 0.2}
		_, err := s.AddItem(schema.CategoryLearning, "indices beat scans", []string{"database"},
			store.WithActivityID("act-1"),
			store.WithTaskID("task-1"),
			store.WithMetadata(map[string]any{"source": "profiler"}),
			store.WithEmbedding(vec),
		)
		require.NoError(t, err)

		item := s.Items()[0]
		assert.Equal(t, "act-1", item.ActivityID)
		assert.Equal(t, "task-1", item.TaskID)
		assert.Equal(t, "profiler", item.Metadata["source"])
		assert.Equal(t, vec, item.Embedding)
	})

	t.Run("tags are copied, not aliased", func(t *testing.T) {
		s := store.New()
		tags := []string{"api"}
		_, err := s.AddItem(schema.CategoryAction, "x", tags)
		require.NoError(t, err)

		tags[0] = "mutated"
		assert.Equal(t, []string{"api"}, s.Items()[0].Tags)
	})
}

func TestItems(t *testing.T) {
	s := store.New()
	_, _ = s.AddItem(schema.CategoryAction, "a", nil)
	_, _ = s.AddItem(schema.CategoryDecision, "d", nil)
	_, _ = s.AddItem(schema.CategoryAction, "a2", nil)

	t.Run("category filter", func(t *testing.T) {
		actions := s.Items(schema.CategoryAction)
		require.Len(t, actions, 2)
		for _, item := range actions {
			assert.Equal(t, schema.CategoryAction, item.Category)
		}
	})

	t.Run("no filter returns everything in insertion order", func(t *testing.T) {
		all := s.Items()
		require.Len(t, all, 3)
		assert.Equal(t, "a", all[0].Content)
		assert.Equal(t, "d", all[1].Content)
		assert.Equal(t, "a2", all[2].Content)
	})
}

func TestItemsByTags(t *testing.T) {
	s := store.New()
	_, _ = s.AddItem(schema.CategoryAction, "x", []string{"api", "auth"})
	_, _ = s.AddItem(schema.CategoryAction, "y", []string{"database"})

	matched := s.ItemsByTags([]string{"api"})
	require.Len(t, matched, 1)
	assert.Equal(t, "x", matched[0].Content)

	assert.Empty(t, s.ItemsByTags(nil))
	assert.Empty(t, s.ItemsByTags([]string{"missing"}))
}

func TestClear(t *testing.T) {
	s := store.New()
	_, _ = s.AddItem(schema.CategoryAction, "x", nil)
	require.Equal(t, 1, s.Len())

	s.Clear()
	assert.Zero(t, s.Len())
}

func TestWorkflow(t *testing.T) {
	t.Run("begin records hierarchy items", func(t *testing.T) {
		s := store.New()
		w := store.NewWorkflow(s)

		sessID, err := w.BeginSession("feature work")
		require.NoError(t, err)
		actID, err := w.BeginActivity("add login endpoint", "api", "auth")
		require.NoError(t, err)
		taskID, err := w.BeginTask("write handler")
		require.NoError(t, err)

		gotSess, gotAct, gotTask := w.Current()
		assert.Equal(t, sessID, gotSess)
		assert.Equal(t, actID, gotAct)
		assert.Equal(t, taskID, gotTask)

		require.Equal(t, 3, s.Len())
		assert.Len(t, s.Items(schema.CategorySession), 1)
		assert.Len(t, s.Items(schema.CategoryActivity), 1)
		assert.Len(t, s.Items(schema.CategoryTask), 1)
	})

	t.Run("new activity replaces the current pointer", func(t *testing.T) {
		s := store.New()
		w := store.NewWorkflow(s)

		_, err := w.BeginSession("s")
		require.NoError(t, err)
		first, err := w.BeginActivity("first")
		require.NoError(t, err)
		_, err = w.BeginTask("t1")
		require.NoError(t, err)

		second, err := w.BeginActivity("second")
		require.NoError(t, err)

		_, act, task := w.Current()
		assert.Equal(t, second, act)
		assert.NotEqual(t, first, act)
		assert.Empty(t, task, "replacing the activity drops the task pointer")
	})

	t.Run("recording stamps the current hierarchy", func(t *testing.T) {
		s := store.New()
		w := store.NewWorkflow(s)

		_, err := w.BeginSession("s")
		require.NoError(t, err)
		actID, err := w.BeginActivity("a")
		require.NoError(t, err)
		taskID, err := w.BeginTask("t")
		require.NoError(t, err)

		_, err = w.RecordDecision("use ULIDs for item ids", []string{"database"})
		require.NoError(t, err)

		decisions := s.Items(schema.CategoryDecision)
		require.Len(t, decisions, 1)
		assert.Equal(t, actID, decisions[0].ActivityID)
		assert.Equal(t, taskID, decisions[0].TaskID)
	})

	t.Run("ordering errors", func(t *testing.T) {
		s := store.New()
		w := store.NewWorkflow(s)

		_, err := w.BeginActivity("orphan")
		assert.ErrorIs(t, err, store.ErrNoActiveSession)

		_, err = w.BeginSession("s")
		require.NoError(t, err)
		_, err = w.BeginTask("orphan task")
		assert.ErrorIs(t, err, store.ErrNoActiveActivity)

		assert.ErrorIs(t, w.EndTask(), store.ErrNoActiveTask)
		assert.ErrorIs(t, w.EndActivity(), store.ErrNoActiveActivity)
	})

	t.Run("two workflows do not share pointers", func(t *testing.T) {
		s := store.New()
		w1 := store.NewWorkflow(s)
		w2 := store.NewWorkflow(s)

		sess1, err := w1.BeginSession("one")
		require.NoError(t, err)
		sess2, err := w2.BeginSession("two")
		require.NoError(t, err)

		got1, _, _ := w1.Current()
		got2, _, _ := w2.Current()
		assert.Equal(t, sess1, got1)
		assert.Equal(t, sess2, got2)
		assert.NotEqual(t, got1, got2)
	})
}

func TestConcurrentInsertsAndReads(t *testing.T) {
	s := store.New()

	const n = 50
	var wg sync.WaitGroup
	wg.Add(2 * n)

	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := s.AddItem(schema.CategoryAction,
				fmt.Sprintf("action %d", i), []string{"api"})
			assert.NoError(t, err)
		}(i)
		go func() {
			defer wg.Done()
			items := s.Items()
			// Snapshots must be internally consistent: sequences strictly
			// increase in slice order.
			for j := 1; j < len(items); j++ {
				assert.Less(t, items[j-1].Seq, items[j].Seq)
			}
		}()
	}
	wg.Wait()

	// Quiescent point: everything inserted before it is visible after it.
	assert.Equal(t, n, s.Len())
	assert.Len(t, s.Items(), n)
}
