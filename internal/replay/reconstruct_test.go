package replay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlmalone/redo/internal/canonical"
	"github.com/jlmalone/redo/internal/changelog"
)

const (
	testUserID = "a1b2c3d4e5f60718293a4b5c6d7e8f90"
	taskA      = "3f8a1c42-9d7e-4b21-8f5a-6c0d2e1b9a34"
	taskB      = "7b2e9d10-1a3c-4f56-b789-0c1d2e3f4a5b"
	todoOne    = "d2719f0a-4e3b-4c8d-9a56-7f1e0b2c3d4e"
)

// mint builds a structurally valid entry with a correct content address.
func mint(t *testing.T, lamport int64, action changelog.Action, taskID string, data canonical.Object) changelog.Entry {
	t.Helper()

	e := changelog.Entry{
		Version: changelog.Version,
		Timestamp: changelog.Timestamp{
			Lamport: lamport,
			Wall:    time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC).Add(time.Duration(lamport) * time.Hour).Format(time.RFC3339),
		},
		Author: changelog.Author{
			UserID:   testUserID,
			DeviceID: "test-device",
		},
		Action: action,
		TaskID: taskID,
		Data:   data,
	}
	id, err := e.Address()
	require.NoError(t, err)
	e.ID = id
	return e
}

func createPayload(title string, priority, frequencyDays int, points float64) canonical.Object {
	return canonical.Object{
		changelog.KeyTitle:         canonical.String(title),
		changelog.KeyDescription:   canonical.String("desc of " + title),
		changelog.KeyPriority:      canonical.Int(int64(priority)),
		changelog.KeyFrequencyDays: canonical.Int(int64(frequencyDays)),
		changelog.KeyStoryPoints:   canonical.Float(points),
	}
}

func todoPayload(todoID, deadline string) canonical.Object {
	return canonical.Object{
		changelog.KeyTodoTaskID: canonical.String(todoID),
		changelog.KeyDeadline:   canonical.String(deadline),
	}
}

func TestReconstructCreate(t *testing.T) {
	events := []changelog.Entry{
		mint(t, 1, changelog.ActionCreate, taskA, createPayload("water plants", 4, 3, 2.5)),
	}

	tasks, diags, err := Reconstruct(events)
	require.NoError(t, err)
	assert.Zero(t, diags.Count())
	require.Len(t, tasks, 1)

	task := tasks[taskA]
	require.NotNil(t, task)
	assert.Equal(t, taskA, task.GUID)
	assert.Equal(t, testUserID, task.UserID)
	assert.Equal(t, "water plants", task.Title)
	assert.Equal(t, "desc of water plants", task.Description)
	assert.Equal(t, 4, task.Priority)
	assert.Equal(t, 3, task.FrequencyDays)
	assert.Equal(t, 2.5, task.StoryPoints)
	assert.False(t, task.Archived)
	assert.Nil(t, task.LastUpdated)
	assert.Empty(t, task.Todos)
}

func TestReconstructCreateDefaults(t *testing.T) {
	events := []changelog.Entry{
		mint(t, 1, changelog.ActionCreate, taskA, canonical.Object{
			changelog.KeyTitle: canonical.String("bare"),
		}),
	}

	tasks, _, err := Reconstruct(events)
	require.NoError(t, err)

	task := tasks[taskA]
	require.NotNil(t, task)
	assert.Equal(t, DefaultPriority, task.Priority)
	assert.Equal(t, DefaultFrequencyDays, task.FrequencyDays)
	assert.Equal(t, DefaultStoryPoints, task.StoryPoints)
}

func TestReconstructDuplicateCreateFirstWins(t *testing.T) {
	events := []changelog.Entry{
		mint(t, 1, changelog.ActionCreate, taskA, createPayload("first", 1, 7, 1)),
		mint(t, 2, changelog.ActionCreate, taskA, createPayload("second", 5, 14, 2)),
	}

	tasks, diags, err := Reconstruct(events)
	require.NoError(t, err)

	assert.Equal(t, "first", tasks[taskA].Title)
	assert.Equal(t, 1, tasks[taskA].Priority)
	require.Equal(t, 1, diags.Count())
	assert.Contains(t, diags.Excluded[0].Reason, "duplicate CREATE")
}

func TestReconstructUpdate(t *testing.T) {
	events := []changelog.Entry{
		mint(t, 1, changelog.ActionCreate, taskA, createPayload("before", 2, 7, 1)),
		mint(t, 2, changelog.ActionUpdate, taskA, canonical.Object{
			changelog.KeyTitle:    canonical.String("after"),
			changelog.KeyPriority: canonical.Int(5),
		}),
	}

	tasks, _, err := Reconstruct(events)
	require.NoError(t, err)

	task := tasks[taskA]
	assert.Equal(t, "after", task.Title)
	assert.Equal(t, 5, task.Priority)
	assert.Equal(t, "desc of before", task.Description, "unmentioned fields survive")
	require.NotNil(t, task.LastUpdated)
}

func TestReconstructUpdateBeforeCreate(t *testing.T) {
	events := []changelog.Entry{
		mint(t, 1, changelog.ActionUpdate, taskA, canonical.Object{
			changelog.KeyTitle: canonical.String("orphan"),
		}),
	}

	tasks, diags, err := Reconstruct(events)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	require.Equal(t, 1, diags.Count())
	assert.Contains(t, diags.Excluded[0].Reason, "unknown task")
}

func TestReconstructRecurrence(t *testing.T) {
	completed := "2026-08-10T08:00:00Z"
	events := []changelog.Entry{
		mint(t, 1, changelog.ActionCreate, taskA, createPayload("recurring", 3, 7, 1)),
		mint(t, 2, changelog.ActionCreateTodo, taskA, todoPayload(todoOne, "2026-08-08T00:00:00Z")),
		mint(t, 3, changelog.ActionCompleteTodo, taskA, canonical.Object{
			changelog.KeyTodoTaskID: canonical.String(todoOne),
			changelog.KeyCompleted:  canonical.String(completed),
		}),
	}

	tasks, diags, err := Reconstruct(events)
	require.NoError(t, err)
	assert.Zero(t, diags.Count())

	task := tasks[taskA]
	require.Len(t, task.Todos, 2, "completion of a recurring task spawns a fresh sub-item")

	done := task.Todos[0]
	assert.Equal(t, todoOne, done.GUID)
	require.NotNil(t, done.Completed)
	assert.Equal(t, "2026-08-10T08:00:00Z", done.Completed.Format(time.RFC3339))

	next := task.Todos[1]
	assert.Nil(t, next.Completed)
	assert.NotEqual(t, todoOne, next.GUID)
	assert.True(t, changelog.IsUUID(next.GUID))
	assert.Equal(t, "2026-08-17T08:00:00Z", next.Deadline.Format(time.RFC3339),
		"next deadline is one period after the completion")
	assert.Equal(t, next, task.Pending())
}

func TestRegeneratedGUIDIsDeterministic(t *testing.T) {
	g1 := regeneratedGUID(taskA, "2026-08-10T08:00:00Z")
	g2 := regeneratedGUID(taskA, "2026-08-10T08:00:00Z")
	g3 := regeneratedGUID(taskA, "2026-08-10T09:00:00Z")
	g4 := regeneratedGUID(taskB, "2026-08-10T08:00:00Z")

	assert.Equal(t, g1, g2, "same completion derives the same guid everywhere")
	assert.NotEqual(t, g1, g3)
	assert.NotEqual(t, g1, g4)
	assert.True(t, changelog.IsUUID(g1))
}

func TestReconstructOneTimeTaskDoesNotRecur(t *testing.T) {
	events := []changelog.Entry{
		mint(t, 1, changelog.ActionCreate, taskA, createPayload("one-shot", 3, 0, 1)),
		mint(t, 2, changelog.ActionCreateTodo, taskA, todoPayload(todoOne, "2026-08-08T00:00:00Z")),
		mint(t, 3, changelog.ActionCompleteTodo, taskA, canonical.Object{
			changelog.KeyTodoTaskID: canonical.String(todoOne),
			changelog.KeyCompleted:  canonical.String("2026-08-07T12:00:00Z"),
		}),
	}

	tasks, _, err := Reconstruct(events)
	require.NoError(t, err)

	task := tasks[taskA]
	require.Len(t, task.Todos, 1, "frequencyDays=0 never regenerates")
	assert.NotNil(t, task.Todos[0].Completed)
	assert.Nil(t, task.Pending())
}

func TestReconstructArchivedTaskDoesNotRecur(t *testing.T) {
	events := []changelog.Entry{
		mint(t, 1, changelog.ActionCreate, taskA, createPayload("archived", 3, 7, 1)),
		mint(t, 2, changelog.ActionCreateTodo, taskA, todoPayload(todoOne, "2026-08-08T00:00:00Z")),
		mint(t, 3, changelog.ActionArchive, taskA, nil),
		mint(t, 4, changelog.ActionCompleteTodo, taskA, canonical.Object{
			changelog.KeyTodoTaskID: canonical.String(todoOne),
			changelog.KeyCompleted:  canonical.String("2026-08-07T12:00:00Z"),
		}),
	}

	tasks, _, err := Reconstruct(events)
	require.NoError(t, err)

	task := tasks[taskA]
	assert.True(t, task.Archived)
	assert.Len(t, task.Todos, 1)
}

func TestReconstructArchiveUnarchive(t *testing.T) {
	events := []changelog.Entry{
		mint(t, 1, changelog.ActionCreate, taskA, createPayload("flip", 3, 7, 1)),
		mint(t, 2, changelog.ActionArchive, taskA, nil),
		mint(t, 3, changelog.ActionUnarchive, taskA, nil),
	}

	tasks, _, err := Reconstruct(events)
	require.NoError(t, err)
	assert.False(t, tasks[taskA].Archived)
	assert.NotNil(t, tasks[taskA].LastUpdated)
}

func TestReconstructDeleteTombstoneIsSticky(t *testing.T) {
	events := []changelog.Entry{
		mint(t, 1, changelog.ActionCreate, taskA, createPayload("doomed", 3, 7, 1)),
		mint(t, 2, changelog.ActionDelete, taskA, nil),
		mint(t, 3, changelog.ActionUpdate, taskA, canonical.Object{
			changelog.KeyTitle: canonical.String("resurrected?"),
		}),
		mint(t, 4, changelog.ActionCreate, taskB, createPayload("survivor", 3, 7, 1)),
	}

	tasks, _, err := Reconstruct(events)
	require.NoError(t, err)

	assert.NotContains(t, tasks, taskA, "a tombstone removes the aggregate for good")
	assert.Contains(t, tasks, taskB)
}

func TestReconstructSnooze(t *testing.T) {
	base := []changelog.Entry{
		mint(t, 1, changelog.ActionCreate, taskA, createPayload("snoozable", 3, 7, 1)),
		mint(t, 2, changelog.ActionCreateTodo, taskA, todoPayload(todoOne, "2026-08-08T00:00:00Z")),
	}

	t.Run("newDeadline replaces", func(t *testing.T) {
		events := append(append([]changelog.Entry{}, base...),
			mint(t, 3, changelog.ActionSnooze, taskA, canonical.Object{
				changelog.KeyTodoTaskID:  canonical.String(todoOne),
				changelog.KeyNewDeadline: canonical.String("2026-09-01T00:00:00Z"),
			}))

		tasks, _, err := Reconstruct(events)
		require.NoError(t, err)
		todo := tasks[taskA].FindTodo(todoOne)
		require.NotNil(t, todo)
		assert.Equal(t, "2026-09-01T00:00:00Z", todo.Deadline.Format(time.RFC3339))
	})

	t.Run("snoozeDays extends current deadline", func(t *testing.T) {
		events := append(append([]changelog.Entry{}, base...),
			mint(t, 3, changelog.ActionSnooze, taskA, canonical.Object{
				changelog.KeyTodoTaskID: canonical.String(todoOne),
				changelog.KeySnoozeDays: canonical.Int(3),
			}))

		tasks, _, err := Reconstruct(events)
		require.NoError(t, err)
		todo := tasks[taskA].FindTodo(todoOne)
		require.NotNil(t, todo)
		assert.Equal(t, "2026-08-11T00:00:00Z", todo.Deadline.Format(time.RFC3339),
			"days extend the deadline, not the current moment")
	})
}

func TestReconstructNotesAppend(t *testing.T) {
	events := []changelog.Entry{
		mint(t, 1, changelog.ActionCreate, taskA, createPayload("noted", 3, 0, 1)),
		mint(t, 2, changelog.ActionCreateTodo, taskA, canonical.Object{
			changelog.KeyTodoTaskID: canonical.String(todoOne),
			changelog.KeyDeadline:   canonical.String("2026-08-08T00:00:00Z"),
			changelog.KeyNotes:      canonical.String("first note"),
		}),
		mint(t, 3, changelog.ActionSnooze, taskA, canonical.Object{
			changelog.KeyTodoTaskID: canonical.String(todoOne),
			changelog.KeySnoozeDays: canonical.Int(1),
			changelog.KeyNotes:      canonical.String("second note"),
		}),
	}

	tasks, _, err := Reconstruct(events)
	require.NoError(t, err)

	todo := tasks[taskA].FindTodo(todoOne)
	require.NotNil(t, todo)
	assert.Equal(t, "first note\nsecond note", todo.Notes)
}

func TestReconstructOrderIndependence(t *testing.T) {
	events := []changelog.Entry{
		mint(t, 1, changelog.ActionCreate, taskA, createPayload("recurring", 3, 7, 1)),
		mint(t, 2, changelog.ActionCreateTodo, taskA, todoPayload(todoOne, "2026-08-08T00:00:00Z")),
		mint(t, 3, changelog.ActionCompleteTodo, taskA, canonical.Object{
			changelog.KeyTodoTaskID: canonical.String(todoOne),
			changelog.KeyCompleted:  canonical.String("2026-08-07T12:00:00Z"),
		}),
		mint(t, 4, changelog.ActionCreate, taskB, createPayload("other", 2, 0, 1)),
		mint(t, 5, changelog.ActionArchive, taskB, nil),
	}

	want, _, err := Reconstruct(events)
	require.NoError(t, err)

	// Reversed input must fold to the identical state: Lamport order,
	// not array position, drives the replay.
	reversed := make([]changelog.Entry, len(events))
	for i, e := range events {
		reversed[len(events)-1-i] = e
	}

	got, _, err := Reconstruct(reversed)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReconstructLamportTieBreaksOnAddress(t *testing.T) {
	// Two UPDATEs with the same Lamport counter: the one whose content
	// address sorts lower applies first, so the higher one's title wins.
	e1 := mint(t, 5, changelog.ActionUpdate, taskA, canonical.Object{
		changelog.KeyTitle: canonical.String("alpha"),
	})
	e2 := mint(t, 5, changelog.ActionUpdate, taskA, canonical.Object{
		changelog.KeyTitle: canonical.String("beta"),
	})

	winner := "alpha"
	if e1.ID < e2.ID {
		winner = "beta"
	}

	create := mint(t, 1, changelog.ActionCreate, taskA, createPayload("base", 3, 7, 1))

	tasks1, _, err := Reconstruct([]changelog.Entry{create, e1, e2})
	require.NoError(t, err)
	tasks2, _, err := Reconstruct([]changelog.Entry{create, e2, e1})
	require.NoError(t, err)

	assert.Equal(t, winner, tasks1[taskA].Title)
	assert.Equal(t, winner, tasks2[taskA].Title)
}

func TestReconstructExcludesInvalidEntries(t *testing.T) {
	good := mint(t, 1, changelog.ActionCreate, taskA, createPayload("good", 3, 7, 1))

	bad := mint(t, 2, changelog.ActionUpdate, taskA, canonical.Object{
		changelog.KeyTitle: canonical.String("bad"),
	})
	bad.Version = 2 // fails the structural gate; the ID no longer matters

	tasks, diags, err := Reconstruct([]changelog.Entry{good, bad})
	require.NoError(t, err)

	assert.Equal(t, "good", tasks[taskA].Title)
	require.Equal(t, 1, diags.Count())
	assert.Contains(t, diags.Excluded[0].Reason, "failed validation")
}

func TestReconstructMissingTaskIDIsHardError(t *testing.T) {
	good := mint(t, 1, changelog.ActionCreate, taskA, createPayload("good", 3, 7, 1))
	orphan := mint(t, 2, changelog.ActionUpdate, "", canonical.Object{
		changelog.KeyTitle: canonical.String("nowhere"),
	})

	tasks, diags, err := Reconstruct([]changelog.Entry{good, orphan})

	require.Error(t, err)
	assert.True(t, IsMissingTaskID(err))
	assert.Zero(t, diags.Count(), "hard errors are not diagnostics")
	assert.Contains(t, tasks, taskA, "reconstruction continues past hard errors")
}

func TestReconstructEmptyLog(t *testing.T) {
	tasks, diags, err := Reconstruct(nil)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Zero(t, diags.Count())
}

func TestMergeDeduplicatesByAddress(t *testing.T) {
	e1 := mint(t, 1, changelog.ActionCreate, taskA, createPayload("a", 3, 7, 1))
	e2 := mint(t, 2, changelog.ActionCreate, taskB, createPayload("b", 3, 7, 1))
	e3 := mint(t, 3, changelog.ActionArchive, taskA, nil)

	local := []changelog.Entry{e1, e2}
	remote := []changelog.Entry{e2, e3}

	merged := Merge(local, remote)
	assert.Len(t, merged, 3)

	// Merging is idempotent and the fold resolves everything else.
	tasks, _, err := Reconstruct(merged)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
	assert.True(t, tasks[taskA].Archived)
}
