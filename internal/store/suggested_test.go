package store

import (
	"context"
	"testing"

	"github.com/pbaille/calldesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestedTaskCatalog(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	st, err := s.CreateSuggestedTask(ctx, "Notify gas company", []string{"gas", "leak", "gas"})
	require.NoError(t, err)
	assert.Equal(t, []string{"gas", "leak"}, st.Tags)

	_, err = s.CreateSuggestedTask(ctx, "Call animal control", nil)
	require.NoError(t, err)

	list, err := s.ListSuggestedTasks(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Call animal control", list[0].Name)
	assert.Empty(t, list[0].Tags)
	assert.Equal(t, []string{"gas", "leak"}, list[1].Tags)

	updated, err := s.UpdateSuggestedTask(ctx, st.ID, SuggestedTaskUpdate{TagIDs: tagsPtr("fire")})
	require.NoError(t, err)
	assert.Equal(t, "Notify gas company", updated.Name)
	assert.Equal(t, []string{"fire"}, updated.Tags)

	_, err = s.UpdateSuggestedTask(ctx, "missing", SuggestedTaskUpdate{Name: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.CreateSuggestedTask(ctx, "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, s.DeleteSuggestedTask(ctx, st.ID))
	assert.ErrorIs(t, s.DeleteSuggestedTask(ctx, st.ID), domain.ErrNotFound)
}

func TestSuggestForCallMatchesSharedTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	gas, err := s.CreateSuggestedTask(ctx, "Shut off gas main", []string{"gas"})
	require.NoError(t, err)
	_, err = s.CreateSuggestedTask(ctx, "Rescue cat", []string{"animal"})
	require.NoError(t, err)
	both, err := s.CreateSuggestedTask(ctx, "Evacuate building", []string{"gas", "fire"})
	require.NoError(t, err)

	c, err := s.CreateCall(ctx, "Gas smell and smoke", []string{"gas", "fire"})
	require.NoError(t, err)

	suggestions, err := s.SuggestForCall(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, both.ID, suggestions[0].ID)
	assert.Equal(t, []string{"fire", "gas"}, suggestions[0].Tags)
	assert.Equal(t, gas.ID, suggestions[1].ID)

	_, err = s.SuggestForCall(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSuggestedTasksSortedIgnoringCase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"ventilate", "Call utility", "evacuate"} {
		_, err := s.CreateSuggestedTask(ctx, name, []string{"gas"})
		require.NoError(t, err)
	}
	c, err := s.CreateCall(ctx, "Gas smell", []string{"gas"})
	require.NoError(t, err)

	want := []string{"Call utility", "evacuate", "ventilate"}

	all, err := s.ListSuggestedTasks(ctx)
	require.NoError(t, err)
	forCall, err := s.SuggestForCall(ctx, c.ID)
	require.NoError(t, err)

	for _, list := range [][]domain.SuggestedTask{all, forCall} {
		names := make([]string, len(list))
		for i, st := range list {
			names[i] = st.Name
		}
		assert.Equal(t, want, names)
	}
}
