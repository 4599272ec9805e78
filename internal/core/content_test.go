package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorks(t *testing.T) {
	setupRedis(t)
	ctx := context.Background()

	w, err := CreateWork(ctx, "First Spam", 7, true)
	require.NoError(t, err)

	got, err := GetWork(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "First Spam", got.Title)
	assert.Equal(t, int64(7), got.AuthorID)
	assert.True(t, got.Spam)

	title, err := ResolveWorkTitle(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "First Spam", title)

	_, err = ResolveWorkTitle(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestComments(t *testing.T) {
	setupRedis(t)
	ctx := context.Background()

	post, err := CreateAdminPost(ctx, "Site news", "<p>Hello</p>")
	require.NoError(t, err)

	fetched, err := GetAdminPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Site news", fetched.Title)

	top, err := CreateComment(ctx, Comment{
		Content:    "First!",
		Name:       "reader",
		ParentType: ParentAdminPost,
		ParentID:   post.ID,
	})
	require.NoError(t, err)
	assert.True(t, top.OnAdminPost())
	assert.Equal(t, post.ID, top.UltimateParentID)

	t.Run("reply inherits ultimate parent", func(t *testing.T) {
		reply, err := CreateComment(ctx, Comment{
			Content:    "Reply",
			Name:       "other",
			ParentType: ParentComment,
			ParentID:   top.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, ParentAdminPost, reply.UltimateParentType)
		assert.Equal(t, post.ID, reply.UltimateParentID)
		assert.True(t, reply.OnAdminPost())
	})

	t.Run("reply to missing comment", func(t *testing.T) {
		_, err := CreateComment(ctx, Comment{ParentType: ParentComment, ParentID: 404})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("edit", func(t *testing.T) {
		edited, err := UpdateCommentContent(ctx, top.ID, "First! (edited)")
		require.NoError(t, err)
		assert.NotZero(t, edited.EditedAt)

		got, err := GetComment(ctx, top.ID)
		require.NoError(t, err)
		assert.Equal(t, "First! (edited)", got.Content)
		assert.Equal(t, "reader", got.Name)
	})

	_, err = GetComment(ctx, 12345)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = GetAdminPost(ctx, 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}
