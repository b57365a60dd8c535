package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TahjibNil75/trackIT/internal/domain"
	"github.com/TahjibNil75/trackIT/internal/events"
	apperrors "github.com/TahjibNil75/trackIT/pkg/util/errorutil"
)

func TestCreateComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t, f.alice)

	comment, err := f.comments.CreateComment(ctx, f.alice, ticket.ID, CommentInput{Content: "  Please hurry  "})
	require.NoError(t, err)
	assert.Equal(t, "Please hurry", comment.Content)
	assert.Equal(t, domain.CommentVisibilityPublic, comment.Visibility)
	assert.Equal(t, events.EventCommentAdded, (*f.events)[len(*f.events)-1].Type)

	_, err = f.comments.CreateComment(ctx, f.bob, ticket.ID, CommentInput{Content: "Me too"})
	assert.True(t, apperrors.HasCode(err, "FORBIDDEN"))

	_, err = f.comments.CreateComment(ctx, f.manager, ticket.ID, CommentInput{Content: "Escalating", Visibility: domain.CommentVisibilityInternal})
	assert.True(t, apperrors.HasCode(err, "FORBIDDEN"))

	_, err = f.comments.CreateComment(ctx, f.alice, ticket.ID, CommentInput{Content: strings.Repeat("x", 1001)})
	assert.True(t, apperrors.HasCode(err, "VALIDATION_FAILED"))

	_, err = f.comments.CreateComment(ctx, f.alice, "missing", CommentInput{Content: "hello"})
	assert.True(t, apperrors.HasCode(err, "NOT_FOUND"))
}

func TestUpdateAndDeleteComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t, f.alice)
	comment, err := f.comments.CreateComment(ctx, f.alice, ticket.ID, CommentInput{Content: "First"})
	require.NoError(t, err)

	_, err = f.comments.UpdateComment(ctx, f.bob, comment.ID, "Hijacked")
	assert.True(t, apperrors.HasCode(err, "FORBIDDEN"))

	updated, err := f.comments.UpdateComment(ctx, f.support, comment.ID, "Edited by support")
	require.NoError(t, err)
	assert.Equal(t, "Edited by support", updated.Content)

	err = f.comments.DeleteComment(ctx, f.manager, comment.ID)
	assert.True(t, apperrors.HasCode(err, "FORBIDDEN"))

	require.NoError(t, f.comments.DeleteComment(ctx, f.alice, comment.ID))
	err = f.comments.DeleteComment(ctx, f.alice, comment.ID)
	assert.True(t, apperrors.HasCode(err, "NOT_FOUND"))
}

func TestListCommentsHidesInternal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t, f.alice)

	_, err := f.comments.CreateComment(ctx, f.alice, ticket.ID, CommentInput{Content: "Public note"})
	require.NoError(t, err)
	_, err = f.comments.CreateComment(ctx, f.admin, ticket.ID, CommentInput{Content: "Internal note", Visibility: domain.CommentVisibilityInternal})
	require.NoError(t, err)

	public, err := f.comments.ListForTicket(ctx, f.alice, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, public, 1)

	all, err := f.comments.ListForTicket(ctx, f.manager, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.comments.ListForTicket(ctx, f.bob, ticket.ID)
	assert.True(t, apperrors.HasCode(err, "FORBIDDEN"))
}
