package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendlyMessageFallsBack(t *testing.T) {
	assert.Equal(t, "We couldn't upload your video. Please try again.", FriendlyMessage(ActionUploadVideo))
	assert.Equal(t, GenericMessage, FriendlyMessage("no_such_action"))
}

func TestWrapUsesFriendlyMessage(t *testing.T) {
	err := Wrap(ActionFetchProfile, errors.New("mongo: connection refused"))

	assert.Equal(t, Internal, KindOf(err))
	assert.Equal(t, "We couldn't load your profile right now.", MessageOf(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrapKeepsExistingAppError(t *testing.T) {
	orig := Invalid("Please input one of them.")
	err := Wrap(ActionUploadVideo, fmt.Errorf("intake: %w", orig))

	assert.Equal(t, Validation, err.Kind)
	assert.Equal(t, ActionUploadVideo, err.Action)
	assert.True(t, errors.Is(err, orig))
}

func TestKindStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Validation.Status())
	assert.Equal(t, http.StatusNotFound, NotFound.Status())
	assert.Equal(t, http.StatusConflict, Conflict.Status())
	assert.Equal(t, http.StatusUnauthorized, Unauthorized.Status())
	assert.Equal(t, http.StatusForbidden, Forbidden.Status())
	assert.Equal(t, http.StatusTooManyRequests, Busy.Status())
	assert.Equal(t, http.StatusInternalServerError, Internal.Status())
	assert.Equal(t, Internal, KindOf(errors.New("plain")))
	assert.Equal(t, GenericMessage, MessageOf(errors.New("plain")))
}

func TestErrorLogSkipsValidationErrors(t *testing.T) {
	log := NewErrorLog(0)
	log.Record(ActionUploadVideo, "u1", Invalid("Please input one of them."))
	log.Record(ActionUploadVideo, "u1", nil)

	assert.Empty(t, log.Entries())
}

func TestErrorLogIsCapped(t *testing.T) {
	log := NewErrorLog(DefaultLogCapacity)
	for i := 0; i < DefaultLogCapacity+7; i++ {
		log.Record(ActionFetchVideos, fmt.Sprintf("u%d", i), errors.New("boom"))
	}

	entries := log.Entries()
	require.Len(t, entries, DefaultLogCapacity)
	assert.Equal(t, "u7", entries[0].UserID)
	assert.Equal(t, fmt.Sprintf("u%d", DefaultLogCapacity+6), entries[len(entries)-1].UserID)
	assert.Equal(t, FriendlyMessage(ActionFetchVideos), entries[0].Message)
	assert.False(t, entries[0].Timestamp.IsZero())
}
