package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"vidlink-backend/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow(t *testing.T) {
	assert.Equal(t, 65.0, Window(65, 240))
	assert.Equal(t, 240.0, Window(600, 240))
	assert.Equal(t, 600.0, Window(600, 0))
}

func TestCardsOrderedAndNumbered(t *testing.T) {
	ctx := context.Background()
	svc := &CardService{Drafts: draftsWithVideo(t), MaxTime: 240}

	late, err := svc.Add(ctx, "u1", CardInput{Name: "Late", Link: "https://late.example", Start: 50})
	require.NoError(t, err)
	early, err := svc.Add(ctx, "u1", CardInput{Name: " Early ", Link: "https://early.example", Start: 5})
	require.NoError(t, err)

	assert.Equal(t, "Early", early.Name)
	assert.Equal(t, 1, early.No)
	assert.NotEmpty(t, late.ID)

	cards, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, []string{"Early", "Late"}, []string{cards[0].Name, cards[1].Name})
	assert.Equal(t, []int{1, 2}, []int{cards[0].No, cards[1].No})

	updated, err := svc.Update(ctx, "u1", early.ID, CardInput{Name: "Early", Link: "https://early.example", Start: 60})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.No)

	require.NoError(t, svc.Remove(ctx, "u1", late.ID))
	cards, err = svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, 1, cards[0].No)
	assert.Equal(t, early.ID, cards[0].ID)
}

func TestCardStartWindow(t *testing.T) {
	ctx := context.Background()
	svc := &CardService{Drafts: draftsWithVideo(t), MaxTime: 240} // duration 65

	_, err := svc.Add(ctx, "u1", CardInput{Name: "end", Link: "https://x.example", Start: 65})
	assert.NoError(t, err)

	_, err = svc.Add(ctx, "u1", CardInput{Name: "past", Link: "https://x.example", Start: 65.5})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, err = svc.Add(ctx, "u1", CardInput{Name: "neg", Link: "https://x.example", Start: -1})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	svc.MaxTime = 30
	_, err = svc.Add(ctx, "u1", CardInput{Name: "over max", Link: "https://x.example", Start: 31})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestCardValidation(t *testing.T) {
	ctx := context.Background()
	svc := &CardService{Drafts: draftsWithVideo(t), MaxTime: 240}

	_, err := svc.Add(ctx, "u1", CardInput{Name: "", Link: "https://x.example", Start: 1})
	assert.Equal(t, "name is required.", apperr.MessageOf(err))

	_, err = svc.Add(ctx, "u1", CardInput{Name: "n", Link: "not a link", Start: 1})
	assert.Equal(t, "link must be a valid URL.", apperr.MessageOf(err))

	_, err = svc.Update(ctx, "u1", "missing", CardInput{Name: "n", Link: "https://x.example"})
	assert.ErrorIs(t, err, ErrCardNotFound)
	assert.ErrorIs(t, svc.Remove(ctx, "u1", "missing"), ErrCardNotFound)
}

func TestCardsRequireVideo(t *testing.T) {
	drafts, _ := newDrafts()
	svc := &CardService{Drafts: drafts, MaxTime: 240}

	_, err := svc.Add(context.Background(), "u1", CardInput{Name: "n", Link: "https://x.example"})
	assert.ErrorIs(t, err, ErrNoVideo)
}

func TestCardStepNavigation(t *testing.T) {
	ctx := context.Background()
	svc := &CardService{Drafts: draftsWithVideo(t), MaxTime: 240}

	res, err := svc.Next(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, res.Draft.Step)
	assert.Equal(t, RoutePreview, res.Next)

	res, err = svc.Back(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Draft.Step)
}

func TestConcurrentCardAddsAreAllKept(t *testing.T) {
	ctx := context.Background()
	svc := &CardService{Drafts: draftsWithVideo(t), MaxTime: 240}

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Add(ctx, "u1", CardInput{Name: fmt.Sprintf("card %d", i), Link: "https://shop.example", Start: float64(i)})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	cards, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, cards, n)
	for i, c := range cards {
		assert.Equal(t, i+1, c.No)
	}
}
