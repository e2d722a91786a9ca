package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"vidlink-backend/internal/apperr"
	"vidlink-backend/internal/models"
	"vidlink-backend/internal/validation"

	"github.com/google/uuid"
)

var ErrCardNotFound = apperr.New(apperr.NotFound, "Card not found.")

// CardInput is a card as submitted by the client.
type CardInput struct {
	Name    string  `json:"name" validate:"required,max=100"`
	Link    string  `json:"link" validate:"required,url"`
	Start   float64 `json:"start" validate:"gte=0"`
	IsSaved bool    `json:"isSaved"`
}

// CardService places cards on the draft's timeline (wizard step 3).
type CardService struct {
	Drafts  *DraftService
	MaxTime float64
}

// Window is the latest allowed card start for a video of the given duration.
func Window(duration, maxTime float64) float64 {
	if maxTime <= 0 {
		return duration
	}
	return math.Min(duration, maxTime)
}

func (s *CardService) load(ctx context.Context, ownerID string) (models.UploadDraft, error) {
	d := s.Drafts.GetUploadData(ctx, ownerID)
	if d.VideoLink == "" {
		return d, ErrNoVideo
	}
	return d, nil
}

func (s *CardService) List(ctx context.Context, ownerID string) ([]models.Card, error) {
	d, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return d.Cards, nil
}

func (s *CardService) Add(ctx context.Context, ownerID string, in CardInput) (*models.Card, error) {
	id := uuid.NewString()
	d, err := s.Drafts.Update(ctx, ownerID, func(d *models.UploadDraft) error {
		if d.VideoLink == "" {
			return ErrNoVideo
		}
		card, err := s.build(*d, in)
		if err != nil {
			return err
		}
		card.ID = id
		d.Cards = arrange(append(d.Cards, card))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return findCard(d.Cards, id), nil
}

func (s *CardService) Update(ctx context.Context, ownerID, cardID string, in CardInput) (*models.Card, error) {
	d, err := s.Drafts.Update(ctx, ownerID, func(d *models.UploadDraft) error {
		if d.VideoLink == "" {
			return ErrNoVideo
		}
		idx := -1
		for i, c := range d.Cards {
			if c.ID == cardID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrCardNotFound
		}
		card, err := s.build(*d, in)
		if err != nil {
			return err
		}
		card.ID = cardID

		cards := append([]models.Card(nil), d.Cards...)
		cards[idx] = card
		d.Cards = arrange(cards)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return findCard(d.Cards, cardID), nil
}

func (s *CardService) Remove(ctx context.Context, ownerID, cardID string) error {
	_, err := s.Drafts.Update(ctx, ownerID, func(d *models.UploadDraft) error {
		if d.VideoLink == "" {
			return ErrNoVideo
		}
		kept := make([]models.Card, 0, len(d.Cards))
		for _, c := range d.Cards {
			if c.ID != cardID {
				kept = append(kept, c)
			}
		}
		if len(kept) == len(d.Cards) {
			return ErrCardNotFound
		}
		d.Cards = arrange(kept)
		return nil
	})
	return err
}

// Next moves to the preview step once every card is valid.
func (s *CardService) Next(ctx context.Context, ownerID string) (*StepResult, error) {
	d, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for _, c := range d.Cards {
		if err := checkCard(c, d.Duration, s.MaxTime); err != nil {
			return nil, err
		}
	}
	d, err = s.Drafts.SetUploadData(ctx, ownerID, models.DraftPatch{Step: models.Ptr(models.StepPreview)})
	if err != nil {
		return nil, err
	}
	return &StepResult{Draft: d, Next: RoutePreview}, nil
}

func (s *CardService) Back(ctx context.Context, ownerID string) (*StepResult, error) {
	d, err := s.Drafts.SetUploadData(ctx, ownerID, models.DraftPatch{Step: models.Ptr(models.StepDetails)})
	if err != nil {
		return nil, err
	}
	return &StepResult{Draft: d, Next: RouteDetails}, nil
}

func (s *CardService) build(d models.UploadDraft, in CardInput) (models.Card, error) {
	card := models.Card{
		Name:    strings.TrimSpace(in.Name),
		Link:    strings.TrimSpace(in.Link),
		Start:   in.Start,
		IsSaved: in.IsSaved,
	}
	return card, checkCard(card, d.Duration, s.MaxTime)
}

// arrange orders cards along the timeline and renumbers their display order.
func arrange(cards []models.Card) []models.Card {
	cards = append([]models.Card(nil), cards...)
	sort.SliceStable(cards, func(i, j int) bool { return cards[i].Start < cards[j].Start })
	for i := range cards {
		cards[i].No = i + 1
	}
	return cards
}

func checkCard(c models.Card, duration, maxTime float64) error {
	if err := validation.Struct(c); err != nil {
		return apperr.Invalid(err.Error())
	}
	limit := Window(duration, maxTime)
	if c.Start > limit {
		return apperr.Invalid(fmt.Sprintf("Card start must be between 0 and %g seconds.", limit))
	}
	return nil
}

func findCard(cards []models.Card, id string) *models.Card {
	for i := range cards {
		if cards[i].ID == id {
			c := cards[i]
			return &c
		}
	}
	return nil
}
