package service

import (
	"context"

	"github.com/blogcraftai/blogcraft-backend/internal/blog/domain"
	"github.com/blogcraftai/blogcraft-backend/internal/blog/events"
)

// ReactionService manages each user's single like/dislike per post.
type ReactionService struct {
	reactions ReactionStore
	posts     PostStore
	publisher events.Publisher
}

func NewReactionService(reactions ReactionStore, posts PostStore, publisher events.Publisher) *ReactionService {
	return &ReactionService{reactions: reactions, posts: posts, publisher: publisher}
}

// List returns the actor's own reactions.
func (s *ReactionService) List(ctx context.Context, actor domain.Actor, postSlug string) ([]domain.Reaction, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrForbidden
	}
	return s.reactions.ListByUser(ctx, actor.UID, postSlug)
}

// Set records the actor's reaction to a post, replacing any earlier one.
func (s *ReactionService) Set(ctx context.Context, actor domain.Actor, postSlug, reaction string) (*domain.Reaction, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrForbidden
	}
	if !domain.ValidReaction(reaction) {
		return nil, domain.NewValidationError("reaction", "must be one of like, dislike")
	}
	post, err := s.posts.GetBySlug(ctx, postSlug)
	if err != nil {
		return nil, err
	}
	if !visible(actor, post) {
		return nil, domain.ErrPostNotFound
	}

	r := &domain.Reaction{PostID: post.ID, PostSlug: post.Slug, UserUID: actor.UID, Reaction: reaction}
	if err := s.reactions.Upsert(ctx, r); err != nil {
		return nil, err
	}

	emit(ctx, s.publisher, events.Event{
		Type: events.TypeReactionSet,
		Key:  post.Slug,
		Payload: events.ReactionSet{
			ReactionID: r.ID,
			PostID:     post.ID,
			PostSlug:   post.Slug,
			UserUID:    actor.UID,
			Reaction:   reaction,
		},
	})
	return r, nil
}

// Delete removes one of the actor's reactions. Other users' reactions are
// reported as not found.
func (s *ReactionService) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	r, err := s.reactions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if r.UserUID != actor.UID {
		return domain.ErrReactionNotFound
	}
	return s.reactions.Delete(ctx, id)
}
