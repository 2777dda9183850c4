package services

import (
	"context"

	"github.com/google/uuid"
)

// RelationshipGuard answers whether two users may talk right now. It reads
// storage on every call and keeps nothing between calls, so a block or an
// unmatch applies to the very next action of a live connection.
type RelationshipGuard struct {
	relations RelationshipRepository
}

func NewRelationshipGuard(relations RelationshipRepository) *RelationshipGuard {
	return &RelationshipGuard{relations: relations}
}

// CanExchangeMessages is true iff a and b like each other and neither blocks
// the other.
func (g *RelationshipGuard) CanExchangeMessages(ctx context.Context, a, b uuid.UUID) (bool, error) {
	if a == b {
		return false, nil
	}
	rel, err := g.relations.GetRelation(ctx, a, b)
	if err != nil {
		return false, storageError(err, "relationship")
	}
	return !rel.Blocked() && rel.Matched(), nil
}

// Blocked is true when either user blocks the other.
func (g *RelationshipGuard) Blocked(ctx context.Context, a, b uuid.UUID) (bool, error) {
	if a == b {
		return false, nil
	}
	rel, err := g.relations.GetRelation(ctx, a, b)
	if err != nil {
		return false, storageError(err, "relationship")
	}
	return rel.Blocked(), nil
}

// ExchangeableCounterparts filters candidates down to users userID may
// currently talk to, with a single storage read.
func (g *RelationshipGuard) ExchangeableCounterparts(ctx context.Context, userID uuid.UUID, candidates []uuid.UUID) (map[uuid.UUID]bool, error) {
	set, err := g.relations.GetRelationSet(ctx, userID)
	if err != nil {
		return nil, storageError(err, "relationship")
	}
	allowed := make(map[uuid.UUID]bool, len(candidates))
	for _, other := range candidates {
		if other != userID && set.CanExchange(other) {
			allowed[other] = true
		}
	}
	return allowed, nil
}
