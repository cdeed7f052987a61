package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vanshika/graphqa/internal/graph"
)

// Repository encapsulates graph persistence for the content-sharing model.
type Repository struct {
	client graph.Client
}

// NewRepository instantiates a Repository backed by the supplied graph client.
func NewRepository(client graph.Client) *Repository {
	return &Repository{client: client}
}

// EnsureConstraints creates the uniqueness constraints the upserts rely on.
func (r *Repository) EnsureConstraints(ctx context.Context) error {
	for _, stmt := range constraintCypher {
		if _, err := r.client.ExecuteWrite(ctx, stmt, nil); err != nil {
			return fmt.Errorf("ensure constraints: %w", err)
		}
	}
	return nil
}

// UpsertUser ensures a user node exists with the latest properties.
func (r *Repository) UpsertUser(ctx context.Context, user User) error {
	if user.ID == "" {
		return errors.New("user id is required")
	}

	params := map[string]any{
		"userId": user.ID,
		"props":  userProperties(user),
	}
	if _, err := r.client.ExecuteWrite(ctx, upsertUserCypher, params); err != nil {
		return fmt.Errorf("upsert user %s: %w", user.ID, err)
	}
	return nil
}

// UpsertPin ensures a pin node exists, links it to its owner, and replaces its
// SHARED_WITH edges with the pin's current viewers.
func (r *Repository) UpsertPin(ctx context.Context, pin Pin) error {
	if pin.ID == "" {
		return errors.New("pin id is required")
	}
	if pin.OwnerID == "" {
		return fmt.Errorf("pin %s: owner id is required", pin.ID)
	}

	sharedWith := pin.SharedWith
	if sharedWith == nil {
		sharedWith = []string{}
	}
	params := map[string]any{
		"pinId":      pin.ID,
		"ownerId":    pin.OwnerID,
		"props":      pinProperties(pin),
		"sharedWith": sharedWith,
	}
	if _, err := r.client.ExecuteWrite(ctx, upsertPinCypher, params); err != nil {
		return fmt.Errorf("upsert pin %s: %w", pin.ID, err)
	}
	return nil
}

func userProperties(u User) map[string]any {
	props := map[string]any{
		"id":   u.ID,
		"name": u.Name,
	}
	if u.Email != "" {
		props["email"] = strings.ToLower(u.Email)
	}
	return props
}

func pinProperties(p Pin) map[string]any {
	visibility := strings.ToUpper(strings.TrimSpace(p.Visibility))
	if visibility == "" {
		visibility = "PRIVATE"
	}
	props := map[string]any{
		"id":         p.ID,
		"title":      p.Title,
		"visibility": visibility,
	}
	if p.CreatedAt != nil {
		props["createdAt"] = p.CreatedAt.UTC().Format(time.RFC3339)
	}
	return props
}

var constraintCypher = []string{
	`CREATE CONSTRAINT user_id IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE`,
	`CREATE CONSTRAINT pin_id IF NOT EXISTS FOR (p:Pin) REQUIRE p.id IS UNIQUE`,
}

const upsertUserCypher = `
MERGE (u:User {id: $userId})
SET u += $props
`

const upsertPinCypher = `
MATCH (owner:User {id: $ownerId})
MERGE (p:Pin {id: $pinId})
SET p += $props
MERGE (owner)-[:OWNS]->(p)
WITH p
OPTIONAL MATCH (p)-[old:SHARED_WITH]->(:User)
DELETE old
WITH DISTINCT p
UNWIND $sharedWith AS viewerId
MATCH (viewer:User {id: viewerId})
MERGE (p)-[:SHARED_WITH]->(viewer)
`
