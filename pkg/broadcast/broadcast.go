// Package broadcast publishes real-time reservation events. The transport is
// pluggable; the payload contract is fixed so any consumer can render updates
// without querying the store.
package broadcast

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rentfleet/rentfleet-backend/pkg/db/models"
)

// ChannelReservationsAll carries every reservation-related event.
const ChannelReservationsAll = "reservations.all"

// Event names.
const (
	EventGroupCreated       = "group.created"
	EventGroupStatusChanged = "group.status_changed"
	EventReservationCreated = "reservation.created"
	EventReservationUpdated = "reservation.updated"
	EventReservationDeleted = "reservation.deleted"
)

// GroupPayload is the wire shape for group-level events.
type GroupPayload struct {
	Kind      string    `json:"kind"`
	Event     string    `json:"event"`
	GroupID   uuid.UUID `json:"group_id"`
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changed_at"`
}

// ReservationPayload is the wire shape for reservation-level events.
type ReservationPayload struct {
	Kind      string     `json:"kind"`
	Event     string     `json:"event"`
	ID        uuid.UUID  `json:"id"`
	GroupID   uuid.UUID  `json:"group_id"`
	VehicleID *uuid.UUID `json:"vehicle_id"`
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	Status    string     `json:"status"`
	ChangedAt time.Time  `json:"changed_at"`
}

// GroupEvent builds the payload for a group-level event.
func GroupEvent(event string, group *models.ReservationGroup, changedAt time.Time) GroupPayload {
	return GroupPayload{
		Kind:      "group",
		Event:     event,
		GroupID:   group.ID,
		Status:    group.Status.String(),
		ChangedAt: changedAt,
	}
}

// ReservationEvent builds the payload for a reservation-level event.
func ReservationEvent(event string, reservation *models.VehicleReservation, status string, changedAt time.Time) ReservationPayload {
	return ReservationPayload{
		Kind:      "reservation",
		Event:     event,
		ID:        reservation.ID,
		GroupID:   reservation.GroupID,
		VehicleID: reservation.VehicleID,
		StartDate: reservation.StartDate.Format("2006-01-02"),
		EndDate:   reservation.EndDate.Format("2006-01-02"),
		Status:    status,
		ChangedAt: changedAt,
	}
}

// Publisher delivers payloads to subscribers of a channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// RedisPublisher broadcasts payloads over Redis pub/sub.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher wraps a connected Redis client.
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Publish implements Publisher.
func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, channel, raw).Err()
}
