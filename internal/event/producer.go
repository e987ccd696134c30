package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/r4nb1r/ProfilePulse/internal/domain"
	pkgkafka "github.com/r4nb1r/ProfilePulse/pkg/kafka"
	"github.com/r4nb1r/ProfilePulse/pkg/logger"
)

// Kafka topics for profile lifecycle events.
var (
	TopicProfileCreated       = pkgkafka.Topic("profile", "created")
	TopicProfileStatusChanged = pkgkafka.Topic("profile", "status_changed")
)

// Aggregate type constant.
const AggregateTypeProfile = "business_profile"

// Source identifier for events originating from this service.
const SourceProfilePulse = "profilepulse"

// ProfileCreatedData is the payload for a profile.created event.
type ProfileCreatedData struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"user_id"`
	BusinessName string `json:"business_name"`
	Category     string `json:"category"`
	Status       string `json:"status"`
}

// ProfileStatusChangedData is the payload for a profile.status_changed event.
type ProfileStatusChangedData struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	From       string `json:"from"`
	To         string `json:"to"`
	LocationID string `json:"location_id,omitempty"`
	Fallback   bool   `json:"fallback"`
}

// Publisher is the subset of the Kafka producer used here.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes profile events to Kafka.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

// PublishProfileCreated publishes a profile.created event.
func (p *Producer) PublishProfileCreated(ctx context.Context, profile *domain.BusinessProfile) error {
	data := ProfileCreatedData{
		ID:           profile.ID,
		UserID:       profile.UserID,
		BusinessName: profile.BusinessName,
		Category:     profile.Category,
		Status:       string(profile.Status),
	}
	return p.publish(ctx, TopicProfileCreated, profile.ID, data)
}

// PublishStatusChanged publishes a profile.status_changed event.
func (p *Producer) PublishStatusChanged(ctx context.Context, profile *domain.BusinessProfile, from domain.ProfileStatus, fallback bool) error {
	data := ProfileStatusChangedData{
		ID:       profile.ID,
		UserID:   profile.UserID,
		From:     string(from),
		To:       string(profile.Status),
		Fallback: fallback,
	}
	if profile.LocationID != nil {
		data.LocationID = *profile.LocationID
	}
	return p.publish(ctx, TopicProfileStatusChanged, profile.ID, data)
}

func (p *Producer) publish(ctx context.Context, topic string, id int64, data any) error {
	evt, err := pkgkafka.NewEvent(topic, strconv.FormatInt(id, 10), AggregateTypeProfile, SourceProfilePulse, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		evt.WithCorrelationID(cid)
	}
	if sid := logger.SessionIDFromContext(ctx); sid != "" {
		evt.WithMetadata("session_id", sid)
	}

	if err := p.kafka.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published profile event",
		slog.String("topic", topic),
		slog.Int64("profile_id", id),
	)
	return nil
}

// Noop discards events. It is used when Kafka is disabled.
type Noop struct{}

func (Noop) PublishProfileCreated(context.Context, *domain.BusinessProfile) error { return nil }

func (Noop) PublishStatusChanged(context.Context, *domain.BusinessProfile, domain.ProfileStatus, bool) error {
	return nil
}
