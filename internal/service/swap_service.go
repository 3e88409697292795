package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/skillswap/internal/model"
	"github.com/iliyamo/skillswap/internal/queue"
	"github.com/iliyamo/skillswap/internal/repository"
)

const (
	msgSwapFields    = "All required fields must be provided."
	msgStatusFields  = "Status and user ID are required."
	msgInvalidStatus = "Invalid status. Must be accepted, declined, or completed."
	msgSwapNotFound  = "Swap request not found."
)

// publishTimeout bounds how long a request waits on the broker.
const publishTimeout = 3 * time.Second

// SwapService creates swap requests and moves them through their statuses.
type SwapService struct {
	swaps  repository.SwapRepository
	events EventPublisher
	now    func() time.Time
}

func NewSwapService(swaps repository.SwapRepository, events EventPublisher) *SwapService {
	if events == nil {
		events = NopPublisher{}
	}
	return &SwapService{
		swaps:  swaps,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreateSwapInput names both parties and both skills. Message is optional.
type CreateSwapInput struct {
	RequesterID    string
	ReceiverID     string
	OfferedSkillID string
	WantedSkillID  string
	Message        string
}

// Create stores a pending swap request.
func (s *SwapService) Create(ctx context.Context, in CreateSwapInput) (*model.SwapRequest, error) {
	in.RequesterID = strings.TrimSpace(in.RequesterID)
	in.ReceiverID = strings.TrimSpace(in.ReceiverID)
	in.OfferedSkillID = strings.TrimSpace(in.OfferedSkillID)
	in.WantedSkillID = strings.TrimSpace(in.WantedSkillID)
	if in.RequesterID == "" || in.ReceiverID == "" || in.OfferedSkillID == "" || in.WantedSkillID == "" {
		return nil, Validation(msgSwapFields)
	}
	now := s.now()
	w := &model.SwapRequest{
		ID:             uuid.NewString(),
		RequesterID:    in.RequesterID,
		ReceiverID:     in.ReceiverID,
		OfferedSkillID: in.OfferedSkillID,
		WantedSkillID:  in.WantedSkillID,
		Message:        in.Message,
		Status:         model.SwapPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.swaps.Create(ctx, w); err != nil {
		return nil, Internal("Error creating swap request.", err)
	}
	s.publish(ctx, queue.SwapCreated, w)
	return w, nil
}

// ListByUser returns every swap where userID is requester or receiver.
func (s *SwapService) ListByUser(ctx context.Context, userID string) ([]model.SwapDetail, error) {
	out, err := s.swaps.ListByUser(ctx, userID)
	if err != nil {
		return nil, Internal("Error fetching swap requests.", err)
	}
	return out, nil
}

// UpdateStatus lets the receiver accept, decline or complete a swap. Prior
// states are not checked. Anyone but the receiver gets NotFound and the
// swap is left as it was.
func (s *SwapService) UpdateStatus(ctx context.Context, swapID, status, actingUserID string) (*model.SwapRequest, error) {
	status = strings.TrimSpace(status)
	actingUserID = strings.TrimSpace(actingUserID)
	if status == "" || actingUserID == "" {
		return nil, Validation(msgStatusFields)
	}
	st := model.SwapStatus(status)
	if !st.Settable() {
		return nil, Validation(msgInvalidStatus)
	}
	w, err := s.swaps.UpdateStatus(ctx, swapID, st, actingUserID)
	if err != nil {
		if errors.Is(err, repository.ErrSwapNotFound) {
			return nil, NotFound(msgSwapNotFound)
		}
		return nil, Internal("Error updating swap status.", err)
	}
	s.publish(ctx, queue.SwapStatusChanged, w)
	return w, nil
}

// publish is best effort; a broker outage never fails the request.
func (s *SwapService) publish(ctx context.Context, typ string, w *model.SwapRequest) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	ev := queue.SwapEvent{
		Type:        typ,
		SwapID:      w.ID,
		RequesterID: w.RequesterID,
		ReceiverID:  w.ReceiverID,
		Status:      string(w.Status),
		OccurredAt:  s.now(),
	}
	if err := s.events.PublishSwapEvent(ctx, ev); err != nil {
		slog.WarnContext(ctx, "swap event not published", "type", typ, "swap_id", w.ID, "err", err)
	}
}
