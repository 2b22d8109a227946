package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/qrave1/CallRelay/internal/application/constant"
	"github.com/qrave1/CallRelay/internal/domain/events"
	"github.com/qrave1/CallRelay/internal/infra/adapters/memory"
)

// PresenceUsecase рассылает участникам комнаты события входа и выхода
type PresenceUsecase interface {
	AnnounceJoin(ctx context.Context, roomID string, exclude uuid.UUID, userID string) error
	AnnounceLeave(ctx context.Context, roomID string, exclude uuid.UUID, userID string) error
}

type presenceUsecase struct {
	roomDirectory memory.RoomDirectory
	wsRepo        memory.WebsocketConnectionRepository
}

func NewPresenceUsecase(roomDirectory memory.RoomDirectory, wsRepo memory.WebsocketConnectionRepository) PresenceUsecase {
	return &presenceUsecase{
		roomDirectory: roomDirectory,
		wsRepo:        wsRepo,
	}
}

func (p *presenceUsecase) AnnounceJoin(ctx context.Context, roomID string, exclude uuid.UUID, userID string) error {
	return p.announce(ctx, constant.EventUserConnected, roomID, exclude, userID)
}

func (p *presenceUsecase) AnnounceLeave(ctx context.Context, roomID string, exclude uuid.UUID, userID string) error {
	return p.announce(ctx, constant.EventUserDisconnected, roomID, exclude, userID)
}

func (p *presenceUsecase) announce(ctx context.Context, eventType, roomID string, exclude uuid.UUID, userID string) error {
	members := p.roomDirectory.MembersExcept(roomID, exclude)
	if len(members) == 0 {
		return nil
	}

	msg, err := events.New(eventType, events.PresenceEvent{UserID: userID})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	for _, member := range members {
		p.wsRepo.Write(member, msg)
	}

	slog.DebugContext(
		ctx,
		"presence announced",
		slog.String(constant.Event, eventType),
		slog.String(constant.RoomID, roomID),
		slog.String(constant.UserID, userID),
		slog.Int(constant.Members, len(members)),
	)

	return nil
}
