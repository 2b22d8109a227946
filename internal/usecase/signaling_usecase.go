package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/qrave1/CallRelay/internal/application/config"
	"github.com/qrave1/CallRelay/internal/application/constant"
	"github.com/qrave1/CallRelay/internal/application/metric"
	"github.com/qrave1/CallRelay/internal/domain"
	"github.com/qrave1/CallRelay/internal/domain/events"
	"github.com/qrave1/CallRelay/internal/infra/adapters/memory"
)

var ErrRouterStopped = errors.New("signaling router stopped")

// Сообщения об ошибках, которые уходят клиенту
const (
	errMsgRoomRequired = "room_id is required"
	errMsgRoomFull     = "room is full"
)

// SignalingUsecase - роутер сигнальных сообщений.
//
// Run обрабатывает команды строго по одной в одной горутине, поэтому
// состояние комнат меняется без гонок между join/leave/forward.
// Dispatch можно вызывать напрямую только из одной горутины (или из Run).
type SignalingUsecase interface {
	HandleConnect(ctx context.Context, connID uuid.UUID)

	Submit(ctx context.Context, cmd domain.Command) error
	Run(ctx context.Context)

	Dispatch(ctx context.Context, cmd domain.Command) error

	HandlePing(ctx context.Context, connID uuid.UUID)
}

type signalingUsecase struct {
	cfg config.RelayConfig

	connRegistry  memory.ConnectionRegistry
	roomDirectory memory.RoomDirectory
	wsRepo        memory.WebsocketConnectionRepository

	presenceUsecase PresenceUsecase

	queue chan domain.Command
	done  chan struct{}
}

func NewSignalingUsecase(
	cfg config.RelayConfig,
	connRegistry memory.ConnectionRegistry,
	roomDirectory memory.RoomDirectory,
	wsRepo memory.WebsocketConnectionRepository,
	presenceUsecase PresenceUsecase,
) SignalingUsecase {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1
	}

	return &signalingUsecase{
		cfg:             cfg,
		connRegistry:    connRegistry,
		roomDirectory:   roomDirectory,
		wsRepo:          wsRepo,
		presenceUsecase: presenceUsecase,
		queue:           make(chan domain.Command, queueSize),
		done:            make(chan struct{}),
	}
}

// HandleConnect регистрирует новое соединение и сообщает клиенту его id
func (s *signalingUsecase) HandleConnect(ctx context.Context, connID uuid.UUID) {
	s.connRegistry.Register(connID)

	s.write(connID, constant.EventConnected, events.ConnectedEvent{ConnectionID: connID})

	slog.InfoContext(ctx, "connection registered", slog.Any(constant.ConnectionID, connID))
}

func (s *signalingUsecase) Submit(ctx context.Context, cmd domain.Command) error {
	select {
	case <-s.done:
		return ErrRouterStopped
	default:
	}

	select {
	case s.queue <- cmd:
		return nil
	case <-s.done:
		return ErrRouterStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run блокируется до отмены ctx. Вызывается один раз.
func (s *signalingUsecase) Run(ctx context.Context) {
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			slog.Info("signaling router stopped")
			return
		case cmd := <-s.queue:
			if err := s.Dispatch(ctx, cmd); err != nil {
				slog.Error(
					"dispatch signaling command",
					slog.Any(constant.Error, err),
					slog.Any(constant.ConnectionID, cmd.Sender()),
				)
			}
		}
	}
}

func (s *signalingUsecase) Dispatch(ctx context.Context, cmd domain.Command) error {
	switch cmd := cmd.(type) {
	case domain.Join:
		return s.handleJoin(ctx, cmd)

	case domain.Offer:
		return s.forward(ctx, cmd.ConnID, cmd.RoomID, constant.EventOffer,
			events.ForwardedOffer{Offer: cmd.Payload, SenderID: cmd.ConnID})

	case domain.Answer:
		return s.forward(ctx, cmd.ConnID, cmd.RoomID, constant.EventAnswer,
			events.ForwardedAnswer{Answer: cmd.Payload, SenderID: cmd.ConnID})

	case domain.IceCandidate:
		return s.forward(ctx, cmd.ConnID, cmd.RoomID, constant.EventIceCandidate,
			events.ForwardedIceCandidate{Candidate: cmd.Payload, SenderID: cmd.ConnID})

	case domain.Disconnect:
		return s.handleDisconnect(ctx, cmd)

	default:
		return fmt.Errorf("unknown command %T", cmd)
	}
}

func (s *signalingUsecase) HandlePing(ctx context.Context, connID uuid.UUID) {
	s.write(connID, constant.EventPong, nil)
}

func (s *signalingUsecase) handleJoin(ctx context.Context, cmd domain.Join) error {
	if cmd.RoomID == "" {
		s.write(cmd.ConnID, constant.EventError, events.ErrorEvent{Message: errMsgRoomRequired})
		return nil
	}

	conn, ok := s.connRegistry.Get(cmd.ConnID)
	if !ok {
		// Соединение уже закрыто
		slog.DebugContext(ctx, "join from unknown connection", slog.Any(constant.ConnectionID, cmd.ConnID))
		return nil
	}

	// Повторный вход в ту же комнату: только обновляем user id
	if conn.RoomID == cmd.RoomID {
		s.connRegistry.SetRoom(cmd.ConnID, cmd.RoomID, cmd.UserID)
		return nil
	}

	if s.cfg.RoomCapacity > 0 && s.roomDirectory.Size(cmd.RoomID) >= s.cfg.RoomCapacity {
		slog.WarnContext(
			ctx,
			"room is full",
			slog.String(constant.RoomID, cmd.RoomID),
			slog.Any(constant.ConnectionID, cmd.ConnID),
		)

		s.write(cmd.ConnID, constant.EventError, events.ErrorEvent{Message: errMsgRoomFull})
		return nil
	}

	// Соединение состоит максимум в одной комнате: сначала выходим из предыдущей
	if conn.InRoom() {
		if err := s.leaveRoom(ctx, conn); err != nil {
			return fmt.Errorf("leave previous room: %w", err)
		}
	}

	s.roomDirectory.Join(cmd.RoomID, cmd.ConnID)
	s.connRegistry.SetRoom(cmd.ConnID, cmd.RoomID, cmd.UserID)

	slog.InfoContext(
		ctx,
		"user joined room",
		slog.String(constant.RoomID, cmd.RoomID),
		slog.String(constant.UserID, cmd.UserID),
		slog.Any(constant.ConnectionID, cmd.ConnID),
	)

	if err := s.presenceUsecase.AnnounceJoin(ctx, cmd.RoomID, cmd.ConnID, cmd.UserID); err != nil {
		return fmt.Errorf("announce join: %w", err)
	}

	s.write(cmd.ConnID, constant.EventRoomJoined, events.RoomJoinedEvent{
		RoomID:  cmd.RoomID,
		Members: s.roomDirectory.Size(cmd.RoomID),
	})

	return nil
}

func (s *signalingUsecase) handleDisconnect(ctx context.Context, cmd domain.Disconnect) error {
	conn, ok := s.connRegistry.Unregister(cmd.ConnID)
	if !ok {
		return nil
	}

	slog.InfoContext(ctx, "connection unregistered", slog.Any(constant.ConnectionID, cmd.ConnID))

	if !conn.InRoom() {
		return nil
	}

	if err := s.leaveRoom(ctx, conn); err != nil {
		return fmt.Errorf("leave room on disconnect: %w", err)
	}

	return nil
}

func (s *signalingUsecase) leaveRoom(ctx context.Context, conn domain.Connection) error {
	if !s.roomDirectory.Leave(conn.RoomID, conn.ID) {
		return nil
	}

	s.connRegistry.ClearRoom(conn.ID)

	slog.InfoContext(
		ctx,
		"user left room",
		slog.String(constant.RoomID, conn.RoomID),
		slog.String(constant.UserID, conn.UserID),
		slog.Any(constant.ConnectionID, conn.ID),
	)

	return s.presenceUsecase.AnnounceLeave(ctx, conn.RoomID, conn.ID, conn.UserID)
}

// forward пересылает сигнальное сообщение всем участникам комнаты, кроме отправителя.
// Доставка не гарантируется.
func (s *signalingUsecase) forward(ctx context.Context, senderID uuid.UUID, roomID, eventType string, data any) error {
	if s.cfg.RequireMembership {
		conn, ok := s.connRegistry.Get(senderID)
		if !ok || conn.RoomID != roomID {
			slog.WarnContext(
				ctx,
				"signal from non-member dropped",
				slog.String(constant.Event, eventType),
				slog.String(constant.RoomID, roomID),
				slog.Any(constant.ConnectionID, senderID),
			)

			return nil
		}
	}

	targets := s.roomDirectory.MembersExcept(roomID, senderID)
	if len(targets) == 0 {
		slog.DebugContext(ctx, "no peers to forward to", slog.String(constant.Event, eventType), slog.String(constant.RoomID, roomID))
		return nil
	}

	msg, err := events.New(eventType, data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", eventType, err)
	}

	for _, target := range targets {
		s.wsRepo.Write(target, msg)
		metric.RecordSignal(eventType)
	}

	return nil
}

func (s *signalingUsecase) write(connID uuid.UUID, eventType string, data any) {
	msg, err := events.New(eventType, data)
	if err != nil {
		slog.Error("marshal event", slog.Any(constant.Error, err), slog.String(constant.Event, eventType))
		return
	}

	s.wsRepo.Write(connID, msg)
}
