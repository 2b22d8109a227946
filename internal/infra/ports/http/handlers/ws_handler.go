package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/qrave1/CallRelay/internal/application/config"
	"github.com/qrave1/CallRelay/internal/application/constant"
	"github.com/qrave1/CallRelay/internal/domain"
	"github.com/qrave1/CallRelay/internal/domain/events"
	"github.com/qrave1/CallRelay/internal/infra/adapters/memory"
	"github.com/qrave1/CallRelay/internal/usecase"
)

var errUnknownMessageType = errors.New("unknown message type")

type WebSocketHandler struct {
	upgrader *websocket.Upgrader
	wsCfg    config.WebsocketConfig

	signalingUsecase usecase.SignalingUsecase

	wsConnRepo memory.WebsocketConnectionRepository
}

func NewWebSocketHandler(cfg *config.Config, signalingUsecase usecase.SignalingUsecase, wsConnRepo memory.WebsocketConnectionRepository) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return cfg.OriginAllowed(r.Header.Get("Origin"))
			},
		},
		wsCfg:            cfg.WS,
		signalingUsecase: signalingUsecase,
		wsConnRepo:       wsConnRepo,
	}
}

func (h *WebSocketHandler) Handle(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"WebSocket upgrade error",
			slog.Any(constant.Error, err),
		)
		return nil
	}
	defer ws.Close()

	ctx := c.Request().Context()
	connID := uuid.New()

	h.wsConnRepo.Add(connID, ws)
	h.signalingUsecase.HandleConnect(ctx, connID)

	defer func() {
		h.wsConnRepo.Remove(connID)

		// Отключение доставляем даже если запрос уже отменён
		if err := h.signalingUsecase.Submit(context.WithoutCancel(ctx), domain.Disconnect{ConnID: connID}); err != nil {
			slog.Error(
				"submit disconnect",
				slog.Any(constant.Error, err),
				slog.Any(constant.ConnectionID, connID),
			)
		}
	}()

	ws.SetReadLimit(h.wsCfg.MaxMessageSize)

	if err = ws.SetReadDeadline(time.Now().Add(h.wsCfg.PongWait)); err != nil {
		return nil
	}
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(h.wsCfg.PongWait))
	})

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			h.handleWebsocketError(connID, err)
			return nil
		}

		// любое сообщение от клиента тоже продлевает соединение
		_ = ws.SetReadDeadline(time.Now().Add(h.wsCfg.PongWait))

		signalMessage := new(events.Message)

		if err = json.Unmarshal(msg, signalMessage); err != nil {
			slog.Warn(
				"unmarshal websocket message",
				slog.Any(constant.Error, err),
				slog.Any(constant.ConnectionID, connID),
			)
			h.sendError(connID, "invalid message")

			continue
		}

		if err = h.handleMessage(ctx, connID, signalMessage); err != nil {
			slog.Warn(
				"handle message",
				slog.Any(constant.Error, err),
				slog.String(constant.Event, signalMessage.Type),
				slog.Any(constant.ConnectionID, connID),
			)

			if errors.Is(err, usecase.ErrRouterStopped) || errors.Is(err, context.Canceled) {
				return nil
			}

			h.sendError(connID, err.Error())
		}
	}
}

func (h *WebSocketHandler) handleMessage(
	ctx context.Context,
	connID uuid.UUID,
	msg *events.Message,
) error {
	switch msg.Type {
	case constant.EventJoinRoom:
		var joinEvent events.JoinRoomEvent

		if err := unmarshalData(msg.Data, &joinEvent); err != nil {
			return fmt.Errorf("unmarshal join event: %w", err)
		}

		return h.signalingUsecase.Submit(ctx, domain.Join{
			ConnID: connID,
			RoomID: joinEvent.RoomID,
			UserID: joinEvent.UserID,
		})

	case constant.EventOffer:
		var offer events.OfferEvent

		if err := unmarshalData(msg.Data, &offer); err != nil {
			return fmt.Errorf("unmarshal offer: %w", err)
		}

		return h.signalingUsecase.Submit(ctx, domain.Offer{ConnID: connID, RoomID: offer.RoomID, Payload: offer.Offer})

	case constant.EventAnswer:
		var answer events.AnswerEvent

		if err := unmarshalData(msg.Data, &answer); err != nil {
			return fmt.Errorf("unmarshal answer: %w", err)
		}

		return h.signalingUsecase.Submit(ctx, domain.Answer{ConnID: connID, RoomID: answer.RoomID, Payload: answer.Answer})

	case constant.EventIceCandidate:
		var candidate events.IceCandidateEvent

		if err := unmarshalData(msg.Data, &candidate); err != nil {
			return fmt.Errorf("unmarshal ice candidate: %w", err)
		}

		return h.signalingUsecase.Submit(ctx, domain.IceCandidate{ConnID: connID, RoomID: candidate.RoomID, Payload: candidate.Candidate})

	case constant.EventError:
		var clientErr events.ClientErrorEvent
		_ = unmarshalData(msg.Data, &clientErr)

		slog.Warn(
			"client reported error",
			slog.String(constant.Error, string(clientErr.Error)),
			slog.Any(constant.ConnectionID, connID),
		)

	case constant.EventPing:
		h.signalingUsecase.HandlePing(ctx, connID)

	default:
		return fmt.Errorf("%w: %q", errUnknownMessageType, msg.Type)
	}

	return nil
}

func (h *WebSocketHandler) handleWebsocketError(connID uuid.UUID, err error) {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		switch closeErr.Code {
		case websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived:
			slog.Info("client disconnected from websocket", slog.Any(constant.ConnectionID, connID))
		default:
			slog.Warn("websocket close error", slog.Any(constant.Error, err), slog.Any(constant.ConnectionID, connID))
		}
	} else {
		slog.Warn(
			"websocket read",
			slog.Any(constant.Error, err),
			slog.Any(constant.ConnectionID, connID),
		)
	}
}

func (h *WebSocketHandler) sendError(connID uuid.UUID, message string) {
	msg, err := events.New(constant.EventError, events.ErrorEvent{Message: message})
	if err != nil {
		return
	}

	h.wsConnRepo.Write(connID, msg)
}

// unmarshalData разбирает data, отсутствующее поле считается пустым объектом
func unmarshalData(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return nil
	}

	return json.Unmarshal(data, v)
}
