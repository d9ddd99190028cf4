package server

import (
	"context"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/they4kman/sweepengine/config"
	"github.com/they4kman/sweepengine/game"
	"github.com/they4kman/sweepengine/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"net/http"
)

type Handler struct {
	store  *MemoryStore
	hub    *Hub
	log    logrus.FieldLogger
	tracer trace.Tracer
}

func NewHandler(store *MemoryStore, hub *Hub, log logrus.FieldLogger) *Handler {
	return &Handler{
		store:  store,
		hub:    hub,
		log:    log,
		tracer: telemetry.Tracer("server"),
	}
}

func (h *Handler) CreateGame(c *gin.Context) {
	var req CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := config.Game{
		Width:     req.Width,
		Height:    req.Height,
		Mines:     req.Mines,
		Seed:      req.Seed,
		Placement: req.Placement,
	}
	if err := params.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	board, err := params.NewBoard(game.WithLogger(h.log))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := h.store.Create(board)
	h.log.WithFields(logrus.Fields{
		"game":   session.ID,
		"width":  params.Width,
		"height": params.Height,
		"mines":  params.Mines,
		"games":  h.store.Len(),
	}).Info("game created")

	c.JSON(http.StatusCreated, gin.H{"id": session.ID, "game": newGameView(session.ID, board)})
}

func (h *Handler) GetGame(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var view GameView
	_ = session.Do(func(board *game.Board) error {
		view = newGameView(session.ID, board)
		return nil
	})
	c.JSON(http.StatusOK, gin.H{"game": view})
}

func (h *Handler) Reveal(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req RevealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.reveal(c.Request.Context(), session, *req.X, *req.Y)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, game.ErrOutOfBounds) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Reset(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	view := h.reset(session)
	c.JSON(http.StatusOK, gin.H{"game": view})
}

func (h *Handler) DeleteGame(c *gin.Context) {
	id := c.Param("id")
	if !h.store.Delete(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}
	h.hub.Close(id)
	c.Status(http.StatusNoContent)
}

// HandleWS upgrades to a websocket on which the client sends
// {"action":"reveal","x":..,"y":..} or {"action":"reset"} and receives
// every update of the game.
func (h *Handler) HandleWS(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("failed to upgrade connection")
		return
	}

	h.hub.Join(session.ID, conn)
	defer func() {
		h.hub.Leave(session.ID, conn)
		_ = conn.Close()
	}()

	var view GameView
	_ = session.Do(func(board *game.Board) error {
		view = newGameView(session.ID, board)
		return nil
	})
	if err := h.hub.Send(conn, "state", view); err != nil {
		return
	}

	for {
		var msg wsRequest
		if err := conn.ReadJSON(&msg); err != nil {
			h.log.WithError(err).WithField("game", session.ID).Debug("websocket closed")
			return
		}

		switch msg.Action {
		case "reveal":
			if _, err := h.reveal(c.Request.Context(), session, msg.X, msg.Y); err != nil {
				_ = h.hub.Send(conn, "error", gin.H{"error": err.Error()})
			}
		case "reset":
			h.reset(session)
		default:
			_ = h.hub.Send(conn, "error", gin.H{"error": "unknown action " + msg.Action})
		}
	}
}

func (h *Handler) session(c *gin.Context) (*Session, bool) {
	session, ok := h.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
	}
	return session, ok
}

// reveal applies a reveal to a session and broadcasts the outcome to the
// game's websocket clients while still holding the session.
func (h *Handler) reveal(ctx context.Context, session *Session, x, y int) (RevealResponse, error) {
	_, span := h.tracer.Start(ctx, "game.reveal", trace.WithAttributes(
		append(telemetry.Cell(x, y), telemetry.GameIDKey.String(session.ID))...,
	))
	defer span.End()

	var resp RevealResponse
	var outcome []attribute.KeyValue
	err := session.Do(func(board *game.Board) error {
		revealed, err := board.Reveal(x, y)
		if err != nil {
			return err
		}
		outcome = telemetry.Outcome(revealed, board.Result())

		resp.MineHit = revealed.MineHit
		resp.Changed = revealed.Changed
		if resp.Changed == nil {
			resp.Changed = []game.CellUpdate{}
		}
		resp.Game = newGameView(session.ID, board)

		// Broadcast under the session lock, so clients see updates in the order
		// they were applied.
		h.hub.Broadcast(session.ID, "reveal", resp)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return resp, err
	}

	span.SetAttributes(outcome...)
	if resp.Game.Result != game.Ongoing.String() && len(resp.Changed) > 0 {
		h.log.WithFields(logrus.Fields{
			"game":   session.ID,
			"result": resp.Game.Result,
		}).Info("game over")
	}
	return resp, nil
}

func (h *Handler) reset(session *Session) GameView {
	var view GameView
	_ = session.Do(func(board *game.Board) error {
		board.Reset()
		view = newGameView(session.ID, board)
		h.hub.Broadcast(session.ID, "reset", view)
		return nil
	})
	return view
}
