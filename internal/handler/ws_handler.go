/*
Package handler provides the HTTP handlers and routing for the planning
poker server.

This file contains the WebSocket entry point: rate limiting, room and user
token extraction from the path, the protocol upgrade, and handing the
connection to its session.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"scrumpoker/internal/app/poker"
	"scrumpoker/internal/pkg/errs"
	"scrumpoker/internal/pkg/limiter"
	"scrumpoker/internal/pkg/logx"
	"scrumpoker/internal/pkg/resp"
)

// HandleWebSocket returns the handler for GET /ws/{user}/{room}. The two
// path segments are opaque caller-supplied tokens; no validation beyond
// non-emptiness happens here.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: rate limit exceeded", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		userToken := chi.URLParam(r, "user")
		roomToken := chi.URLParam(r, "room")
		if userToken == "" || roomToken == "" {
			logx.Warn("WebSocket request rejected: missing user or room token")
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		session := poker.NewSession(
			deps.Registry,
			conn,
			poker.RoomToken(roomToken),
			poker.UserToken(userToken),
			deps.Config.VoteOptions,
		)

		// Blocks for the lifetime of the connection.
		session.Run()
	}
}
