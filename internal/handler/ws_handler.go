/*
Package handler provides the HTTP handlers and routing setup for the relay chat server.

This file contains the HandleWebSocket function, which is responsible for rate
limiting, upgrading the HTTP connection to WebSocket, and initiating the client
lifecycle. Identity is not part of the upgrade: it arrives over the socket via
a register message.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"relaychat/internal/app/relay"
	"relaychat/internal/pkg/errs"
	"relaychat/internal/pkg/limiter"
	"relaychat/internal/pkg/logx"
	"relaychat/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
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
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := relay.NewClient(deps.Hub, conn)
		deps.Hub.Attach(client)

		go client.WritePump()

		logx.Info("WebSocket connection established", "remote_ip", ip)

		client.ReadPump()
	}
}
