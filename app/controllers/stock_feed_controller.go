package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/kashvi-shop/pkg/middleware"
	"github.com/shashiranjanraj/kashvi-shop/pkg/response"
	"github.com/shashiranjanraj/kashvi-shop/pkg/sse"
	"github.com/shashiranjanraj/kashvi-shop/pkg/ws"
)

// StockFeedController streams the caller's stock changes, over a websocket
// on GET /ws/stock or as server-sent events on GET /sse/stock.
type StockFeedController struct {
	hub    *ws.Hub
	broker *sse.Broker
}

func NewStockFeedController(hub *ws.Hub, broker *sse.Broker) *StockFeedController {
	return &StockFeedController{hub: hub, broker: broker}
}

func (sc *StockFeedController) Serve(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}
	sc.hub.Serve(w, r, uid)
}

func (sc *StockFeedController) Stream(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserIDFromCtx(r)
	if !ok {
		response.Unauthorized(w)
		return
	}
	sc.broker.Serve(w, r, uid)
}
