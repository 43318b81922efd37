// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package telemetry streams simulation state out of cmd/bench: an MQTT
// publisher for off-box logging, and a websocket hub so a browser can
// watch a run live. Nothing here is reachable from cmd/firmware — the
// firmware has no wireless telemetry protocol and no network stack.
package telemetry

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"
)

// Frame is one published simulation snapshot.
type Frame struct {
	Time      time.Time `json:"time"`
	Roll      float64   `json:"roll"`
	Yaw       float64   `json:"yaw"`
	RollOut   float64   `json:"roll_out"`
	YawOut    float64   `json:"yaw_out"`
	PwmRight  uint16    `json:"pwm_right"`
	PwmLeft   uint16    `json:"pwm_left"`
}

// Publisher publishes Frame values as JSON to an MQTT topic.
type Publisher struct {
	client mqtt.Client
	topic  string
}

// NewPublisher connects to broker and returns a ready Publisher.
func NewPublisher(broker, clientID, topic string) (*Publisher, error) {
	opts := mqtt.NewClientOptions().AddBroker(broker).SetClientID(clientID)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("telemetry: connect to %s: %w", broker, token.Error())
	}
	log.Printf("telemetry: connected to MQTT broker at %s", broker)
	return &Publisher{client: client, topic: topic}, nil
}

// Publish marshals f and publishes it at QoS 0, fire-and-forget.
func (p *Publisher) Publish(f Frame) {
	payload, err := json.Marshal(f)
	if err != nil {
		log.Printf("telemetry: marshal error: %v", err)
		return
	}
	token := p.client.Publish(p.topic, 0, false, payload)
	token.Wait()
	if token.Error() != nil {
		log.Printf("telemetry: publish error: %v", token.Error())
	}
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans Frame broadcasts out to every connected websocket viewer.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub returns an empty broadcast hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

// ServeWS upgrades the request to a websocket and registers it as a
// viewer until the connection closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("telemetry: websocket upgrade error: %v", err)
		return
	}
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// Broadcast sends f as JSON to every connected viewer, dropping any
// connection that errors on write.
func (h *Hub) Broadcast(f Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteJSON(f); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}
