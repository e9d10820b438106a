package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/xhad/minirag/pkg/llm"
	"github.com/xhad/minirag/pkg/rag"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Be careful with this in production
	},
}

type Message struct {
	Type    string      `json:"type"`
	Content string      `json:"content"`
	Data    interface{} `json:"data,omitempty"`
}

type Config struct {
	TopK      int
	Streaming bool
}

// WSServer answers questions over a WebSocket connection using the
// local retrieval engine, with an optional LLM for generative answers.
type WSServer struct {
	config     Config
	engine     *rag.Engine
	chatEngine *llm.ChatEngine
}

func NewWSServer(config Config, engine *rag.Engine, chatEngine *llm.ChatEngine) (*WSServer, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if config.TopK == 0 {
		config.TopK = 3
	}

	return &WSServer{
		config:     config,
		engine:     engine,
		chatEngine: chatEngine,
	}, nil
}

// Handler returns the HTTP mux with the /ws and /health endpoints.
func (s *WSServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return mux
}

// ListenAndServe runs the server on the given port.
func (s *WSServer) ListenAndServe(port string) error {
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting WebSocket server on port %s", port)
	return http.ListenAndServe(":"+port, s.Handler())
}

func (s *WSServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			s.sendMessage(conn, "error", fmt.Sprintf("invalid message: %v", err))
			continue
		}

		s.handleMessage(conn, msg)
	}
}

func (s *WSServer) handleMessage(conn *websocket.Conn, msg Message) {
	query := strings.TrimSpace(msg.Content)
	if query == "" {
		s.sendMessage(conn, "error", "empty question")
		return
	}

	if s.chatEngine != nil {
		s.answerWithLLM(conn, query)
		return
	}

	result, err := s.engine.Answer(query, s.config.TopK)
	if err != nil {
		s.sendMessage(conn, "error", fmt.Sprintf("failed to answer: %v", err))
		return
	}

	s.sendMessage(conn, "answer", result.Text)
	s.sendMessage(conn, "sources", strings.Join(result.Sources, ", "))
}

func (s *WSServer) answerWithLLM(conn *websocket.Conn, query string) {
	retrieved, err := s.engine.Retrieve(query, s.config.TopK)
	if err != nil {
		s.sendMessage(conn, "error", fmt.Sprintf("retrieval failed: %v", err))
		return
	}

	if s.config.Streaming {
		stream, err := s.chatEngine.ChatStream(query, retrieved)
		if err != nil {
			s.sendMessage(conn, "error", fmt.Sprintf("Error: %v", err))
			return
		}

		for chunk := range stream {
			if strings.HasPrefix(chunk, "Error:") {
				s.sendMessage(conn, "error", chunk)
				return
			}
			s.sendMessage(conn, "stream", chunk)
		}
		s.sendMessage(conn, "done", "")
		return
	}

	result, err := s.chatEngine.Chat(query, retrieved)
	if err != nil {
		s.sendMessage(conn, "error", fmt.Sprintf("Error: %v", err))
		return
	}

	s.sendMessage(conn, "answer", result.Text)
	s.sendMessage(conn, "sources", strings.Join(result.Sources, ", "))
}

func (s *WSServer) sendMessage(conn *websocket.Conn, msgType string, content string) {
	msg := Message{
		Type:    msgType,
		Content: content,
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}
