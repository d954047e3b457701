package httpsrv

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var (
	upgrader = websocket.Upgrader{
		ReadBufferSize:  4 << 10,
		WriteBufferSize: 4 << 10,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
)

const readTimeout = time.Second * 15
const pingPeriod = time.Second * 10
const writeTimeout = time.Second

// handleStream upgrades to websocket and sends the candidate messages of
// job ?id= as JSON text frames, followed by a done message with the final
// job state.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	reqID := requestID()
	id := r.URL.Query().Get("id")
	msgs, unsubscribe, err := s.jobs.Subscribe(id)
	if err != nil {
		writeError(w, reqID, err)
		return
	}
	defer unsubscribe()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ERROR] %s upgrade: %v", reqID, err)
		return
	}
	defer conn.Close()
	log.Printf("[INFO] %s %s streaming job %s", reqID, r.RemoteAddr, id)

	// the reader goroutine below owns every read method from here on
	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go startPing(conn, done)

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			if err := writeMessage(conn, msg); err != nil {
				log.Printf("[ERROR] %s write: %v", reqID, err)
				return
			}
			if msg.Type == MessageDone {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, msg.Job.Status),
					time.Now().Add(writeTimeout))
				return
			}
		case <-gone:
			return
		}
	}
}

func writeMessage(conn *websocket.Conn, msg StreamMessage) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(msg)
}

func startPing(conn *websocket.Conn, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeTimeout))
		case <-done:
			return
		}
	}
}
