package realtime

import (
	"bufio"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestComputeAcceptKey(t *testing.T) {
	// RFC 6455 section 1.3 example
	if got := computeAcceptKey("dGhlIHNhbXBsZSBub25jZQ=="); got != "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=" {
		t.Fatalf("accept = %s", got)
	}
}

func TestUpgradeAndWriteJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := Upgrade(w, r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer conn.Close()
		_ = conn.WriteJSON(map[string]string{"type": "hello"})
		_, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	c, err := net.Dial("tcp", strings.TrimPrefix(srv.URL, "http://"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	req := "GET / HTTP/1.1\r\nHost: x\r\nUpgrade: websocket\r\nConnection: Upgrade\r\n" +
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\nSec-WebSocket-Version: 13\r\n\r\n"
	if _, err := c.Write([]byte(req)); err != nil {
		t.Fatal(err)
	}

	br := bufio.NewReader(c)
	resp, err := http.ReadResponse(br, nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	header := make([]byte, 2)
	if _, err := io.ReadFull(br, header); err != nil {
		t.Fatal(err)
	}
	if header[0] != 0x80|opText {
		t.Fatalf("opcode byte = %#x", header[0])
	}
	payload := make([]byte, int(header[1]&0x7F))
	if _, err := io.ReadFull(br, payload); err != nil {
		t.Fatal(err)
	}
	var msg map[string]string
	if err := json.Unmarshal(payload, &msg); err != nil || msg["type"] != "hello" {
		t.Fatalf("payload = %s (%v)", payload, err)
	}

	// masked close frame from the client
	_, _ = c.Write([]byte{0x80 | opClose, 0x80, 1, 2, 3, 4})
}

// maskedText builds a client text frame.
func maskedText(payload string) []byte {
	key := [4]byte{7, 1, 9, 3}
	frame := []byte{0x80 | opText, 0x80 | byte(len(payload))}
	frame = append(frame, key[:]...)
	for i := 0; i < len(payload); i++ {
		frame = append(frame, payload[i]^key[i%4])
	}
	return frame
}

func TestFrameSentWithHandshakeIsRead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := Upgrade(w, r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer conn.Close()
		msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.WriteJSON(map[string]string{"echo": string(msg)})
	}))
	defer srv.Close()

	c, err := net.Dial("tcp", strings.TrimPrefix(srv.URL, "http://"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	_ = c.SetDeadline(time.Now().Add(5 * time.Second))

	// handshake and first frame in one write, so the frame lands in the
	// server's request buffer
	req := "GET / HTTP/1.1\r\nHost: x\r\nUpgrade: websocket\r\nConnection: Upgrade\r\n" +
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\nSec-WebSocket-Version: 13\r\n\r\n"
	if _, err := c.Write(append([]byte(req), maskedText("hi")...)); err != nil {
		t.Fatal(err)
	}

	br := bufio.NewReader(c)
	resp, err := http.ReadResponse(br, nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	header := make([]byte, 2)
	if _, err := io.ReadFull(br, header); err != nil {
		t.Fatalf("no reply frame: %v", err)
	}
	payload := make([]byte, int(header[1]&0x7F))
	if _, err := io.ReadFull(br, payload); err != nil {
		t.Fatal(err)
	}
	var msg map[string]string
	if err := json.Unmarshal(payload, &msg); err != nil || msg["echo"] != "hi" {
		t.Fatalf("payload = %s (%v)", payload, err)
	}
}

func TestUpgradeRejectsPlainRequest(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := Upgrade(rec, req); err == nil {
		t.Fatal("expected handshake error")
	}
}
