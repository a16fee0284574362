package middleware

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzhttp"
)

// Compress gzips responses for clients that accept it. WebSocket
// handshakes are passed through untouched.
func Compress(next http.Handler) http.Handler {
	gz := gzhttp.GzipHandler(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			next.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	})
}
