package server

import (
	"log/slog"
	"net/http"

	"github.com/skip2/go-qrcode"
)

const qrSize = 320

// handleJoinQR renders a QR code pointing players at the game. Without a
// configured public URL the request's own origin is encoded.
func handleJoinQR(logger *slog.Logger, publicURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := publicURL
		if target == "" {
			target = requestOrigin(r)
		}

		png, err := qrcode.Encode(target, qrcode.Medium, qrSize)
		if err != nil {
			logger.Error("qr encoding failed", "url", target, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(png)
	}
}

func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/"
}
