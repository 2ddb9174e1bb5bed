// Mock of the official Data API for local development. Serves one fixture
// playlist regardless of the requested ID, with the same three-endpoint
// shape the real client walks.
package main

import (
	_ "embed"
	"log"
	"net/http"
	"time"
)

//go:embed playlist.json
var playlistData []byte

//go:embed playlist_items.json
var itemsData []byte

//go:embed videos.json
var videosData []byte

func serve(name string, data []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Simulate network latency (50-200ms)
		time.Sleep(time.Duration(50+time.Now().UnixNano()%150) * time.Millisecond)

		if r.URL.Query().Get("key") == "" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":{"code":403,"errors":[{"reason":"quotaExceeded"}]}}`))
			log.Printf("[Data API] %s %s - 403 missing key", r.Method, r.URL.Path)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil {
			log.Printf("[Data API] %s write error: %v", name, err)
		}

		log.Printf("[Data API] %s %s - 200 OK", r.Method, r.URL.Path)
	}
}

func main() {
	http.HandleFunc("/youtube/v3/playlists", serve("playlists", playlistData))
	http.HandleFunc("/youtube/v3/playlistItems", serve("playlistItems", itemsData))
	http.HandleFunc("/youtube/v3/videos", serve("videos", videosData))

	log.Println("Mock Data API running on :8081")
	server := &http.Server{
		Addr:         ":8081",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
