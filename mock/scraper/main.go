// Mock of the extractor sidecar for local development. Serves one fixture
// playlist page for any requested ID.
package main

import (
	_ "embed"
	"log"
	"net/http"
	"time"
)

//go:embed page.json
var pageData []byte

func main() {
	http.HandleFunc("/api/playlists/", func(w http.ResponseWriter, r *http.Request) {
		// Simulate network latency (50-200ms)
		time.Sleep(time.Duration(50+time.Now().UnixNano()%150) * time.Millisecond)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(pageData); err != nil {
			log.Printf("[Scraper] Write error: %v", err)
		}

		log.Printf("[Scraper] %s %s - 200 OK", r.Method, r.URL.Path)
	})

	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"healthy"}`)); err != nil {
			log.Printf("[Scraper] Health write error: %v", err)
		}
	})

	log.Println("Mock scraper running on :8090")
	server := &http.Server{
		Addr:         ":8090",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
