// Command openopus serves canned composer and work listings for local
// development. Point provider.openopus.base_url at http://localhost:8082.
package main

import (
	_ "embed"
	"log"
	"net/http"
	"time"
)

//go:embed composers.json
var composersJSON []byte

//go:embed works.json
var worksJSON []byte

var notFoundJSON = []byte(`{"status":{"success":"false","error":"Composer not found"}}`)

func main() {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /composer/list/pop.json", func(w http.ResponseWriter, r *http.Request) {
		write(w, r, composersJSON)
	})
	mux.HandleFunc("GET /work/list/composer/{id}/genre/all.json", func(w http.ResponseWriter, r *http.Request) {
		// Only Mahler has a catalogue here.
		if r.PathValue("id") != "145" {
			write(w, r, notFoundJSON)

			return
		}
		write(w, r, worksJSON)
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"healthy"}`)); err != nil {
			log.Printf("[openopus] health write error: %v", err)
		}
	})

	log.Println("Mock OpenOpus running on :8082")
	server := &http.Server{
		Addr:         ":8082",
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}

func write(w http.ResponseWriter, r *http.Request, body []byte) {
	// Simulate network latency (50-200ms)
	time.Sleep(time.Duration(50+time.Now().UnixNano()%150) * time.Millisecond)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Printf("[openopus] write error: %v", err)
	}

	log.Printf("[openopus] %s %s - 200 OK", r.Method, r.URL.Path)
}
