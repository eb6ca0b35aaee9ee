// Command kopis serves canned performance catalog responses for local
// development. Point provider.kopis.base_url at http://localhost:8081.
package main

import (
	"bytes"
	_ "embed"
	"log"
	"net/http"
	"time"
)

//go:embed list.xml
var listXML []byte

//go:embed detail.xml
var detailXML []byte

//go:embed facility.xml
var facilityXML []byte

var missingKeyXML = []byte(`<?xml version="1.0" encoding="UTF-8"?>
<dbs><db><returncode>02</returncode><errmsg>SERVICE KEY IS NOT REGISTERED ERROR.</errmsg></db></dbs>`)

func main() {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /pblprfr", serve(listXML))
	mux.HandleFunc("GET /pblprfr/{id}", func(w http.ResponseWriter, r *http.Request) {
		// The detail document is shared; only the id changes.
		body := bytes.ReplaceAll(detailXML, []byte("PF000001"), []byte(r.PathValue("id")))
		serve(body)(w, r)
	})
	mux.HandleFunc("GET /prfplc/{id}", serve(facilityXML))

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`<health><status>healthy</status></health>`)); err != nil {
			log.Printf("[kopis] health write error: %v", err)
		}
	})

	log.Println("Mock KOPIS running on :8081")
	server := &http.Server{
		Addr:         ":8081",
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}

func serve(body []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Simulate network latency (100-300ms)
		time.Sleep(time.Duration(100+time.Now().UnixNano()%200) * time.Millisecond)

		payload := body
		if r.URL.Query().Get("service") == "" {
			payload = missingKeyXML
		}

		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(payload); err != nil {
			log.Printf("[kopis] write error: %v", err)
		}

		log.Printf("[kopis] %s %s - 200 OK", r.Method, r.URL.Path)
	}
}
